// services/auth_service.go
package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/iabigrejinha/iab_finance_backend/config"
	"github.com/iabigrejinha/iab_finance_backend/models"
	"github.com/iabigrejinha/iab_finance_backend/repositories"
	"github.com/iabigrejinha/iab_finance_backend/utils"
)

// sessionCacheTTL bounds how stale a cached session resolution may be.
// Every user/session mutation flushes the cache anyway; the TTL only covers
// changes made outside the API, such as a manual database edit.
const sessionCacheTTL = 2 * time.Minute

// AuthService owns login, session resolution and user management.
type AuthService struct {
	users      *repositories.UserRepository
	sessions   *repositories.SessionRepository
	categories *repositories.CategoryRepository
	cache      *config.Cache
}

func NewAuthService(users *repositories.UserRepository, sessions *repositories.SessionRepository, categories *repositories.CategoryRepository, cache *config.Cache) *AuthService {
	return &AuthService{users: users, sessions: sessions, categories: categories, cache: cache}
}

// InitializeUsers creates the root account on first run. DEFAULT_ROOT_PASSWORD
// must be set; shipping a hardcoded root password is not an option.
func (s *AuthService) InitializeUsers() error {
	username := os.Getenv("DEFAULT_ROOT_USERNAME")
	if username == "" {
		username = "root"
	}
	password := os.Getenv("DEFAULT_ROOT_PASSWORD")
	if password == "" {
		return errors.New("a variável de ambiente DEFAULT_ROOT_PASSWORD deve ser definida")
	}

	if _, err := s.users.GetByUsername(username); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	categoryIDs, err := s.categories.IDs()
	if err != nil {
		return err
	}
	return s.users.Create(&models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Password:  hashed,
		Role:      models.RoleRoot,
		Name:      "Administrador Root",
		Email:     "root@iabigrejinha.com",
		CreatedAt: time.Now(),
		Permissions: models.Permissions{
			CanCreate:           true,
			CanEdit:             true,
			CanDelete:           true,
			CanManageUsers:      true,
			CanViewReports:      true,
			CanManageCategories: true,
			Categories:          categoryIDs,
		},
	})
}

// Authenticate verifies credentials and opens a session. The username
// "visitante" with an empty password takes the guest path: a short-lived
// viewer session backed by a shared ephemeral account.
func (s *AuthService) Authenticate(username, password string) (*models.AuthSession, error) {
	if username == models.GuestUsername && password == "" {
		return s.authenticateGuest()
	}

	user, err := s.users.GetByUsername(username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.users.StampLastLogin(user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	token, err := utils.GenerateSessionToken()
	if err != nil {
		return nil, err
	}
	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: now.Add(models.SessionDuration),
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}

	if err := s.applyEffectivePermissions(user); err != nil {
		return nil, err
	}

	s.cache.Flush()
	return &models.AuthSession{User: user, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

func (s *AuthService) authenticateGuest() (*models.AuthSession, error) {
	user, err := s.ensureGuestUser()
	if err != nil {
		return nil, err
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	token := "guest-token-" + hex.EncodeToString(raw)

	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(models.GuestSessionDuration),
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}

	if err := s.applyEffectivePermissions(user); err != nil {
		return nil, err
	}

	s.cache.Flush()
	return &models.AuthSession{User: user, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

func (s *AuthService) ensureGuestUser() (*models.User, error) {
	user, err := s.users.GetByUsername(models.GuestUsername)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	guest := &models.User{
		ID:        "guest",
		Username:  models.GuestUsername,
		Password:  "",
		Role:      models.RoleViewer,
		Name:      "Visitante",
		Email:     "",
		CreatedAt: time.Now(),
		Permissions: models.Permissions{
			CanViewReports: true,
			Categories:     []string{},
		},
	}
	if err := s.users.Create(guest); err != nil {
		return nil, err
	}
	return guest, nil
}

// CurrentSession resolves a bearer token to its session and fully loaded
// user. Resolutions are cached briefly; a miss hits the database. Unknown
// and expired tokens are indistinguishable to the caller.
func (s *AuthService) CurrentSession(token string) (*models.AuthSession, error) {
	if token == "" {
		return nil, repositories.ErrNotFound
	}
	key := "session:" + token
	v, err := s.cache.GetOrPopulate(key, sessionCacheTTL, func() (interface{}, error) {
		return s.resolveSession(token)
	})
	if err != nil {
		return nil, err
	}
	session := v.(*models.AuthSession)
	// A cached resolution must never outlive the session itself.
	if !session.ExpiresAt.After(time.Now()) {
		s.cache.Invalidate(key)
		return nil, repositories.ErrNotFound
	}
	return session, nil
}

func (s *AuthService) resolveSession(token string) (*models.AuthSession, error) {
	session, err := s.sessions.GetValid(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(session.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.applyEffectivePermissions(user); err != nil {
		return nil, err
	}
	return &models.AuthSession{User: user, Token: session.Token, ExpiresAt: session.ExpiresAt}, nil
}

// applyEffectivePermissions replaces the stored permission set with the one
// the role actually carries. Viewers get their category set recomputed from
// the live system/public categories so a category made public after the
// grant was stored is still visible.
func (s *AuthService) applyEffectivePermissions(user *models.User) error {
	if user.Role == models.RoleViewer {
		ids, err := s.categories.PublicOrSystemIDs()
		if err != nil {
			return err
		}
		user.Permissions.Categories = ids
		return nil
	}
	if user.Role.Elevated() {
		ids, err := s.categories.IDs()
		if err != nil {
			return err
		}
		user.Permissions = utils.EffectivePermissions(user.Role, user.Permissions, ids)
	}
	return nil
}

// Logout deletes the session row. Unknown tokens succeed silently so the
// operation is idempotent.
func (s *AuthService) Logout(token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(token); err != nil {
		return err
	}
	s.cache.Flush()
	return nil
}

// Users lists every account with effective permissions applied.
func (s *AuthService) Users() ([]models.User, error) {
	users, err := s.users.List()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if err := s.applyEffectivePermissions(&users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// User loads one account by id.
func (s *AuthService) User(id string) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.applyEffectivePermissions(user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser registers a new account.
func (s *AuthService) CreateUser(req *models.CreateUserRequest) (*models.User, error) {
	username := utils.SanitizeInput(req.Username)
	if !utils.ValidUsername(username) {
		return nil, fmt.Errorf("nome de usuário inválido")
	}
	if _, err := s.users.GetByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:          uuid.NewString(),
		Username:    username,
		Password:    hashed,
		Role:        req.Role,
		Name:        utils.SanitizeInput(req.Name),
		Email:       email,
		CreatedAt:   time.Now(),
		Permissions: req.Permissions.ToPermissions(),
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	s.cache.Flush()
	return user, nil
}

// UpdateUser applies the non-empty fields of the request to an existing
// account. Root accounts keep their role no matter what the request says.
func (s *AuthService) UpdateUser(id string, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Username != "" {
		username := utils.SanitizeInput(req.Username)
		if !utils.ValidUsername(username) {
			return nil, fmt.Errorf("nome de usuário inválido")
		}
		if username != user.Username {
			if _, err := s.users.GetByUsername(username); err == nil {
				return nil, ErrUsernameTaken
			} else if !errors.Is(err, repositories.ErrNotFound) {
				return nil, err
			}
			user.Username = username
		}
	}
	if req.Password != "" {
		hashed, err := utils.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	if req.Name != "" {
		user.Name = utils.SanitizeInput(req.Name)
	}
	if req.Email != "" {
		email, err := utils.SanitizeEmail(req.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}
	if req.Role != "" && user.Role != models.RoleRoot {
		user.Role = req.Role
	}
	if req.Permissions != nil {
		user.Permissions = req.Permissions.ToPermissions()
	}

	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	s.cache.Flush()
	return user, nil
}

// DeleteUser removes an account and its sessions. Root accounts can never
// be deleted.
func (s *AuthService) DeleteUser(id string) error {
	user, err := s.users.GetByID(id)
	if err != nil {
		return err
	}
	if user.Role == models.RoleRoot {
		return ErrRootUndeletable
	}
	if err := s.sessions.DeleteByUser(id); err != nil {
		return err
	}
	if err := s.users.Delete(id); err != nil {
		return err
	}
	s.cache.Flush()
	return nil
}
