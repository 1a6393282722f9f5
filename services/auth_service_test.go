package services

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/iabigrejinha/iab_finance_backend/config"
	"github.com/iabigrejinha/iab_finance_backend/models"
	"github.com/iabigrejinha/iab_finance_backend/repositories"
)

type AuthServiceSuite struct {
	suite.Suite
	db         *sql.DB
	users      *repositories.UserRepository
	sessions   *repositories.SessionRepository
	categories *repositories.CategoryRepository
	cache      *config.Cache
	auth       *AuthService
}

func (s *AuthServiceSuite) SetupTest() {
	s.T().Setenv("DEFAULT_ROOT_USERNAME", "root")
	s.T().Setenv("DEFAULT_ROOT_PASSWORD", "senha-segura")

	db, err := config.OpenDB(":memory:")
	require.NoError(s.T(), err, "failed to open test database")
	s.db = db
	s.users = repositories.NewUserRepository(db)
	s.sessions = repositories.NewSessionRepository(db)
	s.categories = repositories.NewCategoryRepository(db)
	s.cache = config.NewCache()
	s.auth = NewAuthService(s.users, s.sessions, s.categories, s.cache)

	require.NoError(s.T(), s.categories.Seed())
	require.NoError(s.T(), s.auth.InitializeUsers())
}

func (s *AuthServiceSuite) TearDownTest() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *AuthServiceSuite) TestRootBootstrap() {
	root, err := s.users.GetByUsername("root")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.RoleRoot, root.Role)
	assert.True(s.T(), root.Permissions.CanManageUsers)
	assert.Len(s.T(), root.Permissions.Categories, len(models.SystemCategories))

	// Bootstrapping again must not duplicate the account.
	require.NoError(s.T(), s.auth.InitializeUsers())
	count, err := s.users.Count()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, count)
}

func (s *AuthServiceSuite) TestRootBootstrapRequiresPassword() {
	s.T().Setenv("DEFAULT_ROOT_PASSWORD", "")
	assert.Error(s.T(), s.auth.InitializeUsers())
}

func (s *AuthServiceSuite) TestAuthenticateSuccess() {
	session, err := s.auth.Authenticate("root", "senha-segura")
	require.NoError(s.T(), err)
	assert.Len(s.T(), session.Token, 64)
	assert.WithinDuration(s.T(), time.Now().Add(models.SessionDuration), session.ExpiresAt, time.Minute)
	assert.NotNil(s.T(), session.User.LastLogin)
	assert.True(s.T(), session.User.Permissions.CanManageUsers)
}

func (s *AuthServiceSuite) TestAuthenticateRejectsBadCredentials() {
	_, err := s.auth.Authenticate("root", "senha-errada")
	assert.ErrorIs(s.T(), err, ErrInvalidCredentials)

	// Unknown usernames fail identically so they cannot be enumerated.
	_, err = s.auth.Authenticate("inexistente", "qualquer")
	assert.ErrorIs(s.T(), err, ErrInvalidCredentials)
}

func (s *AuthServiceSuite) TestGuestLogin() {
	session, err := s.auth.Authenticate(models.GuestUsername, "")
	require.NoError(s.T(), err)

	assert.True(s.T(), strings.HasPrefix(session.Token, "guest-token-"))
	assert.Equal(s.T(), models.RoleViewer, session.User.Role)
	assert.WithinDuration(s.T(), time.Now().Add(models.GuestSessionDuration), session.ExpiresAt, time.Minute)
	assert.True(s.T(), session.User.Permissions.CanViewReports)
	assert.False(s.T(), session.User.Permissions.CanCreate)
	assert.Len(s.T(), session.User.Permissions.Categories, len(models.SystemCategories))

	// A second guest login reuses the same stored account.
	_, err = s.auth.Authenticate(models.GuestUsername, "")
	require.NoError(s.T(), err)
	count, err := s.users.Count()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, count)
}

func (s *AuthServiceSuite) TestGuestWithPasswordIsNotGuest() {
	_, err := s.auth.Authenticate(models.GuestUsername, "alguma-senha")
	assert.ErrorIs(s.T(), err, ErrInvalidCredentials)
}

func (s *AuthServiceSuite) TestCurrentSessionRejectsExpiredToken() {
	session, err := s.auth.Authenticate("root", "senha-segura")
	require.NoError(s.T(), err)

	_, updateErr := s.db.Exec("UPDATE sessions SET expires_at = ? WHERE token = ?",
		config.FormatTime(time.Now().Add(-time.Minute)), session.Token)
	require.NoError(s.T(), updateErr)

	_, err = s.auth.CurrentSession(session.Token)
	assert.Error(s.T(), err)
}

func (s *AuthServiceSuite) TestCachedSessionStopsResolvingAtExpiry() {
	session, err := s.auth.Authenticate("root", "senha-segura")
	require.NoError(s.T(), err)

	// Seed the cache with a resolution whose expiry has already passed, as
	// happens when the cache TTL outlives the session's remaining lifetime.
	stale := *session
	stale.ExpiresAt = time.Now().Add(-time.Second)
	s.cache.Set("session:"+session.Token, &stale, time.Minute)

	_, err = s.auth.CurrentSession(session.Token)
	assert.Error(s.T(), err, "a cache hit must still honor the expiry")

	// The stale entry is evicted; the still-valid row resolves again.
	resolved, err := s.auth.CurrentSession(session.Token)
	require.NoError(s.T(), err)
	assert.True(s.T(), resolved.ExpiresAt.After(time.Now()))
}

func (s *AuthServiceSuite) TestViewerCategoriesRecomputedLive() {
	session, err := s.auth.Authenticate(models.GuestUsername, "")
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.categories.Create(&models.Category{
		ID: "bazar", Name: "Bazar", Icon: "Gift", Color: "pink", IsPublic: true,
	}))
	s.cache.Flush()

	resolved, err := s.auth.CurrentSession(session.Token)
	require.NoError(s.T(), err)
	assert.Contains(s.T(), resolved.User.Permissions.Categories, "bazar")
	assert.Len(s.T(), resolved.User.Permissions.Categories, len(models.SystemCategories)+1)
}

func (s *AuthServiceSuite) TestAdminEffectivePermissions() {
	_, err := s.auth.CreateUser(&models.CreateUserRequest{
		Username: "diretor",
		Password: "senha-forte",
		Name:     "Diretor",
		Email:    "diretor@iabigrejinha.com",
		Role:     models.RoleAdmin,
	})
	require.NoError(s.T(), err)

	session, err := s.auth.Authenticate("diretor", "senha-forte")
	require.NoError(s.T(), err)
	assert.True(s.T(), session.User.Permissions.CanDelete)
	assert.True(s.T(), session.User.Permissions.CanManageCategories)
	assert.False(s.T(), session.User.Permissions.CanManageUsers)
	assert.Len(s.T(), session.User.Permissions.Categories, len(models.SystemCategories))
}

func (s *AuthServiceSuite) TestSessionResolutionIsCachedUntilFlush() {
	session, err := s.auth.Authenticate("root", "senha-segura")
	require.NoError(s.T(), err)

	_, err = s.auth.CurrentSession(session.Token)
	require.NoError(s.T(), err)
	assert.Greater(s.T(), s.cache.Len(), 0)

	// Remove the row behind the cache's back: the cached resolution
	// still answers until the cache is flushed.
	require.NoError(s.T(), s.sessions.Delete(session.Token))
	_, err = s.auth.CurrentSession(session.Token)
	assert.NoError(s.T(), err)

	s.cache.Flush()
	_, err = s.auth.CurrentSession(session.Token)
	assert.Error(s.T(), err)
}

func (s *AuthServiceSuite) TestLogoutFlushesCacheAndInvalidatesToken() {
	session, err := s.auth.Authenticate("root", "senha-segura")
	require.NoError(s.T(), err)

	_, err = s.auth.CurrentSession(session.Token)
	require.NoError(s.T(), err)
	assert.Greater(s.T(), s.cache.Len(), 0)

	require.NoError(s.T(), s.auth.Logout(session.Token))
	assert.Equal(s.T(), 0, s.cache.Len())

	_, err = s.auth.CurrentSession(session.Token)
	assert.Error(s.T(), err)

	// Logging out again is a no-op.
	assert.NoError(s.T(), s.auth.Logout(session.Token))
}

func (s *AuthServiceSuite) TestCreateUserRejectsDuplicateUsername() {
	req := &models.CreateUserRequest{
		Username: "tesoureiro",
		Password: "senha-forte",
		Name:     "Tesoureiro",
		Email:    "tesoureiro@iabigrejinha.com",
		Role:     models.RoleEditor,
	}
	_, err := s.auth.CreateUser(req)
	require.NoError(s.T(), err)

	_, err = s.auth.CreateUser(req)
	assert.ErrorIs(s.T(), err, ErrUsernameTaken)
}

func (s *AuthServiceSuite) TestUpdateCannotDemoteRoot() {
	root, err := s.users.GetByUsername("root")
	require.NoError(s.T(), err)

	updated, err := s.auth.UpdateUser(root.ID, &models.UpdateUserRequest{Role: models.RoleEditor})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.RoleRoot, updated.Role)
}

func (s *AuthServiceSuite) TestDeleteRootForbidden() {
	root, err := s.users.GetByUsername("root")
	require.NoError(s.T(), err)

	err = s.auth.DeleteUser(root.ID)
	assert.ErrorIs(s.T(), err, ErrRootUndeletable)
}

func (s *AuthServiceSuite) TestDeleteUserRemovesSessions() {
	created, err := s.auth.CreateUser(&models.CreateUserRequest{
		Username: "temporario",
		Password: "senha-forte",
		Name:     "Temporário",
		Email:    "temp@iabigrejinha.com",
		Role:     models.RoleViewer,
	})
	require.NoError(s.T(), err)

	session, err := s.auth.Authenticate("temporario", "senha-forte")
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.auth.DeleteUser(created.ID))

	_, err = s.auth.CurrentSession(session.Token)
	assert.Error(s.T(), err)
	_, err = s.users.GetByID(created.ID)
	assert.ErrorIs(s.T(), err, repositories.ErrNotFound)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}
