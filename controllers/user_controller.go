package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iabigrejinha/iab_finance_backend/middleware"
	"github.com/iabigrejinha/iab_finance_backend/models"
	"github.com/iabigrejinha/iab_finance_backend/repositories"
	"github.com/iabigrejinha/iab_finance_backend/services"
	"github.com/iabigrejinha/iab_finance_backend/utils"
)

type UserController struct {
	Auth  *services.AuthService
	Users *repositories.UserRepository
}

func NewUserController(auth *services.AuthService, users *repositories.UserRepository) *UserController {
	return &UserController{Auth: auth, Users: users}
}

// canManage reports whether the requester may administer accounts: root,
// or anyone holding the canManageUsers flag. Admins do not qualify, their
// effective canManageUsers is false.
func canManage(user *models.User) bool {
	return user != nil && (user.Role == models.RoleRoot || user.Permissions.CanManageUsers)
}

// ListUsers returns every account.
func (uc *UserController) ListUsers(c echo.Context) error {
	user := middleware.UserFromContext(c)
	if !canManage(user) {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado"})
	}

	users, err := uc.Auth.Users()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao listar usuários"})
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser registers a new account. Only root may create accounts, and
// new accounts can never be root themselves.
func (uc *UserController) CreateUser(c echo.Context) error {
	user := middleware.UserFromContext(c)
	if user == nil || user.Role != models.RoleRoot {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado"})
	}

	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "requisição inválida"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "dados inválidos: " + err.Error()})
	}

	created, err := uc.Auth.CreateUser(&req)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			return c.JSON(http.StatusConflict, models.ErrorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateUser edits an account. Managers may edit anyone; everyone else may
// only edit their own profile, and never their own role or permissions.
func (uc *UserController) UpdateUser(c echo.Context) error {
	user := middleware.UserFromContext(c)
	id := c.Param("id")

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "requisição inválida"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "dados inválidos: " + err.Error()})
	}

	if !canManage(user) {
		if user == nil || user.ID != id {
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado"})
		}
		req.Role = ""
		req.Permissions = nil
	}

	updated, err := uc.Auth.UpdateUser(id, &req)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "usuário não encontrado"})
		case errors.Is(err, services.ErrUsernameTaken):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Error: err.Error()})
		default:
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		}
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteUser removes an account. Root accounts are undeletable and nobody
// can delete themselves.
func (uc *UserController) DeleteUser(c echo.Context) error {
	user := middleware.UserFromContext(c)
	if !canManage(user) {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado"})
	}

	id := c.Param("id")
	if user.ID == id {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "não é possível excluir o próprio usuário"})
	}

	if err := uc.Auth.DeleteUser(id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "usuário não encontrado"})
		case errors.Is(err, services.ErrRootUndeletable):
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao excluir usuário"})
		}
	}
	return c.JSON(http.StatusOK, models.OkResponse{OK: true})
}

// UploadAvatar sets a user's avatar. Multipart requests carry an image
// file; JSON requests carry initials or an icon name.
func (uc *UserController) UploadAvatar(c echo.Context) error {
	user := middleware.UserFromContext(c)
	id := c.Param("id")
	if user == nil || (user.ID != id && !canManage(user)) {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado"})
	}
	if _, err := uc.Users.GetByID(id); err != nil {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "usuário não encontrado"})
	}

	if file, err := c.FormFile("file"); err == nil {
		data, err := utils.ProcessAvatarUpload(file)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		}
		avatar := &models.Avatar{UserID: id, Type: models.AvatarUpload, Data: data}
		if err := uc.Users.SetAvatar(avatar); err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao salvar avatar"})
		}
		return c.JSON(http.StatusOK, avatar)
	}

	var req models.AvatarRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "requisição inválida"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "dados inválidos: " + err.Error()})
	}

	avatar := &models.Avatar{
		UserID:          id,
		Type:            req.Type,
		Data:            req.Data,
		BackgroundColor: req.BackgroundColor,
	}
	if err := uc.Users.SetAvatar(avatar); err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao salvar avatar"})
	}
	return c.JSON(http.StatusOK, avatar)
}

// GetAvatar returns a user's avatar, falling back to generated initials
// when none was ever set.
func (uc *UserController) GetAvatar(c echo.Context) error {
	id := c.Param("id")
	avatar, err := uc.Users.GetAvatar(id)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao buscar avatar"})
		}
		target, err := uc.Users.GetByID(id)
		if err != nil {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "usuário não encontrado"})
		}
		avatar = &models.Avatar{
			UserID: id,
			Type:   models.AvatarInitials,
			Data:   utils.GenerateInitials(target.Name),
		}
	}
	return c.JSON(http.StatusOK, avatar)
}
