package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iabigrejinha/iab_finance_backend/middleware"
	"github.com/iabigrejinha/iab_finance_backend/models"
	"github.com/iabigrejinha/iab_finance_backend/services"
)

type AuthController struct {
	Auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

// Login authenticates credentials and sets the session cookie. The guest
// identity logs in with username "visitante" and an empty password.
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "requisição inválida"})
	}

	guest := req.Username == models.GuestUsername && req.Password == ""
	if !guest && (req.Username == "" || req.Password == "") {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "usuário e senha obrigatórios"})
	}

	session, err := ac.Auth.Authenticate(req.Username, req.Password)
	if err != nil {
		if err == services.ErrInvalidCredentials {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "credenciais inválidas"})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro interno no login"})
	}

	maxAge := int(models.SessionDuration.Seconds())
	if guest {
		maxAge = int(models.GuestSessionDuration.Seconds())
	}
	c.SetCookie(&http.Cookie{
		Name:     models.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	return c.JSON(http.StatusOK, session)
}

// Logout deletes the session and clears the cookie. Always succeeds, even
// for tokens that no longer exist.
func (ac *AuthController) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(models.SessionCookieName); err == nil {
		if err := ac.Auth.Logout(cookie.Value); err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao encerrar sessão"})
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     models.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	return c.JSON(http.StatusOK, models.OkResponse{OK: true})
}

// Session returns the session behind the cookie, or 401.
func (ac *AuthController) Session(c echo.Context) error {
	cookie, err := c.Cookie(models.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "não autenticado"})
	}
	session, err := ac.Auth.CurrentSession(cookie.Value)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "não autenticado"})
	}
	return c.JSON(http.StatusOK, session)
}

// Validate resolves a token sent in the body. Used by the frontend proxy
// layer which cannot read the cookie itself.
func (ac *AuthController) Validate(c echo.Context) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "token obrigatório"})
	}
	session, err := ac.Auth.CurrentSession(req.Token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "sessão inválida"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"user": session.User})
}

// Me returns the authenticated user. Runs behind RequireSession.
func (ac *AuthController) Me(c echo.Context) error {
	user := middleware.UserFromContext(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "não autenticado"})
	}
	return c.JSON(http.StatusOK, user)
}
