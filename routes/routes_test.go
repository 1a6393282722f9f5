package routes

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iabigrejinha/iab_finance_backend/controllers"
)

func TestRegisteredPaths(t *testing.T) {
	e := echo.New()
	api := e.Group("/api")

	RegisterAuthRoutes(e, &controllers.AuthController{})
	RegisterUserRoutes(api, &controllers.UserController{}, &controllers.AuthController{})
	RegisterCategoryRoutes(api, &controllers.CategoryController{})
	RegisterMovementRoutes(api, &controllers.MovementController{}, &controllers.DashboardController{})
	RegisterBackupRoutes(api, &controllers.BackupController{})

	paths := map[string]bool{}
	for _, r := range e.Routes() {
		paths[r.Method+" "+r.Path] = true
	}

	expected := []string{
		http.MethodPost + " /api/auth/login",
		http.MethodPost + " /api/auth/logout",
		http.MethodGet + " /api/auth/session",
		http.MethodGet + " /api/auth/me",
		http.MethodGet + " /api/categories",
		http.MethodGet + " /api/categories/slug/:slug",
		http.MethodGet + " /api/movements",
		http.MethodGet + " /api/dashboard/stats",
		http.MethodGet + " /api/backup/export",
		http.MethodGet + " /api/backup/download",
	}
	for _, route := range expected {
		assert.True(t, paths[route], "missing route %s", route)
	}
}
