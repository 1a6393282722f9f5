package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/iabigrejinha/iab_finance_backend/controllers"
)

// RegisterAuthRoutes sets up the public authentication routes.
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	e.POST("/api/auth/login", authController.Login)
	e.POST("/api/auth/logout", authController.Logout)
	e.GET("/api/auth/session", authController.Session)
	e.POST("/api/auth/validate", authController.Validate)
}
