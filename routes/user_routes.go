package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/iabigrejinha/iab_finance_backend/controllers"
)

// RegisterUserRoutes sets up user management under the authenticated group.
func RegisterUserRoutes(g *echo.Group, userController *controllers.UserController, authController *controllers.AuthController) {
	g.GET("/auth/me", authController.Me)

	g.GET("/users", userController.ListUsers)
	g.POST("/users", userController.CreateUser)
	g.PUT("/users/:id", userController.UpdateUser)
	g.DELETE("/users/:id", userController.DeleteUser)
	g.POST("/users/:id/avatar", userController.UploadAvatar)
	g.GET("/users/:id/avatar", userController.GetAvatar)
}
