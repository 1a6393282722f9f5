package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/iabigrejinha/iab_finance_backend/controllers"
)

// RegisterMovementRoutes sets up movement CRUD and the dashboard under the
// authenticated group.
func RegisterMovementRoutes(g *echo.Group, movementController *controllers.MovementController, dashboardController *controllers.DashboardController) {
	g.GET("/movements", movementController.ListMovements)
	g.POST("/movements", movementController.CreateMovement)
	g.PUT("/movements/:id", movementController.UpdateMovement)
	g.DELETE("/movements/:id", movementController.DeleteMovement)

	g.GET("/dashboard/stats", dashboardController.Stats)
}
