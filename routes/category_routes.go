package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/iabigrejinha/iab_finance_backend/controllers"
)

// RegisterCategoryRoutes sets up category management under the
// authenticated group.
func RegisterCategoryRoutes(g *echo.Group, categoryController *controllers.CategoryController) {
	g.GET("/categories", categoryController.ListCategories)
	g.GET("/categories/slug/:slug", categoryController.GetCategoryBySlug)
	g.POST("/categories", categoryController.CreateCategory)
	g.PUT("/categories/:id", categoryController.UpdateCategory)
	g.DELETE("/categories/:id", categoryController.DeleteCategory)
}
