package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iabigrejinha/iab_finance_backend/middleware"
	"github.com/iabigrejinha/iab_finance_backend/models"
	"github.com/iabigrejinha/iab_finance_backend/repositories"
	"github.com/iabigrejinha/iab_finance_backend/utils"
)

type DashboardController struct {
	Movements  *repositories.MovementRepository
	Categories *repositories.CategoryRepository
}

func NewDashboardController(movements *repositories.MovementRepository, categories *repositories.CategoryRepository) *DashboardController {
	return &DashboardController{Movements: movements, Categories: categories}
}

type categorySummary struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Slug    string  `json:"slug"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

type dashboardStats struct {
	Income     float64           `json:"income"`
	Expense    float64           `json:"expense"`
	Balance    float64           `json:"balance"`
	Categories []categorySummary `json:"categories"`
}

// Stats aggregates income and expense over the categories the requester
// can see.
func (dc *DashboardController) Stats(c echo.Context) error {
	user := middleware.UserFromContext(c)
	if !utils.CanViewReports(user) {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado"})
	}

	all, err := dc.Categories.List()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao listar categorias"})
	}
	visible := utils.AccessibleCategories(user, all)

	ids := make([]string, len(visible))
	for i, category := range visible {
		ids[i] = category.ID
	}
	totals, err := dc.Movements.TotalsByCategory(ids)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao calcular totais"})
	}

	stats := dashboardStats{Categories: []categorySummary{}}
	for _, category := range visible {
		t := totals[category.ID]
		stats.Categories = append(stats.Categories, categorySummary{
			ID:      category.ID,
			Name:    category.Name,
			Slug:    category.Slug,
			Income:  t.Income,
			Expense: t.Expense,
			Balance: t.Income - t.Expense,
		})
		stats.Income += t.Income
		stats.Expense += t.Expense
	}
	stats.Balance = stats.Income - stats.Expense

	return c.JSON(http.StatusOK, stats)
}
