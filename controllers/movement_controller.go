package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iabigrejinha/iab_finance_backend/middleware"
	"github.com/iabigrejinha/iab_finance_backend/models"
	"github.com/iabigrejinha/iab_finance_backend/repositories"
	"github.com/iabigrejinha/iab_finance_backend/utils"
)

type MovementController struct {
	Movements  *repositories.MovementRepository
	Categories *repositories.CategoryRepository
}

func NewMovementController(movements *repositories.MovementRepository, categories *repositories.CategoryRepository) *MovementController {
	return &MovementController{Movements: movements, Categories: categories}
}

// ListMovements returns the movements visible to the requester, optionally
// narrowed to one category via ?categorySlug=. Elevated roles see all
// movements; everyone else only those of their granted categories.
func (mc *MovementController) ListMovements(c echo.Context) error {
	user := middleware.UserFromContext(c)

	if slug := c.QueryParam("categorySlug"); slug != "" {
		category, err := mc.Categories.GetBySlug(slug)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "categoria não encontrada"})
			}
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao buscar categoria"})
		}
		if !utils.CanAccessCategory(user, category.ID, nil) {
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado à categoria"})
		}
		movements, err := mc.Movements.ListByCategory(category.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao buscar movimentações"})
		}
		return c.JSON(http.StatusOK, movements)
	}

	var movements []models.Movement
	var err error
	if user.Role.Elevated() {
		movements, err = mc.Movements.List()
	} else {
		movements, err = mc.Movements.ListByCategories(user.Permissions.Categories)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao buscar movimentações"})
	}
	return c.JSON(http.StatusOK, movements)
}

// CreateMovement records a new income or expense entry.
func (mc *MovementController) CreateMovement(c echo.Context) error {
	user := middleware.UserFromContext(c)

	var req models.MovementRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "requisição inválida"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "dados inválidos: " + err.Error()})
	}

	if _, err := mc.Categories.GetByID(req.Category); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "categoria não encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao buscar categoria"})
	}

	movement := &models.Movement{
		ID:          uuid.NewString(),
		Date:        req.Date,
		Description: utils.SanitizeInput(req.Description),
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
		CreatedBy:   user.ID,
		CreatedAt:   time.Now(),
	}
	if !utils.CanManageMovement(user, movement, utils.ActionCreate) {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado"})
	}

	if err := mc.Movements.Create(movement); err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao criar movimentação"})
	}
	return c.JSON(http.StatusCreated, movement)
}

// UpdateMovement edits an existing entry. The category is immutable; move
// a record by deleting and recreating it.
func (mc *MovementController) UpdateMovement(c echo.Context) error {
	user := middleware.UserFromContext(c)

	movement, err := mc.Movements.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "movimentação não encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao buscar movimentação"})
	}
	if !utils.CanManageMovement(user, movement, utils.ActionEdit) {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado"})
	}

	var req models.MovementUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "requisição inválida"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "dados inválidos: " + err.Error()})
	}

	if req.Date != "" {
		movement.Date = req.Date
	}
	if req.Description != "" {
		movement.Description = utils.SanitizeInput(req.Description)
	}
	if req.Amount > 0 {
		movement.Amount = req.Amount
	}
	if req.Type != "" {
		movement.Type = req.Type
	}

	if err := mc.Movements.Update(movement); err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao atualizar movimentação"})
	}
	return c.JSON(http.StatusOK, movement)
}

// DeleteMovement removes an entry.
func (mc *MovementController) DeleteMovement(c echo.Context) error {
	user := middleware.UserFromContext(c)

	movement, err := mc.Movements.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "movimentação não encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao buscar movimentação"})
	}
	if !utils.CanManageMovement(user, movement, utils.ActionDelete) {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado"})
	}

	if err := mc.Movements.Delete(movement.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao excluir movimentação"})
	}
	return c.JSON(http.StatusOK, models.OkResponse{OK: true})
}
