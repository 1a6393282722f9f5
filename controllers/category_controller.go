package controllers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iabigrejinha/iab_finance_backend/config"
	"github.com/iabigrejinha/iab_finance_backend/middleware"
	"github.com/iabigrejinha/iab_finance_backend/models"
	"github.com/iabigrejinha/iab_finance_backend/repositories"
	"github.com/iabigrejinha/iab_finance_backend/utils"
)

type CategoryController struct {
	Categories *repositories.CategoryRepository
	Cache      *config.Cache
}

func NewCategoryController(categories *repositories.CategoryRepository, cache *config.Cache) *CategoryController {
	return &CategoryController{Categories: categories, Cache: cache}
}

// ListCategories returns the categories visible to the requester. Viewers
// only see system and public categories.
func (cc *CategoryController) ListCategories(c echo.Context) error {
	user := middleware.UserFromContext(c)

	all, err := cc.Categories.List()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao listar categorias"})
	}
	return c.JSON(http.StatusOK, utils.AccessibleCategories(user, all))
}

// GetCategoryBySlug resolves one category by its slug, subject to the same
// visibility rules as the list.
func (cc *CategoryController) GetCategoryBySlug(c echo.Context) error {
	user := middleware.UserFromContext(c)

	category, err := cc.Categories.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "categoria não encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao buscar categoria"})
	}
	if !utils.CanAccessCategory(user, category.ID, []models.Category{*category}) {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado à categoria"})
	}
	return c.JSON(http.StatusOK, category)
}

// CreateCategory adds a custom category. Root and admin only.
func (cc *CategoryController) CreateCategory(c echo.Context) error {
	user := middleware.UserFromContext(c)
	if !utils.CanCreateCategory(user) {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado"})
	}

	var req models.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "requisição inválida"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "dados inválidos: " + err.Error()})
	}

	category := &models.Category{
		ID:       uuid.NewString(),
		Name:     utils.SanitizeInput(req.Name),
		Icon:     req.Icon,
		Color:    req.Color,
		IsPublic: req.IsPublic,
	}
	if err := cc.Categories.Create(category); err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao criar categoria"})
	}

	// A new public category widens every viewer's category set.
	cc.Cache.Flush()
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory edits a custom category. System categories are immutable.
func (cc *CategoryController) UpdateCategory(c echo.Context) error {
	user := middleware.UserFromContext(c)
	if !utils.CanEditCategory(user) {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado"})
	}

	category, err := cc.Categories.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "categoria não encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao buscar categoria"})
	}
	if category.IsSystem {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "categorias do sistema não podem ser alteradas"})
	}

	var req models.CategoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "requisição inválida"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "dados inválidos: " + err.Error()})
	}

	if req.Name != "" {
		category.Name = utils.SanitizeInput(req.Name)
	}
	if req.Icon != "" {
		category.Icon = req.Icon
	}
	if req.Color != "" {
		category.Color = req.Color
	}
	if req.IsPublic != nil {
		category.IsPublic = *req.IsPublic
	}

	if err := cc.Categories.Update(category); err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao atualizar categoria"})
	}

	cc.Cache.Flush()
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a custom category together with every movement
// recorded under it. System categories are undeletable.
func (cc *CategoryController) DeleteCategory(c echo.Context) error {
	user := middleware.UserFromContext(c)
	if !utils.CanDeleteCategory(user) {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "acesso negado"})
	}

	category, err := cc.Categories.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "categoria não encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao buscar categoria"})
	}
	if category.IsSystem {
		return c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "categorias do sistema não podem ser excluídas"})
	}

	if _, err := cc.Categories.DeleteCascade(category.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "erro ao excluir categoria"})
	}

	cc.Cache.Flush()
	return c.JSON(http.StatusOK, models.OkResponse{OK: true})
}
