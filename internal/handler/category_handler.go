package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/medwelfare/welfare-backend/internal/domain"
	"github.com/medwelfare/welfare-backend/internal/middleware"
	"github.com/medwelfare/welfare-backend/internal/service"
)

// CategoryHandler handles welfare category HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// GetCategories returns all welfare categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	categories, err := h.categoryService.ListCategories()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories")
		return NewInternalError(c, "Failed to list categories")
	}

	if categories == nil {
		categories = []*domain.Category{}
	}
	return c.JSON(http.StatusOK, categories)
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// CreateCategory creates a new welfare category
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.AddCategory(identity, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return NewForbiddenError(c, "Category changes require the superadmin role")
		case errors.Is(err, domain.ErrNameRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		case errors.Is(err, domain.ErrAlreadyExists):
			return NewConflictError(c, "A category with this name already exists")
		}
		log.Error().Err(err).Msg("Failed to create category")
		return NewInternalError(c, "Failed to create category")
	}

	return c.JSON(http.StatusCreated, category)
}

// DeleteCategory deletes a welfare category. Categories still referenced
// by allocations or transactions are refused.
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "id", Message: "Must be an integer"},
		})
	}

	if err := h.categoryService.RemoveCategory(identity, int32(id)); err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return NewForbiddenError(c, "Category changes require the superadmin role")
		case errors.Is(err, domain.ErrCategoryInUse):
			return NewValidationError(c, "Category is still referenced by allocations or transactions", nil)
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidInput):
			return NewNotFoundError(c, "Category not found")
		}
		log.Error().Err(err).Msg("Failed to delete category")
		return NewInternalError(c, "Failed to delete category")
	}

	return c.NoContent(http.StatusNoContent)
}
