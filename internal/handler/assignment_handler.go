package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/medwelfare/welfare-backend/internal/domain"
	"github.com/medwelfare/welfare-backend/internal/middleware"
	"github.com/medwelfare/welfare-backend/internal/service"
)

// AssignmentHandler handles staff-category assignment HTTP requests
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler
func NewAssignmentHandler(assignmentService *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// GetAssignments returns every staff-category assignment
func (h *AssignmentHandler) GetAssignments(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	assignments, err := h.assignmentService.ListAssignments(identity)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "Assignment management requires the superadmin role")
		}
		log.Error().Err(err).Msg("Failed to list assignments")
		return NewInternalError(c, "Failed to list assignments")
	}

	if assignments == nil {
		assignments = []*domain.Assignment{}
	}
	return c.JSON(http.StatusOK, assignments)
}

// GetOwnAssignments returns the caller's assigned category IDs
func (h *AssignmentHandler) GetOwnAssignments(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	ids, err := h.assignmentService.OwnAssignments(identity)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewUnauthorizedError(c, "Authentication required")
		}
		log.Error().Err(err).Msg("Failed to list own assignments")
		return NewInternalError(c, "Failed to list assignments")
	}

	return c.JSON(http.StatusOK, ids)
}

// AssignmentRequest represents the assign/unassign request body
type AssignmentRequest struct {
	Username   string `json:"username"`
	CategoryID int32  `json:"typeId"`
}

// CreateAssignment grants a staff username scope over a category
func (h *AssignmentHandler) CreateAssignment(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	var req AssignmentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	assignment, err := h.assignmentService.AssignStaff(identity, req.Username, req.CategoryID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return NewForbiddenError(c, "Assignment management requires the superadmin role")
		case errors.Is(err, domain.ErrUsernameRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "username", Message: "Username is required"},
			})
		case errors.Is(err, domain.ErrCategoryRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "typeId", Message: "Category is required"},
			})
		case errors.Is(err, domain.ErrAlreadyAssigned):
			return NewValidationError(c, "Staff is already assigned to this category", nil)
		case errors.Is(err, domain.ErrCategoryNotFound):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "typeId", Message: "Category not found"},
			})
		}
		log.Error().Err(err).Msg("Failed to create assignment")
		return NewInternalError(c, "Failed to create assignment")
	}

	return c.JSON(http.StatusCreated, assignment)
}

// RemoveAssignment revokes a staff username's scope over a category
func (h *AssignmentHandler) RemoveAssignment(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	var req AssignmentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	if err := h.assignmentService.UnassignStaff(identity, req.Username, req.CategoryID); err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return NewForbiddenError(c, "Assignment management requires the superadmin role")
		case errors.Is(err, domain.ErrUsernameRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "username", Message: "Username is required"},
			})
		case errors.Is(err, domain.ErrCategoryRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "typeId", Message: "Category is required"},
			})
		case errors.Is(err, domain.ErrNotFound):
			return NewNotFoundError(c, "Assignment not found")
		}
		log.Error().Err(err).Msg("Failed to remove assignment")
		return NewInternalError(c, "Failed to remove assignment")
	}

	return c.NoContent(http.StatusNoContent)
}
