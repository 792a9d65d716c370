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

// UserHandler handles local account HTTP requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetUsers returns all local accounts
func (h *UserHandler) GetUsers(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	users, err := h.userService.ListUsers(identity)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "User management requires the superadmin role")
		}
		log.Error().Err(err).Msg("Failed to list users")
		return NewInternalError(c, "Failed to list users")
	}

	if users == nil {
		users = []*domain.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUserRequest represents the create user request body
type CreateUserRequest struct {
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// CreateUser creates a local account
func (h *UserHandler) CreateUser(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	user, err := h.userService.CreateUser(identity, service.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return NewForbiddenError(c, "User management requires the superadmin role")
		case errors.Is(err, domain.ErrUsernameRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "username", Message: "Username is required"},
			})
		case errors.Is(err, domain.ErrPasswordRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "password", Message: "Password is required"},
			})
		case errors.Is(err, domain.ErrNameRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "fname", Message: "A first or last name is required"},
			})
		case errors.Is(err, domain.ErrInvalidRole):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "role", Message: "Role must be one of: user, staff, superadmin"},
			})
		case errors.Is(err, domain.ErrAlreadyExists):
			return NewConflictError(c, "A user with this username already exists")
		}
		log.Error().Err(err).Msg("Failed to create user")
		return NewInternalError(c, "Failed to create user")
	}

	return c.JSON(http.StatusCreated, user)
}

// DeleteUser removes a local account
func (h *UserHandler) DeleteUser(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "id", Message: "Must be an integer"},
		})
	}

	if err := h.userService.DeleteUser(identity, int32(id)); err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return NewForbiddenError(c, "User management requires the superadmin role")
		case errors.Is(err, domain.ErrSelfDeletion):
			return NewValidationError(c, "Cannot delete your own account", nil)
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrInvalidInput):
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Msg("Failed to delete user")
		return NewInternalError(c, "Failed to delete user")
	}

	return c.NoContent(http.StatusNoContent)
}
