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

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService    *service.AuthService
	authMiddleware *middleware.AuthMiddleware
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService, authMiddleware *middleware.AuthMiddleware) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		authMiddleware: authMiddleware,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Token string           `json:"token"`
	User  *domain.Identity `json:"user"`
}

// Login resolves credentials and issues a bearer token
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	identity, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUsernameRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "username", Message: "Username is required"},
			})
		case errors.Is(err, domain.ErrPasswordRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "password", Message: "Password is required"},
			})
		case errors.Is(err, domain.ErrInvalidCredentials):
			return NewUnauthorizedError(c, "Invalid username or password")
		case errors.Is(err, domain.ErrDirectoryUnavailable):
			return NewBadGatewayError(c, "Employee directory is unavailable")
		}
		log.Error().Err(err).Msg("Login failed")
		return NewInternalError(c, "Failed to log in")
	}

	token, err := h.authMiddleware.IssueToken(identity)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign token")
		return NewInternalError(c, "Failed to log in")
	}

	return c.JSON(http.StatusOK, LoginResponse{Token: token, User: identity})
}

// Me returns the identity carried by the caller's token
func (h *AuthHandler) Me(c echo.Context) error {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		return NewUnauthorizedError(c, "Authentication required")
	}
	return c.JSON(http.StatusOK, identity)
}

// Logout acknowledges a logout. Tokens are stateless; the client discards
// the token and it expires on its own.
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}
