package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/medwelfare/welfare-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// TokenClaims is the payload of an issued bearer token. The identity is
// fully reconstructable from the claims so no session state is kept
// server-side.
type TokenClaims struct {
	jwt.RegisteredClaims
	SubjectID        *int32   `json:"subjectId,omitempty"`
	Username         string   `json:"username"`
	EmployeeCode     string   `json:"employeeCode,omitempty"`
	DisplayName      string   `json:"name,omitempty"`
	Roles            []string `json:"roles"`
	StaffAssignments []int32  `json:"staffAssignments,omitempty"`
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// IdentityKey is the context key for the resolved identity
const IdentityKey contextKey = "identity"

// AuthMiddleware issues and validates HS256 bearer tokens
type AuthMiddleware struct {
	secret []byte
	ttl    time.Duration
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(secret string, ttl time.Duration) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret), ttl: ttl}
}

// IssueToken signs a token carrying the resolved identity
func (m *AuthMiddleware) IssueToken(identity *domain.Identity) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		SubjectID:        identity.SubjectID,
		Username:         identity.Username,
		EmployeeCode:     identity.EmployeeCode,
		DisplayName:      identity.DisplayName,
		Roles:            identity.Roles.Strings(),
		StaffAssignments: identity.StaffAssignments,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ParseToken validates a token and reconstructs the identity it carries
func (m *AuthMiddleware) ParseToken(token string) (*domain.Identity, error) {
	var claims TokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthorized
	}

	return &domain.Identity{
		SubjectID:        claims.SubjectID,
		Username:         claims.Username,
		EmployeeCode:     claims.EmployeeCode,
		DisplayName:      claims.DisplayName,
		Roles:            domain.RoleSetFromStrings(claims.Roles),
		StaffAssignments: claims.StaffAssignments,
	}, nil
}

// Authenticate returns an Echo middleware that validates bearer tokens
// and injects the carried identity into the request context
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "Missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return unauthorizedError(c, "Invalid authorization header format")
			}

			identity, err := m.ParseToken(parts[1])
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "Invalid token")
			}

			ctx := context.WithValue(c.Request().Context(), IdentityKey, identity)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// RequireRoles returns an Echo middleware that rejects requests whose
// identity holds none of the given roles
func RequireRoles(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := GetIdentity(c)
			if identity == nil || !identity.Roles.HasAny(roles...) {
				return forbiddenError(c, "Insufficient role")
			}
			return next(c)
		}
	}
}

// GetIdentity extracts the resolved identity from the request context
func GetIdentity(c echo.Context) *domain.Identity {
	if identity, ok := c.Request().Context().Value(IdentityKey).(*domain.Identity); ok {
		return identity
	}
	return nil
}
