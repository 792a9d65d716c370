package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medwelfare/welfare-backend/internal/domain"
)

func testIdentity() *domain.Identity {
	id := int32(7)
	return &domain.Identity{
		SubjectID:        &id,
		Username:         "staff1",
		EmployeeCode:     "E100",
		DisplayName:      "Staff One",
		Roles:            domain.NewRoleSet(domain.RoleStaff),
		StaffAssignments: []int32{1, 2},
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewAuthMiddleware("test-secret", time.Hour)

	token, err := m.IssueToken(testIdentity())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	identity, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if identity.Username != "staff1" {
		t.Errorf("Expected username staff1, got %s", identity.Username)
	}
	if identity.EmployeeCode != "E100" {
		t.Errorf("Expected employee code E100, got %s", identity.EmployeeCode)
	}
	if identity.SubjectID == nil || *identity.SubjectID != 7 {
		t.Errorf("Expected subject ID 7, got %v", identity.SubjectID)
	}
	if !identity.Roles.Has(domain.RoleStaff) {
		t.Errorf("Expected staff role, got %v", identity.Roles)
	}
	if len(identity.StaffAssignments) != 2 {
		t.Errorf("Expected 2 assignments, got %v", identity.StaffAssignments)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	issuer := NewAuthMiddleware("secret-a", time.Hour)
	verifier := NewAuthMiddleware("secret-b", time.Hour)

	token, err := issuer.IssueToken(testIdentity())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err = verifier.ParseToken(token)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := NewAuthMiddleware("test-secret", -time.Minute)

	token, err := m.IssueToken(testIdentity())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err = m.ParseToken(token)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	m := NewAuthMiddleware("test-secret", time.Hour)

	if _, err := m.ParseToken("not.a.token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthenticate_InjectsIdentity(t *testing.T) {
	m := NewAuthMiddleware("test-secret", time.Hour)
	token, err := m.IssueToken(testIdentity())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := m.Authenticate()(func(c echo.Context) error {
		called = true
		identity := GetIdentity(c)
		if identity == nil || identity.Username != "staff1" {
			t.Errorf("Expected identity in context, got %v", identity)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !called {
		t.Error("Expected handler to run")
	}
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	m := NewAuthMiddleware("test-secret", time.Hour)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := m.Authenticate()(func(c echo.Context) error {
		t.Fatal("Handler should not run")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	m := NewAuthMiddleware("test-secret", time.Hour)
	token, err := m.IssueToken(testIdentity())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	e := echo.New()

	run := func(roles ...domain.Role) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := m.Authenticate()(RequireRoles(roles...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		}))
		if err := handler(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		return rec.Code
	}

	if code := run(domain.RoleStaff, domain.RoleSuperadmin); code != http.StatusOK {
		t.Errorf("Expected 200 for staff route, got %d", code)
	}
	if code := run(domain.RoleSuperadmin); code != http.StatusForbidden {
		t.Errorf("Expected 403 for superadmin route, got %d", code)
	}
}
