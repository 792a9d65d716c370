package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/medwelfare/welfare-backend/internal/domain"
	"github.com/medwelfare/welfare-backend/internal/testutil"
)

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	return string(hash)
}

func TestLogin_LocalAccount(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	userRepo.Create(&domain.User{
		FirstName:    "Admin",
		LastName:     "One",
		Username:     "admin1",
		PasswordHash: hashPassword(t, "secret"),
		Role:         domain.RoleSuperadmin,
	})
	assignmentRepo := testutil.NewMockAssignmentRepository()
	authService := NewAuthService(userRepo, assignmentRepo, testutil.NewMockDirectoryClient())

	identity, err := authService.Login(context.Background(), "admin1", "secret")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if identity.SubjectID == nil {
		t.Fatal("Expected a local subject ID")
	}
	if !identity.Roles.Has(domain.RoleSuperadmin) {
		t.Errorf("Expected superadmin role, got %v", identity.Roles)
	}
	if identity.DisplayName != "Admin One" {
		t.Errorf("Expected display name 'Admin One', got %s", identity.DisplayName)
	}
}

func TestLogin_LocalMismatchFallsThroughToDirectory(t *testing.T) {
	// The same username can hold a local account and a directory account;
	// a local password mismatch delegates to the directory
	userRepo := testutil.NewMockUserRepository()
	userRepo.Create(&domain.User{
		Username:     "somchai",
		PasswordHash: hashPassword(t, "localsecret"),
		Role:         domain.RoleStaff,
	})
	directory := testutil.NewMockDirectoryClient()
	directory.Passwords["somchai"] = "extsecret"
	directory.Accounts["somchai"] = &domain.DirectoryAccount{Username: "somchai", EmployeeCode: "E100"}

	authService := NewAuthService(userRepo, testutil.NewMockAssignmentRepository(), directory)

	identity, err := authService.Login(context.Background(), "somchai", "extsecret")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if identity.SubjectID != nil {
		t.Error("Expected a directory identity, got a local one")
	}
	if identity.EmployeeCode != "E100" {
		t.Errorf("Expected employee code E100, got %s", identity.EmployeeCode)
	}
	if identity.Roles.Has(domain.RoleStaff) {
		t.Errorf("Expected the directory roles, got %v", identity.Roles)
	}
}

func TestLogin_WrongPasswordInBothStores(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	userRepo.Create(&domain.User{
		Username:     "staff1",
		PasswordHash: hashPassword(t, "secret"),
		Role:         domain.RoleStaff,
	})
	directory := testutil.NewMockDirectoryClient()
	directory.Passwords["staff1"] = "extsecret"

	authService := NewAuthService(userRepo, testutil.NewMockAssignmentRepository(), directory)

	_, err := authService.Login(context.Background(), "staff1", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_DirectoryAccount(t *testing.T) {
	directory := testutil.NewMockDirectoryClient()
	directory.Passwords["somchai"] = "secret"
	directory.Accounts["somchai"] = &domain.DirectoryAccount{
		Username:     "somchai",
		EmployeeCode: "E100",
		FirstName:    "Somchai",
		LastName:     "Test",
	}
	assignmentRepo := testutil.NewMockAssignmentRepository()
	assignmentRepo.Create("somchai", 2)

	authService := NewAuthService(testutil.NewMockUserRepository(), assignmentRepo, directory)

	identity, err := authService.Login(context.Background(), "somchai", "secret")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if identity.SubjectID != nil {
		t.Error("Expected no local subject ID for a directory identity")
	}
	if identity.EmployeeCode != "E100" {
		t.Errorf("Expected employee code E100, got %s", identity.EmployeeCode)
	}
	if !identity.Roles.Has(domain.RoleUser) || identity.Roles.Has(domain.RoleStaff) {
		t.Errorf("Expected exactly the user role, got %v", identity.Roles)
	}
	// Assignments ride along even though they grant no role by themselves
	if len(identity.StaffAssignments) != 1 || identity.StaffAssignments[0] != 2 {
		t.Errorf("Expected assignment to category 2, got %v", identity.StaffAssignments)
	}
}

func TestLogin_DirectoryInvalidCredentials(t *testing.T) {
	directory := testutil.NewMockDirectoryClient()
	directory.Passwords["somchai"] = "secret"

	authService := NewAuthService(testutil.NewMockUserRepository(), testutil.NewMockAssignmentRepository(), directory)

	_, err := authService.Login(context.Background(), "somchai", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_DirectoryUnavailable(t *testing.T) {
	directory := testutil.NewMockDirectoryClient()
	directory.Unavailable = true

	authService := NewAuthService(testutil.NewMockUserRepository(), testutil.NewMockAssignmentRepository(), directory)

	_, err := authService.Login(context.Background(), "somchai", "secret")
	if !errors.Is(err, domain.ErrDirectoryUnavailable) {
		t.Fatalf("Expected ErrDirectoryUnavailable, got %v", err)
	}
}

func TestLogin_Validation(t *testing.T) {
	authService := NewAuthService(testutil.NewMockUserRepository(), testutil.NewMockAssignmentRepository(), testutil.NewMockDirectoryClient())

	if _, err := authService.Login(context.Background(), "  ", "secret"); !errors.Is(err, domain.ErrUsernameRequired) {
		t.Errorf("Expected ErrUsernameRequired, got %v", err)
	}
	if _, err := authService.Login(context.Background(), "somchai", ""); !errors.Is(err, domain.ErrPasswordRequired) {
		t.Errorf("Expected ErrPasswordRequired, got %v", err)
	}
}

func TestLogin_LocalStaffAssignmentsByUsername(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	userRepo.Create(&domain.User{
		Username:     "staff1",
		PasswordHash: hashPassword(t, "secret"),
		Role:         domain.RoleStaff,
	})
	assignmentRepo := testutil.NewMockAssignmentRepository()
	assignmentRepo.Create("staff1", 1)
	assignmentRepo.Create("staff1", 3)

	authService := NewAuthService(userRepo, assignmentRepo, testutil.NewMockDirectoryClient())

	identity, err := authService.Login(context.Background(), "staff1", "secret")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(identity.StaffAssignments) != 2 {
		t.Errorf("Expected 2 assignments, got %v", identity.StaffAssignments)
	}
}
