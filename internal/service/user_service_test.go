package service

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/medwelfare/welfare-backend/internal/domain"
	"github.com/medwelfare/welfare-backend/internal/testutil"
)

func TestCreateUser_HashesPassword(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	userService := NewUserService(userRepo, bcrypt.MinCost)

	user, err := userService.CreateUser(superadminIdentity(), CreateUserInput{
		FirstName: "Staff",
		LastName:  "Two",
		Username:  "staff2",
		Password:  "secret",
		Role:      "staff",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.PasswordHash == "secret" {
		t.Error("Expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret")); err != nil {
		t.Errorf("Stored hash does not verify: %v", err)
	}
	if user.Role != domain.RoleStaff {
		t.Errorf("Expected role staff, got %s", user.Role)
	}
}

func TestCreateUser_InvalidRole(t *testing.T) {
	userService := NewUserService(testutil.NewMockUserRepository(), bcrypt.MinCost)

	_, err := userService.CreateUser(superadminIdentity(), CreateUserInput{
		FirstName: "X",
		Username:  "x1",
		Password:  "secret",
		Role:      "root",
	})
	if !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("Expected ErrInvalidRole, got %v", err)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	userService := NewUserService(userRepo, bcrypt.MinCost)

	input := CreateUserInput{FirstName: "A", Username: "dup", Password: "secret", Role: "user"}
	if _, err := userService.CreateUser(superadminIdentity(), input); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	_, err := userService.CreateUser(superadminIdentity(), input)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("Expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreateUser_NonSuperadminForbidden(t *testing.T) {
	userService := NewUserService(testutil.NewMockUserRepository(), bcrypt.MinCost)

	_, err := userService.CreateUser(staffIdentity(1), CreateUserInput{
		FirstName: "A", Username: "a1", Password: "secret", Role: "user",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}
}

func TestDeleteUser_SelfDeletionRejected(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	userService := NewUserService(userRepo, bcrypt.MinCost)

	admin, err := userService.CreateUser(superadminIdentity(), CreateUserInput{
		FirstName: "Admin", Username: "admin2", Password: "secret", Role: "superadmin",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	self := &domain.Identity{
		SubjectID: &admin.ID,
		Username:  admin.Username,
		Roles:     domain.NewRoleSet(domain.RoleSuperadmin),
	}
	err = userService.DeleteUser(self, admin.ID)
	if !errors.Is(err, domain.ErrSelfDeletion) {
		t.Fatalf("Expected ErrSelfDeletion, got %v", err)
	}
}

func TestDeleteUser_Success(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	userService := NewUserService(userRepo, bcrypt.MinCost)

	user, err := userService.CreateUser(superadminIdentity(), CreateUserInput{
		FirstName: "Staff", Username: "staff3", Password: "secret", Role: "staff",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := userService.DeleteUser(superadminIdentity(), user.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := userRepo.GetByUsername("staff3"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Error("Expected the user to be gone")
	}
}
