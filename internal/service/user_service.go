package service

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/medwelfare/welfare-backend/internal/domain"
)

// UserService manages local credential accounts. All operations require
// the superadmin role.
type UserService struct {
	userRepo   domain.UserRepository
	bcryptCost int
}

// NewUserService creates a new UserService
func NewUserService(userRepo domain.UserRepository, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
	}
}

// ListUsers returns all local accounts
func (s *UserService) ListUsers(identity *domain.Identity) ([]*domain.User, error) {
	if identity == nil || !identity.Roles.Has(domain.RoleSuperadmin) {
		return nil, domain.ErrForbidden
	}
	return s.userRepo.List()
}

// CreateUserInput holds the input for creating a local account
type CreateUserInput struct {
	FirstName string
	LastName  string
	Username  string
	Password  string
	Role      string
}

// CreateUser creates a local account with a bcrypt-hashed password.
func (s *UserService) CreateUser(identity *domain.Identity, input CreateUserInput) (*domain.User, error) {
	if identity == nil || !identity.Roles.Has(domain.RoleSuperadmin) {
		return nil, domain.ErrForbidden
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, domain.ErrUsernameRequired
	}
	if input.Password == "" {
		return nil, domain.ErrPasswordRequired
	}
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" && lastName == "" {
		return nil, domain.ErrNameRequired
	}

	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	return s.userRepo.Create(&domain.User{
		FirstName:    firstName,
		LastName:     lastName,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	})
}

// DeleteUser removes a local account. An account cannot delete itself.
func (s *UserService) DeleteUser(identity *domain.Identity, id int32) error {
	if identity == nil || !identity.Roles.Has(domain.RoleSuperadmin) {
		return domain.ErrForbidden
	}
	if id <= 0 {
		return domain.ErrInvalidInput
	}
	if identity.SubjectID != nil && *identity.SubjectID == id {
		return domain.ErrSelfDeletion
	}
	return s.userRepo.Delete(id)
}
