package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/medwelfare/welfare-backend/internal/domain"
)

// AuthService resolves login credentials into an Identity. Local credential
// accounts are checked first; a missing account or a local password
// mismatch falls back to the external employee directory.
type AuthService struct {
	userRepo       domain.UserRepository
	assignmentRepo domain.AssignmentRepository
	directory      domain.DirectoryClient
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, assignmentRepo domain.AssignmentRepository, directory domain.DirectoryClient) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
		directory:      directory,
	}
}

// Login authenticates a username and password and returns the resolved
// identity. Local credential accounts are tried first; a missing account
// or a failed local password falls through to the external directory.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrUsernameRequired
	}
	if password == "" {
		return nil, domain.ErrPasswordRequired
	}

	user, err := s.userRepo.GetByUsername(username)
	switch {
	case err == nil:
		identity, err := s.resolveLocal(user, password)
		if errors.Is(err, domain.ErrInvalidCredentials) {
			// A staff member may hold both a local account and a
			// directory account under the same username
			return s.resolveDirectory(ctx, username, password)
		}
		return identity, err
	case errors.Is(err, domain.ErrUserNotFound):
		return s.resolveDirectory(ctx, username, password)
	default:
		return nil, err
	}
}

// resolveLocal authenticates against a local credential account.
func (s *AuthService) resolveLocal(user *domain.User, password string) (*domain.Identity, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	assignments, err := s.assignmentRepo.ListCategoryIDs(user.Username)
	if err != nil {
		return nil, err
	}

	id := user.ID
	return &domain.Identity{
		SubjectID:        &id,
		Username:         user.Username,
		DisplayName:      strings.TrimSpace(user.FirstName + " " + user.LastName),
		Roles:            domain.NewRoleSet(user.Role),
		StaffAssignments: assignments,
	}, nil
}

// resolveDirectory authenticates against the external employee directory.
// Directory identities always carry the plain user role; category
// assignments never grant a role on their own.
func (s *AuthService) resolveDirectory(ctx context.Context, username, password string) (*domain.Identity, error) {
	account, err := s.directory.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrDirectoryUnavailable) {
			log.Warn().Str("username", username).Msg("Directory login unavailable")
		}
		return nil, err
	}

	assignments, err := s.assignmentRepo.ListCategoryIDs(username)
	if err != nil {
		return nil, err
	}

	return &domain.Identity{
		Username:         account.Username,
		EmployeeCode:     account.EmployeeCode,
		DisplayName:      strings.TrimSpace(account.FirstName + " " + account.LastName),
		Roles:            domain.NewRoleSet(domain.RoleUser),
		StaffAssignments: assignments,
	}, nil
}
