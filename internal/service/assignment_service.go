package service

import (
	"errors"
	"strings"

	"github.com/medwelfare/welfare-backend/internal/domain"
)

// AssignmentService manages staff-category assignments. Assignments are
// keyed by the staff member's login username so they apply to both local
// and directory-resolved identities.
type AssignmentService struct {
	assignmentRepo domain.AssignmentRepository
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(assignmentRepo domain.AssignmentRepository) *AssignmentService {
	return &AssignmentService{assignmentRepo: assignmentRepo}
}

// ListAssignments returns every staff-category assignment. Superadmin only.
func (s *AssignmentService) ListAssignments(identity *domain.Identity) ([]*domain.Assignment, error) {
	if identity == nil || !identity.Roles.Has(domain.RoleSuperadmin) {
		return nil, domain.ErrForbidden
	}
	return s.assignmentRepo.List()
}

// OwnAssignments returns the caller's assigned category IDs. Callers
// without the staff or superadmin role get an empty list, as do staff
// without assignments; neither is an error.
func (s *AssignmentService) OwnAssignments(identity *domain.Identity) ([]int32, error) {
	if identity == nil {
		return nil, domain.ErrUnauthorized
	}
	if !identity.Roles.HasAny(domain.RoleStaff, domain.RoleSuperadmin) {
		return []int32{}, nil
	}
	ids, err := s.assignmentRepo.ListCategoryIDs(identity.Username)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int32{}
	}
	return ids, nil
}

// AssignStaff grants a staff key read visibility over a category.
// Duplicate pairs are refused. Superadmin only.
func (s *AssignmentService) AssignStaff(identity *domain.Identity, staffKey string, categoryID int32) (*domain.Assignment, error) {
	if identity == nil || !identity.Roles.Has(domain.RoleSuperadmin) {
		return nil, domain.ErrForbidden
	}

	staffKey = strings.TrimSpace(staffKey)
	if staffKey == "" {
		return nil, domain.ErrUsernameRequired
	}
	if categoryID <= 0 {
		return nil, domain.ErrCategoryRequired
	}

	return s.assignmentRepo.Create(staffKey, categoryID)
}

// UnassignStaff revokes a staff key's scope over a category. Superadmin only.
func (s *AssignmentService) UnassignStaff(identity *domain.Identity, staffKey string, categoryID int32) error {
	if identity == nil || !identity.Roles.Has(domain.RoleSuperadmin) {
		return domain.ErrForbidden
	}

	staffKey = strings.TrimSpace(staffKey)
	if staffKey == "" {
		return domain.ErrUsernameRequired
	}
	if categoryID <= 0 {
		return domain.ErrCategoryRequired
	}

	if err := s.assignmentRepo.Delete(staffKey, categoryID); err != nil {
		if errors.Is(err, domain.ErrAssignmentNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}
