package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/medwelfare/welfare-backend/internal/domain"
	"github.com/medwelfare/welfare-backend/internal/websocket"
)

// BudgetService manages allocations: the budgeted amounts granted to
// employees per welfare category.
type BudgetService struct {
	allocationRepo domain.AllocationRepository
	directory      domain.DirectoryClient
	eventPublisher websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(allocationRepo domain.AllocationRepository, directory domain.DirectoryClient) *BudgetService {
	return &BudgetService{
		allocationRepo: allocationRepo,
		directory:      directory,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *BudgetService) publishEvent(categoryID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(categoryID, event)
	}
}

// UpsertAllocationInput holds the input for setting an employee's
// allocation. The profile fields are a caller-supplied snapshot stored on
// the allocation row.
type UpsertAllocationInput struct {
	EmployeeCode   string
	CategoryID     int32
	Amount         decimal.Decimal
	IDCode         string
	FirstName      string
	LastName       string
	PositionNumber string
	Department     string
	EmploymentType string
}

// UpsertAllocation sets the allocated amount for an (employee, category)
// key, creating the row or replacing the amount and profile snapshot.
// Repeating the same call leaves the same single row. When the caller
// supplies no profile fields the directory is consulted as a best-effort
// fallback; a directory miss never fails the upsert. Superadmin only.
func (s *BudgetService) UpsertAllocation(ctx context.Context, identity *domain.Identity, input UpsertAllocationInput) (*domain.Allocation, error) {
	if identity == nil || !identity.Roles.Has(domain.RoleSuperadmin) {
		return nil, domain.ErrForbidden
	}

	employeeCode := strings.TrimSpace(input.EmployeeCode)
	if employeeCode == "" {
		return nil, domain.ErrEmployeeCodeRequired
	}
	if input.CategoryID <= 0 {
		return nil, domain.ErrCategoryRequired
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	allocation := &domain.Allocation{
		IDCode:         strings.TrimSpace(input.IDCode),
		EmployeeCode:   employeeCode,
		CategoryID:     input.CategoryID,
		Allocated:      input.Amount,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		PositionNumber: strings.TrimSpace(input.PositionNumber),
		Department:     strings.TrimSpace(input.Department),
		EmploymentType: strings.TrimSpace(input.EmploymentType),
	}

	if allocation.IDCode == "" && allocation.FirstName == "" && allocation.LastName == "" {
		if profile, err := s.directory.GetEmployee(ctx, employeeCode); err == nil {
			allocation.IDCode = profile.IDCode
			allocation.FirstName = profile.FirstName
			allocation.LastName = profile.LastName
			allocation.PositionNumber = profile.PositionNumber
			allocation.Department = profile.Department
			allocation.EmploymentType = profile.EmploymentType
		} else {
			log.Debug().Err(err).Str("employee_code", employeeCode).Msg("Directory profile fallback failed")
		}
	}

	if err := s.allocationRepo.Upsert(allocation); err != nil {
		return nil, err
	}

	s.publishEvent(input.CategoryID, websocket.AllocationUpdated(allocation))

	return allocation, nil
}

// TopUp adds a positive delta to an existing allocation and returns the
// new allocated amount. Superadmin only.
func (s *BudgetService) TopUp(identity *domain.Identity, employeeCode string, categoryID int32, delta decimal.Decimal) (decimal.Decimal, error) {
	if identity == nil || !identity.Roles.Has(domain.RoleSuperadmin) {
		return decimal.Zero, domain.ErrForbidden
	}

	employeeCode = strings.TrimSpace(employeeCode)
	if employeeCode == "" {
		return decimal.Zero, domain.ErrEmployeeCodeRequired
	}
	if categoryID <= 0 {
		return decimal.Zero, domain.ErrCategoryRequired
	}
	if delta.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	newAmount, err := s.allocationRepo.TopUp(employeeCode, categoryID, delta)
	if err != nil {
		return decimal.Zero, err
	}

	s.publishEvent(categoryID, websocket.AllocationToppedUp(map[string]interface{}{
		"employeeCode": employeeCode,
		"typeId":       categoryID,
		"allocated":    newAmount,
	}))

	return newAmount, nil
}

// BulkTopUp applies the same additive delta to each listed employee for
// one category. Each update is its own atomic statement; codes without an
// allocation row are collected in the result rather than failing the
// batch. Superadmin only.
func (s *BudgetService) BulkTopUp(identity *domain.Identity, employeeCodes []string, categoryID int32, delta decimal.Decimal) (*domain.BulkTopUpResult, error) {
	if identity == nil || !identity.Roles.Has(domain.RoleSuperadmin) {
		return nil, domain.ErrForbidden
	}

	if len(employeeCodes) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if categoryID <= 0 {
		return nil, domain.ErrCategoryRequired
	}
	if delta.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	result := &domain.BulkTopUpResult{NotFound: []string{}}
	for _, code := range employeeCodes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		_, err := s.allocationRepo.TopUp(code, categoryID, delta)
		switch err {
		case nil:
			result.UpdatedCount++
		case domain.ErrNoAllocation:
			result.NotFound = append(result.NotFound, code)
		default:
			return nil, err
		}
	}

	if result.UpdatedCount > 0 {
		s.publishEvent(categoryID, websocket.AllocationToppedUp(result))
	}

	return result, nil
}

// ListBudgets returns the cross-employee budget report, limited to the
// caller's visibility scope. Staff and superadmins only; a staff member
// with no assignments gets an empty report.
func (s *BudgetService) ListBudgets(identity *domain.Identity, filters domain.BudgetFilters) ([]*domain.BudgetRow, error) {
	if identity == nil || !identity.Roles.HasAny(domain.RoleStaff, domain.RoleSuperadmin) {
		return nil, domain.ErrForbidden
	}
	scope := domain.ScopeFor(identity)
	if scope.Empty() {
		return []*domain.BudgetRow{}, nil
	}
	return s.allocationRepo.ListBudgets(filters, scope)
}

// ListEmployees returns the distinct employees holding allocations.
func (s *BudgetService) ListEmployees() ([]*domain.EmployeeRef, error) {
	return s.allocationRepo.ListEmployees()
}

// GetEmployeeProfile proxies a directory profile lookup by employee code.
// Staff and superadmins only.
func (s *BudgetService) GetEmployeeProfile(ctx context.Context, identity *domain.Identity, code string) (*domain.EmployeeProfile, error) {
	if identity == nil || !identity.Roles.HasAny(domain.RoleStaff, domain.RoleSuperadmin) {
		return nil, domain.ErrForbidden
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrEmployeeCodeRequired
	}
	return s.directory.GetEmployee(ctx, code)
}
