package service

import (
	"strings"

	"github.com/medwelfare/welfare-backend/internal/domain"
)

// BalanceService serves derived balance reads. Balances are never stored;
// each read recomputes allocated minus the sum of committed transactions.
type BalanceService struct {
	allocationRepo  domain.AllocationRepository
	transactionRepo domain.TransactionRepository
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(allocationRepo domain.AllocationRepository, transactionRepo domain.TransactionRepository) *BalanceService {
	return &BalanceService{
		allocationRepo:  allocationRepo,
		transactionRepo: transactionRepo,
	}
}

// BalancesForEmployee returns the employee's per-category balances. Plain
// users may read their own balances only.
func (s *BalanceService) BalancesForEmployee(identity *domain.Identity, employeeCode string) ([]*domain.Balance, error) {
	employeeCode = strings.TrimSpace(employeeCode)
	if employeeCode == "" {
		return nil, domain.ErrEmployeeCodeRequired
	}
	if err := authorizeEmployeeRead(identity, employeeCode); err != nil {
		return nil, err
	}
	return s.allocationRepo.BalancesForEmployee(employeeCode)
}

// Remaining returns the balance for one (employee, category) key.
func (s *BalanceService) Remaining(identity *domain.Identity, employeeCode string, categoryID int32) (*domain.Balance, error) {
	employeeCode = strings.TrimSpace(employeeCode)
	if employeeCode == "" {
		return nil, domain.ErrEmployeeCodeRequired
	}
	if categoryID <= 0 {
		return nil, domain.ErrCategoryRequired
	}
	if err := authorizeEmployeeRead(identity, employeeCode); err != nil {
		return nil, err
	}
	return s.allocationRepo.Remaining(employeeCode, categoryID)
}

// AnnualSummary returns per-category usage totals for a calendar year,
// zero-filled for categories without transactions. The totals span every
// category, so only superadmins may read them.
func (s *BalanceService) AnnualSummary(identity *domain.Identity, year int) ([]*domain.CategoryTotal, error) {
	if identity == nil || !identity.Roles.Has(domain.RoleSuperadmin) {
		return nil, domain.ErrForbidden
	}
	if year <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return s.transactionRepo.AnnualSummary(year)
}
