package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/medwelfare/welfare-backend/internal/domain"
	"github.com/medwelfare/welfare-backend/internal/websocket"
)

// ClaimService is the authorization engine for welfare claims. A claim is
// checked and committed atomically against the remaining balance of its
// (employee, category) key.
type ClaimService struct {
	transactionRepo domain.TransactionRepository
	eventPublisher  websocket.EventPublisher
}

// NewClaimService creates a new ClaimService
func NewClaimService(transactionRepo domain.TransactionRepository) *ClaimService {
	return &ClaimService{transactionRepo: transactionRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ClaimService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *ClaimService) publishEvent(categoryID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(categoryID, event)
	}
}

// ClaimInput holds the input for submitting a claim
type ClaimInput struct {
	IDCode       string
	EmployeeCode string
	CategoryID   int32
	Amount       decimal.Decimal
	ClaimedFor   string
	Description  string
}

// ClaimResult is the committed transaction plus the balance left after it.
type ClaimResult struct {
	Transaction  *domain.Transaction `json:"transaction"`
	NewRemaining decimal.Decimal     `json:"newRemaining"`
}

// SubmitClaim validates and commits a claim on behalf of an employee.
// Any staff member or superadmin may submit a claim in any category; the
// assignment scope filters reads, not commits. On success the reported
// NewRemaining reflects this claim's debit against the balance observed
// under the commit lock, so a concurrent reader can never have seen a
// higher spend.
func (s *ClaimService) SubmitClaim(identity *domain.Identity, input ClaimInput) (*ClaimResult, error) {
	if identity == nil || !identity.Roles.HasAny(domain.RoleStaff, domain.RoleSuperadmin) {
		return nil, domain.ErrForbidden
	}

	idCode := strings.TrimSpace(input.IDCode)
	if idCode == "" {
		return nil, domain.ErrInvalidInput
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
	claimedFor := strings.TrimSpace(input.ClaimedFor)
	if claimedFor == "" {
		return nil, domain.ErrClaimedForRequired
	}

	transaction := &domain.Transaction{
		IDCode:       idCode,
		EmployeeCode: employeeCode,
		CategoryID:   input.CategoryID,
		Amount:       input.Amount,
		ClaimedFor:   claimedFor,
		Description:  strings.TrimSpace(input.Description),
		CreatedBy:    identity.Username,
	}

	remaining, err := s.transactionRepo.CommitClaim(transaction)
	if err != nil {
		return nil, err
	}

	result := &ClaimResult{
		Transaction:  transaction,
		NewRemaining: remaining.Sub(transaction.Amount),
	}

	s.publishEvent(input.CategoryID, websocket.ClaimCreated(result))

	return result, nil
}

// HistoryForEmployee returns an employee's claim transactions, newest first.
// Plain users may read their own history only; staff and superadmins may
// read anyone's.
func (s *ClaimService) HistoryForEmployee(identity *domain.Identity, employeeCode string) ([]*domain.Transaction, error) {
	employeeCode = strings.TrimSpace(employeeCode)
	if employeeCode == "" {
		return nil, domain.ErrEmployeeCodeRequired
	}
	if err := authorizeEmployeeRead(identity, employeeCode); err != nil {
		return nil, err
	}
	return s.transactionRepo.HistoryForEmployee(employeeCode)
}

// Search returns transactions matching the filters, limited to the
// caller's visibility scope. A staff member with no assignments gets an
// empty result set without touching storage.
func (s *ClaimService) Search(identity *domain.Identity, filters domain.SearchFilters) ([]*domain.SearchResult, error) {
	if identity == nil || !identity.Roles.HasAny(domain.RoleStaff, domain.RoleSuperadmin) {
		return nil, domain.ErrForbidden
	}
	scope := domain.ScopeFor(identity)
	if scope.Empty() {
		return []*domain.SearchResult{}, nil
	}
	return s.transactionRepo.Search(filters, scope)
}

// authorizeEmployeeRead permits staff and superadmins to read any
// employee's rows and plain users to read only their own.
func authorizeEmployeeRead(identity *domain.Identity, employeeCode string) error {
	if identity == nil {
		return domain.ErrForbidden
	}
	if identity.Roles.HasAny(domain.RoleStaff, domain.RoleSuperadmin) {
		return nil
	}
	if identity.EmployeeCode != "" && identity.EmployeeCode == employeeCode {
		return nil
	}
	return domain.ErrForbidden
}
