package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/medwelfare/welfare-backend/internal/domain"
	"github.com/medwelfare/welfare-backend/internal/websocket"
)

// MockLedger is an in-memory implementation of both
// domain.AllocationRepository and domain.TransactionRepository. The two
// share state because a claim commit reads allocations and appends
// transactions under one lock, mirroring the row lock the real store takes.
type MockLedger struct {
	mu            sync.Mutex
	Allocations   map[string]*domain.Allocation
	Transactions  []*domain.Transaction
	CategoryNames map[int32]string
	nextAllocID   int32
	nextTxID      int64
}

// NewMockLedger creates a new MockLedger
func NewMockLedger() *MockLedger {
	return &MockLedger{
		Allocations:   make(map[string]*domain.Allocation),
		CategoryNames: make(map[int32]string),
	}
}

func ledgerKey(employeeCode string, categoryID int32) string {
	return fmt.Sprintf("%s:%d", employeeCode, categoryID)
}

// Upsert inserts or replaces the allocation for its key
func (m *MockLedger) Upsert(allocation *domain.Allocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ledgerKey(allocation.EmployeeCode, allocation.CategoryID)
	if existing, ok := m.Allocations[key]; ok {
		allocation.ID = existing.ID
		allocation.CreatedAt = existing.CreatedAt
	} else {
		m.nextAllocID++
		allocation.ID = m.nextAllocID
		allocation.CreatedAt = time.Now()
	}
	copied := *allocation
	m.Allocations[key] = &copied
	return nil
}

// TopUp adds delta to an existing allocation
func (m *MockLedger) TopUp(employeeCode string, categoryID int32, delta decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	allocation, ok := m.Allocations[ledgerKey(employeeCode, categoryID)]
	if !ok {
		return decimal.Zero, domain.ErrNoAllocation
	}
	allocation.Allocated = allocation.Allocated.Add(delta)
	return allocation.Allocated, nil
}

// usedLocked sums transaction amounts for a key. Caller holds the lock.
func (m *MockLedger) usedLocked(employeeCode string, categoryID int32) decimal.Decimal {
	used := decimal.Zero
	for _, t := range m.Transactions {
		if t.EmployeeCode == employeeCode && t.CategoryID == categoryID {
			used = used.Add(t.Amount)
		}
	}
	return used
}

func (m *MockLedger) balanceLocked(allocation *domain.Allocation) *domain.Balance {
	used := m.usedLocked(allocation.EmployeeCode, allocation.CategoryID)
	return &domain.Balance{
		CategoryID:   allocation.CategoryID,
		CategoryName: m.CategoryNames[allocation.CategoryID],
		Allocated:    allocation.Allocated,
		Used:         used,
		Remaining:    allocation.Allocated.Sub(used),
	}
}

// Remaining computes the balance for one key
func (m *MockLedger) Remaining(employeeCode string, categoryID int32) (*domain.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	allocation, ok := m.Allocations[ledgerKey(employeeCode, categoryID)]
	if !ok {
		return nil, domain.ErrNoAllocation
	}
	return m.balanceLocked(allocation), nil
}

// BalancesForEmployee computes balances for every category the employee
// holds an allocation in
func (m *MockLedger) BalancesForEmployee(employeeCode string) ([]*domain.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var balances []*domain.Balance
	for _, allocation := range m.Allocations {
		if allocation.EmployeeCode == employeeCode {
			balances = append(balances, m.balanceLocked(allocation))
		}
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].CategoryID < balances[j].CategoryID })
	return balances, nil
}

// ListBudgets returns the scope-filtered budget report
func (m *MockLedger) ListBudgets(filters domain.BudgetFilters, scope domain.Scope) ([]*domain.BudgetRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rows []*domain.BudgetRow
	for _, a := range m.Allocations {
		if !scope.Covers(a.CategoryID) {
			continue
		}
		if filters.CategoryID != nil && a.CategoryID != *filters.CategoryID {
			continue
		}
		if filters.EmploymentType != nil && a.EmploymentType != *filters.EmploymentType {
			continue
		}
		balance := m.balanceLocked(a)
		rows = append(rows, &domain.BudgetRow{
			IDCode:         a.IDCode,
			EmployeeCode:   a.EmployeeCode,
			EmployeeName:   strings.TrimSpace(a.FirstName + " " + a.LastName),
			EmploymentType: a.EmploymentType,
			CategoryID:     a.CategoryID,
			CategoryName:   balance.CategoryName,
			Allocated:      balance.Allocated,
			Used:           balance.Used,
			Remaining:      balance.Remaining,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].EmployeeCode != rows[j].EmployeeCode {
			return rows[i].EmployeeCode < rows[j].EmployeeCode
		}
		return rows[i].CategoryID < rows[j].CategoryID
	})
	return rows, nil
}

// ListEmployees returns the distinct employees holding allocations
func (m *MockLedger) ListEmployees() ([]*domain.EmployeeRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool)
	var refs []*domain.EmployeeRef
	for _, a := range m.Allocations {
		if seen[a.EmployeeCode] {
			continue
		}
		seen[a.EmployeeCode] = true
		refs = append(refs, &domain.EmployeeRef{
			IDCode:       a.IDCode,
			EmployeeCode: a.EmployeeCode,
			Name:         strings.TrimSpace(a.FirstName + " " + a.LastName),
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].EmployeeCode < refs[j].EmployeeCode })
	return refs, nil
}

// CommitClaim checks the remaining balance and appends the debit while
// holding the ledger lock, so concurrent claims serialize exactly as they
// do against the real store
func (m *MockLedger) CommitClaim(transaction *domain.Transaction) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	allocation, ok := m.Allocations[ledgerKey(transaction.EmployeeCode, transaction.CategoryID)]
	if !ok {
		return decimal.Zero, domain.ErrNoAllocation
	}

	remaining := allocation.Allocated.Sub(m.usedLocked(transaction.EmployeeCode, transaction.CategoryID))
	if transaction.Amount.GreaterThan(remaining) {
		return decimal.Zero, &domain.ExceedsLimitError{Remaining: remaining}
	}

	m.nextTxID++
	transaction.ID = m.nextTxID
	transaction.OccurredAt = time.Now()
	transaction.CreatedAt = transaction.OccurredAt
	copied := *transaction
	m.Transactions = append(m.Transactions, &copied)
	return remaining, nil
}

// HistoryForEmployee returns the employee's transactions, newest first
func (m *MockLedger) HistoryForEmployee(employeeCode string) ([]*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var history []*domain.Transaction
	for i := len(m.Transactions) - 1; i >= 0; i-- {
		if m.Transactions[i].EmployeeCode == employeeCode {
			copied := *m.Transactions[i]
			copied.CategoryName = m.CategoryNames[copied.CategoryID]
			history = append(history, &copied)
		}
	}
	return history, nil
}

// Search returns scope-filtered transactions matching the filters
func (m *MockLedger) Search(filters domain.SearchFilters, scope domain.Scope) ([]*domain.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var results []*domain.SearchResult
	for i := len(m.Transactions) - 1; i >= 0; i-- {
		t := m.Transactions[i]
		if !scope.Covers(t.CategoryID) {
			continue
		}
		if filters.EmployeeCode != "" && t.EmployeeCode != filters.EmployeeCode {
			continue
		}
		fullName := ""
		if a, ok := m.Allocations[ledgerKey(t.EmployeeCode, t.CategoryID)]; ok {
			fullName = strings.TrimSpace(a.FirstName + " " + a.LastName)
		}
		if filters.Name != "" && !strings.Contains(strings.ToLower(fullName), strings.ToLower(filters.Name)) {
			continue
		}
		if filters.DateFrom != nil && t.OccurredAt.Before(*filters.DateFrom) {
			continue
		}
		if filters.DateTo != nil && t.OccurredAt.After(filters.DateTo.Add(24*time.Hour)) {
			continue
		}
		results = append(results, &domain.SearchResult{
			ID:           t.ID,
			EmployeeCode: t.EmployeeCode,
			CategoryID:   t.CategoryID,
			CategoryName: m.CategoryNames[t.CategoryID],
			Amount:       t.Amount,
			Date:         t.OccurredAt,
			Description:  t.Description,
			FullName:     fullName,
		})
	}
	return results, nil
}

// AnnualSummary sums transaction amounts per category for the calendar year
func (m *MockLedger) AnnualSummary(year int) ([]*domain.CategoryTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var summary []*domain.CategoryTotal
	for id, name := range m.CategoryNames {
		total := decimal.Zero
		for _, t := range m.Transactions {
			if t.CategoryID == id && t.OccurredAt.Year() == year {
				total = total.Add(t.Amount)
			}
		}
		summary = append(summary, &domain.CategoryTotal{
			CategoryID:   id,
			CategoryName: name,
			Total:        total,
		})
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].CategoryName < summary[j].CategoryName })
	return summary, nil
}

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users  map[string]*domain.User
	nextID int32
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[string]*domain.User)}
}

// GetByUsername retrieves a user by username
func (m *MockUserRepository) GetByUsername(username string) (*domain.User, error) {
	if user, ok := m.Users[username]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// List returns all users
func (m *MockUserRepository) List() ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(m.Users))
	for _, u := range m.Users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Create creates a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	if _, ok := m.Users[user.Username]; ok {
		return nil, domain.ErrAlreadyExists
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.Users[user.Username] = user
	return user, nil
}

// Delete removes a user by ID
func (m *MockUserRepository) Delete(id int32) error {
	for username, u := range m.Users {
		if u.ID == id {
			delete(m.Users, username)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories []*domain.Category
	// InUse marks categories whose delete fails with ErrCategoryInUse
	InUse  map[int32]bool
	nextID int32
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{InUse: make(map[int32]bool)}
}

// List returns all categories
func (m *MockCategoryRepository) List() ([]*domain.Category, error) {
	return m.Categories, nil
}

// Create creates a new category
func (m *MockCategoryRepository) Create(name string) (*domain.Category, error) {
	for _, c := range m.Categories {
		if c.Name == name {
			return nil, domain.ErrAlreadyExists
		}
	}
	m.nextID++
	category := &domain.Category{ID: m.nextID, Name: name, CreatedAt: time.Now()}
	m.Categories = append(m.Categories, category)
	return category, nil
}

// Delete removes a category by ID
func (m *MockCategoryRepository) Delete(id int32) error {
	if m.InUse[id] {
		return domain.ErrCategoryInUse
	}
	for i, c := range m.Categories {
		if c.ID == id {
			m.Categories = append(m.Categories[:i], m.Categories[i+1:]...)
			return nil
		}
	}
	return domain.ErrCategoryNotFound
}

// MockAssignmentRepository is a mock implementation of domain.AssignmentRepository
type MockAssignmentRepository struct {
	Assignments []*domain.Assignment
	nextID      int32
}

// NewMockAssignmentRepository creates a new MockAssignmentRepository
func NewMockAssignmentRepository() *MockAssignmentRepository {
	return &MockAssignmentRepository{}
}

// ListCategoryIDs returns the category IDs assigned to a staff key
func (m *MockAssignmentRepository) ListCategoryIDs(staffKey string) ([]int32, error) {
	var ids []int32
	for _, a := range m.Assignments {
		if a.StaffKey == staffKey {
			ids = append(ids, a.CategoryID)
		}
	}
	return ids, nil
}

// List returns all assignments
func (m *MockAssignmentRepository) List() ([]*domain.Assignment, error) {
	return m.Assignments, nil
}

// Create creates a new assignment
func (m *MockAssignmentRepository) Create(staffKey string, categoryID int32) (*domain.Assignment, error) {
	for _, a := range m.Assignments {
		if a.StaffKey == staffKey && a.CategoryID == categoryID {
			return nil, domain.ErrAlreadyAssigned
		}
	}
	m.nextID++
	assignment := &domain.Assignment{
		ID:         m.nextID,
		StaffKey:   staffKey,
		CategoryID: categoryID,
		CreatedAt:  time.Now(),
	}
	m.Assignments = append(m.Assignments, assignment)
	return assignment, nil
}

// Delete removes an assignment
func (m *MockAssignmentRepository) Delete(staffKey string, categoryID int32) error {
	for i, a := range m.Assignments {
		if a.StaffKey == staffKey && a.CategoryID == categoryID {
			m.Assignments = append(m.Assignments[:i], m.Assignments[i+1:]...)
			return nil
		}
	}
	return domain.ErrAssignmentNotFound
}

// MockDirectoryClient is a mock implementation of domain.DirectoryClient
type MockDirectoryClient struct {
	// Passwords maps username to the accepted password
	Passwords map[string]string
	Accounts  map[string]*domain.DirectoryAccount
	Profiles  map[string]*domain.EmployeeProfile
	// Unavailable simulates a transport failure or timeout
	Unavailable bool
}

// NewMockDirectoryClient creates a new MockDirectoryClient
func NewMockDirectoryClient() *MockDirectoryClient {
	return &MockDirectoryClient{
		Passwords: make(map[string]string),
		Accounts:  make(map[string]*domain.DirectoryAccount),
		Profiles:  make(map[string]*domain.EmployeeProfile),
	}
}

// Login authenticates against the mock directory
func (m *MockDirectoryClient) Login(ctx context.Context, username, password string) (*domain.DirectoryAccount, error) {
	if m.Unavailable {
		return nil, domain.ErrDirectoryUnavailable
	}
	if expected, ok := m.Passwords[username]; !ok || expected != password {
		return nil, domain.ErrInvalidCredentials
	}
	return m.Accounts[username], nil
}

// GetEmployee looks up a profile by employee code
func (m *MockDirectoryClient) GetEmployee(ctx context.Context, code string) (*domain.EmployeeProfile, error) {
	if m.Unavailable {
		return nil, domain.ErrDirectoryUnavailable
	}
	if profile, ok := m.Profiles[code]; ok {
		return profile, nil
	}
	return nil, domain.ErrEmployeeNotFound
}

// MockEventPublisher records published events for assertions
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// PublishedEvent is one recorded Publish call
type PublishedEvent struct {
	CategoryID int32
	EventType  string
}

// Publish records the event
func (m *MockEventPublisher) Publish(categoryID int32, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{CategoryID: categoryID, EventType: event.Type})
}

// Published returns a copy of the recorded events
func (m *MockEventPublisher) Published() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishedEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
