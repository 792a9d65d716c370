package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable debit entry against an allocation. Rows are
// appended by the claim engine and never updated or deleted; corrections
// would need a compensating entry.
type Transaction struct {
	ID           int64           `json:"id"`
	IDCode       string          `json:"idCode"`
	EmployeeCode string          `json:"employeeCode"`
	CategoryID   int32           `json:"typeId"`
	CategoryName string          `json:"typeName,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	ClaimedFor   string          `json:"claimedFor"`
	Description  string          `json:"description"`
	OccurredAt   time.Time       `json:"date"`
	CreatedBy    string          `json:"createdBy"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// SearchFilters narrows a transaction search. Zero-valued fields are
// ignored; DateFrom/DateTo are inclusive.
type SearchFilters struct {
	EmployeeCode string
	Name         string
	DateFrom     *time.Time
	DateTo       *time.Time
}

// SearchResult is one transaction row joined with the claimant's name.
type SearchResult struct {
	ID           int64           `json:"id"`
	EmployeeCode string          `json:"employeeCode"`
	CategoryID   int32           `json:"typeId"`
	CategoryName string          `json:"typeName"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description"`
	FullName     string          `json:"fullName"`
}

// CategoryTotal is one line of the annual per-category usage summary.
type CategoryTotal struct {
	CategoryID   int32           `json:"typeId"`
	CategoryName string          `json:"typeName"`
	Total        decimal.Decimal `json:"total"`
}

// TransactionRepository defines persistence for the debit ledger.
type TransactionRepository interface {
	// CommitClaim atomically checks the remaining balance for the
	// transaction's (employeeCode, categoryID) key and appends the row.
	// The allocation row is locked for the duration of the check so two
	// concurrent claims cannot both pass against a stale total. Returns
	// the remaining balance observed under the lock, before the debit.
	// Fails with ErrNoAllocation or *ExceedsLimitError.
	CommitClaim(transaction *Transaction) (decimal.Decimal, error)
	// HistoryForEmployee returns the employee's transactions, newest first.
	HistoryForEmployee(employeeCode string) ([]*Transaction, error)
	// Search returns scope-filtered transactions matching the filters.
	Search(filters SearchFilters, scope Scope) ([]*SearchResult, error)
	// AnnualSummary sums transaction amounts per category for the calendar
	// year, zero-filled for categories with no transactions.
	AnnualSummary(year int) ([]*CategoryTotal, error)
}
