package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Allocation is the budgeted amount granted to an employee for a welfare
// category, one row per (employee, category) key, with the employee's
// profile fields denormalized at allocation time.
type Allocation struct {
	ID             int32           `json:"id"`
	IDCode         string          `json:"idCode"`
	EmployeeCode   string          `json:"employeeCode"`
	CategoryID     int32           `json:"categoryId"`
	Allocated      decimal.Decimal `json:"allocated"`
	FirstName      string          `json:"fname"`
	LastName       string          `json:"lname"`
	PositionNumber string          `json:"positionNumber"`
	Department     string          `json:"department"`
	EmploymentType string          `json:"employmentType"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Balance is the derived aggregate for one (employee, category) key:
// Remaining = Allocated - Used where Used is the sum of the category's
// transactions for the employee.
type Balance struct {
	CategoryID   int32           `json:"typeId"`
	CategoryName string          `json:"typeName"`
	Allocated    decimal.Decimal `json:"limit"`
	Used         decimal.Decimal `json:"used"`
	Remaining    decimal.Decimal `json:"remaining"`
}

// BudgetRow is one line of the cross-employee budget report.
type BudgetRow struct {
	IDCode         string          `json:"idCode"`
	EmployeeCode   string          `json:"employeeCode"`
	EmployeeName   string          `json:"employeeName"`
	EmploymentType string          `json:"employmentType"`
	CategoryID     int32           `json:"typeId"`
	CategoryName   string          `json:"typeName"`
	Allocated      decimal.Decimal `json:"limit"`
	Used           decimal.Decimal `json:"used"`
	Remaining      decimal.Decimal `json:"remaining"`
}

// BudgetFilters narrows the budget report.
type BudgetFilters struct {
	CategoryID     *int32
	EmploymentType *string
}

// EmployeeRef is a distinct employee appearing in the allocation table.
type EmployeeRef struct {
	IDCode       string `json:"idCode"`
	EmployeeCode string `json:"code"`
	Name         string `json:"name"`
}

// BulkTopUpResult reports a batch additive update. Codes without an
// allocation row for the category land in NotFound; the batch never fails
// as a whole for partial misses.
type BulkTopUpResult struct {
	UpdatedCount int      `json:"updated"`
	NotFound     []string `json:"notFound"`
}

// AllocationRepository defines persistence for allocations and the
// balance aggregates derived from them.
type AllocationRepository interface {
	// Upsert inserts the allocation or, when the (employeeCode, categoryID)
	// key exists, replaces the amount and profile fields. Never duplicates
	// a key.
	Upsert(allocation *Allocation) error
	// TopUp adds delta to the allocated amount and returns the new amount.
	// Returns ErrNoAllocation when no row matches the key.
	TopUp(employeeCode string, categoryID int32, delta decimal.Decimal) (decimal.Decimal, error)
	// Remaining computes the balance for one key, or ErrNoAllocation.
	Remaining(employeeCode string, categoryID int32) (*Balance, error)
	// BalancesForEmployee computes balances for every category the
	// employee holds an allocation in.
	BalancesForEmployee(employeeCode string) ([]*Balance, error)
	// ListBudgets returns the scope-filtered budget report.
	ListBudgets(filters BudgetFilters, scope Scope) ([]*BudgetRow, error)
	ListEmployees() ([]*EmployeeRef, error)
}
