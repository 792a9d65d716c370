package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrNotFound             = errors.New("resource not found")
	ErrAlreadyExists        = errors.New("resource already exists")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInternalError        = errors.New("internal error")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrDirectoryUnavailable = errors.New("employee directory unavailable")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrCategoryNotFound     = errors.New("welfare category not found")
	ErrCategoryInUse        = errors.New("category is referenced by allocations or transactions")
	ErrNoAllocation         = errors.New("no allocation for employee and category")
	ErrAlreadyAssigned      = errors.New("staff already assigned to category")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidRole          = errors.New("invalid role")
	ErrSelfDeletion         = errors.New("cannot delete own account")
	ErrUsernameRequired     = errors.New("username is required")
	ErrPasswordRequired     = errors.New("password is required")
	ErrNameRequired         = errors.New("name is required")
	ErrEmployeeCodeRequired = errors.New("employee code is required")
	ErrCategoryRequired     = errors.New("category is required")
	ErrClaimedForRequired   = errors.New("claimed-for is required")
)

// ExceedsLimitError is returned when a claim would overdraw the remaining
// balance for its (employee, category) key. It carries the remaining amount
// observed under the commit lock so callers can branch on it without
// parsing error text.
type ExceedsLimitError struct {
	Remaining decimal.Decimal
}

func (e *ExceedsLimitError) Error() string {
	return fmt.Sprintf("claim exceeds remaining balance of %s", e.Remaining.String())
}
