package domain

import "time"

// Assignment grants a staff identity read visibility over one welfare
// category. Rows are keyed by the staff member's login username, not by
// resolved employee code.
type Assignment struct {
	ID           int32     `json:"id"`
	StaffKey     string    `json:"userId"`
	CategoryID   int32     `json:"typeId"`
	CategoryName string    `json:"typeName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AssignmentRepository defines persistence for staff-category assignments.
type AssignmentRepository interface {
	// ListCategoryIDs returns the category IDs assigned to a staff key.
	ListCategoryIDs(staffKey string) ([]int32, error)
	List() ([]*Assignment, error)
	// Create fails with ErrAlreadyAssigned on a duplicate key pair.
	Create(staffKey string, categoryID int32) (*Assignment, error)
	// Delete fails with ErrAssignmentNotFound when no such row exists.
	Delete(staffKey string, categoryID int32) error
}
