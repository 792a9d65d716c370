package domain

import "time"

// Category is a welfare category (medical, dental, fitness, ...).
type Category struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryRepository defines persistence for welfare categories. Delete
// returns ErrCategoryInUse when allocation or transaction rows still
// reference the category; referential integrity is enforced by storage.
type CategoryRepository interface {
	List() ([]*Category, error)
	Create(name string) (*Category, error)
	Delete(id int32) error
}
