package domain

import "time"

// User is a local credential account. Superadmins and staff always have
// one; general employees usually authenticate through the directory and
// have none.
type User struct {
	ID           int32     `json:"id"`
	FirstName    string    `json:"fname"`
	LastName     string    `json:"lname"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserRepository defines persistence for local credential accounts.
type UserRepository interface {
	GetByUsername(username string) (*User, error)
	List() ([]*User, error)
	Create(user *User) (*User, error)
	Delete(id int32) error
}
