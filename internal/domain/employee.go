package domain

import "context"

// EmployeeProfile is the directory's view of an employee, mapped to the
// columns the allocation table denormalizes.
type EmployeeProfile struct {
	IDCode         string `json:"idCode"`
	EmployeeCode   string `json:"employeeCode"`
	FirstName      string `json:"fname"`
	LastName       string `json:"lname"`
	PositionNumber string `json:"positionNumber"`
	Department     string `json:"department"`
	EmploymentType string `json:"employmentType"`
}

// DirectoryAccount is the directory's response to a successful login.
type DirectoryAccount struct {
	EmployeeCode string
	Username     string
	FirstName    string
	LastName     string
}

// DirectoryClient is the external employee directory at its interface
// boundary. Calls are bounded by the client's configured timeout; a
// transport failure or timeout surfaces as ErrDirectoryUnavailable and is
// never retried automatically.
type DirectoryClient interface {
	// Login authenticates against the directory. A response with a
	// negative status maps to ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*DirectoryAccount, error)
	// GetEmployee looks up a profile by employee code; a negative status
	// maps to ErrEmployeeNotFound.
	GetEmployee(ctx context.Context, code string) (*EmployeeProfile, error)
}
