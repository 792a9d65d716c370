package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/medwelfare/welfare-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

const applicationKeyHeader = "Application-Key"

// Client talks to the external employee directory. Every call is bounded
// by the configured timeout and never retried; a transport failure or
// timeout surfaces as domain.ErrDirectoryUnavailable.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a directory Client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Wire types follow the directory's response contract as-is.

type loginResponse struct {
	Status *bool         `json:"status"`
	User   directoryUser `json:"user"`
}

type directoryUser struct {
	MedCode   string `json:"MEDCODE"`
	Username  string `json:"username"`
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
}

type employeeResponse struct {
	Status *bool             `json:"status"`
	Data   directoryEmployee `json:"data"`
}

type directoryEmployee struct {
	IDCode         string `json:"ID_CODE"`
	MedCode        string `json:"MEDCODE"`
	FirstName      string `json:"TFNAME"`
	LastName       string `json:"TLNAME"`
	PositionNumber string `json:"P_ACCT"`
	SectionName    string `json:"SECTION_NAME"`
	TypeName       string `json:"TYPE_NAME"`
}

// Login authenticates a username/password pair against the directory
func (c *Client) Login(ctx context.Context, username, password string) (*domain.DirectoryAccount, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/employee/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(applicationKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("Directory login call failed")
		return nil, domain.ErrDirectoryUnavailable
	}
	defer resp.Body.Close()

	var result loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Warn().Err(err).Int("status", resp.StatusCode).Msg("Directory login response unreadable")
		return nil, domain.ErrDirectoryUnavailable
	}
	if result.Status == nil || !*result.Status {
		return nil, domain.ErrInvalidCredentials
	}

	// The directory's username field doubles as the employee code used
	// to key allocations; MEDCODE is a separate internal identifier
	return &domain.DirectoryAccount{
		EmployeeCode: result.User.Username,
		Username:     result.User.Username,
		FirstName:    result.User.FirstName,
		LastName:     result.User.LastName,
	}, nil
}

// GetEmployee looks up an employee profile by code
func (c *Client) GetEmployee(ctx context.Context, code string) (*domain.EmployeeProfile, error) {
	endpoint := fmt.Sprintf("%s/employee/username/%s", c.baseURL, url.PathEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(applicationKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("code", code).Msg("Directory employee lookup failed")
		return nil, domain.ErrDirectoryUnavailable
	}
	defer resp.Body.Close()

	var result employeeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Warn().Err(err).Int("status", resp.StatusCode).Msg("Directory employee response unreadable")
		return nil, domain.ErrDirectoryUnavailable
	}
	if result.Status == nil || !*result.Status {
		return nil, domain.ErrEmployeeNotFound
	}

	return &domain.EmployeeProfile{
		IDCode:         result.Data.IDCode,
		EmployeeCode:   result.Data.MedCode,
		FirstName:      result.Data.FirstName,
		LastName:       result.Data.LastName,
		PositionNumber: result.Data.PositionNumber,
		Department:     result.Data.SectionName,
		EmploymentType: result.Data.TypeName,
	}, nil
}
