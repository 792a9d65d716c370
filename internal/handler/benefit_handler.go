package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/medwelfare/welfare-backend/internal/domain"
	"github.com/medwelfare/welfare-backend/internal/middleware"
	"github.com/medwelfare/welfare-backend/internal/service"
)

// BenefitHandler handles balance, claim, and budget HTTP requests
type BenefitHandler struct {
	balanceService *service.BalanceService
	claimService   *service.ClaimService
	budgetService  *service.BudgetService
}

// NewBenefitHandler creates a new BenefitHandler
func NewBenefitHandler(balanceService *service.BalanceService, claimService *service.ClaimService, budgetService *service.BudgetService) *BenefitHandler {
	return &BenefitHandler{
		balanceService: balanceService,
		claimService:   claimService,
		budgetService:  budgetService,
	}
}

// targetEmployeeCode resolves which employee a read is about: an explicit
// employeeCode query parameter when present, the caller's own code
// otherwise.
func targetEmployeeCode(c echo.Context, identity *domain.Identity) string {
	if code := c.QueryParam("employeeCode"); code != "" {
		return code
	}
	if identity != nil {
		return identity.EmployeeCode
	}
	return ""
}

// GetBalances returns per-category balances for an employee
func (h *BenefitHandler) GetBalances(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	balances, err := h.balanceService.BalancesForEmployee(identity, targetEmployeeCode(c, identity))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmployeeCodeRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "employeeCode", Message: "Employee code is required"},
			})
		case errors.Is(err, domain.ErrForbidden):
			return NewForbiddenError(c, "Cannot read another employee's balances")
		}
		log.Error().Err(err).Msg("Failed to fetch balances")
		return NewInternalError(c, "Failed to fetch balances")
	}

	if balances == nil {
		balances = []*domain.Balance{}
	}
	return c.JSON(http.StatusOK, balances)
}

// GetHistory returns an employee's claim transactions, newest first
func (h *BenefitHandler) GetHistory(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	history, err := h.claimService.HistoryForEmployee(identity, targetEmployeeCode(c, identity))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmployeeCodeRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "employeeCode", Message: "Employee code is required"},
			})
		case errors.Is(err, domain.ErrForbidden):
			return NewForbiddenError(c, "Cannot read another employee's history")
		}
		log.Error().Err(err).Msg("Failed to fetch history")
		return NewInternalError(c, "Failed to fetch history")
	}

	if history == nil {
		history = []*domain.Transaction{}
	}
	return c.JSON(http.StatusOK, history)
}

// ClaimRequest represents the claim submission request body
type ClaimRequest struct {
	IDCode       string `json:"idCode"`
	EmployeeCode string `json:"employeeCode"`
	CategoryID   int32  `json:"typeId"`
	Amount       string `json:"amount"`
	ClaimedFor   string `json:"claimedFor"`
	Description  string `json:"description"`
}

// SubmitClaim validates and commits a claim against the remaining balance
func (h *BenefitHandler) SubmitClaim(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	var req ClaimRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	result, err := h.claimService.SubmitClaim(identity, service.ClaimInput{
		IDCode:       req.IDCode,
		EmployeeCode: req.EmployeeCode,
		CategoryID:   req.CategoryID,
		Amount:       amount,
		ClaimedFor:   req.ClaimedFor,
		Description:  req.Description,
	})
	if err != nil {
		var limitErr *domain.ExceedsLimitError
		switch {
		case errors.As(err, &limitErr):
			return NewLimitExceededError(c, limitErr.Remaining)
		case errors.Is(err, domain.ErrForbidden):
			return NewForbiddenError(c, "Claims require the staff or superadmin role for the category")
		case errors.Is(err, domain.ErrNoAllocation):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "typeId", Message: "Employee has no allocation for this category"},
			})
		case errors.Is(err, domain.ErrInvalidAmount):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be positive"},
			})
		case errors.Is(err, domain.ErrEmployeeCodeRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "employeeCode", Message: "Employee code is required"},
			})
		case errors.Is(err, domain.ErrCategoryRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "typeId", Message: "Category is required"},
			})
		case errors.Is(err, domain.ErrClaimedForRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "claimedFor", Message: "Claimed-for is required"},
			})
		case errors.Is(err, domain.ErrInvalidInput):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "idCode", Message: "ID code is required"},
			})
		}
		log.Error().Err(err).Msg("Failed to commit claim")
		return NewInternalError(c, "Failed to commit claim")
	}

	return c.JSON(http.StatusCreated, result)
}

// BudgetRequest represents the allocation upsert request body. The
// profile fields are the caller's verified snapshot of the employee.
type BudgetRequest struct {
	EmployeeCode   string `json:"employeeCode"`
	CategoryID     int32  `json:"typeId"`
	Amount         string `json:"amount"`
	IDCode         string `json:"idCode"`
	FirstName      string `json:"fname"`
	LastName       string `json:"lname"`
	PositionNumber string `json:"positionNumber"`
	Department     string `json:"department"`
	EmploymentType string `json:"empType"`
}

// SetBudget creates or replaces an employee's allocation for a category
func (h *BenefitHandler) SetBudget(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	allocation, err := h.budgetService.UpsertAllocation(c.Request().Context(), identity, service.UpsertAllocationInput{
		EmployeeCode:   req.EmployeeCode,
		CategoryID:     req.CategoryID,
		Amount:         amount,
		IDCode:         req.IDCode,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PositionNumber: req.PositionNumber,
		Department:     req.Department,
		EmploymentType: req.EmploymentType,
	})
	if err != nil {
		if handled := h.budgetWriteError(c, err); handled != nil {
			return handled
		}
		log.Error().Err(err).Msg("Failed to upsert allocation")
		return NewInternalError(c, "Failed to set budget")
	}

	return c.JSON(http.StatusOK, allocation)
}

// TopUpRequest represents the additive top-up request body
type TopUpRequest struct {
	EmployeeCode string `json:"employeeCode"`
	CategoryID   int32  `json:"typeId"`
	Amount       string `json:"amount"`
}

// TopUp adds to an existing allocation and returns the new amount
func (h *BenefitHandler) TopUp(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	var req TopUpRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	newAmount, err := h.budgetService.TopUp(identity, req.EmployeeCode, req.CategoryID, amount)
	if err != nil {
		if handled := h.budgetWriteError(c, err); handled != nil {
			return handled
		}
		log.Error().Err(err).Msg("Failed to top up allocation")
		return NewInternalError(c, "Failed to top up")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"employeeCode": req.EmployeeCode,
		"typeId":       req.CategoryID,
		"allocated":    newAmount,
	})
}

// BulkTopUpRequest represents the bulk top-up request body
type BulkTopUpRequest struct {
	EmployeeCodes []string `json:"employeeCodes"`
	CategoryID    int32    `json:"typeId"`
	Amount        string   `json:"amount"`
}

// BulkTopUp adds the same amount to each listed employee's allocation.
// Codes without an allocation are reported, not fatal.
func (h *BenefitHandler) BulkTopUp(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	var req BulkTopUpRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	result, err := h.budgetService.BulkTopUp(identity, req.EmployeeCodes, req.CategoryID, amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "employeeCodes", Message: "At least one employee code is required"},
			})
		}
		if handled := h.budgetWriteError(c, err); handled != nil {
			return handled
		}
		log.Error().Err(err).Msg("Failed to bulk top up")
		return NewInternalError(c, "Failed to top up")
	}

	return c.JSON(http.StatusOK, result)
}

// budgetWriteError maps shared budget-write failures, returning nil when
// the error is not one of them.
func (h *BenefitHandler) budgetWriteError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return NewForbiddenError(c, "Budget changes require the superadmin role")
	case errors.Is(err, domain.ErrEmployeeCodeRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "employeeCode", Message: "Employee code is required"},
		})
	case errors.Is(err, domain.ErrCategoryRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "typeId", Message: "Category is required"},
		})
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be positive"},
		})
	case errors.Is(err, domain.ErrNoAllocation):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "employeeCode", Message: "Employee has no allocation for this category"},
		})
	case errors.Is(err, domain.ErrEmployeeNotFound):
		return NewNotFoundError(c, "Employee not found in the directory")
	case errors.Is(err, domain.ErrDirectoryUnavailable):
		return NewBadGatewayError(c, "Employee directory is unavailable")
	}
	return nil
}

// GetBudget returns the balance for one (employee, category) key
func (h *BenefitHandler) GetBudget(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	categoryID, err := strconv.ParseInt(c.QueryParam("typeId"), 10, 32)
	if err != nil || categoryID <= 0 {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "typeId", Message: "Must be a positive integer"},
		})
	}

	balance, err := h.balanceService.Remaining(identity, targetEmployeeCode(c, identity), int32(categoryID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmployeeCodeRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "employeeCode", Message: "Employee code is required"},
			})
		case errors.Is(err, domain.ErrForbidden):
			return NewForbiddenError(c, "Cannot read another employee's balance")
		case errors.Is(err, domain.ErrNoAllocation):
			return NewNotFoundError(c, "No allocation for this employee and category")
		}
		log.Error().Err(err).Msg("Failed to fetch balance")
		return NewInternalError(c, "Failed to fetch balance")
	}

	return c.JSON(http.StatusOK, balance)
}

// GetBudgets returns the scope-filtered cross-employee budget report
func (h *BenefitHandler) GetBudgets(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	var filters domain.BudgetFilters
	if raw := c.QueryParam("typeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "typeId", Message: "Must be an integer"},
			})
		}
		categoryID := int32(id)
		filters.CategoryID = &categoryID
	}
	if raw := c.QueryParam("empType"); raw != "" {
		filters.EmploymentType = &raw
	}

	rows, err := h.budgetService.ListBudgets(identity, filters)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "Budget reports require the staff or superadmin role")
		}
		log.Error().Err(err).Msg("Failed to fetch budget report")
		return NewInternalError(c, "Failed to fetch budgets")
	}

	if rows == nil {
		rows = []*domain.BudgetRow{}
	}
	return c.JSON(http.StatusOK, rows)
}

// Search returns scope-filtered transactions matching the query filters
func (h *BenefitHandler) Search(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	filters := domain.SearchFilters{
		EmployeeCode: c.QueryParam("employeeCode"),
		Name:         c.QueryParam("name"),
	}
	if raw := c.QueryParam("dateFrom"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "dateFrom", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		filters.DateFrom = &parsed
	}
	if raw := c.QueryParam("dateTo"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "dateTo", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		filters.DateTo = &parsed
	}

	results, err := h.claimService.Search(identity, filters)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "Search requires the staff or superadmin role")
		}
		log.Error().Err(err).Msg("Failed to search transactions")
		return NewInternalError(c, "Failed to search")
	}

	if results == nil {
		results = []*domain.SearchResult{}
	}
	return c.JSON(http.StatusOK, results)
}

// GetSummary returns per-category usage totals for a calendar year
func (h *BenefitHandler) GetSummary(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	year := time.Now().Year()
	if raw := c.QueryParam("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "year", Message: "Must be an integer"},
			})
		}
		year = parsed
	}

	summary, err := h.balanceService.AnnualSummary(identity, year)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return NewForbiddenError(c, "Summaries require the staff or superadmin role")
		case errors.Is(err, domain.ErrInvalidInput):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "year", Message: "Must be a positive year"},
			})
		}
		log.Error().Err(err).Msg("Failed to fetch annual summary")
		return NewInternalError(c, "Failed to fetch summary")
	}

	if summary == nil {
		summary = []*domain.CategoryTotal{}
	}
	return c.JSON(http.StatusOK, summary)
}

// GetEmployees returns the distinct employees holding allocations
func (h *BenefitHandler) GetEmployees(c echo.Context) error {
	employees, err := h.budgetService.ListEmployees()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list employees")
		return NewInternalError(c, "Failed to list employees")
	}

	if employees == nil {
		employees = []*domain.EmployeeRef{}
	}
	return c.JSON(http.StatusOK, employees)
}

// GetEmployee proxies a directory profile lookup by employee code
func (h *BenefitHandler) GetEmployee(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	profile, err := h.budgetService.GetEmployeeProfile(c.Request().Context(), identity, c.Param("code"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return NewForbiddenError(c, "Employee lookups require the staff or superadmin role")
		case errors.Is(err, domain.ErrEmployeeCodeRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "code", Message: "Employee code is required"},
			})
		case errors.Is(err, domain.ErrEmployeeNotFound):
			return NewNotFoundError(c, "Employee not found in the directory")
		case errors.Is(err, domain.ErrDirectoryUnavailable):
			return NewBadGatewayError(c, "Employee directory is unavailable")
		}
		log.Error().Err(err).Msg("Failed to fetch employee profile")
		return NewInternalError(c, "Failed to fetch employee")
	}

	return c.JSON(http.StatusOK, profile)
}
