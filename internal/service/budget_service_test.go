package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/medwelfare/welfare-backend/internal/domain"
	"github.com/medwelfare/welfare-backend/internal/testutil"
)

func directoryWithProfile(code string) *testutil.MockDirectoryClient {
	dir := testutil.NewMockDirectoryClient()
	dir.Profiles[code] = &domain.EmployeeProfile{
		IDCode:         "ID-" + code,
		EmployeeCode:   code,
		FirstName:      "Somchai",
		LastName:       "Test",
		PositionNumber: "P-77",
		Department:     "Radiology",
		EmploymentType: "permanent",
	}
	return dir
}

func TestUpsertAllocation_CreatesWithProfileSnapshot(t *testing.T) {
	ledger := testutil.NewMockLedger()
	budgetService := NewBudgetService(ledger, testutil.NewMockDirectoryClient())

	allocation, err := budgetService.UpsertAllocation(context.Background(), superadminIdentity(), UpsertAllocationInput{
		EmployeeCode: "E100",
		CategoryID:   1,
		Amount:       decimal.NewFromInt(1000),
		IDCode:       "ID-E100",
		FirstName:    "Somchai",
		LastName:     "Test",
		Department:   "Radiology",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if allocation.IDCode != "ID-E100" {
		t.Errorf("Expected the supplied ID code, got %s", allocation.IDCode)
	}
	if allocation.Department != "Radiology" {
		t.Errorf("Expected department snapshot, got %s", allocation.Department)
	}
	if !allocation.Allocated.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected allocated 1000, got %s", allocation.Allocated.String())
	}
}

func TestUpsertAllocation_DirectoryFallbackForMissingProfile(t *testing.T) {
	ledger := testutil.NewMockLedger()
	budgetService := NewBudgetService(ledger, directoryWithProfile("E100"))

	allocation, err := budgetService.UpsertAllocation(context.Background(), superadminIdentity(), UpsertAllocationInput{
		EmployeeCode: "E100",
		CategoryID:   1,
		Amount:       decimal.NewFromInt(1000),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if allocation.IDCode != "ID-E100" {
		t.Errorf("Expected ID code from the directory, got %s", allocation.IDCode)
	}
	if allocation.Department != "Radiology" {
		t.Errorf("Expected department from the directory, got %s", allocation.Department)
	}
}

func TestUpsertAllocation_Idempotent(t *testing.T) {
	ledger := testutil.NewMockLedger()
	budgetService := NewBudgetService(ledger, directoryWithProfile("E100"))

	input := UpsertAllocationInput{
		EmployeeCode: "E100",
		CategoryID:   1,
		Amount:       decimal.NewFromInt(1000),
	}
	first, err := budgetService.UpsertAllocation(context.Background(), superadminIdentity(), input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := budgetService.UpsertAllocation(context.Background(), superadminIdentity(), input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("Expected the same row on repeat, got IDs %d and %d", first.ID, second.ID)
	}
	if len(ledger.Allocations) != 1 {
		t.Errorf("Expected a single allocation row, got %d", len(ledger.Allocations))
	}
}

func TestUpsertAllocation_ReplacesAmount(t *testing.T) {
	ledger := testutil.NewMockLedger()
	budgetService := NewBudgetService(ledger, directoryWithProfile("E100"))

	admin := superadminIdentity()
	if _, err := budgetService.UpsertAllocation(context.Background(), admin, UpsertAllocationInput{
		EmployeeCode: "E100", CategoryID: 1, Amount: decimal.NewFromInt(1000),
	}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := budgetService.UpsertAllocation(context.Background(), admin, UpsertAllocationInput{
		EmployeeCode: "E100", CategoryID: 1, Amount: decimal.NewFromInt(1500),
	}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	balance, err := ledger.Remaining("E100", 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !balance.Allocated.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Expected allocated replaced with 1500, got %s", balance.Allocated.String())
	}
}

func TestUpsertAllocation_NonSuperadminForbidden(t *testing.T) {
	ledger := testutil.NewMockLedger()
	budgetService := NewBudgetService(ledger, directoryWithProfile("E100"))

	_, err := budgetService.UpsertAllocation(context.Background(), staffIdentity(1), UpsertAllocationInput{
		EmployeeCode: "E100", CategoryID: 1, Amount: decimal.NewFromInt(1000),
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}
}

func TestUpsertAllocation_DirectoryDownDoesNotFailUpsert(t *testing.T) {
	// The profile fallback is best-effort; the budget row is created
	// with an empty snapshot when the directory cannot answer
	ledger := testutil.NewMockLedger()
	dir := testutil.NewMockDirectoryClient()
	dir.Unavailable = true
	budgetService := NewBudgetService(ledger, dir)

	allocation, err := budgetService.UpsertAllocation(context.Background(), superadminIdentity(), UpsertAllocationInput{
		EmployeeCode: "E999", CategoryID: 1, Amount: decimal.NewFromInt(1000),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if allocation.IDCode != "" || allocation.FirstName != "" {
		t.Errorf("Expected an empty profile snapshot, got %+v", allocation)
	}
	if !allocation.Allocated.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected allocated 1000, got %s", allocation.Allocated.String())
	}
}

func TestTopUp_AddsToAllocation(t *testing.T) {
	ledger := testutil.NewMockLedger()
	seedAllocation(ledger, "E100", 1, "1000")
	budgetService := NewBudgetService(ledger, testutil.NewMockDirectoryClient())

	newAmount, err := budgetService.TopUp(superadminIdentity(), "E100", 1, decimal.NewFromInt(250))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !newAmount.Equal(decimal.NewFromInt(1250)) {
		t.Errorf("Expected new amount 1250, got %s", newAmount.String())
	}
}

func TestTopUp_NoAllocation(t *testing.T) {
	ledger := testutil.NewMockLedger()
	budgetService := NewBudgetService(ledger, testutil.NewMockDirectoryClient())

	_, err := budgetService.TopUp(superadminIdentity(), "E100", 1, decimal.NewFromInt(250))
	if !errors.Is(err, domain.ErrNoAllocation) {
		t.Fatalf("Expected ErrNoAllocation, got %v", err)
	}
}

func TestTopUp_NegativeDelta(t *testing.T) {
	ledger := testutil.NewMockLedger()
	seedAllocation(ledger, "E100", 1, "1000")
	budgetService := NewBudgetService(ledger, testutil.NewMockDirectoryClient())

	_, err := budgetService.TopUp(superadminIdentity(), "E100", 1, decimal.NewFromInt(-250))
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("Expected ErrInvalidAmount, got %v", err)
	}
}

func TestBulkTopUp_PartialMisses(t *testing.T) {
	ledger := testutil.NewMockLedger()
	seedAllocation(ledger, "E100", 1, "1000")
	seedAllocation(ledger, "E200", 1, "500")
	budgetService := NewBudgetService(ledger, testutil.NewMockDirectoryClient())

	result, err := budgetService.BulkTopUp(superadminIdentity(), []string{"E100", "E200", "E300"}, 1, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("Expected the batch not to fail on partial misses, got %v", err)
	}

	if result.UpdatedCount != 2 {
		t.Errorf("Expected 2 updates, got %d", result.UpdatedCount)
	}
	if len(result.NotFound) != 1 || result.NotFound[0] != "E300" {
		t.Errorf("Expected E300 in notFound, got %v", result.NotFound)
	}

	balance, _ := ledger.Remaining("E100", 1)
	if !balance.Allocated.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("Expected E100 allocated 1100, got %s", balance.Allocated.String())
	}
}

func TestBulkTopUp_EmptyBatch(t *testing.T) {
	ledger := testutil.NewMockLedger()
	budgetService := NewBudgetService(ledger, testutil.NewMockDirectoryClient())

	_, err := budgetService.BulkTopUp(superadminIdentity(), nil, 1, decimal.NewFromInt(100))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestListBudgets_StaffScope(t *testing.T) {
	ledger := testutil.NewMockLedger()
	seedAllocation(ledger, "E100", 1, "1000")
	seedAllocation(ledger, "E100", 2, "500")
	seedAllocation(ledger, "E200", 2, "800")
	budgetService := NewBudgetService(ledger, testutil.NewMockDirectoryClient())

	rows, err := budgetService.ListBudgets(staffIdentity(2), domain.BudgetFilters{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows within category 2, got %d", len(rows))
	}
	for _, row := range rows {
		if row.CategoryID != 2 {
			t.Errorf("Expected only category 2 rows, got category %d", row.CategoryID)
		}
	}
}

func TestListBudgets_EmptyAssignments(t *testing.T) {
	ledger := testutil.NewMockLedger()
	seedAllocation(ledger, "E100", 1, "1000")
	budgetService := NewBudgetService(ledger, testutil.NewMockDirectoryClient())

	rows, err := budgetService.ListBudgets(staffIdentity(), domain.BudgetFilters{})
	if err != nil {
		t.Fatalf("Staff without assignments should get an empty report, got %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected empty report, got %d rows", len(rows))
	}
}

func TestListBudgets_PlainUserForbidden(t *testing.T) {
	ledger := testutil.NewMockLedger()
	budgetService := NewBudgetService(ledger, testutil.NewMockDirectoryClient())

	user := &domain.Identity{Username: "somchai", Roles: domain.NewRoleSet(domain.RoleUser)}
	_, err := budgetService.ListBudgets(user, domain.BudgetFilters{})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("Expected ErrForbidden, got %v", err)
	}
}

func TestGetEmployeeProfile_DirectoryUnavailable(t *testing.T) {
	ledger := testutil.NewMockLedger()
	dir := testutil.NewMockDirectoryClient()
	dir.Unavailable = true
	budgetService := NewBudgetService(ledger, dir)

	_, err := budgetService.GetEmployeeProfile(context.Background(), staffIdentity(1), "E100")
	if !errors.Is(err, domain.ErrDirectoryUnavailable) {
		t.Fatalf("Expected ErrDirectoryUnavailable, got %v", err)
	}
}
