package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medwelfare/welfare-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// AllocationRepository implements domain.AllocationRepository using PostgreSQL
type AllocationRepository struct {
	pool *pgxpool.Pool
}

// NewAllocationRepository creates a new AllocationRepository
func NewAllocationRepository(pool *pgxpool.Pool) *AllocationRepository {
	return &AllocationRepository{pool: pool}
}

// Upsert inserts or replaces the allocation for its (employee_code,
// category_id) key. The unique constraint on the key keeps the table free
// of duplicates regardless of call ordering.
func (r *AllocationRepository) Upsert(allocation *domain.Allocation) error {
	ctx := context.Background()

	allocated, err := decimalToPgNumeric(allocation.Allocated)
	if err != nil {
		return fmt.Errorf("invalid allocated amount: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO welfare_allocations
			(id_code, employee_code, category_id, allocated, fname, lname, position_number, department, employment_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (employee_code, category_id) DO UPDATE SET
			id_code = EXCLUDED.id_code,
			allocated = EXCLUDED.allocated,
			fname = EXCLUDED.fname,
			lname = EXCLUDED.lname,
			position_number = EXCLUDED.position_number,
			department = EXCLUDED.department,
			employment_type = EXCLUDED.employment_type`,
		allocation.IDCode,
		allocation.EmployeeCode,
		allocation.CategoryID,
		allocated,
		allocation.FirstName,
		allocation.LastName,
		allocation.PositionNumber,
		allocation.Department,
		allocation.EmploymentType,
	)
	return err
}

// TopUp adds delta to the allocated amount and returns the new amount
func (r *AllocationRepository) TopUp(employeeCode string, categoryID int32, delta decimal.Decimal) (decimal.Decimal, error) {
	ctx := context.Background()

	add, err := decimalToPgNumeric(delta)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid delta: %w", err)
	}

	var allocated pgtype.Numeric
	err = r.pool.QueryRow(ctx, `
		UPDATE welfare_allocations
		SET allocated = allocated + $1
		WHERE employee_code = $2 AND category_id = $3
		RETURNING allocated`,
		add, employeeCode, categoryID,
	).Scan(&allocated)
	if err != nil {
		if err == pgx.ErrNoRows {
			return decimal.Zero, domain.ErrNoAllocation
		}
		return decimal.Zero, err
	}
	return pgNumericToDecimal(allocated), nil
}

// Remaining computes the balance for one (employee, category) key
func (r *AllocationRepository) Remaining(employeeCode string, categoryID int32) (*domain.Balance, error) {
	ctx := context.Background()

	var (
		balance   domain.Balance
		allocated pgtype.Numeric
		used      pgtype.Numeric
	)
	err := r.pool.QueryRow(ctx, `
		SELECT
			wa.category_id,
			wc.name,
			wa.allocated,
			COALESCE(SUM(wt.amount), 0) AS used
		FROM welfare_allocations wa
		JOIN welfare_categories wc ON wc.id = wa.category_id
		LEFT JOIN welfare_transactions wt
			ON wt.employee_code = wa.employee_code AND wt.category_id = wa.category_id
		WHERE wa.employee_code = $1 AND wa.category_id = $2
		GROUP BY wa.id, wa.category_id, wc.name, wa.allocated`,
		employeeCode, categoryID,
	).Scan(&balance.CategoryID, &balance.CategoryName, &allocated, &used)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNoAllocation
		}
		return nil, err
	}

	balance.Allocated = pgNumericToDecimal(allocated)
	balance.Used = pgNumericToDecimal(used)
	balance.Remaining = balance.Allocated.Sub(balance.Used)
	return &balance, nil
}

// BalancesForEmployee computes balances for every category the employee
// holds an allocation in
func (r *AllocationRepository) BalancesForEmployee(employeeCode string) ([]*domain.Balance, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT
			wa.category_id,
			wc.name,
			wa.allocated,
			COALESCE(SUM(wt.amount), 0) AS used
		FROM welfare_allocations wa
		JOIN welfare_categories wc ON wc.id = wa.category_id
		LEFT JOIN welfare_transactions wt
			ON wt.employee_code = wa.employee_code AND wt.category_id = wa.category_id
		WHERE wa.employee_code = $1
		GROUP BY wa.id, wa.category_id, wc.name, wa.allocated
		ORDER BY wc.name`,
		employeeCode,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []*domain.Balance
	for rows.Next() {
		var (
			balance   domain.Balance
			allocated pgtype.Numeric
			used      pgtype.Numeric
		)
		if err := rows.Scan(&balance.CategoryID, &balance.CategoryName, &allocated, &used); err != nil {
			return nil, err
		}
		balance.Allocated = pgNumericToDecimal(allocated)
		balance.Used = pgNumericToDecimal(used)
		balance.Remaining = balance.Allocated.Sub(balance.Used)
		balances = append(balances, &balance)
	}
	return balances, rows.Err()
}

// ListBudgets returns the scope-filtered budget report
func (r *AllocationRepository) ListBudgets(filters domain.BudgetFilters, scope domain.Scope) ([]*domain.BudgetRow, error) {
	ctx := context.Background()

	query := `
		SELECT
			wa.id_code,
			wa.employee_code,
			TRIM(CONCAT(wa.fname, ' ', wa.lname)),
			wa.employment_type,
			wa.category_id,
			wc.name,
			wa.allocated,
			COALESCE(SUM(wt.amount), 0) AS used
		FROM welfare_allocations wa
		JOIN welfare_categories wc ON wc.id = wa.category_id
		LEFT JOIN welfare_transactions wt
			ON wt.employee_code = wa.employee_code AND wt.category_id = wa.category_id
		WHERE 1=1`
	args := []interface{}{}

	if filters.CategoryID != nil {
		args = append(args, *filters.CategoryID)
		query += fmt.Sprintf(" AND wa.category_id = $%d", len(args))
	}
	if filters.EmploymentType != nil {
		args = append(args, *filters.EmploymentType)
		query += fmt.Sprintf(" AND wa.employment_type = $%d", len(args))
	}
	if !scope.All {
		args = append(args, scope.CategoryIDs)
		query += fmt.Sprintf(" AND wa.category_id = ANY($%d)", len(args))
	}

	query += `
		GROUP BY wa.id, wa.id_code, wa.employee_code, wa.fname, wa.lname, wa.employment_type, wa.category_id, wc.name, wa.allocated
		ORDER BY wa.employee_code, wc.name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*domain.BudgetRow
	for rows.Next() {
		var (
			row       domain.BudgetRow
			allocated pgtype.Numeric
			used      pgtype.Numeric
		)
		if err := rows.Scan(
			&row.IDCode,
			&row.EmployeeCode,
			&row.EmployeeName,
			&row.EmploymentType,
			&row.CategoryID,
			&row.CategoryName,
			&allocated,
			&used,
		); err != nil {
			return nil, err
		}
		row.Allocated = pgNumericToDecimal(allocated)
		row.Used = pgNumericToDecimal(used)
		row.Remaining = row.Allocated.Sub(row.Used)
		budgets = append(budgets, &row)
	}
	return budgets, rows.Err()
}

// ListEmployees returns the distinct employees holding allocations
func (r *AllocationRepository) ListEmployees() ([]*domain.EmployeeRef, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT id_code, employee_code, TRIM(CONCAT(fname, ' ', lname))
		FROM welfare_allocations
		ORDER BY 3`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*domain.EmployeeRef
	for rows.Next() {
		var ref domain.EmployeeRef
		if err := rows.Scan(&ref.IDCode, &ref.EmployeeCode, &ref.Name); err != nil {
			return nil, err
		}
		employees = append(employees, &ref)
	}
	return employees, rows.Err()
}

// Helper functions

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return num, nil
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	if n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
