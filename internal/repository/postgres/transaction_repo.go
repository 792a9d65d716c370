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

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// CommitClaim checks the remaining balance and appends the debit in one
// database transaction. The allocation row is locked with FOR UPDATE for
// the duration of the check-then-append, so two concurrent claims against
// the same key serialize and cannot both pass against a stale total.
func (r *TransactionRepository) CommitClaim(transaction *domain.Transaction) (decimal.Decimal, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback(ctx)

	var allocated pgtype.Numeric
	err = tx.QueryRow(ctx, `
		SELECT allocated
		FROM welfare_allocations
		WHERE employee_code = $1 AND category_id = $2
		FOR UPDATE`,
		transaction.EmployeeCode, transaction.CategoryID,
	).Scan(&allocated)
	if err != nil {
		if err == pgx.ErrNoRows {
			return decimal.Zero, domain.ErrNoAllocation
		}
		return decimal.Zero, err
	}

	var used pgtype.Numeric
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM welfare_transactions
		WHERE employee_code = $1 AND category_id = $2`,
		transaction.EmployeeCode, transaction.CategoryID,
	).Scan(&used)
	if err != nil {
		return decimal.Zero, err
	}

	remaining := pgNumericToDecimal(allocated).Sub(pgNumericToDecimal(used))
	if transaction.Amount.GreaterThan(remaining) {
		return decimal.Zero, &domain.ExceedsLimitError{Remaining: remaining}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO welfare_transactions
			(id_code, employee_code, category_id, amount, claimed_for, occurred_at, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), $6, $7, NOW())
		RETURNING id, occurred_at, created_at`,
		transaction.IDCode,
		transaction.EmployeeCode,
		transaction.CategoryID,
		amount,
		transaction.ClaimedFor,
		transaction.Description,
		transaction.CreatedBy,
	).Scan(&transaction.ID, &transaction.OccurredAt, &transaction.CreatedAt)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, err
	}
	return remaining, nil
}

// HistoryForEmployee returns the employee's transactions, newest first
func (r *TransactionRepository) HistoryForEmployee(employeeCode string) ([]*domain.Transaction, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT
			wt.id,
			wt.id_code,
			wt.employee_code,
			wt.category_id,
			wc.name,
			wt.amount,
			wt.claimed_for,
			wt.description,
			wt.occurred_at,
			wt.created_by,
			wt.created_at
		FROM welfare_transactions wt
		JOIN welfare_categories wc ON wc.id = wt.category_id
		WHERE wt.employee_code = $1
		ORDER BY wt.occurred_at DESC, wt.id DESC`,
		employeeCode,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*domain.Transaction
	for rows.Next() {
		var (
			t      domain.Transaction
			amount pgtype.Numeric
		)
		if err := rows.Scan(
			&t.ID,
			&t.IDCode,
			&t.EmployeeCode,
			&t.CategoryID,
			&t.CategoryName,
			&amount,
			&t.ClaimedFor,
			&t.Description,
			&t.OccurredAt,
			&t.CreatedBy,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		t.Amount = pgNumericToDecimal(amount)
		history = append(history, &t)
	}
	return history, rows.Err()
}

// Search returns scope-filtered transactions matching the filters
func (r *TransactionRepository) Search(filters domain.SearchFilters, scope domain.Scope) ([]*domain.SearchResult, error) {
	ctx := context.Background()

	query := `
		SELECT
			wt.id,
			wt.employee_code,
			wt.category_id,
			wc.name,
			wt.amount,
			wt.occurred_at,
			wt.description,
			COALESCE(TRIM(CONCAT(wa.fname, ' ', wa.lname)), '')
		FROM welfare_transactions wt
		JOIN welfare_categories wc ON wc.id = wt.category_id
		LEFT JOIN welfare_allocations wa
			ON wa.employee_code = wt.employee_code AND wa.category_id = wt.category_id
		WHERE 1=1`
	args := []interface{}{}

	if filters.EmployeeCode != "" {
		args = append(args, filters.EmployeeCode)
		query += fmt.Sprintf(" AND wt.employee_code = $%d", len(args))
	}
	if filters.Name != "" {
		args = append(args, "%"+filters.Name+"%")
		query += fmt.Sprintf(" AND (wa.fname ILIKE $%d OR wa.lname ILIKE $%d)", len(args), len(args))
	}
	if filters.DateFrom != nil {
		args = append(args, *filters.DateFrom)
		query += fmt.Sprintf(" AND wt.occurred_at::date >= $%d", len(args))
	}
	if filters.DateTo != nil {
		args = append(args, *filters.DateTo)
		query += fmt.Sprintf(" AND wt.occurred_at::date <= $%d", len(args))
	}
	if !scope.All {
		args = append(args, scope.CategoryIDs)
		query += fmt.Sprintf(" AND wt.category_id = ANY($%d)", len(args))
	}

	query += " ORDER BY wt.occurred_at DESC, wt.id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.SearchResult
	for rows.Next() {
		var (
			result domain.SearchResult
			amount pgtype.Numeric
		)
		if err := rows.Scan(
			&result.ID,
			&result.EmployeeCode,
			&result.CategoryID,
			&result.CategoryName,
			&amount,
			&result.Date,
			&result.Description,
			&result.FullName,
		); err != nil {
			return nil, err
		}
		result.Amount = pgNumericToDecimal(amount)
		results = append(results, &result)
	}
	return results, rows.Err()
}

// AnnualSummary sums transaction amounts per category for the calendar
// year, zero-filled for categories with no transactions
func (r *TransactionRepository) AnnualSummary(year int) ([]*domain.CategoryTotal, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT
			wc.id,
			wc.name,
			COALESCE(SUM(wt.amount), 0) AS total
		FROM welfare_categories wc
		LEFT JOIN welfare_transactions wt
			ON wt.category_id = wc.id
			AND EXTRACT(YEAR FROM wt.occurred_at) = $1
		GROUP BY wc.id, wc.name
		ORDER BY wc.name`,
		year,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summary []*domain.CategoryTotal
	for rows.Next() {
		var (
			total  domain.CategoryTotal
			amount pgtype.Numeric
		)
		if err := rows.Scan(&total.CategoryID, &total.CategoryName, &amount); err != nil {
			return nil, err
		}
		total.Total = pgNumericToDecimal(amount)
		summary = append(summary, &total)
	}
	return summary, rows.Err()
}
