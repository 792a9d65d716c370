package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medwelfare/welfare-backend/internal/domain"
)

// AssignmentRepository implements domain.AssignmentRepository using PostgreSQL
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// ListCategoryIDs returns the category IDs assigned to a staff key
func (r *AssignmentRepository) ListCategoryIDs(staffKey string) ([]int32, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT category_id
		FROM staff_assignments
		WHERE staff_key = $1
		ORDER BY category_id`,
		staffKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// List returns all assignments joined with their category names
func (r *AssignmentRepository) List() ([]*domain.Assignment, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT sa.id, sa.staff_key, sa.category_id, wc.name, sa.created_at
		FROM staff_assignments sa
		JOIN welfare_categories wc ON wc.id = sa.category_id
		ORDER BY wc.name, sa.staff_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []*domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.ID, &a.StaffKey, &a.CategoryID, &a.CategoryName, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, &a)
	}
	return assignments, rows.Err()
}

// Create inserts an assignment; duplicates are rejected by the unique
// constraint on (staff_key, category_id)
func (r *AssignmentRepository) Create(staffKey string, categoryID int32) (*domain.Assignment, error) {
	ctx := context.Background()

	var a domain.Assignment
	err := r.pool.QueryRow(ctx, `
		INSERT INTO staff_assignments (staff_key, category_id, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, staff_key, category_id, created_at`,
		staffKey, categoryID,
	).Scan(&a.ID, &a.StaffKey, &a.CategoryID, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return nil, domain.ErrAlreadyAssigned
			case pgForeignKeyViolation:
				return nil, domain.ErrCategoryNotFound
			}
		}
		return nil, err
	}
	return &a, nil
}

// Delete removes an assignment
func (r *AssignmentRepository) Delete(staffKey string, categoryID int32) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `
		DELETE FROM staff_assignments
		WHERE staff_key = $1 AND category_id = $2`,
		staffKey, categoryID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAssignmentNotFound
	}
	return nil
}
