package department

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

const columns = `id, college_id, name, hod_name, intake_capacity, created_at, updated_at`

func scanDepartment(row pgx.Row) (*Department, error) {
	var d Department
	err := row.Scan(&d.ID, &d.CollegeID, &d.Name, &d.HODName, &d.IntakeCapacity, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("scanning department row: %w", err)
	}
	return &d, nil
}

// Create inserts a new department record.
func (r *PostgresRepository) Create(ctx context.Context, d *Department) error {
	query := `
		INSERT INTO departments (college_id, name, hod_name, intake_capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + columns

	created, err := scanDepartment(r.pool.QueryRow(ctx, query,
		d.CollegeID, strings.TrimSpace(d.Name), nullString(d.HODName), nullInt(d.IntakeCapacity),
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrUnknownCollege
		}
		return fmt.Errorf("inserting department: %w", err)
	}

	*d = *created
	return nil
}

// GetByID retrieves a single department by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Department, error) {
	return scanDepartment(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM departments WHERE id = $1`, id))
}

// ListByCollege returns the departments of a college ordered by name.
func (r *PostgresRepository) ListByCollege(ctx context.Context, collegeID uuid.UUID) ([]Department, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+columns+` FROM departments WHERE college_id = $1 ORDER BY name ASC`, collegeID)
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	defer rows.Close()

	departments := []Department{}
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating department rows: %w", err)
	}

	return departments, nil
}

// Update modifies non-nil fields on a department. Returns the updated department.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Department, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	if fields.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, strings.TrimSpace(*fields.Name))
		argIdx++
	}
	if fields.HODName != nil {
		setClauses = append(setClauses, fmt.Sprintf("hod_name = $%d", argIdx))
		args = append(args, nullString(fields.HODName))
		argIdx++
	}
	if fields.IntakeCapacity != nil {
		setClauses = append(setClauses, fmt.Sprintf("intake_capacity = $%d", argIdx))
		args = append(args, nullInt(fields.IntakeCapacity))
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE departments
		SET %s
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, columns)

	d, err := scanDepartment(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, ErrDepartmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("updating department: %w", err)
	}
	return d, nil
}

// Delete removes a department by its UUID.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting department: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}

	return nil
}

// Count returns the number of departments.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM departments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting departments: %w", err)
	}
	return n, nil
}

func nullString(v *string) any {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return strings.TrimSpace(*v)
}

func nullInt(v *int) any {
	if v == nil || *v == 0 {
		return nil
	}
	return *v
}
