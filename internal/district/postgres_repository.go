package district

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

// Create inserts a new district record.
func (r *PostgresRepository) Create(ctx context.Context, d *District) error {
	query := `
		INSERT INTO districts (name)
		VALUES ($1)
		RETURNING id, created_at`

	d.Name = strings.TrimSpace(d.Name)
	err := r.pool.QueryRow(ctx, query, d.Name).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateDistrictName
		}
		return fmt.Errorf("inserting district: %w", err)
	}

	return nil
}

// GetByID retrieves a single district by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*District, error) {
	query := `
		SELECT id, name, created_at
		FROM districts
		WHERE id = $1`

	var d District
	err := r.pool.QueryRow(ctx, query, id).Scan(&d.ID, &d.Name, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDistrictNotFound
		}
		return nil, fmt.Errorf("querying district: %w", err)
	}

	return &d, nil
}

// List retrieves all districts ordered by name, each with its college count.
func (r *PostgresRepository) List(ctx context.Context) ([]District, error) {
	query := `
		SELECT d.id, d.name, COUNT(c.id), d.created_at
		FROM districts d
		LEFT JOIN colleges c ON c.district_id = d.id
		GROUP BY d.id
		ORDER BY d.name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing districts: %w", err)
	}
	defer rows.Close()

	var districts []District
	for rows.Next() {
		var d District
		if err := rows.Scan(&d.ID, &d.Name, &d.CollegeCount, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning district row: %w", err)
		}
		districts = append(districts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating district rows: %w", err)
	}

	if districts == nil {
		districts = []District{}
	}

	return districts, nil
}

// Count returns the number of districts.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM districts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting districts: %w", err)
	}
	return n, nil
}
