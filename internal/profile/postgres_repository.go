package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
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

// Exists reports whether a profile row exists for userID.
func (r *PostgresRepository) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE uuid = $1)`, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking profile: %w", err)
	}
	return exists, nil
}

// Create inserts a profile row. A concurrent insert for the same user
// surfaces as ErrProfileExists.
func (r *PostgresRepository) Create(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (uuid, full_name)
		VALUES ($1, $2)
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, p.UserID, p.FullName).Scan(&p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrProfileExists
		}
		return fmt.Errorf("inserting profile: %w", err)
	}

	return nil
}

// ListRecent returns the newest profiles first.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]Profile, error) {
	query := `
		SELECT p.uuid, p.full_name, COALESCE(u.email, ''), p.created_at
		FROM profiles p LEFT JOIN users u ON u.id = p.uuid
		ORDER BY p.created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	profiles := []Profile{}
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.UserID, &p.FullName, &p.Email, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profile rows: %w", err)
	}

	return profiles, nil
}

// Count returns the number of profiles.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting profiles: %w", err)
	}
	return n, nil
}
