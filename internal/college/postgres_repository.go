package college

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

// allColumns is the ordered list of columns scanned from the colleges table
// with a LEFT JOIN on districts for the transient DistrictName field.
const allColumns = `c.id, c.name, c.college_type, c.district_id, COALESCE(d.name, ''),
	c.counseling_code, c.address, c.phone, c.email, c.website, c.established_year,
	c.affiliation, c.accreditation, c.infrastructure_rating, c.placement_rating,
	c.description, c.image_url, c.created_at, c.updated_at`

// fromClause is the common FROM + JOIN clause used by all read queries.
const fromClause = `FROM colleges c LEFT JOIN districts d ON c.district_id = d.id`

func scanCollege(row pgx.Row) (*College, error) {
	var c College
	err := row.Scan(
		&c.ID, &c.Name, &c.Type, &c.DistrictID, &c.DistrictName,
		&c.CounselingCode, &c.Address, &c.Phone, &c.Email, &c.Website, &c.EstablishedYear,
		&c.Affiliation, &c.Accreditation, &c.InfrastructureRating, &c.PlacementRating,
		&c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCollegeNotFound
		}
		return nil, fmt.Errorf("scanning college row: %w", err)
	}
	return &c, nil
}

func collectColleges(rows pgx.Rows) ([]College, error) {
	defer rows.Close()

	colleges := []College{}
	for rows.Next() {
		c, err := scanCollege(rows)
		if err != nil {
			return nil, err
		}
		colleges = append(colleges, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating college rows: %w", err)
	}
	return colleges, nil
}

// isForeignKeyViolation reports whether err is a district_id FK violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// Create inserts a new college record. Empty optional strings are stored as NULL.
func (r *PostgresRepository) Create(ctx context.Context, c *College) error {
	query := `
		INSERT INTO colleges (name, college_type, district_id, counseling_code, address, phone,
			email, website, established_year, affiliation, accreditation,
			infrastructure_rating, placement_rating, description, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(c.Name), c.Type, c.DistrictID,
		nullString(c.CounselingCode), nullString(c.Address), nullString(c.Phone),
		nullString(c.Email), nullString(c.Website), nullInt(c.EstablishedYear),
		nullString(c.Affiliation), nullString(c.Accreditation),
		nullInt(c.InfrastructureRating), nullInt(c.PlacementRating),
		nullString(c.Description), nullString(c.ImageURL),
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUnknownDistrict
		}
		return fmt.Errorf("inserting college: %w", err)
	}

	// Fetch the full record with DistrictName via JOIN.
	created, err := r.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("fetching created college: %w", err)
	}
	*c = *created
	return nil
}

// GetByID retrieves a single college by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*College, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE c.id = $1`, allColumns, fromClause)
	return scanCollege(r.pool.QueryRow(ctx, query, id))
}

// List retrieves a paginated, filtered list of colleges ordered by name.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	var conditions []string
	var args []any
	argIdx := 1

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("c.college_type = $%d", argIdx))
		args = append(args, *filter.Type)
		argIdx++
	}
	if filter.DistrictID != nil {
		conditions = append(conditions, fmt.Sprintf("c.district_id = $%d", argIdx))
		args = append(args, *filter.DistrictID)
		argIdx++
	}
	if filter.Name != nil {
		conditions = append(conditions, fmt.Sprintf("c.name ILIKE $%d", argIdx))
		args = append(args, "%"+*filter.Name+"%")
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM colleges c %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting colleges: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit

	dataQuery := fmt.Sprintf(`SELECT %s %s %s ORDER BY c.name ASC LIMIT $%d OFFSET $%d`,
		allColumns, fromClause, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("listing colleges: %w", err)
	}
	colleges, err := collectColleges(rows)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Colleges: colleges,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}, nil
}

// Update modifies non-nil fields on a college. Returns the updated college.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*College, error) {
	var set setList

	if fields.Name != nil {
		set.add("name", strings.TrimSpace(*fields.Name))
	}
	if fields.Type != nil {
		set.add("college_type", *fields.Type)
	}
	if fields.DistrictID != nil {
		set.add("district_id", *fields.DistrictID)
	}
	set.addString("counseling_code", fields.CounselingCode)
	set.addString("address", fields.Address)
	set.addString("phone", fields.Phone)
	set.addString("email", fields.Email)
	set.addString("website", fields.Website)
	set.addInt("established_year", fields.EstablishedYear)
	set.addString("affiliation", fields.Affiliation)
	set.addString("accreditation", fields.Accreditation)
	set.addInt("infrastructure_rating", fields.InfrastructureRating)
	set.addInt("placement_rating", fields.PlacementRating)
	set.addString("description", fields.Description)
	set.addString("image_url", fields.ImageURL)

	if len(set.clauses) == 0 {
		return r.GetByID(ctx, id)
	}

	set.clauses = append(set.clauses, "updated_at = NOW()")
	set.args = append(set.args, id)

	query := fmt.Sprintf(`
		UPDATE colleges
		SET %s
		WHERE id = $%d
		RETURNING id`,
		strings.Join(set.clauses, ", "), len(set.args))

	var updatedID uuid.UUID
	err := r.pool.QueryRow(ctx, query, set.args...).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCollegeNotFound
		}
		if isForeignKeyViolation(err) {
			return nil, ErrUnknownDistrict
		}
		return nil, fmt.Errorf("updating college: %w", err)
	}

	return r.GetByID(ctx, updatedID)
}

// Delete removes a college and, through the FK cascade, its departments.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM colleges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting college: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCollegeNotFound
	}

	return nil
}

// Count returns the number of colleges.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM colleges`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting colleges: %w", err)
	}
	return n, nil
}

// Featured returns colleges with an infrastructure or placement rating of at
// least minRating, best rated first.
func (r *PostgresRepository) Featured(ctx context.Context, minRating, limit int) ([]College, error) {
	query := fmt.Sprintf(`SELECT %s %s
		WHERE c.infrastructure_rating >= $1 OR c.placement_rating >= $1
		ORDER BY GREATEST(COALESCE(c.infrastructure_rating, 0), COALESCE(c.placement_rating, 0)) DESC, c.name ASC
		LIMIT $2`, allColumns, fromClause)

	rows, err := r.pool.Query(ctx, query, minRating, limit)
	if err != nil {
		return nil, fmt.Errorf("listing featured colleges: %w", err)
	}
	return collectColleges(rows)
}

// TopRated returns the best colleges by field. An empty collegeType ranks
// across all types. Unrated colleges sort last.
func (r *PostgresRepository) TopRated(ctx context.Context, field RatingField, collegeType string, limit int) ([]College, error) {
	if field != ByInfrastructure && field != ByPlacement {
		return nil, fmt.Errorf("unsupported rating field %q", field)
	}

	query := fmt.Sprintf(`SELECT %s %s
		WHERE ($1 = '' OR c.college_type = $1)
		ORDER BY c.%s DESC NULLS LAST, c.name ASC
		LIMIT $2`, allColumns, fromClause, field)

	rows, err := r.pool.Query(ctx, query, collegeType, limit)
	if err != nil {
		return nil, fmt.Errorf("listing top rated colleges: %w", err)
	}
	return collectColleges(rows)
}

// setList accumulates SET clauses with positional arguments.
type setList struct {
	clauses []string
	args    []any
}

func (s *setList) add(column string, value any) {
	s.args = append(s.args, value)
	s.clauses = append(s.clauses, fmt.Sprintf("%s = $%d", column, len(s.args)))
}

func (s *setList) addString(column string, v *string) {
	if v != nil {
		s.add(column, nullString(v))
	}
}

func (s *setList) addInt(column string, v *int) {
	if v != nil {
		s.add(column, nullInt(v))
	}
}

// nullString maps nil and blank strings to NULL.
func nullString(v *string) any {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return trimmed
}

// nullInt maps nil and zero to NULL.
func nullInt(v *int) any {
	if v == nil || *v == 0 {
		return nil
	}
	return *v
}
