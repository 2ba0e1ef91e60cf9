package college

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrCollegeNotFound is returned when a college record is not found.
var ErrCollegeNotFound = errors.New("college not found")

// ErrUnknownDistrict is returned when a college references a district that does not exist.
var ErrUnknownDistrict = errors.New("district does not exist")

// Repository provides CRUD and ranking queries on the colleges table.
type Repository interface {
	Create(ctx context.Context, c *College) error
	GetByID(ctx context.Context, id uuid.UUID) (*College, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*College, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)

	// Featured returns colleges with either rating at or above minRating.
	Featured(ctx context.Context, minRating, limit int) ([]College, error)
	// TopRated ranks colleges by field, optionally restricted to one type.
	TopRated(ctx context.Context, field RatingField, collegeType string, limit int) ([]College, error)
}
