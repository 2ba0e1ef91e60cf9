package district

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrDistrictNotFound is returned when a district record is not found.
var ErrDistrictNotFound = errors.New("district not found")

// ErrDuplicateDistrictName is returned when a district with the same name already exists.
var ErrDuplicateDistrictName = errors.New("district name already exists")

// Repository provides access to the districts table.
type Repository interface {
	Create(ctx context.Context, d *District) error
	GetByID(ctx context.Context, id uuid.UUID) (*District, error)
	List(ctx context.Context) ([]District, error)
	Count(ctx context.Context) (int, error)
}
