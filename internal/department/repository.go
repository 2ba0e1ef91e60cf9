package department

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrDepartmentNotFound is returned when a department record is not found.
var ErrDepartmentNotFound = errors.New("department not found")

// ErrUnknownCollege is returned when a department references a college that does not exist.
var ErrUnknownCollege = errors.New("college does not exist")

// Repository provides CRUD operations on the departments table.
type Repository interface {
	Create(ctx context.Context, d *Department) error
	GetByID(ctx context.Context, id uuid.UUID) (*Department, error)
	ListByCollege(ctx context.Context, collegeID uuid.UUID) ([]Department, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Department, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}
