package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrProfileExists is returned when a profile for the user already exists.
var ErrProfileExists = errors.New("profile already exists")

// Repository provides access to the profiles table.
type Repository interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
	Create(ctx context.Context, p *Profile) error
	ListRecent(ctx context.Context, limit int) ([]Profile, error)
	Count(ctx context.Context) (int, error)
}
