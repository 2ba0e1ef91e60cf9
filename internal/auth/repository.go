package auth

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository provides operations on the users table.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// MergeMetadata applies patch on top of the stored metadata and returns the updated user.
	MergeMetadata(ctx context.Context, id uuid.UUID, patch Metadata) (*User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Count(ctx context.Context) (int, error)
}
