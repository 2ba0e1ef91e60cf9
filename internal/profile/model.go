package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents a row in the profiles table. It is keyed by the user ID.
type Profile struct {
	UserID    uuid.UUID
	FullName  string
	Email     string // joined from users, read-only
	CreatedAt time.Time
}
