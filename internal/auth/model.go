package auth

import (
	"time"

	"github.com/google/uuid"
)

// Recognized roles. Any other value stored in metadata is carried through
// untouched but grants nothing.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Metadata keys read by application logic.
const (
	MetaRole     = "role"
	MetaFullName = "full_name"
)

// Metadata is the free-form per-user mapping stored as JSONB.
type Metadata map[string]any

// String returns the value at key when it is a string, or "".
func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// Merge returns a copy of m with every key of patch applied on top.
func (m Metadata) Merge(patch Metadata) Metadata {
	out := make(Metadata, len(m)+len(patch))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// User represents a row in the users table.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Metadata     Metadata
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role returns metadata.role, or "" when no role has been assigned yet.
func (u *User) Role() string {
	if u == nil {
		return ""
	}
	return u.Metadata.String(MetaRole)
}

// FullName returns metadata.full_name.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	return u.Metadata.String(MetaFullName)
}

// Session is an authenticated sign-in. User is hydrated from the users table
// on every lookup, so its metadata is never older than the last write.
type Session struct {
	ID          string
	AccessToken string
	User        *User
	ExpiresAt   time.Time
	// Recovery marks sessions opened through a password recovery link.
	Recovery bool
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
