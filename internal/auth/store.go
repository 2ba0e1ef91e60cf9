package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StoredSession is the persisted part of a Session. The user is not stored,
// only a pointer to it.
type StoredSession struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Recovery  bool      `json:"recovery,omitempty"`
}

// SessionStore persists sessions and single-use recovery tokens.
// Get returns (nil, nil) when the session does not exist.
type SessionStore interface {
	Create(ctx context.Context, s StoredSession) error
	Get(ctx context.Context, sessionID string) (*StoredSession, error)
	Update(ctx context.Context, s StoredSession) error
	Delete(ctx context.Context, sessionID string) error

	SaveRecovery(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	// ConsumeRecovery returns the user the token was issued for and deletes it.
	ConsumeRecovery(ctx context.Context, token string) (uuid.UUID, error)
}

// GenerateID returns 32 random bytes encoded as base64url.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
