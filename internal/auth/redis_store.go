package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore is a SessionStore backed by Redis. Keys expire together with
// the session, so expired sessions disappear without a sweeper.
type RedisStore struct {
	client         *redis.Client
	sessionPrefix  string
	recoveryPrefix string
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:         client,
		sessionPrefix:  "session:",
		recoveryPrefix: "recovery:",
	}
}

// Create stores a new session with a TTL matching its expiry.
func (r *RedisStore) Create(ctx context.Context, s StoredSession) error {
	if s.ID == "" || s.UserID == uuid.Nil {
		return fmt.Errorf("session: missing id or user id")
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	return r.client.Set(ctx, r.sessionPrefix+s.ID, data, ttl).Err()
}

// Get loads a session; a missing key yields (nil, nil).
func (r *RedisStore) Get(ctx context.Context, sessionID string) (*StoredSession, error) {
	val, err := r.client.Get(ctx, r.sessionPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}

	var s StoredSession
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}

	return &s, nil
}

// Update rewrites a session. An already expired session is deleted instead.
func (r *RedisStore) Update(ctx context.Context, s StoredSession) error {
	if s.ID == "" {
		return fmt.Errorf("session: missing id")
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return r.client.Del(ctx, r.sessionPrefix+s.ID).Err()
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	return r.client.Set(ctx, r.sessionPrefix+s.ID, data, ttl).Err()
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.sessionPrefix+sessionID).Err()
}

// SaveRecovery stores a recovery token for userID.
func (r *RedisStore) SaveRecovery(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return r.client.Set(ctx, r.recoveryPrefix+token, userID.String(), ttl).Err()
}

// ConsumeRecovery atomically reads and deletes a recovery token.
func (r *RedisStore) ConsumeRecovery(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := r.client.GetDel(ctx, r.recoveryPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrInvalidRecovery
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("recovery: get: %w", err)
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, ErrInvalidRecovery
	}
	return id, nil
}
