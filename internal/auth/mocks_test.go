package auth_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/collegepedia/collegepedia/internal/auth"
)

// --- Mock User Repository ---

type mockUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*auth.User

	mergeCalls int
	mergeErr   error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*auth.User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return auth.ErrEmailTaken
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m *mockUserRepo) MergeMetadata(_ context.Context, id uuid.UUID, patch auth.Metadata) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mergeCalls++
	if m.mergeErr != nil {
		return nil, m.mergeErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	u.Metadata = u.Metadata.Merge(patch)
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockUserRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

// --- Mock Session Store ---

type mockStore struct {
	mu        sync.Mutex
	sessions  map[string]auth.StoredSession
	recovery  map[string]uuid.UUID
	createErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		sessions: make(map[string]auth.StoredSession),
		recovery: make(map[string]uuid.UUID),
	}
}

func (m *mockStore) Create(_ context.Context, s auth.StoredSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *mockStore) Get(_ context.Context, id string) (*auth.StoredSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *mockStore) Update(_ context.Context, s auth.StoredSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *mockStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *mockStore) SaveRecovery(_ context.Context, token string, userID uuid.UUID, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recovery[token] = userID
	return nil
}

func (m *mockStore) ConsumeRecovery(_ context.Context, token string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.recovery[token]
	if !ok {
		return uuid.Nil, auth.ErrInvalidRecovery
	}
	delete(m.recovery, token)
	return id, nil
}

// --- Recording notifier ---

type captureNotifier struct {
	tokens []string
}

func (c *captureNotifier) SendRecovery(_ context.Context, _ *auth.User, token string) error {
	c.tokens = append(c.tokens, token)
	return nil
}
