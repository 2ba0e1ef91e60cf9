package middleware_test

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/collegepedia/collegepedia/internal/auth"
)

// fakeSource serves fixed sessions keyed by access token.
type fakeSource struct {
	hub      *auth.Hub
	sessions map[string]*auth.Session
	block    chan struct{} // when set, GetSession waits on it
}

func newFakeSource() *fakeSource {
	return &fakeSource{hub: auth.NewHub(), sessions: map[string]*auth.Session{}}
}

func (f *fakeSource) add(token, role string) *auth.Session {
	md := auth.Metadata{"full_name": "Test"}
	if role != "" {
		md["role"] = role
	}
	s := &auth.Session{
		ID:          "sid-" + token,
		AccessToken: token,
		User:        &auth.User{ID: uuid.New(), Email: token + "@example.com", Metadata: md},
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	f.sessions[token] = s
	return s
}

func (f *fakeSource) GetSession(ctx context.Context, token string) (*auth.Session, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.sessions[token], nil
}

func (f *fakeSource) OnSessionChange(fn func(auth.Event)) *auth.Subscription {
	return f.hub.Subscribe(fn)
}

func (f *fakeSource) SignIn(context.Context, string, string) (*auth.Session, error) {
	return nil, auth.ErrInvalidCredentials
}

func (f *fakeSource) SignOut(context.Context, string) error { return nil }

func (f *fakeSource) SessionID(token string) string {
	if s, ok := f.sessions[token]; ok {
		return s.ID
	}
	return ""
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
