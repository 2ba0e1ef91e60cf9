package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegepedia/collegepedia/internal/auth"
	"github.com/collegepedia/collegepedia/internal/session"
)

// --- Fake Source ---

type fakeSource struct {
	hub          *auth.Hub
	getSessionFn func(ctx context.Context, token string) (*auth.Session, error)
	signInFn     func(ctx context.Context, email, password string) (*auth.Session, error)
	signOutFn    func(ctx context.Context, token string) error
}

func newFakeSource() *fakeSource {
	return &fakeSource{hub: auth.NewHub()}
}

func (f *fakeSource) GetSession(ctx context.Context, token string) (*auth.Session, error) {
	if f.getSessionFn != nil {
		return f.getSessionFn(ctx, token)
	}
	return nil, nil
}

func (f *fakeSource) OnSessionChange(fn func(auth.Event)) *auth.Subscription {
	return f.hub.Subscribe(fn)
}

func (f *fakeSource) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	if f.signInFn != nil {
		return f.signInFn(ctx, email, password)
	}
	return nil, errors.New("not implemented")
}

func (f *fakeSource) SignOut(ctx context.Context, token string) error {
	if f.signOutFn != nil {
		return f.signOutFn(ctx, token)
	}
	return nil
}

// SessionID treats the token "tok-<id>" as naming session <id>.
func (f *fakeSource) SessionID(token string) string {
	if len(token) > 4 && token[:4] == "tok-" {
		return token[4:]
	}
	return ""
}

func newUser(role string) *auth.User {
	md := auth.Metadata{"full_name": "Test User"}
	if role != "" {
		md["role"] = role
	}
	return &auth.User{ID: uuid.New(), Email: "t@example.com", Metadata: md}
}

func newSession(id string, u *auth.User) *auth.Session {
	return &auth.Session{ID: id, AccessToken: "tok-" + id, User: u, ExpiresAt: time.Now().Add(time.Hour)}
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// --- State Tests ---

func TestResolver_StartsLoading(t *testing.T) {
	src := newFakeSource()
	r := session.New(src, "tok-a")
	defer r.Close()

	st := r.State()
	assert.True(t, st.Loading)
	assert.False(t, st.IsAuthenticated)
	assert.False(t, st.IsAdmin)
	assert.False(t, st.IsUser)
}

func TestResolver_InitialFetchResolvesRole(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		wantAdmin bool
		wantUser  bool
	}{
		{name: "admin", role: auth.RoleAdmin, wantAdmin: true},
		{name: "user", role: auth.RoleUser, wantUser: true},
		{name: "absent role", role: ""},
		{name: "unknown role", role: "moderator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			u := newUser(tt.role)
			src.getSessionFn = func(_ context.Context, token string) (*auth.Session, error) {
				assert.Equal(t, "tok-a", token)
				return newSession("a", u), nil
			}

			r := session.New(src, "tok-a")
			defer r.Close()
			r.Start(context.Background())

			st := r.Wait(waitCtx(t))
			assert.False(t, st.Loading)
			assert.True(t, st.IsAuthenticated)
			assert.Equal(t, tt.role, st.Role)
			assert.Equal(t, tt.wantAdmin, st.IsAdmin)
			assert.Equal(t, tt.wantUser, st.IsUser)
			assert.Equal(t, u.ID, st.User.ID)
		})
	}
}

func TestResolver_NoSession(t *testing.T) {
	src := newFakeSource()
	r := session.New(src, "")
	defer r.Close()
	r.Start(context.Background())

	st := r.Wait(waitCtx(t))
	assert.False(t, st.Loading)
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.Session)
	assert.Empty(t, st.Role)
}

func TestResolver_FetchErrorIsExposed(t *testing.T) {
	src := newFakeSource()
	boom := errors.New("redis down")
	src.getSessionFn = func(context.Context, string) (*auth.Session, error) { return nil, boom }

	r := session.New(src, "tok-a")
	defer r.Close()
	r.Start(context.Background())

	st := r.Wait(waitCtx(t))
	assert.False(t, st.Loading)
	assert.False(t, st.IsAuthenticated)
	assert.ErrorIs(t, st.Err, boom)
}

func TestResolver_WaitHonorsContext(t *testing.T) {
	src := newFakeSource()
	release := make(chan struct{})
	defer close(release)
	src.getSessionFn = func(context.Context, string) (*auth.Session, error) {
		<-release
		return nil, nil
	}

	r := session.New(src, "tok-a")
	defer r.Close()
	r.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	st := r.Wait(ctx)
	assert.True(t, st.Loading)
}

// --- Event Tests ---

func TestResolver_EventBeforeFetch_LastWriteWins(t *testing.T) {
	src := newFakeSource()
	release := make(chan struct{})
	src.getSessionFn = func(context.Context, string) (*auth.Session, error) {
		<-release
		return nil, nil
	}

	r := session.New(src, "tok-a")
	defer r.Close()
	r.Start(context.Background())

	u := newUser(auth.RoleUser)
	src.hub.Publish(auth.Event{Kind: auth.EventSignedIn, SessionID: "a", UserID: u.ID, Session: newSession("a", u)})

	st := r.State()
	assert.False(t, st.Loading)
	assert.True(t, st.IsUser)

	close(release)
	st = r.Wait(waitCtx(t))
	assert.False(t, st.IsAuthenticated, "the initial fetch resolved last and wins")
}

func TestResolver_SignedOutEventClearsState(t *testing.T) {
	src := newFakeSource()
	u := newUser(auth.RoleAdmin)
	src.getSessionFn = func(context.Context, string) (*auth.Session, error) { return newSession("a", u), nil }

	r := session.New(src, "tok-a")
	defer r.Close()
	r.Start(context.Background())
	require.True(t, r.Wait(waitCtx(t)).IsAdmin)

	src.hub.Publish(auth.Event{Kind: auth.EventSignedOut, SessionID: "a", UserID: u.ID})

	st := r.State()
	assert.False(t, st.IsAuthenticated)
	assert.False(t, st.IsAdmin)
}

func TestResolver_IgnoresOtherSessions(t *testing.T) {
	src := newFakeSource()
	u := newUser(auth.RoleUser)
	src.getSessionFn = func(context.Context, string) (*auth.Session, error) { return newSession("a", u), nil }

	r := session.New(src, "tok-a")
	defer r.Close()
	r.Start(context.Background())
	r.Wait(waitCtx(t))

	src.hub.Publish(auth.Event{Kind: auth.EventSignedOut, SessionID: "b", UserID: uuid.New()})

	assert.True(t, r.State().IsAuthenticated)
}

func TestResolver_UserUpdatedAppliesAcrossSessions(t *testing.T) {
	src := newFakeSource()
	u := newUser(auth.RoleUser)
	src.getSessionFn = func(context.Context, string) (*auth.Session, error) { return newSession("a", u), nil }

	r := session.New(src, "tok-a")
	defer r.Close()
	r.Start(context.Background())
	r.Wait(waitCtx(t))

	promoted := &auth.User{ID: u.ID, Email: u.Email, Metadata: u.Metadata.Merge(auth.Metadata{"role": auth.RoleAdmin})}
	src.hub.Publish(auth.Event{Kind: auth.EventUserUpdated, SessionID: "other-device", UserID: u.ID, User: promoted})

	st := r.State()
	assert.True(t, st.IsAdmin)
	assert.Equal(t, auth.RoleAdmin, st.Session.User.Role())
}

func TestResolver_PasswordRecoveryEventSetsRecovery(t *testing.T) {
	src := newFakeSource()
	r := session.New(src, "tok-rec")
	defer r.Close()
	r.Start(context.Background())
	r.Wait(waitCtx(t))

	sess := newSession("rec", newUser(auth.RoleUser))
	sess.Recovery = true
	src.hub.Publish(auth.Event{Kind: auth.EventPasswordRecovery, SessionID: "rec", UserID: sess.User.ID, Session: sess})

	assert.True(t, r.State().Recovery)
}

func TestResolver_UpdatesSignal(t *testing.T) {
	src := newFakeSource()
	r := session.New(src, "")
	defer r.Close()
	r.Start(context.Background())

	select {
	case <-r.Updates():
	case <-time.After(2 * time.Second):
		t.Fatal("expected an update after the initial fetch")
	}
}

// --- Close Tests ---

func TestResolver_CloseStopsEvents(t *testing.T) {
	src := newFakeSource()
	u := newUser(auth.RoleUser)
	src.getSessionFn = func(context.Context, string) (*auth.Session, error) { return newSession("a", u), nil }

	r := session.New(src, "tok-a")
	r.Start(context.Background())
	r.Wait(waitCtx(t))

	r.Close()
	assert.Equal(t, 0, src.hub.Len())

	assert.NotPanics(t, func() {
		src.hub.Publish(auth.Event{Kind: auth.EventSignedOut, SessionID: "a", UserID: u.ID})
	})
	assert.True(t, r.State().IsAuthenticated)

	assert.NotPanics(t, r.Close)
}

func TestResolver_LateFetchAfterCloseIsDiscarded(t *testing.T) {
	src := newFakeSource()
	release := make(chan struct{})
	src.getSessionFn = func(context.Context, string) (*auth.Session, error) {
		<-release
		return newSession("a", newUser(auth.RoleAdmin)), nil
	}

	r := session.New(src, "tok-a")
	r.Start(context.Background())
	r.Close()
	close(release)

	st := r.Wait(waitCtx(t))
	assert.True(t, st.Loading)
	assert.False(t, st.IsAdmin)
}

func TestResolver_CloseBeforeStart(t *testing.T) {
	src := newFakeSource()
	r := session.New(src, "tok-a")
	r.Close()
	r.Start(context.Background())

	assert.Equal(t, 0, src.hub.Len())
	assert.True(t, r.Wait(waitCtx(t)).Loading)
}

// --- SignIn / SignOut Tests ---

func TestResolver_SignInAdoptsSession(t *testing.T) {
	src := newFakeSource()
	u := newUser(auth.RoleUser)
	src.signInFn = func(_ context.Context, email, password string) (*auth.Session, error) {
		assert.Equal(t, "t@example.com", email)
		assert.Equal(t, "secret1", password)
		return newSession("new", u), nil
	}

	r := session.New(src, "")
	defer r.Close()
	r.Start(context.Background())
	r.Wait(waitCtx(t))

	sess, err := r.SignIn(context.Background(), "t@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "new", sess.ID)
	assert.Equal(t, "tok-new", r.Token())
	assert.True(t, r.State().IsUser)

	// events for the adopted session now reach the resolver
	src.hub.Publish(auth.Event{Kind: auth.EventSignedOut, SessionID: "new", UserID: u.ID})
	assert.False(t, r.State().IsAuthenticated)
}

func TestResolver_SignInErrorPropagates(t *testing.T) {
	src := newFakeSource()
	src.signInFn = func(context.Context, string, string) (*auth.Session, error) {
		return nil, auth.ErrInvalidCredentials
	}

	r := session.New(src, "")
	defer r.Close()
	r.Start(context.Background())
	r.Wait(waitCtx(t))

	_, err := r.SignIn(context.Background(), "t@example.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.False(t, r.State().IsAuthenticated)
}

func TestResolver_SignOut(t *testing.T) {
	src := newFakeSource()
	src.getSessionFn = func(context.Context, string) (*auth.Session, error) {
		return newSession("a", newUser(auth.RoleUser)), nil
	}
	var gotToken string
	src.signOutFn = func(_ context.Context, token string) error {
		gotToken = token
		return nil
	}

	r := session.New(src, "tok-a")
	defer r.Close()
	r.Start(context.Background())
	r.Wait(waitCtx(t))

	require.NoError(t, r.SignOut(context.Background()))
	assert.Equal(t, "tok-a", gotToken)
	assert.False(t, r.State().IsAuthenticated)
}

func TestResolver_SignOutErrorPropagates(t *testing.T) {
	src := newFakeSource()
	src.getSessionFn = func(context.Context, string) (*auth.Session, error) {
		return newSession("a", newUser(auth.RoleUser)), nil
	}
	boom := errors.New("store unavailable")
	src.signOutFn = func(context.Context, string) error { return boom }

	r := session.New(src, "tok-a")
	defer r.Close()
	r.Start(context.Background())
	r.Wait(waitCtx(t))

	assert.ErrorIs(t, r.SignOut(context.Background()), boom)
	assert.True(t, r.State().IsAuthenticated)
}
