// Package session resolves the current session, user and role for one client
// and keeps them current as session change events arrive.
package session

import (
	"context"
	"sync"

	"github.com/collegepedia/collegepedia/internal/auth"
)

// Source is the session capability set a Resolver depends on. auth.Service
// implements it.
type Source interface {
	GetSession(ctx context.Context, token string) (*auth.Session, error)
	OnSessionChange(fn func(auth.Event)) *auth.Subscription
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context, token string) error
	SessionID(token string) string
}

// State is a point-in-time snapshot of a Resolver.
type State struct {
	Session *auth.Session
	User    *auth.User
	// Role is metadata.role of User, "" when absent.
	Role            string
	Loading         bool
	IsAuthenticated bool
	IsAdmin         bool
	IsUser          bool
	// Recovery is set while the session was opened from a password recovery link.
	Recovery bool
	// Err is the error of the initial fetch, if any.
	Err error
}

// Resolver tracks the session of a single client. It starts in the loading
// state; the initial fetch and change events both write the same fields and
// the last write wins. After Close nothing mutates the state any more.
type Resolver struct {
	source Source

	mu        sync.Mutex
	token     string
	sessionID string
	session   *auth.Session
	user      *auth.User
	loading   bool
	err       error
	started   bool
	closed    bool
	sub       *auth.Subscription

	done    chan struct{}
	updates chan struct{}
}

// New creates a Resolver for the given access token. An empty token
// resolves to the signed-out state.
func New(source Source, token string) *Resolver {
	return &Resolver{
		source:    source,
		token:     token,
		sessionID: source.SessionID(token),
		loading:   true,
		done:      make(chan struct{}),
		updates:   make(chan struct{}, 1),
	}
}

// Start subscribes to change events and issues the initial fetch in the
// background. Calling Start more than once has no effect.
func (r *Resolver) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started || r.closed {
		r.mu.Unlock()
		return
	}
	r.started = true
	token := r.token
	r.mu.Unlock()

	sub := r.source.OnSessionChange(r.handle)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		sub.Unsubscribe()
		close(r.done)
		return
	}
	r.sub = sub
	r.mu.Unlock()

	go r.fetch(ctx, token)
}

func (r *Resolver) fetch(ctx context.Context, token string) {
	defer close(r.done)

	sess, err := r.source.GetSession(ctx, token)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.setSession(sess)
	r.err = err
	r.loading = false
	r.notify()
}

// handle applies a change event addressed to this client.
func (r *Resolver) handle(ev auth.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || !r.matches(ev) {
		return
	}

	switch ev.Kind {
	case auth.EventSignedOut:
		r.setSession(nil)
	case auth.EventUserUpdated:
		if ev.User == nil {
			return
		}
		r.user = ev.User
		if r.session != nil {
			sess := *r.session
			sess.User = ev.User
			r.session = &sess
		}
	default:
		if ev.Session == nil {
			return
		}
		r.setSession(ev.Session)
	}

	r.loading = false
	r.notify()
}

// matches reports whether ev concerns this client's session. User updates
// apply to every session of the user.
func (r *Resolver) matches(ev auth.Event) bool {
	if r.sessionID != "" && ev.SessionID == r.sessionID {
		return true
	}
	return ev.Kind == auth.EventUserUpdated && r.user != nil && ev.UserID == r.user.ID
}

func (r *Resolver) setSession(sess *auth.Session) {
	r.session = sess
	if sess == nil {
		r.user = nil
		return
	}
	r.user = sess.User
	r.sessionID = sess.ID
	if sess.AccessToken != "" {
		r.token = sess.AccessToken
	}
}

func (r *Resolver) notify() {
	select {
	case r.updates <- struct{}{}:
	default:
	}
}

// State returns the current snapshot.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	role := r.user.Role()
	return State{
		Session:         r.session,
		User:            r.user,
		Role:            role,
		Loading:         r.loading,
		IsAuthenticated: r.user != nil,
		IsAdmin:         role == auth.RoleAdmin,
		IsUser:          role == auth.RoleUser,
		Recovery:        r.session != nil && r.session.Recovery,
		Err:             r.err,
	}
}

// Wait blocks until the initial fetch has resolved or ctx is done and
// returns the state at that point, which may still be loading.
func (r *Resolver) Wait(ctx context.Context) State {
	select {
	case <-r.done:
	case <-ctx.Done():
	}
	return r.State()
}

// Updates signals after every state change. Signals coalesce; readers
// should call State after receiving one.
func (r *Resolver) Updates() <-chan struct{} {
	return r.updates
}

// Token returns the access token currently tracked by the resolver.
func (r *Resolver) Token() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

// SignIn exchanges credentials through the source and adopts the new session.
func (r *Resolver) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	sess, err := r.source.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.setSession(sess)
		r.loading = false
		r.notify()
	}
	return sess, nil
}

// SignOut ends the tracked session through the source.
func (r *Resolver) SignOut(ctx context.Context) error {
	token := r.Token()
	if err := r.source.SignOut(ctx, token); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.setSession(nil)
		r.loading = false
		r.notify()
	}
	return nil
}

// Close unsubscribes from change events. Safe to call more than once.
func (r *Resolver) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	if !r.started {
		r.started = true
		close(r.done)
	}
	sub := r.sub
	r.sub = nil
	r.mu.Unlock()

	sub.Unsubscribe()
}
