package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted on sign-up and reset.
const MinPasswordLength = 6

// ServiceConfig holds the tunables of a Service.
type ServiceConfig struct {
	BcryptCost  int
	SessionTTL  time.Duration
	RecoveryTTL time.Duration
}

// Service is the session source: it exchanges credentials for sessions,
// resolves access tokens back to sessions and publishes every change.
type Service struct {
	users    UserRepository
	store    SessionStore
	tokens   *TokenManager
	hub      *Hub
	notifier RecoveryNotifier
	cfg      ServiceConfig
	now      func() time.Time
}

// NewService creates a new auth Service. A nil notifier falls back to LogRecoveryNotifier.
func NewService(users UserRepository, store SessionStore, tokens *TokenManager, hub *Hub, notifier RecoveryNotifier, cfg ServiceConfig) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.RecoveryTTL <= 0 {
		cfg.RecoveryTTL = time.Hour
	}
	if notifier == nil {
		notifier = LogRecoveryNotifier{}
	}
	return &Service{
		users:    users,
		store:    store,
		tokens:   tokens,
		hub:      hub,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// OnSessionChange subscribes fn to session change events.
func (s *Service) OnSessionChange(fn func(Event)) *Subscription {
	return s.hub.Subscribe(fn)
}

// SessionID returns the session named by token, or "" when the token does not verify.
func (s *Service) SessionID(token string) string {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return ""
	}
	return claims.SessionID
}

// SignUp creates a user with the default role. No session is opened; the
// caller has to sign in explicitly.
func (s *Service) SignUp(ctx context.Context, email, password, fullName string) (*User, error) {
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
		Metadata: Metadata{
			MetaFullName: strings.TrimSpace(fullName),
			MetaRole:     RoleUser,
		},
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	slog.Info("user signed up", "userId", u.ID)
	return u, nil
}

// SignIn exchanges credentials for a new session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	sess, err := s.open(ctx, u, false)
	if err != nil {
		return nil, err
	}

	slog.Info("user signed in", "userId", u.ID)
	s.hub.Publish(Event{Kind: EventSignedIn, SessionID: sess.ID, UserID: u.ID, Session: sess})
	return sess, nil
}

// SignOut ends the session named by token.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	userID, _ := uuid.Parse(claims.Subject)
	s.hub.Publish(Event{Kind: EventSignedOut, SessionID: claims.SessionID, UserID: userID})
	return nil
}

// GetSession resolves token to its live session. A missing, invalid or
// expired token yields (nil, nil); only storage failures are errors.
func (s *Service) GetSession(ctx context.Context, token string) (*Session, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, nil
	}

	stored, err := s.store.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if stored == nil || !s.now().Before(stored.ExpiresAt) {
		return nil, nil
	}

	u, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading session user: %w", err)
	}

	return &Session{
		ID:          stored.ID,
		AccessToken: token,
		User:        u,
		ExpiresAt:   stored.ExpiresAt,
		Recovery:    stored.Recovery,
	}, nil
}

// GetUser returns the user behind token, or (nil, nil) when there is no session.
func (s *Service) GetUser(ctx context.Context, token string) (*User, error) {
	sess, err := s.GetSession(ctx, token)
	if err != nil || sess == nil {
		return nil, err
	}
	return sess.User, nil
}

// UpdateUserMetadata merges patch into the metadata of the user behind token.
// It is a trusted server-side operation; HTTP callers must filter protected keys.
func (s *Service) UpdateUserMetadata(ctx context.Context, token string, patch Metadata) (*User, error) {
	sess, err := s.requireSession(ctx, token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.MergeMetadata(ctx, sess.User.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("updating metadata: %w", err)
	}

	sess.User = u
	s.hub.Publish(Event{Kind: EventUserUpdated, SessionID: sess.ID, UserID: u.ID, Session: sess, User: u})
	return u, nil
}

// Refresh extends the session behind token and issues a new access token.
func (s *Service) Refresh(ctx context.Context, token string) (*Session, error) {
	sess, err := s.requireSession(ctx, token)
	if err != nil {
		return nil, err
	}

	sess.ExpiresAt = s.now().Add(s.cfg.SessionTTL)
	if err := s.store.Update(ctx, StoredSession{
		ID:        sess.ID,
		UserID:    sess.User.ID,
		ExpiresAt: sess.ExpiresAt,
		Recovery:  sess.Recovery,
	}); err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}

	if sess.AccessToken, err = s.tokens.Issue(sess); err != nil {
		return nil, err
	}

	s.hub.Publish(Event{Kind: EventTokenRefreshed, SessionID: sess.ID, UserID: sess.User.ID, Session: sess})
	return sess, nil
}

// RequestPasswordRecovery issues a recovery token for email. Unknown emails
// are not reported, so the endpoint cannot be used to probe accounts.
func (s *Service) RequestPasswordRecovery(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("looking up user: %w", err)
	}

	token, err := GenerateID()
	if err != nil {
		return err
	}
	if err := s.store.SaveRecovery(ctx, token, u.ID, s.cfg.RecoveryTTL); err != nil {
		return fmt.Errorf("saving recovery token: %w", err)
	}

	return s.notifier.SendRecovery(ctx, u, token)
}

// VerifyRecovery consumes a recovery token and opens a recovery session,
// announced to subscribers as EventPasswordRecovery.
func (s *Service) VerifyRecovery(ctx context.Context, recoveryToken string) (*Session, error) {
	userID, err := s.store.ConsumeRecovery(ctx, recoveryToken)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidRecovery
		}
		return nil, fmt.Errorf("loading recovery user: %w", err)
	}

	sess, err := s.open(ctx, u, true)
	if err != nil {
		return nil, err
	}

	s.hub.Publish(Event{Kind: EventPasswordRecovery, SessionID: sess.ID, UserID: u.ID, Session: sess})
	return sess, nil
}

// UpdatePassword sets a new password for the user behind token.
func (s *Service) UpdatePassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	sess, err := s.requireSession(ctx, token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, sess.User.ID, string(hash)); err != nil {
		return err
	}

	slog.Info("password updated", "userId", sess.User.ID, "recovery", sess.Recovery)
	s.hub.Publish(Event{Kind: EventUserUpdated, SessionID: sess.ID, UserID: sess.User.ID, Session: sess, User: sess.User})
	return nil
}

func (s *Service) requireSession(ctx context.Context, token string) (*Session, error) {
	sess, err := s.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}
	return sess, nil
}

func (s *Service) open(ctx context.Context, u *User, recovery bool) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:        id,
		User:      u,
		ExpiresAt: s.now().Add(s.cfg.SessionTTL),
		Recovery:  recovery,
	}

	if err := s.store.Create(ctx, StoredSession{
		ID:        sess.ID,
		UserID:    u.ID,
		ExpiresAt: sess.ExpiresAt,
		Recovery:  recovery,
	}); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	if sess.AccessToken, err = s.tokens.Issue(sess); err != nil {
		return nil, err
	}
	return sess, nil
}
