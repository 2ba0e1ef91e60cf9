package role

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/collegepedia/collegepedia/internal/auth"
	"github.com/collegepedia/collegepedia/internal/profile"
)

// ErrNoUser is reported when the access token does not resolve to a user.
var ErrNoUser = errors.New("no signed-in user")

// Source is the part of the session source the Enforcer needs.
type Source interface {
	GetUser(ctx context.Context, token string) (*auth.User, error)
	UpdateUserMetadata(ctx context.Context, token string, patch auth.Metadata) (*auth.User, error)
}

// ProfileStore is the part of the profile repository the Enforcer needs.
type ProfileStore interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
	Create(ctx context.Context, p *profile.Profile) error
}

// Result describes one reconciliation. RoleErr and ProfileErr are
// independent: a failed role update does not skip the profile check.
type Result struct {
	UserID         uuid.UUID
	Previous       string
	Role           string
	Updated        bool
	ProfileCreated bool
	RoleErr        error
	ProfileErr     error
}

// Err joins RoleErr and ProfileErr.
func (r Result) Err() error {
	return errors.Join(r.RoleErr, r.ProfileErr)
}

// Enforcer brings the stored role in line with the Policy after sign-in.
type Enforcer struct {
	source   Source
	profiles ProfileStore
	policy   Policy
}

// NewEnforcer creates an Enforcer.
func NewEnforcer(source Source, profiles ProfileStore, policy Policy) *Enforcer {
	return &Enforcer{source: source, profiles: profiles, policy: policy}
}

// Reconcile re-reads the user behind token, writes the computed role only
// when it differs from the stored one and makes sure a profile row exists.
func (e *Enforcer) Reconcile(ctx context.Context, token string) Result {
	var res Result

	u, err := e.source.GetUser(ctx, token)
	if err != nil {
		res.RoleErr = fmt.Errorf("fetching user: %w", err)
		return res
	}
	if u == nil {
		res.RoleErr = ErrNoUser
		return res
	}

	res.UserID = u.ID
	res.Previous = u.Role()
	res.Role = e.policy.Decide(u)

	if res.Previous != res.Role {
		if _, err := e.source.UpdateUserMetadata(ctx, token, auth.Metadata{auth.MetaRole: res.Role}); err != nil {
			res.RoleErr = fmt.Errorf("updating role: %w", err)
		} else {
			res.Updated = true
		}
	}

	res.ProfileCreated, res.ProfileErr = e.ensureProfile(ctx, u)
	return res
}

func (e *Enforcer) ensureProfile(ctx context.Context, u *auth.User) (bool, error) {
	exists, err := e.profiles.Exists(ctx, u.ID)
	if err != nil {
		return false, fmt.Errorf("checking profile: %w", err)
	}
	if exists {
		return false, nil
	}

	err = e.profiles.Create(ctx, &profile.Profile{UserID: u.ID, FullName: u.FullName()})
	if errors.Is(err, profile.ErrProfileExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("creating profile: %w", err)
	}
	return true, nil
}
