// Package gate decides what a client may see given its resolved session.
package gate

import (
	"github.com/collegepedia/collegepedia/internal/auth"
	"github.com/collegepedia/collegepedia/internal/session"
)

// RouteOutcome is the decision of the Route gate.
type RouteOutcome int

const (
	// Placeholder means the session is still loading.
	Placeholder RouteOutcome = iota
	// RedirectToSignIn means nobody is signed in.
	RedirectToSignIn
	// Deny means the signed-in role does not match the required one.
	Deny
	// Allow means the route may render.
	Allow
)

// DefaultRole is the role Route requires when none is given.
const DefaultRole = auth.RoleAdmin

func (o RouteOutcome) String() string {
	switch o {
	case Placeholder:
		return "placeholder"
	case RedirectToSignIn:
		return "redirect_to_sign_in"
	case Deny:
		return "deny"
	case Allow:
		return "allow"
	default:
		return "unknown"
	}
}

// Route decides whether a role-gated route may render for st. An empty
// require means DefaultRole. A user without a role is never allowed.
func Route(st session.State, require string) RouteOutcome {
	if require == "" {
		require = DefaultRole
	}

	switch {
	case st.Loading:
		return Placeholder
	case !st.IsAuthenticated:
		return RedirectToSignIn
	case st.Role == "" || st.Role != require:
		return Deny
	default:
		return Allow
	}
}

// Fragment reports whether content restricted to allow may be included.
// Nothing is included while the session is loading.
func Fragment(st session.State, allow string) bool {
	if st.Loading || st.Role == "" {
		return false
	}
	return st.Role == allow
}
