package middleware

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/collegepedia/collegepedia/internal/api/response"
	"github.com/collegepedia/collegepedia/internal/gate"
)

// SignInPath is where unauthenticated callers of gated routes are sent.
const SignInPath = "/auth"

// RequireRole guards a route with the Route gate. It must run after Session.
//
//   - still loading: 503 with Retry-After so the client can try again
//   - signed out: 303 to the sign-in page, remembering the original location
//   - wrong role: 403 ACCESS_DENIED, no redirect
func RequireRole(role string) func(http.Handler) http.Handler {
	if role == "" {
		role = gate.DefaultRole
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())
			st := GetState(r.Context())

			switch gate.Route(st, role) {
			case gate.Placeholder:
				w.Header().Set("Retry-After", "1")
				response.Err(w, http.StatusServiceUnavailable, "SESSION_LOADING", "Loading…", requestID)
			case gate.RedirectToSignIn:
				http.Redirect(w, r, SignInPath+"?from="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			case gate.Deny:
				current := st.Role
				if current == "" {
					current = "none"
				}
				response.Err(w, http.StatusForbidden, "ACCESS_DENIED",
					fmt.Sprintf("Access denied. Required role: %s. Current role: %s", role, current), requestID)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
