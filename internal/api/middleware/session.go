package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/collegepedia/collegepedia/internal/session"
)

// SessionCookieName is the cookie carrying the access token for browsers.
const SessionCookieName = "session_token"

const resolverKey contextKey = "sessionResolver"

// ExtractToken returns the access token of r: a Bearer Authorization header
// wins over the session cookie. It returns "" when neither is present.
func ExtractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// Session resolves the caller's session once per request. The resolver is
// given at most timeout to finish its initial fetch; a resolver that is
// still loading is passed on as is. It is closed when the request ends.
func Session(source session.Source, timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := session.New(source, ExtractToken(r))
			defer res.Close()

			res.Start(r.Context())

			waitCtx, cancel := context.WithTimeout(r.Context(), timeout)
			res.Wait(waitCtx)
			cancel()

			ctx := context.WithValue(r.Context(), resolverKey, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetResolver returns the request's resolver, or nil outside the Session middleware.
func GetResolver(ctx context.Context) *session.Resolver {
	res, _ := ctx.Value(resolverKey).(*session.Resolver)
	return res
}

// GetState returns the request's session state. Without a resolver the
// caller is treated as signed out.
func GetState(ctx context.Context) session.State {
	if res := GetResolver(ctx); res != nil {
		return res.State()
	}
	return session.State{}
}

// SetSessionCookie stores token in an HTTP-only cookie that expires with the session.
func SetSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
