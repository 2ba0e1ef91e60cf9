package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/collegepedia/collegepedia/internal/api/middleware"
	"github.com/collegepedia/collegepedia/internal/api/response"
	"github.com/collegepedia/collegepedia/internal/api/validation"
	"github.com/collegepedia/collegepedia/internal/auth"
	"github.com/collegepedia/collegepedia/internal/role"
	"github.com/collegepedia/collegepedia/internal/session"
)

const eventsHeartbeat = 15 * time.Second

// AuthService is the account management surface used by AuthHandler.
// Sign-in and sign-out go through the request's session resolver instead.
type AuthService interface {
	SignUp(ctx context.Context, email, password, fullName string) (*auth.User, error)
	Refresh(ctx context.Context, token string) (*auth.Session, error)
	UpdateUserMetadata(ctx context.Context, token string, patch auth.Metadata) (*auth.User, error)
	RequestPasswordRecovery(ctx context.Context, email string) error
	VerifyRecovery(ctx context.Context, recoveryToken string) (*auth.Session, error)
	UpdatePassword(ctx context.Context, token, newPassword string) error
}

// RoleReconciler reconciles the stored role after sign-in.
type RoleReconciler interface {
	Reconcile(ctx context.Context, token string) role.Result
}

// AuthHandlerConfig holds the AuthHandler settings.
type AuthHandlerConfig struct {
	CookieSecure bool
	// ReservedNames cannot be used as a display name.
	ReservedNames []string
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Metadata map[string]any `json:"metadata"`
}

type recoverRequest struct {
	Email string `json:"email"`
}

type verifyRecoveryRequest struct {
	Token string `json:"token"`
}

type updatePasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type userResponse struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	FullName  string         `json:"fullName"`
	Role      *string        `json:"role"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt string         `json:"createdAt"`
}

type sessionResponse struct {
	Loading         bool          `json:"loading"`
	IsAuthenticated bool          `json:"isAuthenticated"`
	IsAdmin         bool          `json:"isAdmin"`
	IsUser          bool          `json:"isUser"`
	Recovery        bool          `json:"recovery"`
	Role            *string       `json:"role"`
	User            *userResponse `json:"user"`
	ExpiresAt       *string       `json:"expiresAt"`
	AccessToken     string        `json:"accessToken,omitempty"`
}

type authPageResponse struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	From            string `json:"from"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u *auth.User) *userResponse {
	if u == nil {
		return nil
	}
	out := &userResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FullName:  u.FullName(),
		Metadata:  u.Metadata,
		CreatedAt: formatTime(u.CreatedAt),
	}
	if r := u.Role(); r != "" {
		out.Role = &r
	}
	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}
	return out
}

func toSessionResponse(st session.State) sessionResponse {
	out := sessionResponse{
		Loading:         st.Loading,
		IsAuthenticated: st.IsAuthenticated,
		IsAdmin:         st.IsAdmin,
		IsUser:          st.IsUser,
		Recovery:        st.Recovery,
		User:            toUserResponse(st.User),
	}
	if st.Role != "" {
		r := st.Role
		out.Role = &r
	}
	if st.Session != nil {
		exp := formatTime(st.Session.ExpiresAt)
		out.ExpiresAt = &exp
	}
	return out
}

// safeRedirect accepts only local absolute paths.
func safeRedirect(from string) string {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return "/"
	}
	return from
}

// AuthHandler handles sign-up, sign-in, session and password recovery endpoints.
type AuthHandler struct {
	service  AuthService
	enforcer RoleReconciler
	cfg      AuthHandlerConfig
	now      func() time.Time
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service AuthService, enforcer RoleReconciler, cfg AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{service: service, enforcer: enforcer, cfg: cfg, now: time.Now}
}

// resolver returns the request's resolver or writes a 500 when the
// Session middleware is missing.
func (h *AuthHandler) resolver(w http.ResponseWriter, r *http.Request) *session.Resolver {
	res := middleware.GetResolver(r.Context())
	if res == nil {
		slog.Error("session resolver missing from request context", "path", r.URL.Path)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Session unavailable", middleware.GetRequestID(r.Context()))
	}
	return res
}

func (h *AuthHandler) unauthorized(w http.ResponseWriter, r *http.Request) {
	response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sign in required", middleware.GetRequestID(r.Context()))
}

// Page handles GET /auth. Signed-in callers are sent back to where they came from.
func (h *AuthHandler) Page(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	from := safeRedirect(r.URL.Query().Get("from"))

	if middleware.GetState(r.Context()).IsAuthenticated {
		http.Redirect(w, r, from, http.StatusSeeOther)
		return
	}

	response.Success(w, http.StatusOK, authPageResponse{IsAuthenticated: false, From: from}, requestID)
}

// SignUp handles POST /auth/signup. No session is opened.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req signUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fieldErrors := validation.ValidateSignUpRequest(validation.SignUpRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	}, h.cfg.ReservedNames...)
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	u, err := h.service.SignUp(r.Context(), req.Email, req.Password, strings.TrimSpace(req.FullName))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			response.Err(w, http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists", requestID)
		case errors.Is(err, auth.ErrWeakPassword):
			response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
				[]validation.FieldError{{Field: "password", Message: err.Error()}}, requestID)
		default:
			slog.Error("failed to sign up", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account", requestID)
		}
		return
	}

	response.Success(w, http.StatusCreated, toUserResponse(u), requestID)
}

// SignIn handles POST /auth/signin. The stored role is reconciled before
// the session is returned; reconciliation failures are logged only.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	res := h.resolver(w, r)
	if res == nil {
		return
	}

	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fieldErrors := validation.ValidateSignInRequest(req.Email, req.Password); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	sess, err := res.SignIn(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Err(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", requestID)
			return
		}
		slog.Error("failed to sign in", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign in", requestID)
		return
	}

	result := h.enforcer.Reconcile(r.Context(), sess.AccessToken)
	if err := result.Err(); err != nil {
		slog.Warn("role reconciliation incomplete", "error", err, "userId", result.UserID)
	} else if result.Updated {
		slog.Info("role reconciled", "userId", result.UserID, "previous", result.Previous, "role", result.Role)
	}

	middleware.SetSessionCookie(w, sess.AccessToken, sess.ExpiresAt, h.cfg.CookieSecure)

	data := toSessionResponse(res.State())
	data.AccessToken = sess.AccessToken
	response.Success(w, http.StatusOK, data, requestID)
}

// SignOut handles POST /auth/signout. Signing out without a valid session succeeds.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	res := h.resolver(w, r)
	if res == nil {
		return
	}

	if res.Token() != "" {
		if err := res.SignOut(r.Context()); err != nil && !errors.Is(err, auth.ErrInvalidToken) {
			slog.Error("failed to sign out", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign out", requestID)
			return
		}
	}

	middleware.ClearSessionCookie(w, h.cfg.CookieSecure)
	response.NoContent(w)
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	st := middleware.GetState(r.Context())
	if !st.IsAuthenticated {
		h.unauthorized(w, r)
		return
	}

	sess, err := h.service.Refresh(r.Context(), st.Session.AccessToken)
	if err != nil {
		if errors.Is(err, auth.ErrNoSession) {
			h.unauthorized(w, r)
			return
		}
		slog.Error("failed to refresh session", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to refresh session", requestID)
		return
	}

	middleware.SetSessionCookie(w, sess.AccessToken, sess.ExpiresAt, h.cfg.CookieSecure)

	st.Session = sess
	st.User = sess.User
	data := toSessionResponse(st)
	data.AccessToken = sess.AccessToken
	response.Success(w, http.StatusOK, data, requestID)
}

// Session handles GET /auth/session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	response.Success(w, http.StatusOK, toSessionResponse(middleware.GetState(r.Context())), requestID)
}

// UpdateUser handles PATCH /auth/user. Clients cannot write the role.
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	st := middleware.GetState(r.Context())
	if !st.IsAuthenticated {
		h.unauthorized(w, r)
		return
	}

	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fieldErrors := validation.ValidateMetadataPatch(req.Metadata, h.cfg.ReservedNames...); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	u, err := h.service.UpdateUserMetadata(r.Context(), st.Session.AccessToken, auth.Metadata(req.Metadata))
	if err != nil {
		if errors.Is(err, auth.ErrNoSession) {
			h.unauthorized(w, r)
			return
		}
		slog.Error("failed to update user metadata", "error", err, "userId", st.User.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update user", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(u), requestID)
}

// Recover handles POST /auth/recover. The response does not reveal whether
// the email belongs to an account.
func (h *AuthHandler) Recover(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req recoverRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fieldErrors := validation.ValidateRecoveryRequest(req.Email); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if err := h.service.RequestPasswordRecovery(r.Context(), strings.TrimSpace(req.Email)); err != nil {
		slog.Error("failed to request password recovery", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to request password recovery", requestID)
		return
	}

	response.Success(w, http.StatusAccepted, messageResponse{
		Message: "If the account exists, a recovery link has been sent",
	}, requestID)
}

// VerifyRecovery handles POST /auth/recover/verify and opens a recovery session.
func (h *AuthHandler) VerifyRecovery(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req verifyRecoveryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
			[]validation.FieldError{{Field: "token", Message: "token is required"}}, requestID)
		return
	}

	sess, err := h.service.VerifyRecovery(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRecovery) {
			response.Err(w, http.StatusBadRequest, "INVALID_RECOVERY_TOKEN", "Recovery link is invalid or has expired", requestID)
			return
		}
		slog.Error("failed to verify recovery token", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to verify recovery token", requestID)
		return
	}

	middleware.SetSessionCookie(w, sess.AccessToken, sess.ExpiresAt, h.cfg.CookieSecure)

	userRole := sess.User.Role()
	data := toSessionResponse(session.State{
		Session:         sess,
		User:            sess.User,
		Role:            userRole,
		IsAuthenticated: true,
		IsAdmin:         userRole == auth.RoleAdmin,
		IsUser:          userRole == auth.RoleUser,
		Recovery:        sess.Recovery,
	})
	data.AccessToken = sess.AccessToken
	response.Success(w, http.StatusOK, data, requestID)
}

// UpdatePassword handles PUT /auth/password.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	st := middleware.GetState(r.Context())
	if !st.IsAuthenticated {
		h.unauthorized(w, r)
		return
	}

	var req updatePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fieldErrors := validation.ValidatePasswordUpdate(req.Password, req.ConfirmPassword); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if err := h.service.UpdatePassword(r.Context(), st.Session.AccessToken, req.Password); err != nil {
		if errors.Is(err, auth.ErrNoSession) {
			h.unauthorized(w, r)
			return
		}
		slog.Error("failed to update password", "error", err, "userId", st.User.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update password", requestID)
		return
	}

	response.Success(w, http.StatusOK, messageResponse{Message: "Password updated"}, requestID)
}

// Events handles GET /auth/events, streaming the caller's session state as
// server-sent events until the client disconnects or the session expires.
func (h *AuthHandler) Events(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	res := h.resolver(w, r)
	if res == nil {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Streaming unsupported", requestID)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(st session.State) bool {
		payload, err := json.Marshal(toSessionResponse(st))
		if err != nil {
			slog.Error("failed to encode session event", "error", err)
			return false
		}
		if _, err := fmt.Fprintf(w, "event: session\ndata: %s\n\n", payload); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !send(res.State()) {
		return
	}

	ticker := time.NewTicker(eventsHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-res.Updates():
			if !send(res.State()) {
				return
			}
		case <-ticker.C:
			st := res.State()
			if st.Session != nil && st.Session.Expired(h.now()) {
				send(session.State{})
				return
			}
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
