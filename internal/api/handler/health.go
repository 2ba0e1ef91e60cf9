package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/collegepedia/collegepedia/internal/api/middleware"
	"github.com/collegepedia/collegepedia/internal/api/response"
)

const healthCheckTimeout = 2 * time.Second

// Pinger checks connectivity to a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to the Pinger interface.
type PingFunc func(ctx context.Context) error

// Ping calls f(ctx).
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	database Pinger
	sessions Pinger
	version  string
}

// NewHealthHandler creates a new HealthHandler. Either pinger may be nil.
func NewHealthHandler(database, sessions Pinger, version string) *HealthHandler {
	return &HealthHandler{
		database: database,
		sessions: sessions,
		version:  version,
	}
}

type dependencyStatus struct {
	Connected bool    `json:"connected"`
	Error     *string `json:"error"`
}

type healthData struct {
	Status       string           `json:"status"`
	Version      string           `json:"version"`
	Database     dependencyStatus `json:"database"`
	SessionStore dependencyStatus `json:"sessionStore"`
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	data := healthData{
		Status:       "healthy",
		Version:      h.version,
		Database:     check(ctx, h.database),
		SessionStore: check(ctx, h.sessions),
	}
	if !data.Database.Connected || !data.SessionStore.Connected {
		data.Status = "degraded"
	}

	response.Success(w, http.StatusOK, data, requestID)
}

func check(ctx context.Context, p Pinger) dependencyStatus {
	if p == nil {
		msg := "not configured"
		return dependencyStatus{Error: &msg}
	}
	if err := p.Ping(ctx); err != nil {
		msg := err.Error()
		return dependencyStatus{Error: &msg}
	}
	return dependencyStatus{Connected: true}
}
