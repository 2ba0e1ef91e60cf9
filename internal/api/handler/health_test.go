package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegepedia/collegepedia/internal/api/handler"
)

func okPinger() handler.PingFunc {
	return func(_ context.Context) error { return nil }
}

func failingPinger(msg string) handler.PingFunc {
	return func(_ context.Context) error { return errors.New(msg) }
}

func serveHealth(t *testing.T, h *handler.HealthHandler) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env["data"].(map[string]interface{})
}

func TestHealthHandler_Healthy(t *testing.T) {
	// Arrange
	h := handler.NewHealthHandler(okPinger(), okPinger(), "0.1.0")

	// Act
	data := serveHealth(t, h)

	// Assert
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "0.1.0", data["version"])
	db := data["database"].(map[string]interface{})
	assert.Equal(t, true, db["connected"])
	assert.Nil(t, db["error"])
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	// Arrange
	h := handler.NewHealthHandler(failingPinger("connection refused"), okPinger(), "0.1.0")

	// Act
	data := serveHealth(t, h)

	// Assert
	assert.Equal(t, "degraded", data["status"])
	db := data["database"].(map[string]interface{})
	assert.Equal(t, false, db["connected"])
	assert.Equal(t, "connection refused", db["error"])
	store := data["sessionStore"].(map[string]interface{})
	assert.Equal(t, true, store["connected"])
}

func TestHealthHandler_SessionStoreNotConfigured(t *testing.T) {
	h := handler.NewHealthHandler(okPinger(), nil, "dev")

	data := serveHealth(t, h)

	assert.Equal(t, "degraded", data["status"])
	store := data["sessionStore"].(map[string]interface{})
	assert.Equal(t, "not configured", store["error"])
}
