package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/collegepedia/collegepedia/internal/api/middleware"
	"github.com/collegepedia/collegepedia/internal/api/response"
	"github.com/collegepedia/collegepedia/internal/auth"
	"github.com/collegepedia/collegepedia/internal/gate"
)

const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

// action is a link to an operation the caller may perform.
type action struct {
	Method string `json:"method"`
	Href   string `json:"href"`
}

// adminActions returns build() when the caller passes the admin Fragment
// gate, and nil otherwise.
func adminActions(r *http.Request, build func() map[string]action) map[string]action {
	if !gate.Fragment(middleware.GetState(r.Context()), auth.RoleAdmin) {
		return nil
	}
	return build()
}

// decodeJSON reads a size-limited JSON body into v. On failure it writes a
// 400 response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

// pathID parses the {name} URL parameter as a UUID. On failure it writes a
// 400 response and returns false.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", name+" must be a valid UUID", middleware.GetRequestID(r.Context()))
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads page and limit query parameters, defaulting to 1 and 20.
func pagination(w http.ResponseWriter, r *http.Request) (page, limit int, ok bool) {
	requestID := middleware.GetRequestID(r.Context())
	page, limit = 1, 20

	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "page must be a positive integer", requestID)
			return 0, 0, false
		}
		page = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "limit must be a positive integer", requestID)
			return 0, 0, false
		}
		limit = n
	}
	return page, limit, true
}
