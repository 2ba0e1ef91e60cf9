package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/collegepedia/collegepedia/internal/api/middleware"
	"github.com/collegepedia/collegepedia/internal/api/response"
	"github.com/collegepedia/collegepedia/internal/profile"
)

const recentProfilesLimit = 10

// Counter is satisfied by every repository that can count its rows.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// AdminCounters names the tables summarized on the admin page.
type AdminCounters struct {
	Users       Counter
	Profiles    Counter
	Colleges    Counter
	Districts   Counter
	Departments Counter
}

type adminStats struct {
	Users       int `json:"users"`
	Profiles    int `json:"profiles"`
	Colleges    int `json:"colleges"`
	Districts   int `json:"districts"`
	Departments int `json:"departments"`
}

type profileResponse struct {
	UserID    string `json:"userId"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

type adminResponse struct {
	Stats          adminStats        `json:"stats"`
	RecentProfiles []profileResponse `json:"recentProfiles"`
}

// AdminHandler serves the admin overview page.
type AdminHandler struct {
	counters AdminCounters
	profiles profile.Repository
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(counters AdminCounters, profiles profile.Repository) *AdminHandler {
	return &AdminHandler{counters: counters, profiles: profiles}
}

// ServeHTTP handles GET /admin.
func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var data adminResponse
	counts := []struct {
		name string
		c    Counter
		dst  *int
	}{
		{"users", h.counters.Users, &data.Stats.Users},
		{"profiles", h.counters.Profiles, &data.Stats.Profiles},
		{"colleges", h.counters.Colleges, &data.Stats.Colleges},
		{"districts", h.counters.Districts, &data.Stats.Districts},
		{"departments", h.counters.Departments, &data.Stats.Departments},
	}
	for _, c := range counts {
		n, err := c.c.Count(r.Context())
		if err != nil {
			slog.Error("failed to count rows", "error", err, "table", c.name)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load admin overview", requestID)
			return
		}
		*c.dst = n
	}

	recent, err := h.profiles.ListRecent(r.Context(), recentProfilesLimit)
	if err != nil {
		slog.Error("failed to list recent profiles", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load admin overview", requestID)
		return
	}

	data.RecentProfiles = make([]profileResponse, 0, len(recent))
	for _, p := range recent {
		data.RecentProfiles = append(data.RecentProfiles, profileResponse{
			UserID:    p.UserID.String(),
			FullName:  p.FullName,
			Email:     p.Email,
			CreatedAt: formatTime(p.CreatedAt),
		})
	}

	response.Success(w, http.StatusOK, data, requestID)
}
