package handler

import (
	"log/slog"
	"net/http"

	"github.com/collegepedia/collegepedia/internal/api/middleware"
	"github.com/collegepedia/collegepedia/internal/api/response"
	"github.com/collegepedia/collegepedia/internal/college"
)

const topRatedLimit = 5

type dashboardResponse struct {
	TopEngineering    []collegeResponse `json:"topEngineering"`
	TopMedical        []collegeResponse `json:"topMedical"`
	TopArts           []collegeResponse `json:"topArts"`
	TopInfrastructure []collegeResponse `json:"topInfrastructure"`
	TopPlacement      []collegeResponse `json:"topPlacement"`
	Actions           map[string]action `json:"actions,omitempty"`
}

// DashboardHandler serves the admin dashboard rankings.
type DashboardHandler struct {
	colleges college.Repository
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(colleges college.Repository) *DashboardHandler {
	return &DashboardHandler{colleges: colleges}
}

// ServeHTTP handles GET /dashboard.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var data dashboardResponse
	rankings := []struct {
		field       college.RatingField
		collegeType string
		dst         *[]collegeResponse
	}{
		{college.ByInfrastructure, "engineering", &data.TopEngineering},
		{college.ByInfrastructure, "medical", &data.TopMedical},
		{college.ByInfrastructure, "arts", &data.TopArts},
		{college.ByInfrastructure, "", &data.TopInfrastructure},
		{college.ByPlacement, "", &data.TopPlacement},
	}

	for _, rk := range rankings {
		colleges, err := h.colleges.TopRated(r.Context(), rk.field, rk.collegeType, topRatedLimit)
		if err != nil {
			slog.Error("failed to rank colleges", "error", err, "field", rk.field, "type", rk.collegeType)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load dashboard", requestID)
			return
		}
		*rk.dst = toCollegeResponses(colleges)
	}

	data.Actions = adminActions(r, func() map[string]action {
		return map[string]action{"addCollege": {Method: http.MethodPost, Href: "/colleges"}}
	})

	response.Success(w, http.StatusOK, data, requestID)
}
