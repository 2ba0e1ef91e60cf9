package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/collegepedia/collegepedia/internal/api/middleware"
	"github.com/collegepedia/collegepedia/internal/api/response"
	"github.com/collegepedia/collegepedia/internal/college"
	"github.com/collegepedia/collegepedia/internal/department"
	"github.com/collegepedia/collegepedia/internal/district"
)

const (
	featuredMinRating = 4
	featuredLimit     = 6
	searchLimit       = 20
)

type homeStats struct {
	Colleges    int `json:"colleges"`
	Districts   int `json:"districts"`
	Departments int `json:"departments"`
}

type homeResponse struct {
	Stats     homeStats          `json:"stats"`
	Featured  []collegeResponse  `json:"featured"`
	Districts []districtResponse `json:"districts"`
}

type searchResult struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Address *string `json:"address"`
}

// HomeHandler serves the landing page data and name search.
type HomeHandler struct {
	colleges    college.Repository
	districts   district.Repository
	departments department.Repository
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(colleges college.Repository, districts district.Repository, departments department.Repository) *HomeHandler {
	return &HomeHandler{colleges: colleges, districts: districts, departments: departments}
}

// ServeHTTP handles GET /.
func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	ctx := r.Context()

	var (
		data homeResponse
		err  error
	)
	if data.Stats.Colleges, err = h.colleges.Count(ctx); err != nil {
		h.fail(w, requestID, err)
		return
	}
	if data.Stats.Districts, err = h.districts.Count(ctx); err != nil {
		h.fail(w, requestID, err)
		return
	}
	if data.Stats.Departments, err = h.departments.Count(ctx); err != nil {
		h.fail(w, requestID, err)
		return
	}

	featured, err := h.colleges.Featured(ctx, featuredMinRating, featuredLimit)
	if err != nil {
		h.fail(w, requestID, err)
		return
	}
	data.Featured = toCollegeResponses(featured)

	districts, err := h.districts.List(ctx)
	if err != nil {
		h.fail(w, requestID, err)
		return
	}
	data.Districts = toDistrictResponses(districts)

	response.Success(w, http.StatusOK, data, requestID)
}

func (h *HomeHandler) fail(w http.ResponseWriter, requestID string, err error) {
	slog.Error("failed to load home page", "error", err)
	response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load home page", requestID)
}

// Search handles GET /search?q=. A blank query returns no results.
func (h *HomeHandler) Search(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		response.SuccessList(w, http.StatusOK, []searchResult{}, 0, 1, searchLimit, requestID)
		return
	}

	result, err := h.colleges.List(r.Context(), college.ListFilter{Name: &q, Page: 1, Limit: searchLimit})
	if err != nil {
		slog.Error("failed to search colleges", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to search colleges", requestID)
		return
	}

	items := make([]searchResult, 0, len(result.Colleges))
	for _, c := range result.Colleges {
		items = append(items, searchResult{ID: c.ID.String(), Name: c.Name, Type: c.Type, Address: c.Address})
	}
	response.SuccessList(w, http.StatusOK, items, result.Total, result.Page, result.Limit, requestID)
}
