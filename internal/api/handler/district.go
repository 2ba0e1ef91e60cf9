package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/collegepedia/collegepedia/internal/api/middleware"
	"github.com/collegepedia/collegepedia/internal/api/response"
	"github.com/collegepedia/collegepedia/internal/college"
	"github.com/collegepedia/collegepedia/internal/district"
)

type districtResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CollegeCount int    `json:"collegeCount"`
	CreatedAt    string `json:"createdAt"`
}

func toDistrictResponse(d *district.District) districtResponse {
	return districtResponse{
		ID:           d.ID.String(),
		Name:         d.Name,
		CollegeCount: d.CollegeCount,
		CreatedAt:    formatTime(d.CreatedAt),
	}
}

func toDistrictResponses(districts []district.District) []districtResponse {
	items := make([]districtResponse, 0, len(districts))
	for i := range districts {
		items = append(items, toDistrictResponse(&districts[i]))
	}
	return items
}

type districtCollegesResponse struct {
	District districtResponse  `json:"district"`
	Colleges []collegeResponse `json:"colleges"`
}

// DistrictHandler handles district browse endpoints.
type DistrictHandler struct {
	repo     district.Repository
	colleges college.Repository
}

// NewDistrictHandler creates a new DistrictHandler.
func NewDistrictHandler(repo district.Repository, colleges college.Repository) *DistrictHandler {
	return &DistrictHandler{repo: repo, colleges: colleges}
}

// List handles GET /districts.
func (h *DistrictHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	districts, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("failed to list districts", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list districts", requestID)
		return
	}

	items := toDistrictResponses(districts)
	response.SuccessList(w, http.StatusOK, items, len(items), 1, len(items), requestID)
}

// Colleges handles GET /districts/{id}/colleges.
func (h *DistrictHandler) Colleges(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	d, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, district.ErrDistrictNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "District not found", requestID)
			return
		}
		slog.Error("failed to get district", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get district", requestID)
		return
	}

	result, err := h.colleges.List(r.Context(), college.ListFilter{DistrictID: &id, Page: 1, Limit: 100})
	if err != nil {
		slog.Error("failed to list district colleges", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list colleges", requestID)
		return
	}

	response.Success(w, http.StatusOK, districtCollegesResponse{
		District: toDistrictResponse(d),
		Colleges: toCollegeResponses(result.Colleges),
	}, requestID)
}
