package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/collegepedia/collegepedia/internal/api/middleware"
	"github.com/collegepedia/collegepedia/internal/api/response"
	"github.com/collegepedia/collegepedia/internal/api/validation"
	"github.com/collegepedia/collegepedia/internal/department"
)

type createDepartmentRequest struct {
	Name           string `json:"name"`
	HODName        string `json:"hodName"`
	IntakeCapacity *int   `json:"intakeCapacity"`
}

type updateDepartmentRequest struct {
	Name           *string `json:"name"`
	HODName        *string `json:"hodName"`
	IntakeCapacity *int    `json:"intakeCapacity"`
}

type departmentResponse struct {
	ID             string            `json:"id"`
	CollegeID      string            `json:"collegeId"`
	Name           string            `json:"name"`
	HODName        *string           `json:"hodName"`
	IntakeCapacity *int              `json:"intakeCapacity"`
	CreatedAt      string            `json:"createdAt"`
	UpdatedAt      string            `json:"updatedAt"`
	Actions        map[string]action `json:"actions,omitempty"`
}

func toDepartmentResponse(d *department.Department) departmentResponse {
	return departmentResponse{
		ID:             d.ID.String(),
		CollegeID:      d.CollegeID.String(),
		Name:           d.Name,
		HODName:        d.HODName,
		IntakeCapacity: d.IntakeCapacity,
		CreatedAt:      formatTime(d.CreatedAt),
		UpdatedAt:      formatTime(d.UpdatedAt),
	}
}

// toDepartmentResponses renders departments, with edit and delete actions for admins.
func toDepartmentResponses(r *http.Request, departments []department.Department) []departmentResponse {
	items := make([]departmentResponse, 0, len(departments))
	for i := range departments {
		item := toDepartmentResponse(&departments[i])
		href := "/departments/" + item.ID
		item.Actions = adminActions(r, func() map[string]action {
			return map[string]action{
				"edit":   {Method: http.MethodPatch, Href: href},
				"delete": {Method: http.MethodDelete, Href: href},
			}
		})
		items = append(items, item)
	}
	return items
}

// DepartmentHandler handles department CRUD endpoints.
type DepartmentHandler struct {
	repo department.Repository
}

// NewDepartmentHandler creates a new DepartmentHandler.
func NewDepartmentHandler(repo department.Repository) *DepartmentHandler {
	return &DepartmentHandler{repo: repo}
}

// Create handles POST /college/{id}/departments.
func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	collegeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req createDepartmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fieldErrors := validation.ValidateCreateDepartmentRequest(validation.DepartmentRequest{
		Name:           req.Name,
		HODName:        req.HODName,
		IntakeCapacity: req.IntakeCapacity,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	d := &department.Department{
		CollegeID:      collegeID,
		Name:           req.Name,
		HODName:        &req.HODName,
		IntakeCapacity: req.IntakeCapacity,
	}

	if err := h.repo.Create(r.Context(), d); err != nil {
		if errors.Is(err, department.ErrUnknownCollege) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "College not found", requestID)
			return
		}
		slog.Error("failed to create department", "error", err, "collegeId", collegeID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create department", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toDepartmentResponse(d), requestID)
}

// Update handles PATCH /departments/{id}.
func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateDepartmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fieldErrors := validation.ValidateUpdateDepartmentRequest(validation.UpdateDepartmentRequest{
		Name:           req.Name,
		HODName:        req.HODName,
		IntakeCapacity: req.IntakeCapacity,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	d, err := h.repo.Update(r.Context(), id, department.UpdateFields{
		Name:           req.Name,
		HODName:        req.HODName,
		IntakeCapacity: req.IntakeCapacity,
	})
	if err != nil {
		if errors.Is(err, department.ErrDepartmentNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Department not found", requestID)
			return
		}
		slog.Error("failed to update department", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update department", requestID)
		return
	}

	response.Success(w, http.StatusOK, toDepartmentResponse(d), requestID)
}

// Delete handles DELETE /departments/{id}.
func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, department.ErrDepartmentNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Department not found", requestID)
			return
		}
		slog.Error("failed to delete department", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete department", requestID)
		return
	}

	response.NoContent(w)
}
