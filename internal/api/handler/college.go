package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/collegepedia/collegepedia/internal/api/middleware"
	"github.com/collegepedia/collegepedia/internal/api/response"
	"github.com/collegepedia/collegepedia/internal/api/validation"
	"github.com/collegepedia/collegepedia/internal/college"
	"github.com/collegepedia/collegepedia/internal/department"
)

type createCollegeRequest struct {
	Name                 string `json:"name"`
	Type                 string `json:"type"`
	DistrictID           string `json:"districtId"`
	CounselingCode       string `json:"counselingCode"`
	Address              string `json:"address"`
	Phone                string `json:"phone"`
	Email                string `json:"email"`
	Website              string `json:"website"`
	EstablishedYear      *int   `json:"establishedYear"`
	Affiliation          string `json:"affiliation"`
	Accreditation        string `json:"accreditation"`
	InfrastructureRating *int   `json:"infrastructureRating"`
	PlacementRating      *int   `json:"placementRating"`
	Description          string `json:"description"`
	ImageURL             string `json:"imageUrl"`
}

type updateCollegeRequest struct {
	Name                 *string `json:"name"`
	Type                 *string `json:"type"`
	DistrictID           *string `json:"districtId"`
	CounselingCode       *string `json:"counselingCode"`
	Address              *string `json:"address"`
	Phone                *string `json:"phone"`
	Email                *string `json:"email"`
	Website              *string `json:"website"`
	EstablishedYear      *int    `json:"establishedYear"`
	Affiliation          *string `json:"affiliation"`
	Accreditation        *string `json:"accreditation"`
	InfrastructureRating *int    `json:"infrastructureRating"`
	PlacementRating      *int    `json:"placementRating"`
	Description          *string `json:"description"`
	ImageURL             *string `json:"imageUrl"`
}

type collegeResponse struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Type                 string  `json:"type"`
	DistrictID           string  `json:"districtId"`
	DistrictName         string  `json:"districtName"`
	CounselingCode       *string `json:"counselingCode"`
	Address              *string `json:"address"`
	Phone                *string `json:"phone"`
	Email                *string `json:"email"`
	Website              *string `json:"website"`
	EstablishedYear      *int    `json:"establishedYear"`
	Affiliation          *string `json:"affiliation"`
	Accreditation        *string `json:"accreditation"`
	InfrastructureRating *int    `json:"infrastructureRating"`
	PlacementRating      *int    `json:"placementRating"`
	Description          *string `json:"description"`
	ImageURL             *string `json:"imageUrl"`
	CreatedAt            string  `json:"createdAt"`
	UpdatedAt            string  `json:"updatedAt"`
}

type collegeDetailResponse struct {
	collegeResponse
	Departments []departmentResponse `json:"departments"`
	Actions     map[string]action    `json:"actions,omitempty"`
}

func toCollegeResponse(c *college.College) collegeResponse {
	return collegeResponse{
		ID:                   c.ID.String(),
		Name:                 c.Name,
		Type:                 c.Type,
		DistrictID:           c.DistrictID.String(),
		DistrictName:         c.DistrictName,
		CounselingCode:       c.CounselingCode,
		Address:              c.Address,
		Phone:                c.Phone,
		Email:                c.Email,
		Website:              c.Website,
		EstablishedYear:      c.EstablishedYear,
		Affiliation:          c.Affiliation,
		Accreditation:        c.Accreditation,
		InfrastructureRating: c.InfrastructureRating,
		PlacementRating:      c.PlacementRating,
		Description:          c.Description,
		ImageURL:             c.ImageURL,
		CreatedAt:            formatTime(c.CreatedAt),
		UpdatedAt:            formatTime(c.UpdatedAt),
	}
}

func toCollegeResponses(colleges []college.College) []collegeResponse {
	items := make([]collegeResponse, 0, len(colleges))
	for i := range colleges {
		items = append(items, toCollegeResponse(&colleges[i]))
	}
	return items
}

func collegeActions(id uuid.UUID) map[string]action {
	href := "/college/" + id.String()
	return map[string]action{
		"edit":          {Method: http.MethodPatch, Href: href},
		"delete":        {Method: http.MethodDelete, Href: href},
		"addDepartment": {Method: http.MethodPost, Href: href + "/departments"},
	}
}

// CollegeHandler handles college browse and CRUD endpoints.
type CollegeHandler struct {
	repo        college.Repository
	departments department.Repository
	now         func() time.Time
}

// NewCollegeHandler creates a new CollegeHandler.
func NewCollegeHandler(repo college.Repository, departments department.Repository) *CollegeHandler {
	return &CollegeHandler{repo: repo, departments: departments, now: time.Now}
}

// List handles GET /colleges. Optional filters: type, district, name.
func (h *CollegeHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	page, limit, ok := pagination(w, r)
	if !ok {
		return
	}
	filter := college.ListFilter{Page: page, Limit: limit}

	if v := r.URL.Query().Get("type"); v != "" {
		if !college.IsValidType(v) {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "type is not a known college type", requestID)
			return
		}
		filter.Type = &v
	}
	if v := r.URL.Query().Get("district"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "district must be a valid UUID", requestID)
			return
		}
		filter.DistrictID = &id
	}
	if v := r.URL.Query().Get("name"); v != "" {
		filter.Name = &v
	}

	h.writeList(w, r, filter)
}

// ListByType handles GET /colleges/{type}.
func (h *CollegeHandler) ListByType(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	collegeType := chi.URLParam(r, "type")
	if !college.IsValidType(collegeType) {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Unknown college type", requestID)
		return
	}

	page, limit, ok := pagination(w, r)
	if !ok {
		return
	}

	h.writeList(w, r, college.ListFilter{Type: &collegeType, Page: page, Limit: limit})
}

func (h *CollegeHandler) writeList(w http.ResponseWriter, r *http.Request, filter college.ListFilter) {
	requestID := middleware.GetRequestID(r.Context())

	result, err := h.repo.List(r.Context(), filter)
	if err != nil {
		slog.Error("failed to list colleges", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list colleges", requestID)
		return
	}

	response.SuccessList(w, http.StatusOK, toCollegeResponses(result.Colleges), result.Total, result.Page, result.Limit, requestID)
}

// Get handles GET /college/{id}. Admins additionally receive the available actions.
func (h *CollegeHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, college.ErrCollegeNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "College not found", requestID)
			return
		}
		slog.Error("failed to get college", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get college", requestID)
		return
	}

	departments, err := h.departments.ListByCollege(r.Context(), id)
	if err != nil {
		slog.Error("failed to list departments", "error", err, "collegeId", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get college", requestID)
		return
	}

	response.Success(w, http.StatusOK, collegeDetailResponse{
		collegeResponse: toCollegeResponse(c),
		Departments:     toDepartmentResponses(r, departments),
		Actions:         adminActions(r, func() map[string]action { return collegeActions(id) }),
	}, requestID)
}

// Create handles POST /colleges.
func (h *CollegeHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createCollegeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fieldErrors := validation.ValidateCreateCollegeRequest(validation.CollegeRequest{
		Name:                 req.Name,
		Type:                 req.Type,
		DistrictID:           req.DistrictID,
		CounselingCode:       req.CounselingCode,
		Address:              req.Address,
		Phone:                req.Phone,
		Email:                req.Email,
		Website:              req.Website,
		EstablishedYear:      req.EstablishedYear,
		Affiliation:          req.Affiliation,
		Accreditation:        req.Accreditation,
		InfrastructureRating: req.InfrastructureRating,
		PlacementRating:      req.PlacementRating,
		Description:          req.Description,
		ImageURL:             req.ImageURL,
	}, h.now().Year())
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	c := &college.College{
		Name:                 req.Name,
		Type:                 req.Type,
		DistrictID:           uuid.MustParse(req.DistrictID),
		CounselingCode:       &req.CounselingCode,
		Address:              &req.Address,
		Phone:                &req.Phone,
		Email:                &req.Email,
		Website:              &req.Website,
		EstablishedYear:      req.EstablishedYear,
		Affiliation:          &req.Affiliation,
		Accreditation:        &req.Accreditation,
		InfrastructureRating: req.InfrastructureRating,
		PlacementRating:      req.PlacementRating,
		Description:          &req.Description,
		ImageURL:             &req.ImageURL,
	}

	if err := h.repo.Create(r.Context(), c); err != nil {
		if errors.Is(err, college.ErrUnknownDistrict) {
			response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
				[]validation.FieldError{{Field: "districtId", Message: "district does not exist"}}, requestID)
			return
		}
		slog.Error("failed to create college", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create college", requestID)
		return
	}

	slog.Info("college created", "id", c.ID, "name", c.Name)
	response.Success(w, http.StatusCreated, toCollegeResponse(c), requestID)
}

// Update handles PATCH /college/{id}.
func (h *CollegeHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateCollegeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fieldErrors := validation.ValidateUpdateCollegeRequest(validation.UpdateCollegeRequest{
		Name:                 req.Name,
		Type:                 req.Type,
		DistrictID:           req.DistrictID,
		CounselingCode:       req.CounselingCode,
		Address:              req.Address,
		Phone:                req.Phone,
		Email:                req.Email,
		Website:              req.Website,
		EstablishedYear:      req.EstablishedYear,
		Affiliation:          req.Affiliation,
		Accreditation:        req.Accreditation,
		InfrastructureRating: req.InfrastructureRating,
		PlacementRating:      req.PlacementRating,
		Description:          req.Description,
		ImageURL:             req.ImageURL,
	}, h.now().Year())
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	fields := college.UpdateFields{
		Name:                 req.Name,
		Type:                 req.Type,
		CounselingCode:       req.CounselingCode,
		Address:              req.Address,
		Phone:                req.Phone,
		Email:                req.Email,
		Website:              req.Website,
		EstablishedYear:      req.EstablishedYear,
		Affiliation:          req.Affiliation,
		Accreditation:        req.Accreditation,
		InfrastructureRating: req.InfrastructureRating,
		PlacementRating:      req.PlacementRating,
		Description:          req.Description,
		ImageURL:             req.ImageURL,
	}
	if req.DistrictID != nil {
		districtID := uuid.MustParse(*req.DistrictID)
		fields.DistrictID = &districtID
	}

	c, err := h.repo.Update(r.Context(), id, fields)
	if err != nil {
		switch {
		case errors.Is(err, college.ErrCollegeNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "College not found", requestID)
		case errors.Is(err, college.ErrUnknownDistrict):
			response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed",
				[]validation.FieldError{{Field: "districtId", Message: "district does not exist"}}, requestID)
		default:
			slog.Error("failed to update college", "error", err, "id", id)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update college", requestID)
		}
		return
	}

	response.Success(w, http.StatusOK, toCollegeResponse(c), requestID)
}

// Delete handles DELETE /college/{id}. Departments are removed with the college.
func (h *CollegeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, college.ErrCollegeNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "College not found", requestID)
			return
		}
		slog.Error("failed to delete college", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete college", requestID)
		return
	}

	slog.Info("college deleted", "id", id)
	response.NoContent(w)
}
