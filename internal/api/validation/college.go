package validation

import (
	"strings"

	"github.com/collegepedia/collegepedia/internal/college"
)

// MinEstablishedYear is the earliest accepted founding year.
const MinEstablishedYear = 1800

// CollegeRequest mirrors the fields needed for create college validation.
type CollegeRequest struct {
	Name                 string
	Type                 string
	DistrictID           string
	CounselingCode       string
	Address              string
	Phone                string
	Email                string
	Website              string
	EstablishedYear      *int
	Affiliation          string
	Accreditation        string
	InfrastructureRating *int
	PlacementRating      *int
	Description          string
	ImageURL             string
}

// ValidateCreateCollegeRequest validates a create college request. currentYear
// bounds establishedYear.
func ValidateCreateCollegeRequest(req CollegeRequest, currentYear int) []FieldError {
	var errs errorList

	errs.required("name", req.Name, 200)
	validateCollegeType(&errs, req.Type)
	errs.uuid("districtId", req.DistrictID)
	validateOptionalCollegeFields(&errs, optionalCollegeFields{
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
	}, currentYear, false)

	return errs
}

// UpdateCollegeRequest mirrors the fields needed for update college validation.
// Nil fields are not validated.
type UpdateCollegeRequest struct {
	Name                 *string
	Type                 *string
	DistrictID           *string
	CounselingCode       *string
	Address              *string
	Phone                *string
	Email                *string
	Website              *string
	EstablishedYear      *int
	Affiliation          *string
	Accreditation        *string
	InfrastructureRating *int
	PlacementRating      *int
	Description          *string
	ImageURL             *string
}

// ValidateUpdateCollegeRequest validates only non-nil fields on an update
// request. Optional fields may be cleared with "" or 0.
func ValidateUpdateCollegeRequest(req UpdateCollegeRequest, currentYear int) []FieldError {
	var errs errorList

	if req.Name != nil {
		errs.required("name", *req.Name, 200)
	}
	if req.Type != nil {
		validateCollegeType(&errs, *req.Type)
	}
	if req.DistrictID != nil {
		errs.uuid("districtId", *req.DistrictID)
	}
	validateOptionalCollegeFields(&errs, optionalCollegeFields{
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
	}, currentYear, true)

	return errs
}

type optionalCollegeFields struct {
	CounselingCode       *string
	Address              *string
	Phone                *string
	Email                *string
	Website              *string
	EstablishedYear      *int
	Affiliation          *string
	Accreditation        *string
	InfrastructureRating *int
	PlacementRating      *int
	Description          *string
	ImageURL             *string
}

func validateOptionalCollegeFields(errs *errorList, f optionalCollegeFields, currentYear int, allowZero bool) {
	maxLen := func(field string, v *string, max int) {
		if v != nil {
			errs.maxLen(field, strings.TrimSpace(*v), max)
		}
	}

	maxLen("counselingCode", f.CounselingCode, 50)
	maxLen("address", f.Address, 500)
	maxLen("phone", f.Phone, 20)
	if f.Email != nil {
		errs.email("email", *f.Email, 100)
	}
	if f.Website != nil {
		errs.url("website", *f.Website, 200)
	}
	errs.intRange("establishedYear", f.EstablishedYear, MinEstablishedYear, currentYear, allowZero)
	maxLen("affiliation", f.Affiliation, 200)
	maxLen("accreditation", f.Accreditation, 200)
	errs.intRange("infrastructureRating", f.InfrastructureRating, 1, 5, allowZero)
	errs.intRange("placementRating", f.PlacementRating, 1, 5, allowZero)
	maxLen("description", f.Description, 2000)
	if f.ImageURL != nil {
		errs.url("imageUrl", *f.ImageURL, 500)
	}
}

func validateCollegeType(errs *errorList, t string) {
	if t == "" {
		errs.add("type", "type is required")
		return
	}
	if !college.IsValidType(t) {
		errs.add("type", "type must be one of: %s", strings.Join(college.Types, ", "))
	}
}
