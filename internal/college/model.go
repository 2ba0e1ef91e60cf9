package college

import (
	"time"

	"github.com/google/uuid"
)

// Types lists the accepted values of College.Type.
var Types = []string{
	"arts", "engineering", "medical", "law", "dental", "pharmacy",
	"agriculture", "veterinary", "polytechnic", "management", "education",
}

// IsValidType reports whether t is one of Types.
func IsValidType(t string) bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

// College represents a row in the colleges table. Optional columns are
// pointers; nil maps to NULL.
type College struct {
	ID                   uuid.UUID
	Name                 string
	Type                 string
	DistrictID           uuid.UUID
	DistrictName         string // transient, from JOIN with districts
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
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ListFilter holds optional filters and pagination for listing colleges.
type ListFilter struct {
	Type       *string
	DistrictID *uuid.UUID
	Name       *string // partial match (ILIKE)
	Page       int     // default 1
	Limit      int     // default 20
}

// ListResult holds the result of a paginated list query.
type ListResult struct {
	Colleges []College
	Total    int
	Page     int
	Limit    int
}

// UpdateFields holds optional fields for a partial college update.
// Nil fields are not updated. For optional columns, a pointer to the zero
// value ("" or 0) clears the column.
type UpdateFields struct {
	Name                 *string
	Type                 *string
	DistrictID           *uuid.UUID
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

// RatingField names a rating column colleges can be ranked by.
type RatingField string

const (
	ByInfrastructure RatingField = "infrastructure_rating"
	ByPlacement      RatingField = "placement_rating"
)
