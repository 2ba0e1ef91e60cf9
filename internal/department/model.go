package department

import (
	"time"

	"github.com/google/uuid"
)

// Department represents a row in the departments table.
type Department struct {
	ID             uuid.UUID
	CollegeID      uuid.UUID
	Name           string
	HODName        *string
	IntakeCapacity *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UpdateFields holds optional fields for a partial department update.
// Nil fields are not updated; a pointer to "" or 0 clears the column.
type UpdateFields struct {
	Name           *string
	HODName        *string
	IntakeCapacity *int
}
