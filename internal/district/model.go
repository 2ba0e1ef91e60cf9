package district

import (
	"time"

	"github.com/google/uuid"
)

// District represents a row in the districts table.
type District struct {
	ID           uuid.UUID
	Name         string
	CollegeCount int // computed on List, zero elsewhere
	CreatedAt    time.Time
}
