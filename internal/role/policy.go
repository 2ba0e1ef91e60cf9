// Package role reconciles a user's stored role with the admin allow-list.
package role

import (
	"github.com/google/uuid"

	"github.com/collegepedia/collegepedia/internal/auth"
)

// Policy is the admin allow-list. A user is an admin when their ID equals
// AdminID or their full name equals AdminName; everyone else is a user.
type Policy struct {
	AdminID   uuid.UUID
	AdminName string
}

// NewPolicy parses adminID and builds a Policy.
func NewPolicy(adminID, adminName string) (Policy, error) {
	var p Policy
	if adminID != "" {
		id, err := uuid.Parse(adminID)
		if err != nil {
			return p, err
		}
		p.AdminID = id
	}
	p.AdminName = adminName
	return p, nil
}

// Decide computes the role u should hold.
func (p Policy) Decide(u *auth.User) string {
	if u == nil {
		return auth.RoleUser
	}
	if p.AdminID != uuid.Nil && u.ID == p.AdminID {
		return auth.RoleAdmin
	}
	if p.AdminName != "" && u.FullName() == p.AdminName {
		return auth.RoleAdmin
	}
	return auth.RoleUser
}
