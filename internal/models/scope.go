// internal/models/scope.go
package models

// AccessRole is the data-visibility tier resolved for a user identity.
type AccessRole string

const (
	// RoleExecutive sees every record, no row-level restriction.
	RoleExecutive AccessRole = "executive"
	// RoleRecruiter only sees records it owns.
	RoleRecruiter AccessRole = "recruiter"
)

// QueryScope carries the row-level restriction applied to a backend query.
// OwnerFilter is empty for executives and the normalized identity for
// recruiters; it is conjoined with whatever other filters the intent carries.
type QueryScope struct {
	Role        AccessRole `json:"role"`
	OwnerFilter string     `json:"ownerFilter,omitempty"`
}
