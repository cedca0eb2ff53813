// internal/roles/resolver.go
package roles

import (
	"strings"

	"well-query-engine/internal/models"
)

// Resolver maps a user identity to an access role. The executive allow-list
// is injected at construction and never mutated, so Resolve is a pure
// function safe for concurrent use.
type Resolver struct {
	executives map[string]struct{}
}

// NewResolver builds a resolver from the configured executive allow-list.
// Entries are normalized the same way incoming identities are.
func NewResolver(allowList []string) *Resolver {
	executives := make(map[string]struct{}, len(allowList))
	for _, id := range allowList {
		executives[Normalize(id)] = struct{}{}
	}
	return &Resolver{executives: executives}
}

// Normalize lower-cases and trims an identity for comparison.
func Normalize(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// Resolve returns the access role for an identity. Anyone not on the
// allow-list is a recruiter; there is no error path.
func (r *Resolver) Resolve(identity string) models.AccessRole {
	if _, ok := r.executives[Normalize(identity)]; ok {
		return models.RoleExecutive
	}
	return models.RoleRecruiter
}

// ScopeFor derives the row-level restriction for an identity. Executives get
// no owner filter; recruiters are pinned to their own records.
func (r *Resolver) ScopeFor(identity string) models.QueryScope {
	role := r.Resolve(identity)
	scope := models.QueryScope{Role: role}
	if role == models.RoleRecruiter {
		scope.OwnerFilter = Normalize(identity)
	}
	return scope
}
