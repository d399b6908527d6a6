package policy

import "fmt"

// CanSee reports whether the principal may see a record owned by ownerID.
// Admin and tester see everything; a viewer sees only its own records.
// Callers must apply the same rule to list queries and direct fetches so a
// hidden record is indistinguishable from an absent one.
func CanSee(p Principal, ownerID int64) bool {
	switch p.Role {
	case RoleAdmin, RoleTester:
		return true
	case RoleViewer:
		return ownerID == p.ID
	}
	panic(fmt.Sprintf("policy: unknown role %q", p.Role))
}

// FilterVisible narrows a candidate result set to the records the principal
// may see. owner extracts the owning user id from an element.
func FilterVisible[T any](p Principal, candidates []T, owner func(T) int64) []T {
	if p.Role == RoleAdmin || p.Role == RoleTester {
		return candidates
	}
	visible := make([]T, 0, len(candidates))
	for _, c := range candidates {
		if CanSee(p, owner(c)) {
			visible = append(visible, c)
		}
	}
	return visible
}
