// Package policy is the authorization core: a pure decision table over
// (principal, action, resource) plus the ownership-based visibility filter.
// It performs no I/O and no logging; callers map denials to transport codes.
package policy

import "fmt"

// Role is the access level carried by an authenticated principal.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleTester Role = "tester"
	RoleViewer Role = "viewer"
)

// Valid reports whether the role is one of the three known levels.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTester, RoleViewer:
		return true
	}
	return false
}

// Action is an intended operation on a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionCancel Action = "cancel"
	ActionAdmin  Action = "admin"
)

// Resource names an entity collection governed by the decision table.
type Resource string

const (
	ResourceUsers      Resource = "users"
	ResourceCategories Resource = "categories"
	ResourceProducts   Resource = "products"
	ResourceOrders     Resource = "orders"
	ResourceSandbox    Resource = "sandbox"
)

// Principal is the authenticated identity attempting an action.
// It is immutable for the duration of a request.
type Principal struct {
	ID   int64
	Role Role
}

// NoOwner marks resources without an owning user (everything but orders).
const NoOwner int64 = 0

// Authorize decides whether the principal may perform action on the given
// resource. ownerID is the owning user of the specific record, or NoOwner
// when the resource is ownerless or the action is not record-scoped.
//
// The decision is pure and total: every known (role, action, resource)
// combination has a defined outcome. An unknown role, action or resource is a
// programming error and panics; the authentication layer never constructs
// invalid principals.
func Authorize(p Principal, action Action, res Resource, ownerID int64) error {
	if !p.Role.Valid() {
		panic(fmt.Sprintf("policy: unknown role %q", p.Role))
	}
	checkAction(action)

	switch res {
	case ResourceUsers:
		return authorizeUsers(p, action)
	case ResourceCategories, ResourceProducts:
		return authorizeCatalog(p, action, res)
	case ResourceOrders:
		return authorizeOrders(p, action, ownerID)
	case ResourceSandbox:
		return authorizeSandbox(p, action)
	}
	panic(fmt.Sprintf("policy: unknown resource %q", res))
}

func checkAction(action Action) {
	switch action {
	case ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionCancel, ActionAdmin:
		return
	}
	panic(fmt.Sprintf("policy: unknown action %q", action))
}

// Every authenticated role may read users. Mutations are admin only; user
// creation goes through unauthenticated registration, not this table.
func authorizeUsers(p Principal, action Action) error {
	switch action {
	case ActionRead:
		return nil
	case ActionUpdate, ActionDelete:
		if p.Role == RoleAdmin {
			return nil
		}
		return deny("role %s may not %s users", p.Role, action)
	case ActionCreate, ActionCancel, ActionAdmin:
		return deny("role %s may not %s users", p.Role, action)
	}
	panic(fmt.Sprintf("policy: unhandled action %q on users", action))
}

// Categories and products share one column set: full CRUD for admin and
// tester, read-only for viewer.
func authorizeCatalog(p Principal, action Action, res Resource) error {
	switch action {
	case ActionRead:
		return nil
	case ActionCreate, ActionUpdate, ActionDelete:
		if p.Role == RoleAdmin || p.Role == RoleTester {
			return nil
		}
		return deny("role %s may not %s %s", p.Role, action, res)
	case ActionCancel, ActionAdmin:
		return deny("role %s may not %s %s", p.Role, action, res)
	}
	panic(fmt.Sprintf("policy: unhandled action %q on %s", action, res))
}

// Orders are the only owned resource. Admin and tester operate on any order;
// a viewer reads and cancels only orders it owns, may create orders for
// itself, and never updates or deletes.
func authorizeOrders(p Principal, action Action, ownerID int64) error {
	if p.Role == RoleAdmin || p.Role == RoleTester {
		switch action {
		case ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionCancel:
			return nil
		case ActionAdmin:
			return deny("role %s may not %s orders", p.Role, action)
		}
		panic(fmt.Sprintf("policy: unhandled action %q on orders", action))
	}

	switch action {
	case ActionRead, ActionCancel:
		if ownerID == p.ID {
			return nil
		}
		return deny("role %s may only %s its own orders", p.Role, action)
	case ActionCreate:
		return nil
	case ActionUpdate, ActionDelete, ActionAdmin:
		return deny("role %s may not %s orders", p.Role, action)
	}
	panic(fmt.Sprintf("policy: unhandled action %q on orders", action))
}

func authorizeSandbox(p Principal, action Action) error {
	switch action {
	case ActionAdmin:
		if p.Role == RoleAdmin {
			return nil
		}
		return deny("role %s may not perform admin operations", p.Role)
	case ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionCancel:
		return deny("role %s may not perform admin operations", p.Role)
	}
	panic(fmt.Sprintf("policy: unhandled action %q on sandbox", action))
}
