// Package rbac holds the SES role and permission catalog, the static
// role-permission matrix and the pure evaluation functions built on it.
//
// Every function in this package is total: unknown roles, empty roles and
// empty permission lists degrade to a boolean answer, never a panic or error.
// The matrix is built once at package initialisation and is never handed out
// mutably, so concurrent reads need no synchronisation.
package rbac

import "strings"

// Role is one of the closed set of SES user roles.
type Role string

// Roles known to the system.
const (
	RoleAdmin    Role = "admin"
	RoleSales    Role = "sales"
	RoleEngineer Role = "engineer"
)

// Permission is a "resource:action" capability token. The token text is the
// wire value stored in sessions, audit rows and API payloads.
type Permission string

// Project permissions.
const (
	PermProjectRead   Permission = "project:read"
	PermProjectCreate Permission = "project:create"
	PermProjectUpdate Permission = "project:update"
	PermProjectDelete Permission = "project:delete"
)

// Engineer permissions.
const (
	PermEngineerRead   Permission = "engineer:read"
	PermEngineerCreate Permission = "engineer:create"
	PermEngineerUpdate Permission = "engineer:update"
	PermEngineerDelete Permission = "engineer:delete"
)

// Interaction permissions.
const (
	PermInteractionRead   Permission = "interaction:read"
	PermInteractionCreate Permission = "interaction:create"
	PermInteractionUpdate Permission = "interaction:update"
	PermInteractionDelete Permission = "interaction:delete"
)

// User management permissions.
const (
	PermUserRead   Permission = "user:read"
	PermUserCreate Permission = "user:create"
	PermUserUpdate Permission = "user:update"
	PermUserDelete Permission = "user:delete"
)

// PermSystemAdmin grants access to system administration surfaces.
const PermSystemAdmin Permission = "system:admin"

var roles = []Role{RoleAdmin, RoleSales, RoleEngineer}

var catalog = []Permission{
	PermProjectRead, PermProjectCreate, PermProjectUpdate, PermProjectDelete,
	PermEngineerRead, PermEngineerCreate, PermEngineerUpdate, PermEngineerDelete,
	PermInteractionRead, PermInteractionCreate, PermInteractionUpdate, PermInteractionDelete,
	PermUserRead, PermUserCreate, PermUserUpdate, PermUserDelete,
	PermSystemAdmin,
}

var catalogIndex = func() map[Permission]int {
	idx := make(map[Permission]int, len(catalog))
	for i, p := range catalog {
		idx[p] = i
	}
	return idx
}()

// Roles returns every defined role.
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// AllPermissions returns the full permission catalog in declaration order.
func AllPermissions() []Permission {
	out := make([]Permission, len(catalog))
	copy(out, catalog)
	return out
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := matrix[r]
	return ok
}

func (r Role) String() string { return string(r) }

// Valid reports whether p is part of the catalog.
func (p Permission) Valid() bool {
	_, ok := catalogIndex[p]
	return ok
}

func (p Permission) String() string { return string(p) }

// Resource returns the part of the token before the colon.
func (p Permission) Resource() string {
	resource, _, _ := strings.Cut(string(p), ":")
	return resource
}

// Action returns the part of the token after the colon.
func (p Permission) Action() string {
	_, action, _ := strings.Cut(string(p), ":")
	return action
}

// ParseRole converts raw input into a Role. Matching is exact after trimming
// surrounding whitespace; "Admin" is not a role.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.TrimSpace(raw))
	return r, r.Valid()
}

// ParsePermission converts raw input into a catalog Permission.
func ParsePermission(raw string) (Permission, bool) {
	p := Permission(strings.TrimSpace(raw))
	return p, p.Valid()
}
