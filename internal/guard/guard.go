// Package guard turns a declared access requirement and the caller's identity
// into a single allow or deny decision.
//
// Evaluate is a pure function. Rendering and HTTP code consume its Decision:
// templates pick content with Select or the FuncMap helpers, and Middleware
// converts a deny into the rbac error taxonomy.
package guard

import (
	"slices"
	"strings"

	"github.com/ses-manager/ses-manager/internal/identity"
	"github.com/ses-manager/ses-manager/internal/rbac"
)

// Requirement declares what a caller needs. The zero value requires only an
// authenticated session.
type Requirement struct {
	// Permission, when set, takes precedence over Permissions.
	Permission  rbac.Permission
	Permissions []rbac.Permission
	// RequireAll selects AND semantics for Permissions; the default is OR.
	RequireAll bool
	// Roles, when non-empty, is an allow-list checked before any permission.
	Roles []rbac.Role
	// ResourceOwnerID enables the ownership fallback for Permission.
	// nil means no owner was supplied.
	ResourceOwnerID *string
}

// Authenticated requires only a session.
func Authenticated() Requirement { return Requirement{} }

// Permission requires a single permission.
func Permission(p rbac.Permission) Requirement {
	return Requirement{Permission: p}
}

// AnyOf requires at least one of ps.
func AnyOf(ps ...rbac.Permission) Requirement {
	return Requirement{Permissions: ps}
}

// AllOf requires every one of ps.
func AllOf(ps ...rbac.Permission) Requirement {
	return Requirement{Permissions: ps, RequireAll: true}
}

// Roles requires the caller's role to be one of rs.
func Roles(rs ...rbac.Role) Requirement {
	return Requirement{Roles: rs}
}

// OwnedBy returns a copy of req that also grants access to ownerID.
func (req Requirement) OwnedBy(ownerID string) Requirement {
	req.ResourceOwnerID = &ownerID
	return req
}

// WithRoles returns a copy of req restricted to rs.
func (req Requirement) WithRoles(rs ...rbac.Role) Requirement {
	req.Roles = rs
	return req
}

// String renders req for logs and audit rows.
func (req Requirement) String() string {
	var parts []string
	if len(req.Roles) > 0 {
		names := make([]string, len(req.Roles))
		for i, r := range req.Roles {
			names[i] = string(r)
		}
		parts = append(parts, "roles("+strings.Join(names, ",")+")")
	}
	switch {
	case req.Permission != "":
		p := string(req.Permission)
		if req.ResourceOwnerID != nil {
			p += "|owner"
		}
		parts = append(parts, p)
	case len(req.Permissions) > 0:
		names := make([]string, len(req.Permissions))
		for i, p := range req.Permissions {
			names[i] = string(p)
		}
		op := "any"
		if req.RequireAll {
			op = "all"
		}
		parts = append(parts, op+"("+strings.Join(names, ",")+")")
	}
	if len(parts) == 0 {
		return "authenticated"
	}
	return strings.Join(parts, " ")
}

// Evaluate decides whether id satisfies req. The checks run in a fixed
// order: authentication, role allow-list, then the permission rule.
func Evaluate(id identity.Context, req Requirement) Decision {
	if !id.Authenticated {
		return deny(ReasonUnauthenticated, id, nil)
	}
	if len(req.Roles) > 0 && !slices.Contains(req.Roles, id.Role) {
		return deny(ReasonRole, id, nil)
	}

	switch {
	case req.Permission != "":
		if rbac.HasPermission(id.Role, req.Permission) {
			return allow(ReasonPermission, id)
		}
		if req.ResourceOwnerID != nil && rbac.IsResourceOwner(id.UserID, *req.ResourceOwnerID) {
			return allow(ReasonOwnership, id)
		}
		return deny(ReasonMissingPermission, id, []rbac.Permission{req.Permission})
	case len(req.Permissions) > 0 && req.RequireAll:
		if rbac.HasAllPermissions(id.Role, req.Permissions...) {
			return allow(ReasonPermission, id)
		}
		return deny(ReasonMissingPermission, id, missing(id.Role, req.Permissions))
	case len(req.Permissions) > 0:
		if rbac.HasAnyPermission(id.Role, req.Permissions...) {
			return allow(ReasonPermission, id)
		}
		return deny(ReasonMissingPermission, id, slices.Clone(req.Permissions))
	case len(req.Roles) > 0:
		return allow(ReasonRole, id)
	default:
		return allow(ReasonAuthenticated, id)
	}
}

// Allowed is shorthand for Evaluate(id, req).Allowed().
func Allowed(id identity.Context, req Requirement) bool {
	return Evaluate(id, req).Allowed()
}

func missing(role rbac.Role, perms []rbac.Permission) []rbac.Permission {
	var out []rbac.Permission
	for _, p := range perms {
		if !rbac.HasPermission(role, p) {
			out = append(out, p)
		}
	}
	return out
}
