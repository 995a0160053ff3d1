package guard

import (
	"html/template"

	"github.com/ses-manager/ses-manager/internal/identity"
	"github.com/ses-manager/ses-manager/internal/rbac"
)

// FuncMap exposes guard checks for id to html/template render sites:
//
//	{{if can "project:create"}}<a href="/projects/new">New</a>{{end}}
//	{{if canAll "project:update" "project:delete"}}...{{end}}
//	{{if owns "engineer:update" .Engineer.UserID}}...{{end}}
//	{{if hasRole "admin" "sales"}}...{{end}}
func FuncMap(id identity.Context) template.FuncMap {
	return template.FuncMap{
		"can": func(p string) bool {
			return Allowed(id, Permission(rbac.Permission(p)))
		},
		"canAny": func(ps ...string) bool {
			return Allowed(id, AnyOf(toPermissions(ps)...))
		},
		"canAll": func(ps ...string) bool {
			return Allowed(id, AllOf(toPermissions(ps)...))
		},
		"owns": func(p, ownerID string) bool {
			return Allowed(id, Permission(rbac.Permission(p)).OwnedBy(ownerID))
		},
		"hasRole": func(rs ...string) bool {
			roles := make([]rbac.Role, len(rs))
			for i, r := range rs {
				roles[i] = rbac.Role(r)
			}
			return Allowed(id, Roles(roles...))
		},
		"signedIn": func() bool {
			return id.Authenticated
		},
	}
}

func toPermissions(raw []string) []rbac.Permission {
	out := make([]rbac.Permission, len(raw))
	for i, p := range raw {
		out[i] = rbac.Permission(p)
	}
	return out
}
