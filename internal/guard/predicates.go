package guard

import (
	"github.com/ses-manager/ses-manager/internal/identity"
	"github.com/ses-manager/ses-manager/internal/rbac"
)

// Named role gates.
var (
	AdminOnly    = Roles(rbac.RoleAdmin)
	SalesOrAdmin = Roles(rbac.RoleSales, rbac.RoleAdmin)
	EngineerOnly = Roles(rbac.RoleEngineer)
)

func IsAdmin(id identity.Context) bool { return Allowed(id, AdminOnly) }

func IsSalesOrAdmin(id identity.Context) bool { return Allowed(id, SalesOrAdmin) }

func IsEngineer(id identity.Context) bool { return Allowed(id, EngineerOnly) }
