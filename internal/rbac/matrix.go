package rbac

// matrix maps each role to the set of permissions it grants. It is never
// mutated after initialisation and never exposed directly.
var matrix = map[Role]map[Permission]struct{}{
	RoleAdmin: grant(catalog...),
	RoleSales: grant(
		PermProjectRead, PermProjectCreate, PermProjectUpdate,
		PermEngineerRead, PermEngineerCreate, PermEngineerUpdate,
		PermInteractionRead, PermInteractionCreate, PermInteractionUpdate,
		PermUserRead,
	),
	RoleEngineer: grant(
		PermEngineerRead, PermEngineerUpdate,
		PermInteractionRead, PermInteractionCreate, PermInteractionUpdate,
		PermUserRead,
	),
}

func grant(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Permissions returns a copy of the permissions granted to role, in catalog
// order. Unknown roles yield nil.
func Permissions(role Role) []Permission {
	granted, ok := matrix[role]
	if !ok {
		return nil
	}
	out := make([]Permission, 0, len(granted))
	for _, p := range catalog {
		if _, ok := granted[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Matrix returns a snapshot of the full role-permission matrix.
func Matrix() map[Role][]Permission {
	out := make(map[Role][]Permission, len(roles))
	for _, r := range roles {
		out[r] = Permissions(r)
	}
	return out
}
