package rbac

// HasPermission reports whether role is granted permission. Roles outside the
// catalog, including the empty role, hold no permissions.
func HasPermission(role Role, permission Permission) bool {
	granted, ok := matrix[role]
	if !ok {
		return false
	}
	_, ok = granted[permission]
	return ok
}

// HasAnyPermission reports whether role holds at least one of permissions.
// An empty list is never satisfied.
func HasAnyPermission(role Role, permissions ...Permission) bool {
	for _, p := range permissions {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether role holds every one of permissions.
// An empty list is always satisfied, whatever the role.
func HasAllPermissions(role Role, permissions ...Permission) bool {
	for _, p := range permissions {
		if !HasPermission(role, p) {
			return false
		}
	}
	return true
}

// IsResourceOwner reports whether userID and resourceUserID are the same
// identifier. This is plain value equality: two empty ids are equal.
func IsResourceOwner(userID, resourceUserID string) bool {
	return userID == resourceUserID
}

// CanAccess reports whether role is granted permission. It is the
// combinator without an ownership fallback.
func CanAccess(role Role, userID string, permission Permission) bool {
	return HasPermission(role, permission)
}

// CanAccessOwned grants access when role holds permission or, failing that,
// when userID owns the resource identified by resourceOwnerID.
func CanAccessOwned(role Role, userID string, permission Permission, resourceOwnerID string) bool {
	if HasPermission(role, permission) {
		return true
	}
	return IsResourceOwner(userID, resourceOwnerID)
}

// Require returns a *ForbiddenError when role lacks permission.
func Require(role Role, permission Permission) error {
	if HasPermission(role, permission) {
		return nil
	}
	return &ForbiddenError{Permission: permission, Role: role}
}

// RequireOwned is Require with the ownership fallback of CanAccessOwned.
func RequireOwned(role Role, userID string, permission Permission, resourceOwnerID string) error {
	if CanAccessOwned(role, userID, permission, resourceOwnerID) {
		return nil
	}
	return &ForbiddenError{Permission: permission, Role: role}
}
