package rbac

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ses-manager/ses-manager/internal/platform/httpx"
)

func TestHasPermission(t *testing.T) {
	assert.False(t, HasPermission(RoleSales, PermProjectDelete))
	assert.True(t, HasPermission(RoleSales, PermProjectCreate))
	assert.True(t, HasPermission(RoleEngineer, PermEngineerUpdate))
	assert.False(t, HasPermission(RoleEngineer, PermProjectRead))
}

func TestUnknownRolesHoldNothing(t *testing.T) {
	for _, r := range []Role{"", "not-a-real-role", "ADMIN", " admin"} {
		for _, p := range AllPermissions() {
			assert.Falsef(t, HasPermission(r, p), "role %q granted %s", r, p)
		}
	}
	assert.False(t, HasAnyPermission("", PermProjectRead, PermUserRead))
	assert.True(t, HasAllPermissions(""))
	assert.False(t, HasAllPermissions("", PermUserRead))
}

func TestHasAnyPermissionEmptyListIsFalse(t *testing.T) {
	assert.False(t, HasAnyPermission(RoleAdmin))
	assert.False(t, HasAnyPermission(RoleAdmin, []Permission{}...))
}

func TestHasAllPermissionsEmptyListIsTrue(t *testing.T) {
	assert.True(t, HasAllPermissions(RoleAdmin))
	assert.True(t, HasAllPermissions(RoleEngineer, []Permission{}...))
}

func TestHasAllPermissionsEngineer(t *testing.T) {
	assert.True(t, HasAllPermissions(RoleEngineer, PermEngineerRead, PermUserRead))
	assert.False(t, HasAllPermissions(RoleEngineer, PermEngineerRead, PermUserRead, PermProjectCreate))
}

func TestHasAnyPermissionSales(t *testing.T) {
	assert.True(t, HasAnyPermission(RoleSales, PermProjectCreate, PermProjectDelete))
	assert.False(t, HasAnyPermission(RoleSales, PermProjectDelete, PermSystemAdmin))
}

func TestIsResourceOwner(t *testing.T) {
	for _, id := range []string{"", "u-1", "00000000-0000-0000-0000-000000000000"} {
		assert.Truef(t, IsResourceOwner(id, id), "id %q", id)
	}
	assert.False(t, IsResourceOwner("a", "b"))
	assert.False(t, IsResourceOwner("a", ""))
	assert.False(t, IsResourceOwner("", "a"))
}

func TestCanAccessOwnedIsOrComposition(t *testing.T) {
	const userID = "eng-42"

	assert.False(t, CanAccess(RoleEngineer, userID, PermProjectRead))
	assert.True(t, CanAccessOwned(RoleEngineer, userID, PermProjectRead, userID))
	assert.False(t, CanAccessOwned(RoleEngineer, userID, PermProjectRead, "eng-7"))

	// Ownership never revokes a role grant.
	assert.True(t, CanAccessOwned(RoleAdmin, userID, PermProjectDelete, "someone-else"))
	assert.True(t, CanAccess(RoleSales, userID, PermProjectRead))
}

func TestRequireReturnsForbiddenError(t *testing.T) {
	require.NoError(t, Require(RoleAdmin, PermSystemAdmin))

	err := Require(RoleSales, PermProjectDelete)
	require.Error(t, err)

	var forbidden *ForbiddenError
	require.True(t, errors.As(err, &forbidden))
	assert.Equal(t, PermProjectDelete, forbidden.Permission)
	assert.Equal(t, RoleSales, forbidden.Role)
	assert.True(t, errors.Is(err, httpx.ErrForbidden))
	assert.Equal(t, "rbac: role sales lacks permission project:delete", err.Error())

	require.NoError(t, RequireOwned(RoleEngineer, "e1", PermEngineerDelete, "e1"))
	assert.Error(t, RequireOwned(RoleEngineer, "e1", PermEngineerDelete, "e2"))
}

func TestErrUnauthenticatedWrapsTaxonomy(t *testing.T) {
	assert.True(t, errors.Is(ErrUnauthenticated, httpx.ErrUnauthorized))
	assert.False(t, errors.Is(ErrUnauthenticated, httpx.ErrForbidden))

	err := &ForbiddenError{}
	assert.Equal(t, "rbac: role <none> not permitted", err.Error())
}
