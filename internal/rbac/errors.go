package rbac

import (
	"fmt"

	"github.com/ses-manager/ses-manager/internal/platform/httpx"
)

// ErrUnauthenticated indicates the caller has no valid session.
var ErrUnauthenticated = fmt.Errorf("rbac: authentication required: %w", httpx.ErrUnauthorized)

// ForbiddenError reports an authenticated caller that lacks a permission.
// Its message names the role and permission and is meant for logs only.
type ForbiddenError struct {
	Permission Permission
	Role       Role
}

func (e *ForbiddenError) Error() string {
	role := string(e.Role)
	if role == "" {
		role = "<none>"
	}
	if e.Permission == "" {
		return fmt.Sprintf("rbac: role %s not permitted", role)
	}
	return fmt.Sprintf("rbac: role %s lacks permission %s", role, e.Permission)
}

// Unwrap lets errors.Is match httpx.ErrForbidden.
func (e *ForbiddenError) Unwrap() error {
	return httpx.ErrForbidden
}
