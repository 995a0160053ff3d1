// Package identity carries the authenticated caller through a request.
//
// Identities are produced by an external session service; this package only
// reads them. A Context is a value: it is resolved once per request and
// replaced, never mutated, when the session changes.
package identity

import (
	"context"

	"github.com/ses-manager/ses-manager/internal/rbac"
)

// Context is the caller as seen by the authorization core. Role may hold a
// value outside the catalog; such callers simply hold no permissions.
type Context struct {
	Role          rbac.Role
	UserID        string
	Authenticated bool
}

// Anonymous is the identity of a caller without a session.
var Anonymous = Context{}

// New returns an authenticated identity.
func New(role rbac.Role, userID string) Context {
	return Context{Role: role, UserID: userID, Authenticated: true}
}

type contextKey struct{}

// WithContext stores id in ctx.
func WithContext(ctx context.Context, id Context) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored in ctx, or Anonymous.
func FromContext(ctx context.Context) Context {
	id, _ := ctx.Value(contextKey{}).(Context)
	return id
}
