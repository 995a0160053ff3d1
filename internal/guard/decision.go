package guard

import (
	"github.com/ses-manager/ses-manager/internal/identity"
	"github.com/ses-manager/ses-manager/internal/rbac"
)

// Outcome is the binary result of a guard evaluation.
type Outcome int

const (
	Deny Outcome = iota
	Allow
)

func (o Outcome) String() string {
	if o == Allow {
		return "allow"
	}
	return "deny"
}

// Reason explains which step of the evaluation produced a decision.
type Reason string

const (
	ReasonAuthenticated     Reason = "authenticated"
	ReasonPermission        Reason = "permission"
	ReasonOwnership         Reason = "ownership"
	ReasonRole              Reason = "role"
	ReasonUnauthenticated   Reason = "unauthenticated"
	ReasonMissingPermission Reason = "missing_permission"
)

// Decision is the result of Evaluate.
type Decision struct {
	Outcome Outcome
	Reason  Reason
	Role    rbac.Role
	// Missing lists the permissions that caused a deny, for diagnostics.
	Missing []rbac.Permission
}

func allow(reason Reason, id identity.Context) Decision {
	return Decision{Outcome: Allow, Reason: reason, Role: id.Role}
}

func deny(reason Reason, id identity.Context, missing []rbac.Permission) Decision {
	return Decision{Outcome: Deny, Reason: reason, Role: id.Role, Missing: missing}
}

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// Err converts a deny into rbac.ErrUnauthenticated or a *rbac.ForbiddenError.
// It returns nil for an allow.
func (d Decision) Err() error {
	switch {
	case d.Allowed():
		return nil
	case d.Reason == ReasonUnauthenticated:
		return rbac.ErrUnauthenticated
	}
	var perm rbac.Permission
	if len(d.Missing) > 0 {
		perm = d.Missing[0]
	}
	return &rbac.ForbiddenError{Permission: perm, Role: d.Role}
}

// Select returns children when d allows and fallback otherwise.
func Select[T any](d Decision, children, fallback T) T {
	if d.Allowed() {
		return children
	}
	return fallback
}
