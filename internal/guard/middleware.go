package guard

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ses-manager/ses-manager/internal/audit"
	"github.com/ses-manager/ses-manager/internal/identity"
	"github.com/ses-manager/ses-manager/internal/observability"
	"github.com/ses-manager/ses-manager/internal/platform/httpx"
	"github.com/ses-manager/ses-manager/internal/rbac"
)

// Middleware gates HTTP handlers on guard decisions. It expects
// identity.Middleware to run earlier in the chain.
type Middleware struct {
	Logger   *slog.Logger
	Recorder audit.Recorder
	Metrics  *observability.Metrics
}

// Require admits requests whose caller satisfies req.
func (m Middleware) Require(req Requirement) func(http.Handler) http.Handler {
	return m.require(func(*http.Request) Requirement { return req })
}

// RequirePermission admits callers holding p.
func (m Middleware) RequirePermission(p rbac.Permission) func(http.Handler) http.Handler {
	return m.Require(Permission(p))
}

// RequireAny admits callers holding at least one of ps.
func (m Middleware) RequireAny(ps ...rbac.Permission) func(http.Handler) http.Handler {
	return m.Require(AnyOf(ps...))
}

// RequireAll admits callers holding every one of ps.
func (m Middleware) RequireAll(ps ...rbac.Permission) func(http.Handler) http.Handler {
	return m.Require(AllOf(ps...))
}

// RequireRoles admits callers whose role is in rs.
func (m Middleware) RequireRoles(rs ...rbac.Role) func(http.Handler) http.Handler {
	return m.Require(Roles(rs...))
}

// RequireOwner admits callers holding p or owning the resource whose owner id
// owner extracts from the request, typically a chi URL parameter.
func (m Middleware) RequireOwner(p rbac.Permission, owner func(*http.Request) string) func(http.Handler) http.Handler {
	return m.require(func(r *http.Request) Requirement {
		return Permission(p).OwnedBy(owner(r))
	})
}

func (m Middleware) require(build func(*http.Request) Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := build(r)
			id := identity.FromContext(r.Context())
			decision := Evaluate(id, req)
			m.observe(r, id, req, decision)
			if decision.Allowed() {
				next.ServeHTTP(w, r)
				return
			}
			httpx.RespondError(w, decision.Err())
		})
	}
}

func (m Middleware) observe(r *http.Request, id identity.Context, req Requirement, d Decision) {
	m.Metrics.ObserveDecision(d.Outcome.String(), string(d.Reason))

	if !d.Allowed() && m.Logger != nil {
		m.Logger.Warn("access denied",
			slog.String("path", r.URL.Path),
			slog.String("user_id", id.UserID),
			slog.String("role", string(id.Role)),
			slog.String("requirement", req.String()),
			slog.String("reason", string(d.Reason)),
			slog.Any("error", d.Err()),
		)
	}

	if m.Recorder == nil {
		return
	}
	evt := audit.Event{
		RequestID:   chimw.GetReqID(r.Context()),
		UserID:      id.UserID,
		Role:        string(id.Role),
		Method:      r.Method,
		Path:        r.URL.Path,
		Requirement: req.String(),
		Allowed:     d.Allowed(),
		Reason:      string(d.Reason),
	}
	if err := m.Recorder.Record(r.Context(), evt); err != nil {
		m.Metrics.AuditFailed()
		if m.Logger != nil {
			m.Logger.Error("record decision", slog.Any("error", err))
		}
	}
}
