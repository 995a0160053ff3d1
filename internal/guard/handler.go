package guard

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ses-manager/ses-manager/internal/identity"
	"github.com/ses-manager/ses-manager/internal/platform/httpx"
	"github.com/ses-manager/ses-manager/internal/rbac"
)

// Handler serves the authorization introspection API used by UI clients to
// decide what to render.
type Handler struct {
	logger    *slog.Logger
	guard     Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, guard Middleware) *Handler {
	v := validator.New()
	_ = v.RegisterValidation("permission", func(fl validator.FieldLevel) bool {
		return rbac.Permission(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return rbac.Role(fl.Field().String()).Valid()
	})
	return &Handler{
		logger:    logger,
		guard:     guard,
		validator: v,
	}
}

// MountRoutes registers the introspection routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.me)
	r.Post("/check", h.check)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(rbac.PermSystemAdmin))
		r.Get("/roles", h.roles)
	})
}

type meResponse struct {
	UserID      string            `json:"userId"`
	Role        string            `json:"role"`
	Permissions []rbac.Permission `json:"permissions"`
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id := identity.FromContext(r.Context())
	if !id.Authenticated {
		httpx.RespondError(w, rbac.ErrUnauthenticated)
		return
	}
	perms := rbac.Permissions(id.Role)
	if perms == nil {
		perms = []rbac.Permission{}
	}
	httpx.JSON(w, http.StatusOK, meResponse{UserID: id.UserID, Role: string(id.Role), Permissions: perms})
}

type checkRequest struct {
	Permission      string   `json:"permission" validate:"omitempty,permission"`
	Permissions     []string `json:"permissions" validate:"omitempty,dive,permission"`
	RequireAll      bool     `json:"requireAll"`
	Roles           []string `json:"roles" validate:"omitempty,dive,role"`
	ResourceOwnerID *string  `json:"resourceOwnerId"`
}

type checkResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	var body checkRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		if h.logger != nil {
			h.logger.Debug("decode check request", slog.Any("error", err))
		}
		httpx.RespondError(w, fmt.Errorf("decode body: %w", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.RespondError(w, fmt.Errorf("%s: %w", describeValidation(err), httpx.ErrValidation))
		return
	}

	decision := Evaluate(identity.FromContext(r.Context()), body.requirement())
	httpx.JSON(w, http.StatusOK, checkResponse{Allowed: decision.Allowed(), Reason: string(decision.Reason)})
}

func (c checkRequest) requirement() Requirement {
	req := Requirement{
		Permission:      rbac.Permission(c.Permission),
		RequireAll:      c.RequireAll,
		ResourceOwnerID: c.ResourceOwnerID,
	}
	for _, p := range c.Permissions {
		req.Permissions = append(req.Permissions, rbac.Permission(p))
	}
	for _, role := range c.Roles {
		req.Roles = append(req.Roles, rbac.Role(role))
	}
	return req
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s is not a known %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

type roleView struct {
	Role        string            `json:"role"`
	Label       string            `json:"label"`
	Permissions []rbac.Permission `json:"permissions"`
}

func (h *Handler) roles(w http.ResponseWriter, r *http.Request) {
	title := cases.Title(language.English)
	roles := rbac.Roles()
	out := make([]roleView, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleView{
			Role:        string(role),
			Label:       title.String(string(role)),
			Permissions: rbac.Permissions(role),
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}
