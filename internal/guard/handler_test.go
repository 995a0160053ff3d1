package guard

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ses-manager/ses-manager/internal/identity"
	"github.com/ses-manager/ses-manager/internal/rbac"
)

func newIntrospectionRouter() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1/authz", NewHandler(nil, Middleware{}).MountRoutes)
	return r
}

func TestMeReturnsGrantedPermissions(t *testing.T) {
	rr := serve(t, newIntrospectionRouter(), engineer, http.MethodGet, "/api/v1/authz/me", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body meResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "e-1", body.UserID)
	assert.Equal(t, "engineer", body.Role)
	assert.Equal(t, rbac.Permissions(rbac.RoleEngineer), body.Permissions)
}

func TestMeUnknownRoleHasEmptyPermissions(t *testing.T) {
	rr := serve(t, newIntrospectionRouter(), identity.New("auditor", "x"), http.MethodGet, "/api/v1/authz/me", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"permissions":[]`)
}

func TestMeRequiresSession(t *testing.T) {
	rr := serve(t, newIntrospectionRouter(), identity.Anonymous, http.MethodGet, "/api/v1/authz/me", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCheckEvaluatesRequirement(t *testing.T) {
	router := newIntrospectionRouter()
	cases := []struct {
		name    string
		id      identity.Context
		body    string
		allowed bool
		reason  string
	}{
		{"all denied", sales, `{"permissions":["project:create","project:delete"],"requireAll":true}`, false, "missing_permission"},
		{"any allowed", sales, `{"permissions":["project:create","project:delete"]}`, true, "permission"},
		{"role mismatch", sales, `{"roles":["admin"]}`, false, "role"},
		{"ownership", engineer, `{"permission":"project:read","resourceOwnerId":"e-1"}`, true, "ownership"},
		{"empty", engineer, `{}`, true, "authenticated"},
		{"anonymous", identity.Anonymous, `{}`, false, "unauthenticated"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(t, router, tc.id, http.MethodPost, "/api/v1/authz/check", tc.body)
			require.Equal(t, http.StatusOK, rr.Code)

			var body checkResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.allowed, body.Allowed)
			assert.Equal(t, tc.reason, body.Reason)
		})
	}
}

func TestCheckRejectsUnknownTokens(t *testing.T) {
	router := newIntrospectionRouter()
	for _, body := range []string{
		`{"permission":"project:archive"}`,
		`{"permissions":["project:read","nope"]}`,
		`{"roles":["auditor"]}`,
		`{"permision":"project:read"}`,
		`not json`,
	} {
		rr := serve(t, router, admin, http.MethodPost, "/api/v1/authz/check", body)
		assert.Equalf(t, http.StatusBadRequest, rr.Code, "body %s", body)
	}
}

func TestRolesRequiresSystemAdmin(t *testing.T) {
	router := newIntrospectionRouter()

	rr := serve(t, router, sales, http.MethodGet, "/api/v1/authz/roles", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = serve(t, router, admin, http.MethodGet, "/api/v1/authz/roles", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body []roleView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body, 3)
	assert.Equal(t, "admin", body[0].Role)
	assert.Equal(t, "Admin", body[0].Label)
	assert.Len(t, body[0].Permissions, 17)
	assert.Equal(t, "Sales", body[1].Label)
	assert.Len(t, body[1].Permissions, 10)
	assert.Equal(t, "Engineer", body[2].Label)
	assert.Len(t, body[2].Permissions, 6)
}
