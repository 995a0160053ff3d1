package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ses-manager/ses-manager/internal/guard"
	"github.com/ses-manager/ses-manager/internal/identity"
	"github.com/ses-manager/ses-manager/internal/observability"
	"github.com/ses-manager/ses-manager/jobs"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("AUDIT_LOG_ALLOWED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.AppAddr)
	assert.Equal(t, "ses_session", cfg.SessionCookie)
	assert.True(t, cfg.AuditEnabled)
	assert.True(t, cfg.AuditLogAllowed)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{SessionCookie: "s", RateLimitPerMinute: 1, AuditEnabled: true}
	assert.Error(t, cfg.Validate())

	cfg.AuditEnabled = false
	assert.NoError(t, cfg.Validate())

	cfg.SessionCookie = ""
	assert.Error(t, cfg.Validate())
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, &Config{LogFormat: "json", LogLevel: "warn"}).Info("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, &Config{LogFormat: "json", LogLevel: "warn"}).Warn("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	newLogger(&buf, &Config{LogFormat: "pretty"}).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func newTestRouter(t *testing.T) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &Config{SessionCookie: "ses_session", RateLimitPerMinute: 1000}
	metrics := observability.NewMetrics()
	router := NewRouter(RouterParams{
		Config:     cfg,
		Identity:   identity.NewSessionReader(client, cfg.SessionCookie),
		Guard:      guard.Middleware{Metrics: metrics},
		JobHandler: jobs.NewHandler(nil, nil),
		Metrics:    metrics,
	})
	return router, mr
}

func get(router http.Handler, path, session string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if session != "" {
		req.AddCookie(&http.Cookie{Name: "ses_session", Value: session})
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRouterHealthAndSecurityHeaders(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := get(router, "/healthz", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestRouterResolvesSessionIdentity(t *testing.T) {
	router, mr := newTestRouter(t)
	require.NoError(t, mr.Set("session:s1", `{"values":{"role":"sales"},"user_id":"11"}`))
	require.NoError(t, mr.Set("session:a1", `{"values":{"role":"admin"},"user_id":"1"}`))

	assert.Equal(t, http.StatusUnauthorized, get(router, "/api/v1/authz/me", "").Code)

	rr := get(router, "/api/v1/authz/me", "s1")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"role":"sales"`)

	assert.Equal(t, http.StatusForbidden, get(router, "/jobs/health", "s1").Code)
	assert.Equal(t, http.StatusOK, get(router, "/jobs/health", "a1").Code)
	assert.Equal(t, http.StatusOK, get(router, "/api/v1/authz/roles", "a1").Code)

	metrics := get(router, "/metrics", "")
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `ses_authz_decisions_total{outcome="deny",reason="missing_permission"} 1`)
}
