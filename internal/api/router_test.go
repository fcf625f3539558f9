package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/coaching-backend/internal/auth"
	"github.com/nekogravitycat/coaching-backend/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T, cfg Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if cfg.JWTManager == nil {
		cfg.JWTManager = auth.NewJWTManager("test-secret", time.Hour)
	}
	return NewRouter(cfg)
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r := testRouter(t, Config{})

	w := do(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := testRouter(t, Config{})

	routes := []struct{ method, path string }{
		{http.MethodGet, "/v1/me"},
		{http.MethodPost, "/v1/sessions"},
		{http.MethodGet, "/v1/sessions/coach/0b0f6f3e-7a43-4f7e-9d52-1e0c1a4f0c11"},
		{http.MethodPatch, "/v1/sessions/0b0f6f3e-7a43-4f7e-9d52-1e0c1a4f0c11/cancel"},
		{http.MethodPost, "/v1/availability"},
		{http.MethodPost, "/v1/services"},
		{http.MethodGet, "/v1/appointments/me"},
		{http.MethodDelete, "/v1/blog/0b0f6f3e-7a43-4f7e-9d52-1e0c1a4f0c11"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := do(r, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"unauthorized"`)
		})
	}
}

func TestCORS(t *testing.T) {
	preflight := func(r http.Handler, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/v1/services", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		return do(r, req)
	}

	dev := testRouter(t, Config{})
	w := preflight(dev, "http://localhost:5173")
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	prod := testRouter(t, Config{IsProduction: true, ProdOrigins: "https://coach.example.com, https://admin.example.com"})
	w = preflight(prod, "https://admin.example.com")
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight(prod, "http://localhost:5173")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestProductionWithoutOriginsStillBuilds(t *testing.T) {
	r := testRouter(t, Config{IsProduction: true})
	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := testRouter(t, Config{Metrics: metrics.NewCollector(reg), Gatherer: reg})

	require.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)

	w := do(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `coaching_http_requests_total{method="GET",route="/healthz",status="200"} 1`)

	none := testRouter(t, Config{})
	assert.Equal(t, http.StatusNotFound, do(none, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	defer rl.Stop()
	r := testRouter(t, Config{AuthLimiter: rl})

	first := do(r, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))
	assert.Equal(t, http.StatusBadRequest, first.Code, "empty body reaches the handler")

	second := do(r, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
