package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-sim/internal/logging"
)

func newTestRouter(t *testing.T) (*gin.Engine, *PrometheusMiddleware, *prometheus.Registry, *bytes.Buffer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	reg := prometheus.NewRegistry()
	pm := NewPrometheusMiddleware("test", reg)

	r := gin.New()
	r.Use(NewRequestLogger(logging.NewWriterLogger("api", &buf, logging.INFO)).Handler())
	r.Use(pm.Handler())
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/fail", func(c *gin.Context) { c.String(http.StatusNotFound, "nope") })
	r.GET("/api/blocks/:x/:y/:z", func(c *gin.Context) { c.String(http.StatusOK, "grass") })
	r.POST("/api/pick", func(c *gin.Context) { c.String(http.StatusServiceUnavailable, "stopped") })
	pm.RegisterMetricsEndpoint(r, reg)
	return r, pm, reg, &buf
}

func TestMiddleware_CountsErrors(t *testing.T) {
	r, pm, _, buf := newTestRouter(t)

	for _, path := range []string{"/ok", "/fail", "/fail"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(pm.reqErrors.WithLabelValues("GET", "/fail", "404")))
	assert.Equal(t, float64(0), testutil.ToFloat64(pm.reqInflight))
	assert.Contains(t, buf.String(), "[HTTP] ◀ GET /fail 404")
}

func TestMiddleware_MetricsEndpoint(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_request_duration_seconds")
}

func TestMiddleware_RouteLabels(t *testing.T) {
	r, pm, _, _ := newTestRouter(t)

	for _, path := range []string{"/api/blocks/1/2/3", "/api/blocks/-4/0/7", "/no/such/route"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	// Координаты не попадают в метки: два ряда, шаблон маршрута и unmatched
	assert.Equal(t, 2, testutil.CollectAndCount(pm.reqDuration))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.reqErrors.WithLabelValues("GET", unmatchedRoute, "404")))
}

func TestMiddleware_CountsSceneUnavailable(t *testing.T) {
	r, pm, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/pick", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	assert.Equal(t, float64(1), testutil.ToFloat64(pm.sceneUnavailable.WithLabelValues("/api/pick")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.reqErrors.WithLabelValues("POST", "/api/pick", "503")))
}
