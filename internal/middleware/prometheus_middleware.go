package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedRoute подставляется в метку path для запросов вне таблицы маршрутов,
// чтобы произвольные URL не размножали временные ряды.
const unmatchedRoute = "unmatched"

// PrometheusMiddleware собирает метрики REST API сцены.
//
// cmd/server создаёт реестр с коллекторами Go и процесса и передаёт его в
// api.NewRestServer, который подключает middleware с пространством имён
// "voxel_api" и отдаёт тот же реестр на GET /metrics. Метка path берётся из
// шаблона маршрута, поэтому GET /api/blocks/1/2/3 учитывается как
// /api/blocks/:x/:y/:z, а POST /api/pick и POST /api/raycast видны отдельно.
//
// Метрики (с префиксом пространства имён):
//   - http_request_duration_seconds{method,path,status}
//   - http_requests_inflight
//   - http_request_errors_total{method,path,status}, статусы 4xx и 5xx
//   - scene_unavailable_total{path}, ответы 503, когда цикл кадров не принял задачу
type PrometheusMiddleware struct {
	reqDuration      *prometheus.HistogramVec
	reqInflight      prometheus.Gauge
	reqErrors        *prometheus.CounterVec
	sceneUnavailable *prometheus.CounterVec
}

// NewPrometheusMiddleware создаёт метрики в пространстве имён namespace и
// регистрирует их в reg (nil означает без регистрации).
func NewPrometheusMiddleware(namespace string, reg prometheus.Registerer) *PrometheusMiddleware {
	pm := &PrometheusMiddleware{
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Длительность запросов к API сцены.",
			// Выбор блока ждёт очередного кадра, поэтому сетка сдвинута к кадровым интервалам
			Buckets: []float64{0.001, 0.005, 0.01, 0.017, 0.033, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "path", "status"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_inflight",
			Help:      "Запросы к API сцены в обработке.",
		}),
		reqErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_request_errors_total",
			Help:      "Запросы к API сцены со статусом 4xx или 5xx.",
		}, []string{"method", "path", "status"}),
		sceneUnavailable: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scene_unavailable_total",
			Help:      "Запросы, отклонённые из-за остановленного цикла кадров.",
		}, []string{"path"}),
	}

	if reg != nil {
		reg.MustRegister(pm.reqDuration, pm.reqInflight, pm.reqErrors, pm.sceneUnavailable)
	}
	return pm
}

// Handler возвращает gin.HandlerFunc для router.Use()
func (pm *PrometheusMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		pm.reqInflight.Inc()
		c.Next()
		pm.reqInflight.Dec()

		code := c.Writer.Status()
		status := strconv.Itoa(code)
		path := routeLabel(c)
		method := c.Request.Method

		pm.reqDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())

		if code >= http.StatusBadRequest {
			pm.reqErrors.WithLabelValues(method, path, status).Inc()
		}
		if code == http.StatusServiceUnavailable {
			pm.sceneUnavailable.WithLabelValues(path).Inc()
		}
	}
}

// RegisterMetricsEndpoint добавляет GET /metrics, отдающий метрики из gatherer.
func (pm *PrometheusMiddleware) RegisterMetricsEndpoint(r gin.IRoutes, gatherer prometheus.Gatherer) {
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

func routeLabel(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return unmatchedRoute
}
