package sim

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics инкапсулирует Prometheus-метрики планировщика.
// Методы безопасны для nil-указателя.
type Metrics struct {
	ticks        prometheus.Counter
	dispatches   prometheus.Counter
	errors       prometheus.Counter
	queueLength  prometheus.Gauge
	tickDuration prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg (nil означает без регистрации)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Subsystem: "sim",
			Name:      "ticks_total",
			Help:      "Общее число выполненных тиков.",
		}),
		dispatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Subsystem: "sim",
			Name:      "dispatches_total",
			Help:      "Число вызовов поведений блоков.",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Subsystem: "sim",
			Name:      "errors_total",
			Help:      "Ошибки при обработке запланированных позиций.",
		}),
		queueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Subsystem: "sim",
			Name:      "queue_length",
			Help:      "Количество позиций, ожидающих следующего тика.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxel",
			Subsystem: "sim",
			Name:      "tick_duration_seconds",
			Help:      "Длительность одного тика.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.ticks, m.dispatches, m.errors, m.queueLength, m.tickDuration)
	}
	return m
}

func (m *Metrics) incDispatches() {
	if m != nil {
		m.dispatches.Inc()
	}
}

func (m *Metrics) incErrors() {
	if m != nil {
		m.errors.Inc()
	}
}

func (m *Metrics) setQueueLength(n int) {
	if m != nil {
		m.queueLength.Set(float64(n))
	}
}

func (m *Metrics) observeTick(d time.Duration, queued int) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.tickDuration.Observe(d.Seconds())
	m.queueLength.Set(float64(queued))
}
