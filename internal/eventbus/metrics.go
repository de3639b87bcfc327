package eventbus

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsExporter переносит статистику Bus в Prometheus-метрики.
// Counter-ы растут на дельту между снимками Stats.
type MetricsExporter struct {
	bus  *Bus
	quit chan struct{}
	done chan struct{}
	once sync.Once

	mu   sync.Mutex
	prev Stats

	// Prometheus metrics
	published     prometheus.Counter
	delivered     prometheus.Counter
	subscriptions prometheus.Gauge
	topics        prometheus.Gauge
}

// NewMetricsExporter создаёт экспортер и регистрирует метрики в reg (nil означает без регистрации).
// Периодическое обновление запускается Start.
func NewMetricsExporter(bus *Bus, reg prometheus.Registerer) *MetricsExporter {
	me := &MetricsExporter{
		bus:  bus,
		quit: make(chan struct{}),
		done: make(chan struct{}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_published_total",
			Help:      "Общее число опубликованных значений свойств.",
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_delivered_total",
			Help:      "Общее число доставок значений подписчикам.",
		}),
		subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventbus",
			Name:      "subscriptions",
			Help:      "Количество активных подписок на свойства.",
		}),
		topics: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventbus",
			Name:      "topics",
			Help:      "Количество зарегистрированных свойств.",
		}),
	}

	if reg != nil {
		reg.MustRegister(me.published, me.delivered, me.subscriptions, me.topics)
	}
	return me
}

// Start запускает обновление метрик с интервалом interval. Метод неблокирующий.
func (m *MetricsExporter) Start(interval time.Duration) {
	go m.loop(interval)
}

// Stop останавливает обновление метрик. Вызывать только после Start.
func (m *MetricsExporter) Stop() {
	m.once.Do(func() { close(m.quit) })
	<-m.done
}

// Collect переносит текущий снимок статистики в метрики
func (m *MetricsExporter) Collect() {
	stats := m.bus.Stats()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Для коррекции Counter нужно хранить прошлое значение и прибавлять дельту.
	if delta := stats.Published - m.prev.Published; delta > 0 {
		m.published.Add(float64(delta))
	}
	if delta := stats.Delivered - m.prev.Delivered; delta > 0 {
		m.delivered.Add(float64(delta))
	}
	m.subscriptions.Set(float64(stats.Subscriptions))
	m.topics.Set(float64(stats.Topics))

	m.prev = stats
}

func (m *MetricsExporter) loop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(m.done)

	for {
		select {
		case <-ticker.C:
			m.Collect()
		case <-m.quit:
			m.Collect()
			return
		}
	}
}
