package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ClientMetrics instruments the document lifecycle and chat turns as seen
// from the client side. All record methods are nil-safe so surfaces can run
// without metrics wired.
type ClientMetrics struct {
	registry *prometheus.Registry

	documentOps     *prometheus.CounterVec
	processInFlight prometheus.Gauge
	chatTurns       *prometheus.CounterVec
	turnDuration    prometheus.ObserverVec
	persistFailures prometheus.Counter
	registryResyncs prometheus.Counter
}

func NewClientMetrics(service string) *ClientMetrics {
	registry := prometheus.NewRegistry()

	documentOps := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docuchat",
			Subsystem: "documents",
			Name:      "operations_total",
			Help:      "Document lifecycle operations by operation and outcome.",
		},
		[]string{"service", "operation", "outcome"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docuchat",
			Subsystem: "documents",
			Name:      "process_in_flight",
			Help:      "Number of documents currently being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatTurns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docuchat",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Completed chat turns by surface and outcome.",
		},
		[]string{"service", "surface", "outcome"},
	)
	turnDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docuchat",
			Subsystem: "chat",
			Name:      "turn_duration_seconds",
			Help:      "Chat turn round-trip duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "surface"},
	)
	persistFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docuchat",
			Subsystem: "conversations",
			Name:      "persist_failures_total",
			Help:      "Message persistence failures swallowed by the background worker.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	registryResyncs := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docuchat",
			Subsystem: "documents",
			Name:      "registry_resyncs_total",
			Help:      "Full registry refetches triggered by ambiguous mutation failures.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		documentOps,
		processInFlight,
		chatTurns,
		turnDuration,
		persistFailures,
		registryResyncs,
	)

	return &ClientMetrics{
		registry:        registry,
		documentOps:     documentOps.MustCurryWith(prometheus.Labels{"service": service}),
		processInFlight: processInFlight,
		chatTurns:       chatTurns.MustCurryWith(prometheus.Labels{"service": service}),
		turnDuration:    turnDuration.MustCurryWith(prometheus.Labels{"service": service}),
		persistFailures: persistFailures,
		registryResyncs: registryResyncs,
	}
}

func (m *ClientMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ClientMetrics) ObserveDocumentOp(operation, outcome string) {
	if m == nil {
		return
	}
	m.documentOps.WithLabelValues(operation, outcome).Inc()
}

func (m *ClientMetrics) ProcessStarted() {
	if m == nil {
		return
	}
	m.processInFlight.Inc()
}

func (m *ClientMetrics) ProcessFinished() {
	if m == nil {
		return
	}
	m.processInFlight.Dec()
}

func (m *ClientMetrics) ObserveChatTurn(surface, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.chatTurns.WithLabelValues(surface, outcome).Inc()
	m.turnDuration.WithLabelValues(surface).Observe(duration.Seconds())
}

func (m *ClientMetrics) PersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *ClientMetrics) RegistryResync() {
	if m == nil {
		return
	}
	m.registryResyncs.Inc()
}
