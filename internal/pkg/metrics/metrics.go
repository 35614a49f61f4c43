package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "barbershop"

var (
	once sync.Once

	bookingRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_requests_total",
			Help:      "Booking requests by origin (customer, desk) and outcome.",
		},
		[]string{"origin", "outcome"},
	)

	queueActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_actions_total",
			Help:      "Queue reconciliation actions by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	stateWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_writes_total",
			Help:      "Full-collection writes by key and outcome.",
		},
		[]string{"key", "outcome"},
	)

	remoteStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "remote_status",
			Help:      "1 for the current remote mirror status, 0 otherwise.",
		},
		[]string{"status"},
	)

	wsClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Connected realtime websocket clients on this instance.",
		},
	)

	wsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_dropped_messages_total",
			Help:      "Realtime messages dropped because a client buffer was full.",
		},
	)

	httpRequests = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingRequests,
			queueActions,
			stateWrites,
			remoteStatus,
			wsClients,
			wsDropped,
			httpRequests,
		)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func IncBookingRequest(origin, outcome string) {
	bookingRequests.WithLabelValues(origin, outcome).Inc()
}

func IncQueueAction(action, outcome string) {
	queueActions.WithLabelValues(action, outcome).Inc()
}

func IncStateWrite(key, outcome string) {
	stateWrites.WithLabelValues(key, outcome).Inc()
}

// SetRemoteStatus marks current as the only active status.
func SetRemoteStatus(current string, all []string) {
	for _, s := range all {
		v := 0.0
		if s == current {
			v = 1
		}
		remoteStatus.WithLabelValues(s).Set(v)
	}
}

func SetWSClients(n int) {
	wsClients.Set(float64(n))
}

func IncWSDropped() {
	wsDropped.Inc()
}

func ObserveHTTP(method, status string, seconds float64) {
	httpRequests.WithLabelValues(method, status).Observe(seconds)
}
