package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "bravia"

// Outcome label values of bravia_requests_total.
const (
	outcomeOK = "ok"
)

type metrics struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	notificationsTotal *prometheus.CounterVec
	websocketClients   prometheus.Gauge
	reconnectsTotal    prometheus.Counter
}

// newMetrics registers the bridge collectors on reg. state reports the
// connection state for bravia_connection_state.
func newMetrics(reg prometheus.Registerer, state func() float64) *metrics {
	factory := promauto.With(reg)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "connection_state",
		Help:      "Connection state (0 disconnected, 1 connecting, 2 connected, 3 disconnecting)",
	}, state)

	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Requests sent to the display by command and outcome",
		}, []string{"command", "outcome"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Time from sending a request to its answer",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"command"}),

		notificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notifications_total",
			Help:      "Notifications received from the display by command",
		}, []string{"command"}),

		websocketClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "websocket_clients",
			Help:      "Connected event stream clients",
		}),

		reconnectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reconnects_total",
			Help:      "Reconnect attempts after the connection was lost",
		}),
	}
}
