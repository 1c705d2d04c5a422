package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for forwarded operations.
const (
	OutcomeSuccess           = "success"
	OutcomeUnauthorized      = "unauthorized"
	OutcomeDeviceUnavailable = "device_unavailable"
	OutcomeStoreError        = "store_error"
	OutcomeUpstreamError     = "upstream_error"
)

// Metrics holds the gateway's prometheus collectors. Register against a
// dedicated registry so parallel test apps don't collide.
type Metrics struct {
	ForwardedTotal           *prometheus.CounterVec
	AuthorizationDeniedTotal prometheus.Counter
	UpstreamDuration         *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ForwardedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_gateway_forwarded_operations_total",
			Help: "Forwarded POS operations by operation name and outcome",
		}, []string{"operation", "outcome"}),
		AuthorizationDeniedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pos_gateway_authorization_denied_total",
			Help: "Requests rejected because the terminal was not authorized",
		}),
		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pos_gateway_upstream_duration_seconds",
			Help:    "Latency of upstream payment service calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}
