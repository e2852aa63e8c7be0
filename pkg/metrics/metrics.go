// storefront/pkg/metrics/metrics.go
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PaymentRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "payment_requests_total",
			Help:      "Total payment requests per service",
		},
		[]string{"service", "status", "method"},
	)

	GatewayCallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "gateway_callbacks_total",
			Help:      "Gateway callbacks received, labeled by response code",
		},
		[]string{"service", "code"},
	)

	PaymentRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "payment_request_duration_seconds",
			Help:      "Request handling duration per service",
			// sub-second buckets; signing is CPU-only and fast
			Buckets: []float64{
				0.01, 0.02, 0.03, 0.05, 0.08, 0.12,
				0.2, 0.3, 0.5, 0.8, 1.2, 2, 3, 5,
			},
		},
		[]string{"service", "status"},
	)
)

func init() {
	prometheus.MustRegister(PaymentRequestsTotal, GatewayCallbacksTotal, PaymentRequestDuration)
}

// Helpers so handlers don't touch label plumbing directly.
func IncRequest(service, status, method string) {
	PaymentRequestsTotal.WithLabelValues(service, status, method).Inc()
}
func IncCallback(service, code string) {
	GatewayCallbacksTotal.WithLabelValues(service, code).Inc()
}
func ObserveDuration(service, status string, seconds float64) {
	PaymentRequestDuration.WithLabelValues(service, status).Observe(seconds)
}
