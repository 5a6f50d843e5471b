package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for request traffic and payment fulfillment
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventpay_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventpay_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	SignatureVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventpay_signature_verifications_total",
			Help: "Razorpay signature verifications by result",
		},
		[]string{"result"},
	)

	ReconciliationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventpay_reconciliations_total",
			Help: "Order status reconciliations by gateway and outcome",
		},
		[]string{"gateway", "outcome"},
	)

	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventpay_gateway_request_duration_seconds",
			Help:    "Duration of gateway order status lookups",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"gateway"},
	)

	EmailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventpay_confirmation_emails_total",
			Help: "Confirmation emails by template and result",
		},
		[]string{"template", "result"},
	)
)

var registerOnce sync.Once

// Register registers all Prometheus metrics with the default registry.
// Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(SignatureVerificationsTotal)
		prometheus.MustRegister(ReconciliationsTotal)
		prometheus.MustRegister(GatewayRequestDuration)
		prometheus.MustRegister(EmailsTotal)
	})
}
