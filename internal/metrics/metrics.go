// Package metrics exposes Prometheus counters for the order and payment
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matkarnia_orders_placed_total",
		Help: "Orders moved from draft to placed.",
	})

	PaymentsCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matkarnia_payments_captured_total",
		Help: "Successful payment captures.",
	})

	PaymentsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matkarnia_payments_failed_total",
		Help: "Failed payment attempts.",
	})

	PassportsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matkarnia_passports_issued_total",
		Help: "Queen passports issued by fulfillment.",
	})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matkarnia_webhook_events_total",
		Help: "Webhook events by processing result.",
	}, []string{"result"})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
