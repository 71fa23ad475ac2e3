package prep

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mintory",
		Subsystem: "prep",
		Name:      "requests_total",
		Help:      "Prepared-transaction and read requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	estimateFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mintory",
		Subsystem: "prep",
		Name:      "estimate_fallbacks_total",
		Help:      "Cost simulations that degraded to the conservative default.",
	})
)
