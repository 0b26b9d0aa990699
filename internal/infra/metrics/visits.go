package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(visitsAcceptedTotal, visitAcceptLatencyMs) }

var visitsAcceptedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "visits_accepted_total",
		Help: "Visit acceptance attempts by outcome.",
	},
	[]string{"outcome"}, // 'accepted', 'unauthorized', 'invalid_activity', 'invalid_code', 'error'
)

var visitAcceptLatencyMs = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "visit_accept_latency_ms",
		Help:    "Visit acceptance latency distribution in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600},
	},
)

func IncVisitAccepted(outcome string) {
	visitsAcceptedTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveVisitAcceptLatency(latencyMs int64) {
	visitAcceptLatencyMs.Observe(float64(latencyMs))
}
