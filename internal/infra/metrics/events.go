package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(eventsPublishedTotal) }

var eventsPublishedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "events_published_total",
		Help: "Outbound queue events, labeled by queue and result.",
	},
	[]string{"queue", "result"}, // result: 'ok', 'error', 'dropped'
)

func IncEventPublished(queue, result string) {
	eventsPublishedTotal.WithLabelValues(norm(queue), norm(result)).Inc()
}
