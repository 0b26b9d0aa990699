package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(pointsTransactionsTotal, pointsAmountTotal) }

var pointsTransactionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "points_transactions_total",
		Help: "Ledger rows written, labeled by kind.",
	},
	[]string{"kind"}, // 'earn', 'spend'
)

var pointsAmountTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "points_amount_total",
		Help: "Total points moved through the ledger, labeled by kind.",
	},
	[]string{"kind"},
)

func IncPointsTransaction(kind string, amount int64) {
	pointsTransactionsTotal.WithLabelValues(norm(kind)).Inc()
	pointsAmountTotal.WithLabelValues(norm(kind)).Add(float64(amount))
}
