package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(qrCodesIssuedTotal, qrCodesExpiredTotal) }

var qrCodesIssuedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "qr_codes_issued_total",
		Help: "Total number of QR codes issued.",
	},
)

var qrCodesExpiredTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "qr_codes_expired_total",
		Help: "Total number of QR codes deactivated by the expiry sweep.",
	},
)

func IncCodeIssued() { qrCodesIssuedTotal.Inc() }

func AddCodesExpired(n int64) { qrCodesExpiredTotal.Add(float64(n)) }
