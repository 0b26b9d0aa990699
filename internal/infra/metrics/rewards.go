package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(rewardRedemptionsTotal) }

var rewardRedemptionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reward_redemptions_total",
		Help: "Reward redemption attempts by outcome.",
	},
	[]string{"outcome"}, // 'redeemed', 'insufficient_points', 'unavailable', 'locked', 'error'
)

func IncRewardRedemption(outcome string) {
	rewardRedemptionsTotal.WithLabelValues(norm(outcome)).Inc()
}
