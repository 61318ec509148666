// Package metrics exposes Prometheus counters for forum operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	counterAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_counter_adjustments_total",
			Help: "Total number of board counter adjustments bubbled up the tree",
		},
		[]string{"counter"},
	)

	contentMoves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_content_moves_total",
			Help: "Total number of content move operations",
		},
		[]string{"result"},
	)

	flagTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_flag_transitions_total",
			Help: "Total number of flag state transitions",
		},
		[]string{"transition"},
	)

	slugCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forum_slug_collisions_total",
			Help: "Total number of slug collisions detected during path assignment",
		},
	)
)

func CounterAdjusted(counter string) {
	counterAdjustments.WithLabelValues(counter).Inc()
}

func ContentMoved(result string) {
	contentMoves.WithLabelValues(result).Inc()
}

func FlagTransition(transition string) {
	flagTransitions.WithLabelValues(transition).Inc()
}

func SlugCollision() {
	slugCollisions.Inc()
}
