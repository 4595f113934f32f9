package wishlist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var wishlistOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_wishlist_operations_total",
		Help: "Wishlist store operations by operation and outcome",
	},
	[]string{"op", "outcome"},
)

func observe(op, outcome string) {
	wishlistOperations.WithLabelValues(op, outcome).Inc()
}
