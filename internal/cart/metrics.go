package cart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cartOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_cart_operations_total",
		Help: "Cart store mutations by operation and effect",
	},
	[]string{"op", "effect"},
)

func observe(op, effect string) {
	cartOperations.WithLabelValues(op, effect).Inc()
}
