package services

import "github.com/prometheus/client_golang/prometheus"

// productMutations counts successful catalogue writes by operation
// (create, replace, delete).
var productMutations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "products_mutations_total",
		Help: "Total number of successful product mutations.",
	},
	[]string{"op"},
)

func init() {
	prometheus.MustRegister(productMutations)
}
