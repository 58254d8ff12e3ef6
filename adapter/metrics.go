package adapter

import "github.com/prometheus/client_golang/prometheus"

var (
	opCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ycsb_operations_total",
		Help: "Total number of adapter operations",
	}, []string{"op"})

	flushCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ycsb_batch_flushes_total",
		Help: "Total number of batch flushes by verdict",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(opCounter, flushCounter)
}
