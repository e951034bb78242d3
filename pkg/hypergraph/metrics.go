package hypergraph

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// nodesCreated counts node arena appends by node kind
	nodesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ordinator_graph_nodes_created_total",
			Help: "Total nodes appended to the schedule graph",
		},
		[]string{"kind"},
	)

	// edgesCreated counts hyperedge arena appends by edge kind
	edgesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ordinator_graph_hyperedges_created_total",
			Help: "Total hyperedges appended to the schedule graph",
		},
		[]string{"kind"},
	)

	// constructionFaults counts rejected construction operations
	constructionFaults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ordinator_graph_construction_faults_total",
			Help: "Total construction operations rejected by validation",
		},
		[]string{"op", "fault"},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(nodesCreated)
	prometheus.MustRegister(edgesCreated)
	prometheus.MustRegister(constructionFaults)
}
