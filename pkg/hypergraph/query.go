package hypergraph

import (
	"github.com/scipo-code/ordinator-hypergraph/pkg/schedule"
)

// FindAllAssignmentsForPeriod returns the handles of every Assign edge tied
// to the period, either through the period node itself or through a day node
// in the half-open window [start, start+13d). Handles come back in edge
// creation order, and an edge appears once per qualifying node in its list;
// callers needing a set must deduplicate.
func (g *Graph) FindAllAssignmentsForPeriod(period schedule.Period) ([]EdgeHandle, error) {
	if _, ok := g.periodIndex[period]; !ok {
		return nil, ErrPeriodMissing
	}

	cutoff := period.StartDate().AddDays(13)

	var edges []EdgeHandle
	for i, edge := range g.hyperedges {
		if edge.Kind != EdgeAssign {
			continue
		}
		for _, n := range edge.Nodes {
			switch node := g.nodes[n]; node.Kind {
			case NodePeriod:
				if node.Period == period {
					edges = append(edges, EdgeHandle(i))
				}
			case NodeDay:
				if !node.Day.Before(period.StartDate()) && node.Day.Before(cutoff) {
					edges = append(edges, EdgeHandle(i))
				}
			}
		}
	}

	return edges, nil
}
