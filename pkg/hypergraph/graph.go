package hypergraph

import (
	"fmt"
	"slices"
	"sort"

	"github.com/scipo-code/ordinator-hypergraph/pkg/schedule"
)

// Graph is the schedule hypergraph: an append-only node arena, an append-only
// hyperedge arena, a per-node incidence index, and per-kind uniqueness
// indices. Nodes and edges are never removed or mutated in place; updating a
// relationship means appending a new edge.
//
// A Graph is not safe for concurrent mutation. Reads may run concurrently
// with each other but must be serialized against writes by the caller (the
// journal package provides builder leases for cross-process serialization).
type Graph struct {
	nodes      []Node
	hyperedges []HyperEdge

	// incidence[n] lists the hyperedges node n participates in, in edge
	// creation order. Always the same length as nodes.
	incidence [][]EdgeHandle

	technicianIndex map[schedule.TechnicianID]NodeHandle
	workOrderIndex  map[schedule.WorkOrderNumber]NodeHandle
	periodIndex     map[schedule.Period]NodeHandle
	skillIndex      map[schedule.Skill]NodeHandle
	days            dayIndex
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		technicianIndex: make(map[schedule.TechnicianID]NodeHandle),
		workOrderIndex:  make(map[schedule.WorkOrderNumber]NodeHandle),
		periodIndex:     make(map[schedule.Period]NodeHandle),
		skillIndex:      make(map[schedule.Skill]NodeHandle),
		days:            newDayIndex(),
	}
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// HyperedgeCount returns the number of hyperedges in the graph.
func (g *Graph) HyperedgeCount() int {
	return len(g.hyperedges)
}

// Node returns the node at h.
func (g *Graph) Node(h NodeHandle) Node {
	return g.nodes[h]
}

// Edge returns a copy of the hyperedge at h. The copy's node list does not
// alias graph state, so callers cannot mutate the arena through it.
func (g *Graph) Edge(h EdgeHandle) HyperEdge {
	return g.hyperedges[h].clone()
}

// Incidence returns a copy of the edge handles touching node h, in edge
// creation order.
func (g *Graph) Incidence(h NodeHandle) []EdgeHandle {
	return slices.Clone(g.incidence[h])
}

// TechnicianHandle resolves a technician id to its node handle.
func (g *Graph) TechnicianHandle(id schedule.TechnicianID) (NodeHandle, bool) {
	h, ok := g.technicianIndex[id]
	return h, ok
}

// WorkOrderHandle resolves a work-order number to its node handle.
func (g *Graph) WorkOrderHandle(number schedule.WorkOrderNumber) (NodeHandle, bool) {
	h, ok := g.workOrderIndex[number]
	return h, ok
}

// PeriodHandle resolves a period to its node handle.
func (g *Graph) PeriodHandle(period schedule.Period) (NodeHandle, bool) {
	h, ok := g.periodIndex[period]
	return h, ok
}

// SkillHandle resolves a skill to its node handle.
func (g *Graph) SkillHandle(skill schedule.Skill) (NodeHandle, bool) {
	h, ok := g.skillIndex[skill]
	return h, ok
}

// DayHandle resolves a calendar day to its node handle.
func (g *Graph) DayHandle(day schedule.Date) (NodeHandle, bool) {
	return g.days.get(day)
}

// Periods returns every period in the graph ordered by start date.
func (g *Graph) Periods() []schedule.Period {
	periods := make([]schedule.Period, 0, len(g.periodIndex))
	for p := range g.periodIndex {
		periods = append(periods, p)
	}
	slices.SortFunc(periods, func(a, b schedule.Period) int {
		if a.Start.Before(b.Start) {
			return -1
		}
		if b.Start.Before(a.Start) {
			return 1
		}
		return 0
	})
	return periods
}

// Technicians returns every technician id in the graph in ascending order.
func (g *Graph) Technicians() []schedule.TechnicianID {
	ids := make([]schedule.TechnicianID, 0, len(g.technicianIndex))
	for id := range g.technicianIndex {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// EdgeTechnicians returns the technician ids referenced by the edge, in node
// list order.
func (g *Graph) EdgeTechnicians(h EdgeHandle) []schedule.TechnicianID {
	var ids []schedule.TechnicianID
	for _, n := range g.hyperedges[h].Nodes {
		if node := g.nodes[n]; node.Kind == NodeTechnician {
			ids = append(ids, node.Technician)
		}
	}
	return ids
}

// EdgeSkills returns the skills referenced by the edge, in node list order.
func (g *Graph) EdgeSkills(h EdgeHandle) []schedule.Skill {
	var skills []schedule.Skill
	for _, n := range g.hyperedges[h].Nodes {
		if node := g.nodes[n]; node.Kind == NodeSkill {
			skills = append(skills, node.Skill)
		}
	}
	return skills
}

// EdgeDays returns the calendar days referenced by the edge, in node list
// order.
func (g *Graph) EdgeDays(h EdgeHandle) []schedule.Date {
	var days []schedule.Date
	for _, n := range g.hyperedges[h].Nodes {
		if node := g.nodes[n]; node.Kind == NodeDay {
			days = append(days, node.Day)
		}
	}
	return days
}

// EdgePeriods returns the periods referenced by the edge, in node list order.
func (g *Graph) EdgePeriods(h EdgeHandle) []schedule.Period {
	var periods []schedule.Period
	for _, n := range g.hyperedges[h].Nodes {
		if node := g.nodes[n]; node.Kind == NodePeriod {
			periods = append(periods, node.Period)
		}
	}
	return periods
}

// createNode appends a node to the arena, registers it in its uniqueness
// index, and grows the incidence index in lockstep. The public operations
// check key uniqueness before calling; a duplicate key reaching this path is
// a graph bug, not caller input, so it panics.
func (g *Graph) createNode(node Node) NodeHandle {
	handle := NodeHandle(len(g.nodes))
	switch node.Kind {
	case NodeTechnician:
		mustIndex(node.Kind, g.technicianIndex, node.Technician, handle)
	case NodeWorkOrder:
		mustIndex(node.Kind, g.workOrderIndex, node.WorkOrder, handle)
	case NodePeriod:
		mustIndex(node.Kind, g.periodIndex, node.Period, handle)
	case NodeSkill:
		mustIndex(node.Kind, g.skillIndex, node.Skill, handle)
	case NodeDay:
		if _, dup := g.days.get(node.Day); dup {
			panic(fmt.Sprintf("hypergraph: duplicate day node %s", node.Day))
		}
		g.days.insert(node.Day, handle)
	case NodeActivity:
		// Activities are keyed within their work order via Contains edges
		// and carry no global index.
	}
	g.incidence = append(g.incidence, nil)
	g.nodes = append(g.nodes, node)
	nodesCreated.WithLabelValues(node.Kind.String()).Inc()
	return handle
}

func mustIndex[K comparable](kind NodeKind, index map[K]NodeHandle, key K, handle NodeHandle) {
	if _, dup := index[key]; dup {
		panic(fmt.Sprintf("hypergraph: duplicate %s node key %v", kind, key))
	}
	index[key] = handle
}

// createEdge appends a hyperedge and records it in the incidence list of
// every participant. This is the only path that may append to the hyperedge
// arena; every public mutating operation routes through it so the incidence
// invariant holds for all edges.
func (g *Graph) createEdge(kind EdgeKind, window *schedule.TimeWindow, nodes []NodeHandle) EdgeHandle {
	handle := EdgeHandle(len(g.hyperedges))
	for _, n := range nodes {
		g.incidence[n] = append(g.incidence[n], handle)
	}
	g.hyperedges = append(g.hyperedges, HyperEdge{Kind: kind, Window: window, Nodes: nodes})
	edgesCreated.WithLabelValues(kind.String()).Inc()
	return handle
}

// dayIndex maps calendar days to node handles and keeps the dates sorted so
// day ranges can be scanned in order.
type dayIndex struct {
	byDate  map[schedule.Date]NodeHandle
	ordered []schedule.Date
}

func newDayIndex() dayIndex {
	return dayIndex{byDate: make(map[schedule.Date]NodeHandle)}
}

func (idx *dayIndex) get(d schedule.Date) (NodeHandle, bool) {
	h, ok := idx.byDate[d]
	return h, ok
}

func (idx *dayIndex) insert(d schedule.Date, h NodeHandle) {
	idx.byDate[d] = h
	pos := sort.Search(len(idx.ordered), func(i int) bool {
		return !idx.ordered[i].Before(d)
	})
	idx.ordered = slices.Insert(idx.ordered, pos, d)
}

// inRange returns the handles of all days in [from, to] inclusive, in date
// order.
func (idx *dayIndex) inRange(from, to schedule.Date) []NodeHandle {
	start := sort.Search(len(idx.ordered), func(i int) bool {
		return !idx.ordered[i].Before(from)
	})
	var handles []NodeHandle
	for _, d := range idx.ordered[start:] {
		if d.After(to) {
			break
		}
		handles = append(handles, idx.byDate[d])
	}
	return handles
}
