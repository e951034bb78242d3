package hypergraph

import (
	"fmt"
	"slices"

	"github.com/scipo-code/ordinator-hypergraph/pkg/schedule"
)

// EdgeHandle is the stable position of a hyperedge in the arena.
type EdgeHandle int

// EdgeKind discriminates the closed set of hyperedge kinds. The node-handle
// list of each kind has a fixed positional layout:
//
//	Assign (work order)  [technician, workOrder, period]
//	Assign (activity)    [activity] ++ technicians ++ days
//	Available            [technician] ++ skills ++ days
//	Exclude              [workOrder, period] ++ days
//	BasicStart           [workOrder, day]
//	Contains             [workOrder, activity]
//	Requires             [activity, skill]
//	StartStart           [previousActivity, activity]
//	FinishStart          [previousActivity, activity]
//	HasSkill             [technician, skill]
//
// The variable-arity groups are homogeneous in node kind, so the kind-filtered
// accessors on Graph recover each group without positional arithmetic.
type EdgeKind uint8

const (
	EdgeAssign EdgeKind = iota
	EdgeAvailable
	EdgeExclude
	EdgeBasicStart
	EdgeContains
	EdgeRequires
	EdgeStartStart
	EdgeFinishStart
	EdgeHasSkill
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeAssign:
		return "assign"
	case EdgeAvailable:
		return "available"
	case EdgeExclude:
		return "exclude"
	case EdgeBasicStart:
		return "basic_start"
	case EdgeContains:
		return "contains"
	case EdgeRequires:
		return "requires"
	case EdgeStartStart:
		return "start_start"
	case EdgeFinishStart:
		return "finish_start"
	case EdgeHasSkill:
		return "has_skill"
	default:
		return fmt.Sprintf("edge_kind(%d)", uint8(k))
	}
}

// HyperEdge is a typed, ordered, variable-arity relationship among nodes.
// Window is set only on activity-level Assign edges; a nil Window on an
// Assign edge marks a work-order-level assignment.
type HyperEdge struct {
	Kind   EdgeKind
	Window *schedule.TimeWindow
	Nodes  []NodeHandle
}

// clone returns a copy whose node list does not alias the arena.
func (e HyperEdge) clone() HyperEdge {
	e.Nodes = slices.Clone(e.Nodes)
	if e.Window != nil {
		w := *e.Window
		e.Window = &w
	}
	return e
}
