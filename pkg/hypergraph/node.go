package hypergraph

import (
	"fmt"

	"github.com/scipo-code/ordinator-hypergraph/pkg/schedule"
)

// NodeHandle is the stable position of a node in the arena. Handles are
// assigned at insertion and never reused.
type NodeHandle int

// NodeKind discriminates the closed set of node variants.
type NodeKind uint8

const (
	NodeTechnician NodeKind = iota
	NodeWorkOrder
	NodeActivity
	NodePeriod
	NodeSkill
	NodeDay
)

func (k NodeKind) String() string {
	switch k {
	case NodeTechnician:
		return "technician"
	case NodeWorkOrder:
		return "work_order"
	case NodeActivity:
		return "activity"
	case NodePeriod:
		return "period"
	case NodeSkill:
		return "skill"
	case NodeDay:
		return "day"
	default:
		return fmt.Sprintf("node_kind(%d)", uint8(k))
	}
}

// ActivityNode is the payload of an activity node. Activities are identified
// within their work order only, so unlike the other keyed kinds they carry no
// global uniqueness index.
type ActivityNode struct {
	Number    schedule.ActivityNumber
	Headcount uint64
}

// Node is a tagged variant: Kind selects which payload field is meaningful.
// Nodes are comparable, so tests can assert on them with ==.
type Node struct {
	Kind       NodeKind
	Technician schedule.TechnicianID
	WorkOrder  schedule.WorkOrderNumber
	Activity   ActivityNode
	Period     schedule.Period
	Skill      schedule.Skill
	Day        schedule.Date
}

// NewTechnicianNode builds a technician node.
func NewTechnicianNode(id schedule.TechnicianID) Node {
	return Node{Kind: NodeTechnician, Technician: id}
}

// NewWorkOrderNode builds a work-order node.
func NewWorkOrderNode(number schedule.WorkOrderNumber) Node {
	return Node{Kind: NodeWorkOrder, WorkOrder: number}
}

// NewActivityNode builds an activity node.
func NewActivityNode(number schedule.ActivityNumber, headcount uint64) Node {
	return Node{Kind: NodeActivity, Activity: ActivityNode{Number: number, Headcount: headcount}}
}

// NewPeriodNode builds a period node.
func NewPeriodNode(period schedule.Period) Node {
	return Node{Kind: NodePeriod, Period: period}
}

// NewSkillNode builds a skill node.
func NewSkillNode(skill schedule.Skill) Node {
	return Node{Kind: NodeSkill, Skill: skill}
}

// NewDayNode builds a calendar-day node.
func NewDayNode(day schedule.Date) Node {
	return Node{Kind: NodeDay, Day: day}
}
