// Package derive walks a finished schedule graph and produces the inputs the
// strategic optimization consumes. Everything here is read-only over the
// graph's query surface; nothing in this package mutates graph state.
package derive

import (
	"fmt"

	"github.com/scipo-code/ordinator-hypergraph/pkg/hypergraph"
	"github.com/scipo-code/ordinator-hypergraph/pkg/schedule"
)

// Work is an amount of labor in hours.
type Work float64

// defaultDailyHours is the planned labor content of one working day, used
// both for unassigned-activity estimates and availability-derived capacity.
const defaultDailyHours Work = 8

// StrategicInstance is a solver-ready view of the graph: per-work-order
// parameters, technician capacity per period, and the period horizon.
type StrategicInstance struct {
	WorkOrderParameters map[schedule.WorkOrderNumber]WorkOrderParameter
	Capacity            StrategicResources
	PeriodLocks         map[schedule.Period]struct{}
	Periods             []schedule.Period
}

// WorkOrderParameter is what the strategic algorithm needs to know about one
// work order.
type WorkOrderParameter struct {
	// LockedInPeriod is set when a work-order-level assignment edge ties the
	// order to a period.
	LockedInPeriod  *schedule.Period
	ExcludedPeriods map[schedule.Period]struct{}
	LatestPeriod    schedule.Period

	// Weight grows with urgency: the number of days between the order's
	// basic start and the end of the period horizon.
	Weight int64

	WorkLoad map[schedule.Skill]Work
}

// StrategicResources is technician capacity per period.
type StrategicResources map[schedule.Period]map[schedule.TechnicianID]OperationalResource

// OperationalResource is one technician's capacity within one period.
type OperationalResource struct {
	ID         schedule.TechnicianID
	TotalHours Work
	SkillHours map[schedule.Skill]Work
}

// StrategicInstanceFrom derives an instance for the requested work orders.
// Fails with hypergraph.ErrWorkOrderMissing if any number is not in the
// graph.
func StrategicInstanceFrom(g *hypergraph.Graph, workOrders []schedule.WorkOrderNumber) (*StrategicInstance, error) {
	periods := g.Periods()
	instance := &StrategicInstance{
		WorkOrderParameters: make(map[schedule.WorkOrderNumber]WorkOrderParameter, len(workOrders)),
		Capacity:            make(StrategicResources),
		PeriodLocks:         make(map[schedule.Period]struct{}),
		Periods:             periods,
	}

	for _, number := range workOrders {
		parameter, err := deriveWorkOrder(g, number, periods)
		if err != nil {
			return nil, err
		}
		instance.WorkOrderParameters[number] = parameter
		if parameter.LockedInPeriod != nil {
			instance.PeriodLocks[*parameter.LockedInPeriod] = struct{}{}
		}
	}

	deriveCapacity(g, periods, instance.Capacity)
	return instance, nil
}

func deriveWorkOrder(g *hypergraph.Graph, number schedule.WorkOrderNumber, periods []schedule.Period) (WorkOrderParameter, error) {
	workOrderHandle, ok := g.WorkOrderHandle(number)
	if !ok {
		return WorkOrderParameter{}, fmt.Errorf("derive work order %d: %w", number, hypergraph.ErrWorkOrderMissing)
	}

	parameter := WorkOrderParameter{
		ExcludedPeriods: make(map[schedule.Period]struct{}),
		WorkLoad:        make(map[schedule.Skill]Work),
	}

	var basicStart schedule.Date
	for _, edgeHandle := range g.Incidence(workOrderHandle) {
		edge := g.Edge(edgeHandle)
		switch edge.Kind {
		case hypergraph.EdgeBasicStart:
			if days := g.EdgeDays(edgeHandle); len(days) > 0 {
				basicStart = days[0]
			}
		case hypergraph.EdgeContains:
			activityHandle := edge.Nodes[1]
			skill, ok := activitySkill(g, activityHandle)
			if !ok {
				continue
			}
			parameter.WorkLoad[skill] += activityWork(g, activityHandle)
		case hypergraph.EdgeAssign:
			// Work-order-level assignments lock the order into their period.
			if edge.Window == nil && parameter.LockedInPeriod == nil {
				if assigned := g.EdgePeriods(edgeHandle); len(assigned) > 0 {
					locked := assigned[0]
					parameter.LockedInPeriod = &locked
				}
			}
		case hypergraph.EdgeExclude:
			for _, period := range g.EdgePeriods(edgeHandle) {
				parameter.ExcludedPeriods[period] = struct{}{}
			}
		}
	}

	if len(periods) > 0 {
		parameter.LatestPeriod = periods[len(periods)-1]
		if weight := int64(basicStart.DaysUntil(parameter.LatestPeriod.EndDate())); weight > 0 {
			parameter.Weight = weight
		}
	}

	return parameter, nil
}

// activityWork returns the activity's labor content: the sum over its
// activity-level assignments of window hours x days x technicians, or the
// headcount-based planning estimate when nothing is assigned yet.
func activityWork(g *hypergraph.Graph, activity hypergraph.NodeHandle) Work {
	var assigned Work
	for _, edgeHandle := range g.Incidence(activity) {
		edge := g.Edge(edgeHandle)
		if edge.Kind != hypergraph.EdgeAssign || edge.Window == nil || edge.Nodes[0] != activity {
			continue
		}
		hours := Work(edge.Window.Hours())
		assigned += hours * Work(len(g.EdgeDays(edgeHandle))) * Work(len(g.EdgeTechnicians(edgeHandle)))
	}
	if assigned > 0 {
		return assigned
	}
	return Work(g.Node(activity).Activity.Headcount) * defaultDailyHours
}

func activitySkill(g *hypergraph.Graph, activity hypergraph.NodeHandle) (schedule.Skill, bool) {
	for _, edgeHandle := range g.Incidence(activity) {
		if g.Edge(edgeHandle).Kind != hypergraph.EdgeRequires {
			continue
		}
		if skills := g.EdgeSkills(edgeHandle); len(skills) > 0 {
			return skills[0], true
		}
	}
	return "", false
}

// deriveCapacity aggregates Available edges into per-period technician
// capacity. A technician contributes defaultDailyHours for each available
// day falling inside a period. Skill capacity is not split across skills;
// a technician with two skills can spend all hours on either.
func deriveCapacity(g *hypergraph.Graph, periods []schedule.Period, capacity StrategicResources) {
	for _, id := range g.Technicians() {
		technicianHandle, ok := g.TechnicianHandle(id)
		if !ok {
			continue
		}
		for _, edgeHandle := range g.Incidence(technicianHandle) {
			if g.Edge(edgeHandle).Kind != hypergraph.EdgeAvailable {
				continue
			}
			days := g.EdgeDays(edgeHandle)
			skills := g.EdgeSkills(edgeHandle)

			for _, period := range periods {
				inPeriod := 0
				for _, day := range days {
					if period.Contains(day) {
						inPeriod++
					}
				}
				if inPeriod == 0 {
					continue
				}
				hours := Work(inPeriod) * defaultDailyHours

				byTechnician := capacity[period]
				if byTechnician == nil {
					byTechnician = make(map[schedule.TechnicianID]OperationalResource)
					capacity[period] = byTechnician
				}
				resource, ok := byTechnician[id]
				if !ok {
					resource = OperationalResource{ID: id, SkillHours: make(map[schedule.Skill]Work)}
				}
				resource.TotalHours += hours
				for _, skill := range skills {
					resource.SkillHours[skill] += hours
				}
				byTechnician[id] = resource
			}
		}
	}
}
