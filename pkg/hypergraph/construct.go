package hypergraph

import (
	"github.com/scipo-code/ordinator-hypergraph/pkg/schedule"
)

// AddSkill returns the skill's node handle, creating the node on first use.
// Idempotent; never fails.
func (g *Graph) AddSkill(skill schedule.Skill) NodeHandle {
	if existing, ok := g.skillIndex[skill]; ok {
		return existing
	}
	return g.createNode(NewSkillNode(skill))
}

// AddPeriod creates the 14 day nodes of the period followed by the period
// node itself. Fails with ErrPeriodDuplicate if the period exists or if any
// of its days is already covered by a previously added period.
func (g *Graph) AddPeriod(period schedule.Period) (NodeHandle, error) {
	if _, dup := g.periodIndex[period]; dup {
		return 0, g.fault("add_period", ErrPeriodDuplicate)
	}
	days := period.Days()
	for _, day := range days {
		if _, dup := g.days.get(day); dup {
			return 0, g.fault("add_period", ErrPeriodDuplicate)
		}
	}

	for _, day := range days {
		g.createNode(NewDayNode(day))
	}
	return g.createNode(NewPeriodNode(period)), nil
}

// AddWorkOrder validates the work order against existing skills and days,
// then creates its node, a BasicStart edge to its start day, and per
// activity an activity node, a Contains edge, a Requires edge, and a
// precedence edge to the previous activity.
//
// The duplicate check deliberately runs after the skill and day checks; a
// duplicate number must not mask a missing-skill or missing-day fault. On
// failure partway through the activity loop, structure appended before the
// failing step stays in the graph.
func (g *Graph) AddWorkOrder(workOrder *schedule.WorkOrder) (NodeHandle, error) {
	for _, activity := range workOrder.Activities {
		if _, ok := g.skillIndex[activity.Skill]; !ok {
			return 0, g.fault("add_work_order", ErrWorkOrderActivityMissingSkills)
		}
	}

	dayHandle, ok := g.days.get(workOrder.BasicStart)
	if !ok {
		return 0, g.fault("add_work_order", ErrDayMissing)
	}

	if _, dup := g.workOrderIndex[workOrder.Number]; dup {
		return 0, g.fault("add_work_order", ErrWorkOrderDuplicate)
	}
	workOrderHandle := g.createNode(NewWorkOrderNode(workOrder.Number))

	g.createEdge(EdgeBasicStart, nil, []NodeHandle{workOrderHandle, dayHandle})

	relations := workOrder.Relations()
	var previousActivity NodeHandle
	for i, activity := range workOrder.Activities {
		activityHandle := g.createNode(NewActivityNode(activity.Number, activity.Headcount))
		skillHandle, ok := g.skillIndex[activity.Skill]
		if !ok {
			return 0, g.fault("add_work_order", ErrSkillMissing)
		}

		g.createEdge(EdgeContains, nil, []NodeHandle{workOrderHandle, activityHandle})
		g.createEdge(EdgeRequires, nil, []NodeHandle{activityHandle, skillHandle})

		if i != 0 {
			switch relations[i-1] {
			case schedule.RelationStartStart:
				g.createEdge(EdgeStartStart, nil, []NodeHandle{previousActivity, activityHandle})
			case schedule.RelationFinishStart:
				g.createEdge(EdgeFinishStart, nil, []NodeHandle{previousActivity, activityHandle})
			}
		}
		previousActivity = activityHandle
	}

	return workOrderHandle, nil
}

// AddTechnician creates the technician node and a single Available edge
// listing the technician, the claimed skills, and every calendar day of the
// availability window. Only one window is modeled per technician here, even
// though a technician value may hold several; callers pick which one.
func (g *Graph) AddTechnician(technician schedule.Technician, availability schedule.Availability) (NodeHandle, error) {
	if _, dup := g.technicianIndex[technician.ID()]; dup {
		return 0, g.fault("add_technician", ErrWorkerDuplicate)
	}

	var skillHandles []NodeHandle
	for _, skill := range technician.Skills() {
		handle, ok := g.skillIndex[skill]
		if !ok {
			return 0, g.fault("add_technician", ErrSkillMissing)
		}
		skillHandles = append(skillHandles, handle)
	}

	var dayHandles []NodeHandle
	finish := availability.FinishDate()
	for day := availability.StartDate(); !day.After(finish); day = day.AddDays(1) {
		handle, ok := g.days.get(day)
		if !ok {
			return 0, g.fault("add_technician", ErrDayMissing)
		}
		dayHandles = append(dayHandles, handle)
	}

	technicianHandle := g.createNode(NewTechnicianNode(technician.ID()))

	nodes := make([]NodeHandle, 0, 1+len(skillHandles)+len(dayHandles))
	nodes = append(nodes, technicianHandle)
	nodes = append(nodes, skillHandles...)
	nodes = append(nodes, dayHandles...)
	g.createEdge(EdgeAvailable, nil, nodes)

	return technicianHandle, nil
}

// AddAssignmentWorkOrder records that a technician works a work order in a
// period, as an Assign edge without a time window.
func (g *Graph) AddAssignmentWorkOrder(worker schedule.TechnicianID, workOrder schedule.WorkOrderNumber, period schedule.Period) (EdgeHandle, error) {
	workerHandle, ok := g.technicianIndex[worker]
	if !ok {
		return 0, g.fault("add_assignment_work_order", ErrWorkerMissing)
	}
	workOrderHandle, ok := g.workOrderIndex[workOrder]
	if !ok {
		return 0, g.fault("add_assignment_work_order", ErrWorkOrderMissing)
	}
	periodHandle, ok := g.periodIndex[period]
	if !ok {
		return 0, g.fault("add_assignment_work_order", ErrPeriodMissing)
	}

	return g.createEdge(EdgeAssign, nil, []NodeHandle{workerHandle, workOrderHandle, periodHandle}), nil
}

// AddAssignmentActivity records that the technicians work the identified
// activity on the given days within a concrete time window. Every requested
// day must exist, every technician must exist and have an Available edge
// whose day set covers all requested days, the activity must be reachable
// from the work order through a Contains edge, and the technician count must
// not exceed the activity's required headcount.
func (g *Graph) AddAssignmentActivity(
	technicians []schedule.TechnicianID,
	workOrderNumber schedule.WorkOrderNumber,
	activityNumber schedule.ActivityNumber,
	days []schedule.Date,
	window schedule.TimeWindow,
) (EdgeHandle, error) {
	var dayHandles []NodeHandle
	for _, day := range days {
		handle, ok := g.days.get(day)
		if !ok {
			return 0, g.fault("add_assignment_activity", ErrDayMissing)
		}
		dayHandles = append(dayHandles, handle)
	}

	var technicianHandles []NodeHandle
	for _, id := range technicians {
		handle, ok := g.technicianIndex[id]
		if !ok {
			return 0, g.fault("add_assignment_activity", ErrWorkerMissing)
		}
		technicianHandles = append(technicianHandles, handle)

		if !g.covers(handle, days) {
			return 0, g.fault("add_assignment_activity", ErrWorkerUnavailable)
		}
	}

	workOrderHandle, ok := g.workOrderIndex[workOrderNumber]
	if !ok {
		return 0, g.fault("add_assignment_activity", ErrWorkOrderMissing)
	}

	activityHandle, ok := g.findActivity(workOrderHandle, activityNumber)
	if !ok {
		return 0, g.fault("add_assignment_activity", ErrActivityMissing)
	}

	if uint64(len(technicians)) > g.nodes[activityHandle].Activity.Headcount {
		return 0, g.fault("add_assignment_activity", ErrActivityExceedsNumberOfPeople)
	}

	nodes := make([]NodeHandle, 0, 1+len(technicianHandles)+len(dayHandles))
	nodes = append(nodes, activityHandle)
	nodes = append(nodes, technicianHandles...)
	nodes = append(nodes, dayHandles...)
	w := window
	return g.createEdge(EdgeAssign, &w, nodes), nil
}

// covers reports whether any Available edge of the technician references a
// superset of the requested days.
func (g *Graph) covers(technician NodeHandle, days []schedule.Date) bool {
edges:
	for _, edgeHandle := range g.incidence[technician] {
		if g.hyperedges[edgeHandle].Kind != EdgeAvailable {
			continue
		}
		available := make(map[schedule.Date]struct{})
		for _, n := range g.hyperedges[edgeHandle].Nodes {
			if node := g.nodes[n]; node.Kind == NodeDay {
				available[node.Day] = struct{}{}
			}
		}
		for _, day := range days {
			if _, ok := available[day]; !ok {
				continue edges
			}
		}
		return true
	}
	return false
}

// findActivity scans the work order's Contains edges for the activity with
// the given number. Activity numbers are only unique within a work order,
// which is why this goes through incidence instead of a global index.
func (g *Graph) findActivity(workOrder NodeHandle, number schedule.ActivityNumber) (NodeHandle, bool) {
	for _, edgeHandle := range g.incidence[workOrder] {
		edge := g.hyperedges[edgeHandle]
		if edge.Kind != EdgeContains {
			continue
		}
		for _, n := range edge.Nodes {
			if node := g.nodes[n]; node.Kind == NodeActivity && node.Activity.Number == number {
				return n, true
			}
		}
	}
	return 0, false
}

// AddAssignSkillToWorker records a HasSkill edge between an existing
// technician and an existing skill.
func (g *Graph) AddAssignSkillToWorker(worker schedule.TechnicianID, skill schedule.Skill) (EdgeHandle, error) {
	workerHandle, ok := g.technicianIndex[worker]
	if !ok {
		return 0, g.fault("add_assign_skill_to_worker", ErrWorkerMissing)
	}
	skillHandle, ok := g.skillIndex[skill]
	if !ok {
		return 0, g.fault("add_assign_skill_to_worker", ErrSkillMissing)
	}

	return g.createEdge(EdgeHasSkill, nil, []NodeHandle{workerHandle, skillHandle}), nil
}

// AddExclusion records that a work order must not be scheduled in a period,
// as an Exclude edge listing the work order, the period, and every existing
// day node inside the period's 14-day window.
func (g *Graph) AddExclusion(workOrderNumber schedule.WorkOrderNumber, period schedule.Period) (EdgeHandle, error) {
	workOrderHandle, ok := g.workOrderIndex[workOrderNumber]
	if !ok {
		return 0, g.fault("add_exclusion", ErrWorkOrderMissing)
	}
	periodHandle, ok := g.periodIndex[period]
	if !ok {
		return 0, g.fault("add_exclusion", ErrPeriodMissing)
	}

	dayHandles := g.days.inRange(period.StartDate(), period.EndDate())

	nodes := make([]NodeHandle, 0, 2+len(dayHandles))
	nodes = append(nodes, workOrderHandle, periodHandle)
	nodes = append(nodes, dayHandles...)
	return g.createEdge(EdgeExclude, nil, nodes), nil
}

// fault counts and returns a validation failure.
func (g *Graph) fault(op string, err error) error {
	constructionFaults.WithLabelValues(op, err.Error()).Inc()
	return err
}
