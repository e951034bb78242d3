package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/scipo-code/ordinator-hypergraph/pkg/hypergraph"
	"github.com/scipo-code/ordinator-hypergraph/pkg/schedule"
)

// Replay rebuilds a graph from the journal. Facts were accepted by a graph
// before being written, and the graph arenas are deterministic in call
// order, so replay reproduces the exact handles of the original build. A
// fact the graph rejects during replay means the journal and the graph
// implementation have diverged; the replay stops with the fault.
func Replay(ctx context.Context, store *Store) (*hypergraph.Graph, error) {
	facts, err := store.Facts(ctx)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	graph := hypergraph.New()
	for _, fact := range facts {
		if err := apply(graph, fact); err != nil {
			return nil, fmt.Errorf("replay: fact %s (%s): %w", fact.FactID, fact.FactType, err)
		}
	}
	return graph, nil
}

func apply(graph *hypergraph.Graph, fact *Fact) error {
	switch fact.FactType {
	case FactSkillAdded:
		var p SkillAddedPayload
		if err := json.Unmarshal(fact.Payload, &p); err != nil {
			return err
		}
		graph.AddSkill(p.Skill)
		return nil

	case FactPeriodAdded:
		var p PeriodAddedPayload
		if err := json.Unmarshal(fact.Payload, &p); err != nil {
			return err
		}
		_, err := graph.AddPeriod(schedule.PeriodFromStartDate(p.StartDate))
		return err

	case FactWorkOrderAdded:
		var p WorkOrderAddedPayload
		if err := json.Unmarshal(fact.Payload, &p); err != nil {
			return err
		}
		_, err := graph.AddWorkOrder(&p.WorkOrder)
		return err

	case FactTechnicianAdded:
		var p TechnicianAddedPayload
		if err := json.Unmarshal(fact.Payload, &p); err != nil {
			return err
		}
		builder := schedule.NewTechnician(p.ID)
		for _, skill := range p.Skills {
			builder.AddSkill(skill)
		}
		if err := builder.AddAvailability(p.AvailabilityStart, p.AvailabilityFinish); err != nil {
			return err
		}
		availability := schedule.NewAvailability(p.AvailabilityStart, p.AvailabilityFinish)
		_, err := graph.AddTechnician(builder.Build(), availability)
		return err

	case FactWorkOrderAssigned:
		var p WorkOrderAssignedPayload
		if err := json.Unmarshal(fact.Payload, &p); err != nil {
			return err
		}
		_, err := graph.AddAssignmentWorkOrder(p.Worker, p.WorkOrder, schedule.PeriodFromStartDate(p.PeriodStartDate))
		return err

	case FactActivityAssigned:
		var p ActivityAssignedPayload
		if err := json.Unmarshal(fact.Payload, &p); err != nil {
			return err
		}
		_, err := graph.AddAssignmentActivity(p.Technicians, p.WorkOrder, p.Activity, p.Days, p.Window)
		return err

	case FactSkillGranted:
		var p SkillGrantedPayload
		if err := json.Unmarshal(fact.Payload, &p); err != nil {
			return err
		}
		_, err := graph.AddAssignSkillToWorker(p.Worker, p.Skill)
		return err

	case FactExclusionAdded:
		var p ExclusionAddedPayload
		if err := json.Unmarshal(fact.Payload, &p); err != nil {
			return err
		}
		_, err := graph.AddExclusion(p.WorkOrder, schedule.PeriodFromStartDate(p.PeriodStartDate))
		return err

	default:
		return fmt.Errorf("unknown fact type %q", fact.FactType)
	}
}
