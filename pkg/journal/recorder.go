package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/scipo-code/ordinator-hypergraph/pkg/hypergraph"
	"github.com/scipo-code/ordinator-hypergraph/pkg/schedule"
)

// BuildLeaseName is the lease every builder must hold while constructing a
// graph against a shared journal.
const BuildLeaseName = "graph-builder"

// AcquireBuildLease takes the builder lease for holderID, failing when
// another builder owns it. The returned function releases the lease; if the
// process dies without calling it, the TTL frees the lease for the next
// builder.
func AcquireBuildLease(ctx context.Context, leases LeaseStore, holderID string, ttl time.Duration) (func() error, error) {
	ok, err := leases.Acquire(ctx, BuildLeaseName, holderID, ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire build lease: %w", err)
	}
	if !ok {
		if lease, getErr := leases.Get(ctx, BuildLeaseName); getErr == nil && lease != nil {
			return nil, fmt.Errorf("build lease held by %s until %s", lease.HolderID, lease.ExpiresAt.Format(time.RFC3339))
		}
		return nil, fmt.Errorf("build lease held by another builder")
	}
	return func() error {
		return leases.Release(ctx, BuildLeaseName, holderID)
	}, nil
}

// Recorder couples a graph with a journal. Every construction call goes to
// the graph first; only accepted operations are appended as facts, so a
// replayed journal never trips a fault. Rejected operations return the
// graph's error and write nothing.
//
// A Recorder is not safe for concurrent use. Processes sharing a journal
// coordinate through a LeaseStore instead.
type Recorder struct {
	graph    *hypergraph.Graph
	store    *Store
	writerID string
}

// NewRecorder wraps a graph and a journal store. writerID identifies this
// builder in the fact envelopes; pass empty to generate one.
func NewRecorder(graph *hypergraph.Graph, store *Store, writerID string) *Recorder {
	if writerID == "" {
		writerID = uuid.NewString()
	}
	return &Recorder{graph: graph, store: store, writerID: writerID}
}

// Graph returns the underlying graph.
func (r *Recorder) Graph() *hypergraph.Graph {
	return r.graph
}

func (r *Recorder) append(factType FactType, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", factType, err)
	}
	fact := &Fact{
		FactID:   FactID(uuid.NewString()),
		FactType: factType,
		WriterID: r.writerID,
		Payload:  data,
	}
	if err := r.store.AppendFact(context.Background(), fact); err != nil {
		// The graph already accepted the operation. The in-memory state is
		// ahead of the journal now; surface that loudly.
		log.Printf("journal append failed for %s: %v", factType, err)
		return fmt.Errorf("append %s fact: %w", factType, err)
	}
	return nil
}

// AddSkill records a skill node.
func (r *Recorder) AddSkill(skill schedule.Skill) (hypergraph.NodeHandle, error) {
	handle := r.graph.AddSkill(skill)
	return handle, r.append(FactSkillAdded, SkillAddedPayload{Skill: skill})
}

// AddPeriod records a period and its day nodes.
func (r *Recorder) AddPeriod(period schedule.Period) (hypergraph.NodeHandle, error) {
	handle, err := r.graph.AddPeriod(period)
	if err != nil {
		return 0, err
	}
	return handle, r.append(FactPeriodAdded, PeriodAddedPayload{StartDate: period.StartDate()})
}

// AddWorkOrder records a work order with its activities.
func (r *Recorder) AddWorkOrder(workOrder *schedule.WorkOrder) (hypergraph.NodeHandle, error) {
	handle, err := r.graph.AddWorkOrder(workOrder)
	if err != nil {
		return 0, err
	}
	return handle, r.append(FactWorkOrderAdded, WorkOrderAddedPayload{WorkOrder: *workOrder})
}

// AddTechnician records a technician with one availability window.
func (r *Recorder) AddTechnician(technician schedule.Technician, availability schedule.Availability) (hypergraph.NodeHandle, error) {
	handle, err := r.graph.AddTechnician(technician, availability)
	if err != nil {
		return 0, err
	}
	return handle, r.append(FactTechnicianAdded, TechnicianAddedPayload{
		ID:                 technician.ID(),
		Skills:             technician.Skills(),
		AvailabilityStart:  availability.Start,
		AvailabilityFinish: availability.Finish,
	})
}

// AddAssignmentWorkOrder records a work order level assignment.
func (r *Recorder) AddAssignmentWorkOrder(worker schedule.TechnicianID, workOrder schedule.WorkOrderNumber, period schedule.Period) (hypergraph.EdgeHandle, error) {
	handle, err := r.graph.AddAssignmentWorkOrder(worker, workOrder, period)
	if err != nil {
		return 0, err
	}
	return handle, r.append(FactWorkOrderAssigned, WorkOrderAssignedPayload{
		Worker:          worker,
		WorkOrder:       workOrder,
		PeriodStartDate: period.StartDate(),
	})
}

// AddAssignmentActivity records an activity level assignment.
func (r *Recorder) AddAssignmentActivity(
	technicians []schedule.TechnicianID,
	workOrder schedule.WorkOrderNumber,
	activity schedule.ActivityNumber,
	days []schedule.Date,
	window schedule.TimeWindow,
) (hypergraph.EdgeHandle, error) {
	handle, err := r.graph.AddAssignmentActivity(technicians, workOrder, activity, days, window)
	if err != nil {
		return 0, err
	}
	return handle, r.append(FactActivityAssigned, ActivityAssignedPayload{
		Technicians: technicians,
		WorkOrder:   workOrder,
		Activity:    activity,
		Days:        days,
		Window:      window,
	})
}

// AddAssignSkillToWorker records a skill grant.
func (r *Recorder) AddAssignSkillToWorker(worker schedule.TechnicianID, skill schedule.Skill) (hypergraph.EdgeHandle, error) {
	handle, err := r.graph.AddAssignSkillToWorker(worker, skill)
	if err != nil {
		return 0, err
	}
	return handle, r.append(FactSkillGranted, SkillGrantedPayload{Worker: worker, Skill: skill})
}

// AddExclusion records a period exclusion for a work order.
func (r *Recorder) AddExclusion(workOrder schedule.WorkOrderNumber, period schedule.Period) (hypergraph.EdgeHandle, error) {
	handle, err := r.graph.AddExclusion(workOrder, period)
	if err != nil {
		return 0, err
	}
	return handle, r.append(FactExclusionAdded, ExclusionAddedPayload{
		WorkOrder:       workOrder,
		PeriodStartDate: period.StartDate(),
	})
}
