// Package journal persists accepted graph construction facts to SQLite so a
// schedule graph can be rebuilt by replay. The graph itself never touches
// storage; the journal sits outside it, recording the domain facts (not the
// arena representation) after the graph accepts them.
package journal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/scipo-code/ordinator-hypergraph/pkg/schedule"
)

// FactType identifies the construction operation a fact records.
type FactType string

const (
	FactSkillAdded        FactType = "skill_added"
	FactPeriodAdded       FactType = "period_added"
	FactWorkOrderAdded    FactType = "work_order_added"
	FactTechnicianAdded   FactType = "technician_added"
	FactWorkOrderAssigned FactType = "work_order_assigned"
	FactActivityAssigned  FactType = "activity_assigned"
	FactSkillGranted      FactType = "skill_granted"
	FactExclusionAdded    FactType = "exclusion_added"
)

// FactID is a unique identifier for a fact.
type FactID string

// Fact is the canonical envelope for one accepted construction operation.
type Fact struct {
	FactID   FactID          `json:"fact_id"`
	FactType FactType        `json:"fact_type"`
	Seq      int64           `json:"seq"` // assigned by the store on read
	TsIngest time.Time       `json:"ts_ingest"`
	WriterID string          `json:"writer_id"`
	Payload  json.RawMessage `json:"payload"`
}

// SkillAddedPayload records an AddSkill call.
type SkillAddedPayload struct {
	Skill schedule.Skill `json:"skill"`
}

// PeriodAddedPayload records an accepted AddPeriod call.
type PeriodAddedPayload struct {
	StartDate schedule.Date `json:"start_date"`
}

// WorkOrderAddedPayload records an accepted AddWorkOrder call.
type WorkOrderAddedPayload struct {
	WorkOrder schedule.WorkOrder `json:"work_order"`
}

// TechnicianAddedPayload records an accepted AddTechnician call with the one
// availability window the graph modeled.
type TechnicianAddedPayload struct {
	ID                 schedule.TechnicianID `json:"id"`
	Skills             []schedule.Skill      `json:"skills"`
	AvailabilityStart  time.Time             `json:"availability_start"`
	AvailabilityFinish time.Time             `json:"availability_finish"`
}

// WorkOrderAssignedPayload records an accepted AddAssignmentWorkOrder call.
type WorkOrderAssignedPayload struct {
	Worker          schedule.TechnicianID    `json:"worker"`
	WorkOrder       schedule.WorkOrderNumber `json:"work_order"`
	PeriodStartDate schedule.Date            `json:"period_start_date"`
}

// ActivityAssignedPayload records an accepted AddAssignmentActivity call.
type ActivityAssignedPayload struct {
	Technicians []schedule.TechnicianID  `json:"technicians"`
	WorkOrder   schedule.WorkOrderNumber `json:"work_order"`
	Activity    schedule.ActivityNumber  `json:"activity"`
	Days        []schedule.Date          `json:"days"`
	Window      schedule.TimeWindow      `json:"window"`
}

// SkillGrantedPayload records an accepted AddAssignSkillToWorker call.
type SkillGrantedPayload struct {
	Worker schedule.TechnicianID `json:"worker"`
	Skill  schedule.Skill        `json:"skill"`
}

// ExclusionAddedPayload records an accepted AddExclusion call.
type ExclusionAddedPayload struct {
	WorkOrder       schedule.WorkOrderNumber `json:"work_order"`
	PeriodStartDate schedule.Date            `json:"period_start_date"`
}

// Lease represents an exclusive builder claim on a graph. The graph requires
// a single-writer discipline; processes sharing a journal serialize their
// construction through a lease.
type Lease struct {
	Name      string    `json:"name"`
	HolderID  string    `json:"holder_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Version   int64     `json:"version"` // For CAS logic
}

// LeaseStore defines the interface for acquiring and renewing builder
// leases.
type LeaseStore interface {
	// Acquire tries to acquire the lease. Returns true if successful.
	// If the lease is already held by holderID, it renews it.
	Acquire(ctx context.Context, name, holderID string, ttl time.Duration) (bool, error)

	// Renew updates the expiry of an existing lease held by holderID.
	// Returns error if the lease is lost or stolen.
	Renew(ctx context.Context, name, holderID string, ttl time.Duration) error

	// Release releases the lease if held by holderID.
	Release(ctx context.Context, name, holderID string) error

	// Get returns the current lease state.
	Get(ctx context.Context, name string) (*Lease, error)
}
