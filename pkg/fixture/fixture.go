// Package fixture loads scheduling data sets from JSON files and feeds them
// into a graph builder. The files carry the same value types the graph
// construction API accepts; the package knows nothing about graph internals.
package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/scipo-code/ordinator-hypergraph/pkg/hypergraph"
	"github.com/scipo-code/ordinator-hypergraph/pkg/schedule"
)

// AvailabilityRecord is one availability window of a technician record.
type AvailabilityRecord struct {
	Start  time.Time `json:"start"`
	Finish time.Time `json:"finish"`
}

// TechnicianRecord is the wire form of a technician.
type TechnicianRecord struct {
	ID             schedule.TechnicianID `json:"id"`
	Skills         []schedule.Skill      `json:"skills"`
	Availabilities []AvailabilityRecord  `json:"availabilities"`
}

// DataSet is a fully parsed fixture: period start dates, validated work
// orders, and technician records.
type DataSet struct {
	Periods     []schedule.Date
	WorkOrders  []schedule.WorkOrder
	Technicians []TechnicianRecord
}

// Load reads and parses the three fixture files. Work orders are validated
// while loading, so a data set that parses is safe to feed to a builder.
func Load(periodsPath, workOrdersPath, techniciansPath string) (*DataSet, error) {
	ds := &DataSet{}

	if err := readJSON(periodsPath, &ds.Periods); err != nil {
		return nil, fmt.Errorf("load periods: %w", err)
	}
	if err := readJSON(workOrdersPath, &ds.WorkOrders); err != nil {
		return nil, fmt.Errorf("load work orders: %w", err)
	}
	for _, workOrder := range ds.WorkOrders {
		if err := workOrder.Validate(); err != nil {
			return nil, fmt.Errorf("load work orders: order %d: %w", workOrder.Number, err)
		}
	}
	if err := readJSON(techniciansPath, &ds.Technicians); err != nil {
		return nil, fmt.Errorf("load technicians: %w", err)
	}

	return ds, nil
}

func readJSON(path string, v any) (err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Target is the construction surface a data set is applied to. Both the
// graph adapter below and the journal recorder satisfy it.
type Target interface {
	AddSkill(schedule.Skill) (hypergraph.NodeHandle, error)
	AddPeriod(schedule.Period) (hypergraph.NodeHandle, error)
	AddWorkOrder(*schedule.WorkOrder) (hypergraph.NodeHandle, error)
	AddTechnician(schedule.Technician, schedule.Availability) (hypergraph.NodeHandle, error)
}

// graphTarget adapts *hypergraph.Graph to Target.
type graphTarget struct {
	g *hypergraph.Graph
}

// Graph wraps a graph so a data set can be applied to it directly.
func Graph(g *hypergraph.Graph) Target {
	return graphTarget{g: g}
}

func (t graphTarget) AddSkill(skill schedule.Skill) (hypergraph.NodeHandle, error) {
	return t.g.AddSkill(skill), nil
}

func (t graphTarget) AddPeriod(period schedule.Period) (hypergraph.NodeHandle, error) {
	return t.g.AddPeriod(period)
}

func (t graphTarget) AddWorkOrder(workOrder *schedule.WorkOrder) (hypergraph.NodeHandle, error) {
	return t.g.AddWorkOrder(workOrder)
}

func (t graphTarget) AddTechnician(technician schedule.Technician, availability schedule.Availability) (hypergraph.NodeHandle, error) {
	return t.g.AddTechnician(technician, availability)
}

// Report summarizes a batch application: what was accepted, and which
// records the graph rejected. Rejections do not abort the batch; a fixture
// may legitimately contain work orders whose start date falls outside the
// loaded periods.
type Report struct {
	SkillsAdded      int
	PeriodsAdded     int
	WorkOrdersAdded  int
	TechniciansAdded int
	Rejected         []Rejection
}

// Rejection records one rejected fixture record.
type Rejection struct {
	Record string
	Err    error
}

// Populate applies the data set in dependency order: skills, then periods,
// then work orders, then technicians. Each technician is added with its
// first availability window only, matching what the graph models.
func (ds *DataSet) Populate(target Target) (*Report, error) {
	report := &Report{}

	for _, skill := range []schedule.Skill{schedule.SkillMtnMech, schedule.SkillMtnElec} {
		if _, err := target.AddSkill(skill); err != nil {
			return report, fmt.Errorf("add skill %s: %w", skill, err)
		}
		report.SkillsAdded++
	}

	for _, start := range ds.Periods {
		if _, err := target.AddPeriod(schedule.PeriodFromStartDate(start)); err != nil {
			report.Rejected = append(report.Rejected, Rejection{Record: fmt.Sprintf("period %s", start), Err: err})
			continue
		}
		report.PeriodsAdded++
	}

	for i := range ds.WorkOrders {
		workOrder := ds.WorkOrders[i]
		if _, err := target.AddWorkOrder(&workOrder); err != nil {
			report.Rejected = append(report.Rejected, Rejection{Record: fmt.Sprintf("work order %d", workOrder.Number), Err: err})
			continue
		}
		report.WorkOrdersAdded++
	}

	for _, record := range ds.Technicians {
		if len(record.Availabilities) == 0 {
			report.Rejected = append(report.Rejected, Rejection{Record: fmt.Sprintf("technician %d", record.ID), Err: fmt.Errorf("no availabilities")})
			continue
		}
		technician, availability, err := record.build()
		if err != nil {
			report.Rejected = append(report.Rejected, Rejection{Record: fmt.Sprintf("technician %d", record.ID), Err: err})
			continue
		}
		if _, err := target.AddTechnician(technician, availability); err != nil {
			report.Rejected = append(report.Rejected, Rejection{Record: fmt.Sprintf("technician %d", record.ID), Err: err})
			continue
		}
		report.TechniciansAdded++
	}

	return report, nil
}

func (r TechnicianRecord) build() (schedule.Technician, schedule.Availability, error) {
	builder := schedule.NewTechnician(r.ID)
	for _, skill := range r.Skills {
		builder.AddSkill(skill)
	}
	for _, window := range r.Availabilities {
		if err := builder.AddAvailability(window.Start, window.Finish); err != nil {
			return schedule.Technician{}, schedule.Availability{}, err
		}
	}
	first := r.Availabilities[0]
	return builder.Build(), schedule.NewAvailability(first.Start, first.Finish), nil
}
