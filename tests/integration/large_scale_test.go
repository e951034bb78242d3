package integration_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scipo-code/ordinator-hypergraph/pkg/fixture"
	"github.com/scipo-code/ordinator-hypergraph/pkg/hypergraph"
	"github.com/scipo-code/ordinator-hypergraph/pkg/journal"
	"github.com/scipo-code/ordinator-hypergraph/pkg/schedule"
)

const (
	periodCount     = 52
	workOrderCount  = 1000
	technicianCount = 100
)

// writeLargeFixture generates a year of periods, a thousand work orders and
// a hundred technicians as JSON files, the same shape the fixture loader
// reads in production.
func writeLargeFixture(t *testing.T) (string, string, string) {
	t.Helper()
	dir := t.TempDir()

	horizonStart := schedule.NewDate(2026, time.January, 5)

	periods := make([]schedule.Date, periodCount)
	for i := range periods {
		periods[i] = horizonStart.AddDays(i * schedule.PeriodDays)
	}

	horizonDays := periodCount * schedule.PeriodDays
	skills := []schedule.Skill{schedule.SkillMtnMech, schedule.SkillMtnElec}

	workOrders := make([]schedule.WorkOrder, workOrderCount)
	for i := range workOrders {
		// Spread basic start dates across the horizon; every 50th order
		// starts after it, which the graph must reject.
		offset := (i * 37) % horizonDays
		if i%50 == 49 {
			offset = horizonDays + i
		}
		activityCount := 1 + i%3
		activities := make([]schedule.Activity, activityCount)
		for j := range activities {
			activities[j] = schedule.Activity{
				Number:    schedule.ActivityNumber((j + 1) * 10),
				Headcount: uint64(1 + (i+j)%4),
				Skill:     skills[(i+j)%2],
			}
		}
		workOrders[i] = schedule.WorkOrder{
			Number:     schedule.WorkOrderNumber(2400000000 + i),
			BasicStart: horizonStart.AddDays(offset),
			Activities: activities,
		}
	}

	// The availability window must stay inside the loaded day nodes, which
	// end on the last day of the last period.
	horizonEnd := horizonStart.AddDays(horizonDays - 1)
	technicians := make([]fixture.TechnicianRecord, technicianCount)
	for i := range technicians {
		techSkills := []schedule.Skill{skills[i%2]}
		if i%5 == 0 {
			techSkills = skills
		}
		technicians[i] = fixture.TechnicianRecord{
			ID:     schedule.TechnicianID(1000 + i),
			Skills: techSkills,
			Availabilities: []fixture.AvailabilityRecord{{
				Start:  horizonStart.Time(),
				Finish: horizonEnd.Time(),
			}},
		}
	}

	paths := [3]string{
		filepath.Join(dir, "periods.json"),
		filepath.Join(dir, "work_orders.json"),
		filepath.Join(dir, "technicians.json"),
	}
	for i, v := range []any{periods, workOrders, technicians} {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal fixture: %v", err)
		}
		if err := os.WriteFile(paths[i], data, 0644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	return paths[0], paths[1], paths[2]
}

func TestLargeScaleGraphBuild(t *testing.T) {
	periodsPath, workOrdersPath, techniciansPath := writeLargeFixture(t)

	ds, err := fixture.Load(periodsPath, workOrdersPath, techniciansPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(ds.Periods) != periodCount {
		t.Fatalf("expected %d periods, got %d", periodCount, len(ds.Periods))
	}
	if len(ds.WorkOrders) != workOrderCount {
		t.Fatalf("expected %d work orders, got %d", workOrderCount, len(ds.WorkOrders))
	}
	if len(ds.Technicians) != technicianCount {
		t.Fatalf("expected %d technicians, got %d", technicianCount, len(ds.Technicians))
	}

	graph := hypergraph.New()
	report, err := ds.Populate(fixture.Graph(graph))
	if err != nil {
		t.Fatalf("Populate failed: %v", err)
	}

	if report.PeriodsAdded != periodCount {
		t.Errorf("expected %d periods added, got %d", periodCount, report.PeriodsAdded)
	}
	// Every 50th order starts past the horizon and must be rejected.
	wantRejected := workOrderCount / 50
	if report.WorkOrdersAdded != workOrderCount-wantRejected {
		t.Errorf("expected %d work orders added, got %d", workOrderCount-wantRejected, report.WorkOrdersAdded)
	}
	if len(report.Rejected) != wantRejected {
		t.Errorf("expected %d rejections, got %d", wantRejected, len(report.Rejected))
	}
	if report.TechniciansAdded != technicianCount {
		t.Errorf("expected %d technicians added, got %d", technicianCount, report.TechniciansAdded)
	}

	// Node arithmetic: 2 skills, 15 nodes per period, 1 + activities per
	// accepted work order, 1 per technician.
	wantNodes := 2 + periodCount*(1+schedule.PeriodDays)
	wantEdges := 0
	for i, workOrder := range ds.WorkOrders {
		if i%50 == 49 {
			continue
		}
		acts := len(workOrder.Activities)
		wantNodes += 1 + acts
		wantEdges += 1 + 2*acts + (acts - 1)
	}
	wantNodes += technicianCount
	wantEdges += technicianCount

	if graph.NodeCount() != wantNodes {
		t.Errorf("expected %d nodes, got %d", wantNodes, graph.NodeCount())
	}
	if graph.HyperedgeCount() != wantEdges {
		t.Errorf("expected %d hyperedges, got %d", wantEdges, graph.HyperedgeCount())
	}

	// Every node handle must answer an incidence lookup.
	for h := 0; h < graph.NodeCount(); h++ {
		_ = graph.Incidence(hypergraph.NodeHandle(h))
	}
}

func TestLargeScaleJournalReplay(t *testing.T) {
	periodsPath, workOrdersPath, techniciansPath := writeLargeFixture(t)

	ds, err := fixture.Load(periodsPath, workOrdersPath, techniciansPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	dbPath := filepath.Join(t.TempDir(), "large.db")
	store, err := journal.NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()

	graph := hypergraph.New()
	rec := journal.NewRecorder(graph, store, "large-scale")
	report, err := ds.Populate(rec)
	if err != nil {
		t.Fatalf("Populate failed: %v", err)
	}

	// Assign some work orders into the first period, through the recorder
	// so the assignments land in the journal too.
	firstPeriod := schedule.PeriodFromStartDate(ds.Periods[0])
	assigned := 0
	for _, workOrder := range ds.WorkOrders {
		if !firstPeriod.Contains(workOrder.BasicStart) {
			continue
		}
		technicianID := schedule.TechnicianID(1000 + assigned%technicianCount)
		if _, err := rec.AddAssignmentWorkOrder(technicianID, workOrder.Number, firstPeriod); err != nil {
			t.Fatalf("AddAssignmentWorkOrder failed for order %d: %v", workOrder.Number, err)
		}
		assigned++
	}
	if assigned == 0 {
		t.Fatal("fixture produced no work orders in the first period")
	}

	replayed, err := journal.Replay(context.Background(), store)
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if replayed.NodeCount() != graph.NodeCount() {
		t.Errorf("node count mismatch: replay %d, original %d", replayed.NodeCount(), graph.NodeCount())
	}
	if replayed.HyperedgeCount() != graph.HyperedgeCount() {
		t.Errorf("edge count mismatch: replay %d, original %d", replayed.HyperedgeCount(), graph.HyperedgeCount())
	}

	handles, err := replayed.FindAllAssignmentsForPeriod(firstPeriod)
	if err != nil {
		t.Fatalf("FindAllAssignmentsForPeriod failed: %v", err)
	}
	if len(handles) != assigned {
		t.Errorf("expected %d assignments in first period, got %d", assigned, len(handles))
	}

	// Journal fact counts line up with the report.
	n, err := store.CountFacts(context.Background(), journal.FactWorkOrderAdded)
	if err != nil {
		t.Fatalf("CountFacts failed: %v", err)
	}
	if int(n) != report.WorkOrdersAdded {
		t.Errorf("expected %d work order facts, got %d", report.WorkOrdersAdded, n)
	}
}
