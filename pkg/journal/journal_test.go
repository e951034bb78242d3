package journal

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scipo-code/ordinator-hypergraph/pkg/hypergraph"
	"github.com/scipo-code/ordinator-hypergraph/pkg/schedule"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testWorkOrder(t *testing.T) *schedule.WorkOrder {
	t.Helper()
	wo, err := schedule.NewWorkOrder(1122334455, schedule.NewDate(2026, time.March, 5), []schedule.Activity{
		{Number: 10, Headcount: 2, Skill: schedule.SkillMtnMech},
		{Number: 20, Headcount: 1, Skill: schedule.SkillMtnElec},
	})
	if err != nil {
		t.Fatalf("NewWorkOrder failed: %v", err)
	}
	return &wo
}

func TestAppendAndReadFacts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, ft := range []FactType{FactSkillAdded, FactPeriodAdded} {
		fact := &Fact{
			FactID:   FactID(string(rune('a' + i))),
			FactType: ft,
			WriterID: "w1",
			Payload:  []byte(`{}`),
		}
		if err := s.AppendFact(ctx, fact); err != nil {
			t.Fatalf("AppendFact failed: %v", err)
		}
	}

	facts, err := s.Facts(ctx)
	if err != nil {
		t.Fatalf("Facts failed: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("expected 2 facts, got %d", len(facts))
	}
	if facts[0].FactType != FactSkillAdded || facts[1].FactType != FactPeriodAdded {
		t.Errorf("facts out of order: %s, %s", facts[0].FactType, facts[1].FactType)
	}
	if facts[0].Seq >= facts[1].Seq {
		t.Errorf("sequence numbers not increasing: %d, %d", facts[0].Seq, facts[1].Seq)
	}
	if facts[0].TsIngest.IsZero() {
		t.Error("ingest timestamp not set")
	}

	n, err := s.CountFacts(ctx, "")
	if err != nil {
		t.Fatalf("CountFacts failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected count 2, got %d", n)
	}
}

func TestAppendRejectsDuplicateFactID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fact := &Fact{FactID: "dup", FactType: FactSkillAdded, Payload: []byte(`{}`)}
	if err := s.AppendFact(ctx, fact); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if err := s.AppendFact(ctx, &Fact{FactID: "dup", FactType: FactSkillAdded, Payload: []byte(`{}`)}); err == nil {
		t.Fatal("expected duplicate fact_id to be rejected")
	}
}

func TestRecorderReplayRoundTrip(t *testing.T) {
	s := newTestStore(t)
	rec := NewRecorder(hypergraph.New(), s, "builder-1")

	period := schedule.PeriodFromStartDate(schedule.NewDate(2026, time.March, 2))
	secondPeriod := schedule.PeriodFromStartDate(schedule.NewDate(2026, time.March, 16))

	if _, err := rec.AddSkill(schedule.SkillMtnMech); err != nil {
		t.Fatalf("AddSkill failed: %v", err)
	}
	if _, err := rec.AddSkill(schedule.SkillMtnElec); err != nil {
		t.Fatalf("AddSkill failed: %v", err)
	}
	if _, err := rec.AddPeriod(period); err != nil {
		t.Fatalf("AddPeriod failed: %v", err)
	}
	if _, err := rec.AddPeriod(secondPeriod); err != nil {
		t.Fatalf("AddPeriod failed: %v", err)
	}
	if _, err := rec.AddWorkOrder(testWorkOrder(t)); err != nil {
		t.Fatalf("AddWorkOrder failed: %v", err)
	}

	builder := schedule.NewTechnician(1001)
	builder.AddSkill(schedule.SkillMtnMech)
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	finish := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	if err := builder.AddAvailability(start, finish); err != nil {
		t.Fatalf("AddAvailability failed: %v", err)
	}
	if _, err := rec.AddTechnician(builder.Build(), schedule.NewAvailability(start, finish)); err != nil {
		t.Fatalf("AddTechnician failed: %v", err)
	}

	if _, err := rec.AddAssignmentWorkOrder(1001, 1122334455, period); err != nil {
		t.Fatalf("AddAssignmentWorkOrder failed: %v", err)
	}
	if _, err := rec.AddAssignSkillToWorker(1001, schedule.SkillMtnElec); err != nil {
		t.Fatalf("AddAssignSkillToWorker failed: %v", err)
	}
	if _, err := rec.AddExclusion(1122334455, secondPeriod); err != nil {
		t.Fatalf("AddExclusion failed: %v", err)
	}

	days := []schedule.Date{schedule.NewDate(2026, time.March, 5), schedule.NewDate(2026, time.March, 6)}
	window := schedule.TimeWindow{
		Start:  schedule.TimeOfDay{Hour: 7},
		Finish: schedule.TimeOfDay{Hour: 15},
	}
	if _, err := rec.AddAssignmentActivity([]schedule.TechnicianID{1001}, 1122334455, 10, days, window); err != nil {
		t.Fatalf("AddAssignmentActivity failed: %v", err)
	}

	replayed, err := Replay(context.Background(), s)
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}

	original := rec.Graph()
	if replayed.NodeCount() != original.NodeCount() {
		t.Errorf("node count mismatch: replay %d, original %d", replayed.NodeCount(), original.NodeCount())
	}
	if replayed.HyperedgeCount() != original.HyperedgeCount() {
		t.Errorf("edge count mismatch: replay %d, original %d", replayed.HyperedgeCount(), original.HyperedgeCount())
	}
	for h := 0; h < original.NodeCount(); h++ {
		handle := hypergraph.NodeHandle(h)
		if replayed.Node(handle) != original.Node(handle) {
			t.Errorf("node %d mismatch after replay", h)
		}
	}

	// Replayed graph answers queries the same way.
	got, err := replayed.FindAllAssignmentsForPeriod(period)
	if err != nil {
		t.Fatalf("FindAllAssignmentsForPeriod failed: %v", err)
	}
	want, err := original.FindAllAssignmentsForPeriod(period)
	if err != nil {
		t.Fatalf("FindAllAssignmentsForPeriod failed: %v", err)
	}
	if len(got) != len(want) {
		t.Errorf("assignment query mismatch: replay %d, original %d", len(got), len(want))
	}
}

func TestRecorderDoesNotJournalRejections(t *testing.T) {
	s := newTestStore(t)
	rec := NewRecorder(hypergraph.New(), s, "")

	period := schedule.PeriodFromStartDate(schedule.NewDate(2026, time.March, 2))
	if _, err := rec.AddPeriod(period); err != nil {
		t.Fatalf("AddPeriod failed: %v", err)
	}
	if _, err := rec.AddPeriod(period); !errors.Is(err, hypergraph.ErrPeriodDuplicate) {
		t.Fatalf("expected ErrPeriodDuplicate, got %v", err)
	}
	if _, err := rec.AddWorkOrder(testWorkOrder(t)); !errors.Is(err, hypergraph.ErrWorkOrderActivityMissingSkills) {
		t.Fatalf("expected ErrWorkOrderActivityMissingSkills, got %v", err)
	}

	n, err := s.CountFacts(context.Background(), FactPeriodAdded)
	if err != nil {
		t.Fatalf("CountFacts failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected exactly 1 period fact, got %d", n)
	}
	total, err := s.CountFacts(context.Background(), "")
	if err != nil {
		t.Fatalf("CountFacts failed: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 fact total, got %d", total)
	}
}

func TestAcquireBuildLease(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	release, err := AcquireBuildLease(ctx, s, "builder-1", time.Minute)
	if err != nil {
		t.Fatalf("AcquireBuildLease failed: %v", err)
	}

	// A second builder must fail while the lease is live, and the error
	// names the current holder.
	if _, err := AcquireBuildLease(ctx, s, "builder-2", time.Minute); err == nil {
		t.Fatal("expected second builder to be refused")
	} else if !strings.Contains(err.Error(), "builder-1") {
		t.Errorf("error does not name the holder: %v", err)
	}

	if err := release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	release, err = AcquireBuildLease(ctx, s, "builder-2", time.Minute)
	if err != nil {
		t.Fatalf("AcquireBuildLease after release failed: %v", err)
	}
	if err := release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}
}

func TestRecorderSurfacesJournalAppendFailure(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	rec := NewRecorder(hypergraph.New(), s, "builder-1")
	s.Close()

	// The graph accepts the operation before the append fails, so the
	// in-memory mutation survives and the error reports the journal gap.
	handle, err := rec.AddSkill(schedule.SkillMtnMech)
	if err == nil {
		t.Fatal("expected append to a closed store to fail")
	}
	if rec.Graph().NodeCount() != 1 {
		t.Errorf("expected the skill node to survive, got %d nodes", rec.Graph().NodeCount())
	}
	if got := rec.Graph().Node(handle); got.Kind != hypergraph.NodeSkill || got.Skill != schedule.SkillMtnMech {
		t.Errorf("unexpected node at returned handle: %+v", got)
	}
}

func TestReplayEmptyJournal(t *testing.T) {
	s := newTestStore(t)
	g, err := Replay(context.Background(), s)
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if g.NodeCount() != 0 || g.HyperedgeCount() != 0 {
		t.Errorf("expected empty graph, got %d nodes %d edges", g.NodeCount(), g.HyperedgeCount())
	}
}
