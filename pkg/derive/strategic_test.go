package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/scipo-code/ordinator-hypergraph/pkg/hypergraph"
	"github.com/scipo-code/ordinator-hypergraph/pkg/schedule"
)

// buildGraph assembles two periods, one two-activity work order, and two
// technicians, with one activity assigned and one exclusion recorded.
func buildGraph(t *testing.T) (*hypergraph.Graph, schedule.Period, schedule.Period) {
	t.Helper()
	g := hypergraph.New()

	firstStart := schedule.NewDate(2025, time.January, 13)
	secondStart := schedule.NewDate(2025, time.January, 27)
	firstPeriod := schedule.PeriodFromStartDate(firstStart)
	secondPeriod := schedule.PeriodFromStartDate(secondStart)

	g.AddSkill(schedule.SkillMtnMech)
	g.AddSkill(schedule.SkillMtnElec)
	if _, err := g.AddPeriod(firstPeriod); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddPeriod(secondPeriod); err != nil {
		t.Fatal(err)
	}

	workOrder, err := schedule.NewWorkOrder(1122334455, firstStart, []schedule.Activity{
		schedule.NewActivity(10, 2, schedule.SkillMtnMech),
		schedule.NewActivity(20, 3, schedule.SkillMtnElec),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddWorkOrder(&workOrder); err != nil {
		t.Fatal(err)
	}

	addTechnician := func(id schedule.TechnicianID, skill schedule.Skill, from, to schedule.Date) {
		builder := schedule.NewTechnician(id)
		start := from.Time().Add(8 * time.Hour)
		finish := to.Time().Add(17 * time.Hour)
		if err := builder.AddAvailability(start, finish); err != nil {
			t.Fatal(err)
		}
		if _, err := g.AddTechnician(builder.AddSkill(skill).Build(), schedule.NewAvailability(start, finish)); err != nil {
			t.Fatalf("AddTechnician(%d): %v", id, err)
		}
	}
	// 1001 covers the first five days of the first period, 1002 the first
	// two days of the second.
	addTechnician(1001, schedule.SkillMtnMech, firstStart, firstStart.AddDays(4))
	addTechnician(1002, schedule.SkillMtnElec, secondStart, secondStart.AddDays(1))

	window := schedule.TimeWindow{Start: schedule.TimeOfDay{Hour: 9}, Finish: schedule.TimeOfDay{Hour: 12}}
	if _, err := g.AddAssignmentActivity([]schedule.TechnicianID{1001}, 1122334455, 10,
		[]schedule.Date{firstStart, firstStart.AddDays(1)}, window); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddExclusion(1122334455, secondPeriod); err != nil {
		t.Fatal(err)
	}

	return g, firstPeriod, secondPeriod
}

func TestStrategicInstanceFrom(t *testing.T) {
	g, firstPeriod, secondPeriod := buildGraph(t)

	instance, err := StrategicInstanceFrom(g, []schedule.WorkOrderNumber{1122334455})
	if err != nil {
		t.Fatalf("StrategicInstanceFrom: %v", err)
	}

	assert.Equal(t, []schedule.Period{firstPeriod, secondPeriod}, instance.Periods)

	parameter, ok := instance.WorkOrderParameters[1122334455]
	if !ok {
		t.Fatal("work order missing from instance")
	}

	// Activity 10: one assignment, 3h window x 2 days x 1 technician = 6h.
	// Activity 20: unassigned, headcount 3 x 8h estimate = 24h.
	assert.Equal(t, Work(6), parameter.WorkLoad[schedule.SkillMtnMech])
	assert.Equal(t, Work(24), parameter.WorkLoad[schedule.SkillMtnElec])

	assert.Contains(t, parameter.ExcludedPeriods, secondPeriod)
	assert.NotContains(t, parameter.ExcludedPeriods, firstPeriod)
	assert.Nil(t, parameter.LockedInPeriod)
	assert.Equal(t, secondPeriod, parameter.LatestPeriod)
	// Basic start 2025-01-13, horizon end 2025-02-09: 27 days out.
	assert.Equal(t, int64(27), parameter.Weight)

	// 1001: 5 available days in the first period at 8h.
	first := instance.Capacity[firstPeriod][1001]
	assert.Equal(t, Work(40), first.TotalHours)
	assert.Equal(t, Work(40), first.SkillHours[schedule.SkillMtnMech])
	// 1002: 2 available days in the second period.
	second := instance.Capacity[secondPeriod][1002]
	assert.Equal(t, Work(16), second.TotalHours)
	assert.Empty(t, instance.Capacity[firstPeriod][1002].SkillHours)

	assert.Empty(t, instance.PeriodLocks)
}

func TestStrategicInstancePeriodLock(t *testing.T) {
	g, firstPeriod, _ := buildGraph(t)

	if _, err := g.AddAssignmentWorkOrder(1001, 1122334455, firstPeriod); err != nil {
		t.Fatal(err)
	}

	instance, err := StrategicInstanceFrom(g, []schedule.WorkOrderNumber{1122334455})
	if err != nil {
		t.Fatal(err)
	}

	parameter := instance.WorkOrderParameters[1122334455]
	if parameter.LockedInPeriod == nil || *parameter.LockedInPeriod != firstPeriod {
		t.Fatalf("LockedInPeriod = %v, want %v", parameter.LockedInPeriod, firstPeriod)
	}
	assert.Contains(t, instance.PeriodLocks, firstPeriod)
}

func TestStrategicInstanceUnknownWorkOrder(t *testing.T) {
	g, _, _ := buildGraph(t)

	_, err := StrategicInstanceFrom(g, []schedule.WorkOrderNumber{9999999999})
	assert.ErrorIs(t, err, hypergraph.ErrWorkOrderMissing)
}
