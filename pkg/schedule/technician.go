package schedule

import (
	"fmt"
	"slices"
	"time"
)

// Skill identifies a maintenance trade a technician can hold and an activity
// can require.
type Skill string

const (
	SkillMtnMech Skill = "MtnMech"
	SkillMtnElec Skill = "MtnElec"
)

// TechnicianID identifies a technician.
type TechnicianID uint64

// Availability is a single continuous window in which a technician is
// eligible to work.
type Availability struct {
	Start  time.Time `json:"start"`
	Finish time.Time `json:"finish"`
}

// NewAvailability builds an availability window.
func NewAvailability(start, finish time.Time) Availability {
	return Availability{Start: start, Finish: finish}
}

// StartDate returns the calendar day the window opens on.
func (a Availability) StartDate() Date {
	return DateOf(a.Start)
}

// FinishDate returns the calendar day the window closes on.
func (a Availability) FinishDate() Date {
	return DateOf(a.Finish)
}

// Overlaps reports whether the two windows share any instant.
func (a Availability) Overlaps(other Availability) bool {
	return a.Start.Before(other.Finish) && other.Start.Before(a.Finish)
}

// OverlapError reports an availability that collides with one already held by
// the technician being built.
type OverlapError struct {
	New      Availability
	Existing Availability
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("availability %s..%s overlaps existing %s..%s",
		e.New.Start.Format(time.RFC3339), e.New.Finish.Format(time.RFC3339),
		e.Existing.Start.Format(time.RFC3339), e.Existing.Finish.Format(time.RFC3339))
}

// Technician is a worker with a skill set and one or more availability
// windows. Values are built through TechnicianBuilder so the windows are
// known to be non-overlapping.
type Technician struct {
	id             TechnicianID
	skills         []Skill
	availabilities []Availability
}

// ID returns the technician's identifier.
func (t Technician) ID() TechnicianID {
	return t.id
}

// Skills returns the technician's skills in sorted order.
func (t Technician) Skills() []Skill {
	return slices.Clone(t.skills)
}

// Availabilities returns the technician's windows ordered by start time.
func (t Technician) Availabilities() []Availability {
	return slices.Clone(t.availabilities)
}

// TechnicianBuilder accumulates skills and availability windows, rejecting
// overlapping windows as they are added.
type TechnicianBuilder struct {
	id             TechnicianID
	skills         []Skill
	availabilities []Availability
}

// NewTechnician starts building a technician with the given id.
func NewTechnician(id TechnicianID) *TechnicianBuilder {
	return &TechnicianBuilder{id: id}
}

// AddAvailability records a window, failing if it overlaps one already added.
func (b *TechnicianBuilder) AddAvailability(start, finish time.Time) error {
	next := NewAvailability(start, finish)
	for _, existing := range b.availabilities {
		if next.Overlaps(existing) {
			return &OverlapError{New: next, Existing: existing}
		}
	}
	b.availabilities = append(b.availabilities, next)
	return nil
}

// AddSkill records a skill. Duplicates are dropped.
func (b *TechnicianBuilder) AddSkill(skill Skill) *TechnicianBuilder {
	if !slices.Contains(b.skills, skill) {
		b.skills = append(b.skills, skill)
	}
	return b
}

// Build finalizes the technician, with skills sorted and windows ordered by
// start time.
func (b *TechnicianBuilder) Build() Technician {
	skills := slices.Clone(b.skills)
	slices.Sort(skills)
	availabilities := slices.Clone(b.availabilities)
	slices.SortFunc(availabilities, func(x, y Availability) int {
		if x.Start.Before(y.Start) {
			return -1
		}
		if y.Start.Before(x.Start) {
			return 1
		}
		return x.Finish.Compare(y.Finish)
	})
	return Technician{id: b.id, skills: skills, availabilities: availabilities}
}
