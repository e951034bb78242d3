package schedule

// PeriodDays is the fixed length of a scheduling period.
const PeriodDays = 14

// Period is a fixed two-week scheduling window identified by its start date.
type Period struct {
	Start Date `json:"start_date"`
}

// PeriodFromStartDate builds the period beginning on d.
func PeriodFromStartDate(d Date) Period {
	return Period{Start: d}
}

// StartDate returns the first day of the period.
func (p Period) StartDate() Date {
	return p.Start
}

// EndDate returns the last day of the period (inclusive).
func (p Period) EndDate() Date {
	return p.Start.AddDays(PeriodDays - 1)
}

// Days returns the 14 consecutive calendar days of the period.
func (p Period) Days() []Date {
	days := make([]Date, PeriodDays)
	for i := range days {
		days[i] = p.Start.AddDays(i)
	}
	return days
}

// Contains reports whether d falls inside the period (both ends inclusive).
func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start) && !d.After(p.EndDate())
}

func (p Period) String() string {
	return p.Start.String()
}
