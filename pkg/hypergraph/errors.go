package hypergraph

import "errors"

// The closed fault set. Every fallible graph operation returns one of these;
// callers classify with errors.Is. Validation failures never panic, and none
// of the operations roll back structure appended before the failing step.
var (
	ErrActivityMissing                = errors.New("activity missing")
	ErrDayMissing                     = errors.New("day missing")
	ErrPeriodDuplicate                = errors.New("period duplicate")
	ErrPeriodMissing                  = errors.New("period missing")
	ErrSkillMissing                   = errors.New("skill missing")
	ErrWorkOrderActivityMissingSkills = errors.New("work order activity missing skills")
	ErrWorkOrderDuplicate             = errors.New("work order duplicate")
	ErrWorkOrderMissing               = errors.New("work order missing")
	ErrWorkerUnavailable              = errors.New("worker unavailable")
	ErrWorkerMissing                  = errors.New("worker missing")
	ErrWorkerDuplicate                = errors.New("worker duplicate")
	ErrActivityExceedsNumberOfPeople  = errors.New("activity exceeds number of people")
)
