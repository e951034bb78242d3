package schedule

import (
	"errors"
	"fmt"
)

// WorkOrderNumber identifies a work order. Valid numbers are ten digits.
type WorkOrderNumber uint64

// ActivityNumber identifies an activity inside a work order. Numbers are only
// unique within their work order.
type ActivityNumber uint64

// Activity is one unit of work inside a work order.
type Activity struct {
	Number    ActivityNumber `json:"activity_number"`
	Headcount uint64         `json:"number_of_people"`
	Skill     Skill          `json:"resource"`
}

// NewActivity builds an activity requiring headcount people with the given
// skill.
func NewActivity(number ActivityNumber, headcount uint64, skill Skill) Activity {
	return Activity{Number: number, Headcount: headcount, Skill: skill}
}

// ActivityRelation is the precedence constraint between two consecutive
// activities of a work order.
type ActivityRelation string

const (
	RelationStartStart  ActivityRelation = "start_start"
	RelationFinishStart ActivityRelation = "finish_start"
)

var (
	ErrWorkOrderNumberInvalid = errors.New("work order number must be ten digits")
	ErrActivitiesUnsorted     = errors.New("activities must be sorted by activity number")
	ErrActivitiesDuplicated   = errors.New("activities must be unique")
)

// WorkOrder is a numbered maintenance job with a basic start date and an
// ordered list of activities.
type WorkOrder struct {
	Number     WorkOrderNumber `json:"work_order_number"`
	BasicStart Date            `json:"basic_start_date"`
	Activities []Activity      `json:"activities"`
}

// NewWorkOrder validates and builds a work order. The number must be ten
// digits, and activities must be sorted by activity number without
// duplicates.
func NewWorkOrder(number WorkOrderNumber, basicStart Date, activities []Activity) (WorkOrder, error) {
	wo := WorkOrder{Number: number, BasicStart: basicStart, Activities: activities}
	if err := wo.Validate(); err != nil {
		return WorkOrder{}, err
	}
	return wo, nil
}

// Validate re-checks the constructor invariants. Useful after decoding a work
// order from JSON.
func (w WorkOrder) Validate() error {
	if n := len(fmt.Sprintf("%d", uint64(w.Number))); n != 10 {
		return fmt.Errorf("%w: got %d", ErrWorkOrderNumberInvalid, w.Number)
	}
	seen := make(map[Activity]struct{}, len(w.Activities))
	for i, activity := range w.Activities {
		if i > 0 && activity.Number < w.Activities[i-1].Number {
			return ErrActivitiesUnsorted
		}
		if _, dup := seen[activity]; dup {
			return ErrActivitiesDuplicated
		}
		seen[activity] = struct{}{}
	}
	return nil
}

// Relations returns the precedence relation for each gap between consecutive
// activities; its length is one less than the activity count.
func (w WorkOrder) Relations() []ActivityRelation {
	if len(w.Activities) == 0 {
		return nil
	}
	relations := make([]ActivityRelation, len(w.Activities)-1)
	for i := range relations {
		relations[i] = RelationFinishStart
	}
	return relations
}
