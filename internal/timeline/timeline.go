// Package timeline projects raw order state into the human-facing progress
// tracks shown by the admin console and the customer account page. It is
// pure: the same order always yields the same projection, and nothing here
// mutates the order.
package timeline

import (
	"time"

	"buyback-backend/internal/domain"
)

type StepState string

const (
	StepPending  StepState = "pending"
	StepCurrent  StepState = "current"
	StepComplete StepState = "complete"
)

// Step is one milestone on a progress track.
type Step struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	State     StepState  `json:"state"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Timeline holds the two tracks derived from an order.
type Timeline struct {
	Shipping []Step `json:"shipping"`
	Payout   []Step `json:"payout"`
}

// stepDef describes when a step counts as complete and where its timestamp
// comes from. A step is complete when the order has progressed at least to
// completionStatus on the canonical linear track, when the current status is
// one of the extra completion statuses, or when the override predicate holds.
type stepDef struct {
	id                      string
	title                   string
	completionStatus        domain.Status
	extraCompletionStatuses []domain.Status
	timestampFields         []string
	override                func(*domain.Order) bool
}

// Project derives both progress tracks from the order.
func Project(o *domain.Order) Timeline {
	values := fieldValues(o)
	return Timeline{
		Shipping: projectTrack(o, shippingSteps(o.ShippingPreference), values),
		Payout:   projectTrack(o, payoutSteps(), values),
	}
}

// projectTrack runs the monotonic left-to-right scan: the first step whose
// completion predicate fails is current, and every step after it is pending
// even if its own predicate would say complete out of order.
func projectTrack(o *domain.Order, defs []stepDef, values map[string]any) []Step {
	steps := make([]Step, 0, len(defs))
	blocked := false
	for _, def := range defs {
		s := Step{ID: def.id, Title: def.title}
		if ts, ok := resolveTimestamp(values, def.timestampFields); ok {
			s.Timestamp = &ts
		}
		switch {
		case blocked:
			s.State = StepPending
		case stepComplete(o, def):
			s.State = StepComplete
		default:
			s.State = StepCurrent
			blocked = true
		}
		steps = append(steps, s)
	}
	return steps
}

func stepComplete(o *domain.Order, def stepDef) bool {
	if def.override != nil && def.override(o) {
		return true
	}
	// Statuses off the canonical track (cancelled included) index beyond all
	// known steps, so they complete every step.
	if domain.StatusOrderIndex(o.Status) >= domain.StatusOrderIndex(def.completionStatus) {
		return true
	}
	for _, extra := range def.extraCompletionStatuses {
		if o.Status == extra {
			return true
		}
	}
	return false
}
