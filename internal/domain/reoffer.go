package domain

import (
	"fmt"
	"time"
)

// DefaultAutoAcceptWindow is applied when the proposer does not supply an
// explicit auto-accept date.
const DefaultAutoAcceptWindow = 7 * 24 * time.Hour

// ReofferReason enumerates the condition mismatches found at inspection.
type ReofferReason string

const (
	ReasonScreenDamage     ReofferReason = "screen_damage"
	ReasonHousingDamage    ReofferReason = "housing_damage"
	ReasonBatteryHealth    ReofferReason = "battery_health"
	ReasonWrongModel       ReofferReason = "wrong_model"
	ReasonWrongStorage     ReofferReason = "wrong_storage"
	ReasonCarrierLocked    ReofferReason = "carrier_locked"
	ReasonActivationLock   ReofferReason = "activation_lock"
	ReasonNotFunctional    ReofferReason = "not_functional"
	ReasonCosmeticWear     ReofferReason = "cosmetic_wear"
	ReasonMissingAccessory ReofferReason = "missing_accessory"
)

var knownReofferReasons = map[ReofferReason]struct{}{
	ReasonScreenDamage:     {},
	ReasonHousingDamage:    {},
	ReasonBatteryHealth:    {},
	ReasonWrongModel:       {},
	ReasonWrongStorage:     {},
	ReasonCarrierLocked:    {},
	ReasonActivationLock:   {},
	ReasonNotFunctional:    {},
	ReasonCosmeticWear:     {},
	ReasonMissingAccessory: {},
}

// ReOffer is a time-boxed renegotiation of price after inspection. Present on
// an order only while the status is in the re-offer family; cleared when the
// negotiation resolves.
type ReOffer struct {
	NewPrice int64           `json:"newPrice" firestore:"newPrice"`
	Reasons  []ReofferReason `json:"reasons" firestore:"reasons"`
	Comments string          `json:"comments,omitempty" firestore:"comments,omitempty"`
	// CreatedAt and AutoAcceptDate are set once at proposal and never mutated.
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt"`
	AutoAcceptDate time.Time `json:"autoAcceptDate" firestore:"autoAcceptDate"`
}

// NewReOffer validates the inputs and computes the auto-accept deadline:
// an explicit autoAcceptDate is used verbatim, otherwise createdAt + window.
func NewReOffer(newPrice int64, reasons []ReofferReason, comments string, autoAcceptDate *time.Time, window time.Duration, now time.Time) (*ReOffer, error) {
	if newPrice < 0 {
		return nil, fmt.Errorf("%w: re-offer price must not be negative", ErrValidation)
	}
	if len(reasons) == 0 {
		return nil, fmt.Errorf("%w: re-offer requires at least one reason", ErrValidation)
	}
	for _, r := range reasons {
		if _, ok := knownReofferReasons[r]; !ok {
			return nil, fmt.Errorf("%w: unknown re-offer reason %q", ErrValidation, r)
		}
	}
	if window <= 0 {
		window = DefaultAutoAcceptWindow
	}
	r := &ReOffer{
		NewPrice:  newPrice,
		Reasons:   reasons,
		Comments:  comments,
		CreatedAt: now,
	}
	if autoAcceptDate != nil {
		r.AutoAcceptDate = *autoAcceptDate
	} else {
		r.AutoAcceptDate = now.Add(window)
	}
	return r, nil
}

// HasAcceptedReoffer reports whether the order ever resolved a re-offer in
// acceptance, by the customer or by the auto-accept deadline. The accepted
// price is stamped into FinalQuote at resolution, zero included, so callers
// must not treat a zero FinalQuote as unset once this returns true.
func (o *Order) HasAcceptedReoffer() bool {
	for _, h := range o.StatusHistory {
		if h.Status == StatusReofferAccepted || h.Status == StatusReofferAutoAccepted {
			return true
		}
	}
	return false
}

// TimeLeft returns how long the customer still has before the re-offer is
// eligible for auto-acceptance. Negative once the deadline has passed.
func (r *ReOffer) TimeLeft(now time.Time) time.Duration {
	return r.AutoAcceptDate.Sub(now)
}

// Expired reports whether the auto-accept deadline has passed. Expiry is
// evaluated lazily on read; the transition itself is always an explicit
// caller action (the cronjob sweep in this deployment).
func (r *ReOffer) Expired(now time.Time) bool {
	return r.TimeLeft(now) <= 0
}
