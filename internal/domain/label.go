package domain

import (
	"fmt"
	"time"
)

// LabelKey identifies the role a label plays on an order. The set is closed:
// the kit preference uses the outbound/inbound pair, the email-label
// preference a single primary label, and a return label can coexist with either.
type LabelKey string

const (
	LabelKeyPrimary       LabelKey = "primary"
	LabelKeyOutboundKit   LabelKey = "outboundkit"
	LabelKeyInboundDevice LabelKey = "inbounddevice"
	LabelKeyReturn        LabelKey = "return"
)

// KnownLabelKey reports whether k is one of the closed label roles.
func KnownLabelKey(k LabelKey) bool {
	switch k {
	case LabelKeyPrimary, LabelKeyOutboundKit, LabelKeyInboundDevice, LabelKeyReturn:
		return true
	}
	return false
}

type LabelStatus string

const (
	LabelStatusActive     LabelStatus = "active"
	LabelStatusVoided     LabelStatus = "voided"
	LabelStatusVoidDenied LabelStatus = "void_denied"
)

// Label is one physical or electronic shipping label. A label is created
// once and its status only moves forward (active -> voided or active ->
// void_denied); it is never resurrected.
type Label struct {
	Key            LabelKey    `json:"key" firestore:"key"`
	LabelID        string      `json:"labelId" firestore:"labelId"`
	Status         LabelStatus `json:"status" firestore:"status"`
	TrackingNumber string      `json:"trackingNumber,omitempty" firestore:"trackingNumber,omitempty"`
	LabelURL       string      `json:"labelUrl,omitempty" firestore:"labelUrl,omitempty"`
	GeneratedAt    time.Time   `json:"generatedAt" firestore:"generatedAt"`
	// Message carries carrier-supplied free text, e.g. a void denial reason.
	Message string `json:"message,omitempty" firestore:"message,omitempty"`
}

// IsVoidable is a pure function of the label's own status.
func (l *Label) IsVoidable() bool {
	return l.Status != LabelStatusVoided && l.Status != LabelStatusVoidDenied
}

// RegisterLabel inserts a label under key. An existing label that is still
// active cannot be silently replaced; a voided or void-denied one can.
func (o *Order) RegisterLabel(key LabelKey, l *Label) error {
	if !KnownLabelKey(key) {
		return fmt.Errorf("%w: unknown label role %q", ErrValidation, key)
	}
	if existing, ok := o.Labels[key]; ok && existing.Status == LabelStatusActive {
		return fmt.Errorf("%w: label %q already active on order %s", ErrConflict, key, o.ID)
	}
	if o.Labels == nil {
		o.Labels = map[LabelKey]*Label{}
	}
	l.Key = key
	o.Labels[key] = l
	if l.TrackingNumber != "" {
		o.TrackingNumbers = appendUnique(o.TrackingNumbers, l.TrackingNumber)
	}
	return nil
}

// HasVoidableLabels reports whether any label on the order can still be voided.
// Used to decide whether a "void labels" action is offered at all.
func (o *Order) HasVoidableLabels() bool {
	for _, l := range o.Labels {
		if l.IsVoidable() {
			return true
		}
	}
	return false
}

// LabelByTrackingNumber finds the label carrying the given tracking number.
func (o *Order) LabelByTrackingNumber(trackingNumber string) (*Label, bool) {
	for _, l := range o.Labels {
		if l.TrackingNumber == trackingNumber {
			return l, true
		}
	}
	return nil, false
}

// VoidResult is the per-label outcome of a void request. Requests are
// evaluated per label, never all-or-nothing.
type VoidResult struct {
	Key      LabelKey `json:"key"`
	Approved bool     `json:"approved"`
	Message  string   `json:"message,omitempty"`
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
