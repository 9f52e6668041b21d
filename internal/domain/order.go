package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusOrderPending         Status = "order_pending"
	StatusShippingKitRequested Status = "shipping_kit_requested"
	StatusKitNeedsPrinting     Status = "kit_needs_printing"
	StatusLabelGenerated       Status = "label_generated"
	StatusEmailed              Status = "emailed"
	StatusKitSent              Status = "kit_sent"
	StatusKitInTransit         Status = "kit_in_transit"
	StatusKitDelivered         Status = "kit_delivered"
	StatusReceived             Status = "received"
	StatusReofferPending       Status = "re-offered-pending"
	StatusReofferAccepted      Status = "re-offered-accepted"
	StatusReofferAutoAccepted  Status = "re-offered-auto-accepted"
	StatusReofferDeclined      Status = "re-offered-declined"
	StatusReturnLabelGenerated Status = "return-label-generated"
	StatusCompleted            Status = "completed"
	StatusCancelled            Status = "cancelled"
)

// statusOrder is the canonical linear track used for progress comparison.
// It is not the transition table; it only answers "how far along is this
// status" for the timeline projection.
var statusOrder = []Status{
	StatusOrderPending,
	StatusShippingKitRequested,
	StatusKitNeedsPrinting,
	StatusLabelGenerated,
	StatusEmailed,
	StatusKitSent,
	StatusKitInTransit,
	StatusKitDelivered,
	StatusReceived,
	StatusReofferPending,
	StatusReofferAccepted,
	StatusReofferAutoAccepted,
	StatusReofferDeclined,
	StatusReturnLabelGenerated,
	StatusCompleted,
}

// StatusOrderIndex returns the position of s on the canonical linear track.
// A status not on the track (including cancelled) sorts beyond all known steps.
func StatusOrderIndex(s Status) int {
	for i, st := range statusOrder {
		if st == s {
			return i
		}
	}
	return len(statusOrder)
}

// AllowedTransitions defines which status pairs are structurally valid.
// Edge preconditions that depend on order sub-state (labels, re-offer) are
// enforced by Order.Transition, actor-specific semantics by the service layer.
var AllowedTransitions = map[Status][]Status{
	StatusOrderPending:         {StatusShippingKitRequested, StatusLabelGenerated, StatusCancelled},
	StatusShippingKitRequested: {StatusKitNeedsPrinting, StatusLabelGenerated, StatusCancelled},
	StatusKitNeedsPrinting:     {StatusLabelGenerated, StatusCancelled},
	StatusLabelGenerated:       {StatusEmailed, StatusKitSent, StatusReceived, StatusCancelled},
	StatusEmailed:              {StatusReceived, StatusCancelled},
	StatusKitSent:              {StatusKitInTransit, StatusKitDelivered, StatusReceived, StatusCancelled},
	StatusKitInTransit:         {StatusKitDelivered, StatusReceived, StatusCancelled},
	StatusKitDelivered:         {StatusReceived, StatusCancelled},
	StatusReceived:             {StatusReofferPending, StatusCompleted, StatusCancelled},
	StatusReofferPending:       {StatusReofferAccepted, StatusReofferAutoAccepted, StatusReofferDeclined, StatusCancelled},
	StatusReofferAccepted:      {StatusCompleted, StatusCancelled},
	StatusReofferAutoAccepted:  {StatusCompleted, StatusCancelled},
	StatusReofferDeclined:      {StatusReturnLabelGenerated, StatusCancelled},
	StatusReturnLabelGenerated: {StatusCompleted, StatusCancelled},
}

var allowedTransitionSet = buildTransitionSet(AllowedTransitions)

func buildTransitionSet(transitions map[Status][]Status) map[Status]map[Status]struct{} {
	set := make(map[Status]map[Status]struct{}, len(transitions))
	for from, tos := range transitions {
		next := make(map[Status]struct{}, len(tos))
		for _, to := range tos {
			next[to] = struct{}{}
		}
		set[from] = next
	}
	return set
}

// CanTransition reports whether the status pair is in the allowed-edges table.
func CanTransition(from, to Status) bool {
	next, ok := allowedTransitionSet[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// IsTerminal reports whether no further transitions are permitted from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// preReceivedFamily are the statuses during which the order is still waiting
// on the customer to ship the device. Reminder emails are only valid here.
var preReceivedFamily = map[Status]struct{}{
	StatusOrderPending:         {},
	StatusShippingKitRequested: {},
	StatusLabelGenerated:       {},
	StatusEmailed:              {},
}

// IsPreReceived reports whether s is in the pre-received (awaiting shipment) family.
func (s Status) IsPreReceived() bool {
	_, ok := preReceivedFamily[s]
	return ok
}

// IsReofferFamily reports whether s belongs to the re-offer negotiation family.
func (s Status) IsReofferFamily() bool {
	switch s {
	case StatusReofferPending, StatusReofferAccepted, StatusReofferAutoAccepted, StatusReofferDeclined:
		return true
	}
	return false
}

type ShippingPreference string

const (
	ShippingPreferenceKit        ShippingPreference = "kit"
	ShippingPreferenceEmailLabel ShippingPreference = "email-label"
)

// ShippingInfo is the customer contact/address block. Set once at submission,
// editable only before fulfillment starts.
type ShippingInfo struct {
	Name     string `json:"name" firestore:"name"`
	Email    string `json:"email" firestore:"email"`
	Phone    string `json:"phone,omitempty" firestore:"phone,omitempty"`
	Address1 string `json:"address1" firestore:"address1"`
	Address2 string `json:"address2,omitempty" firestore:"address2,omitempty"`
	City     string `json:"city" firestore:"city"`
	State    string `json:"state" firestore:"state"`
	Zip      string `json:"zip" firestore:"zip"`
}

// StatusHistoryEntry is immutable once appended. The history slice is
// append-only and chronological; it is never reordered or pruned.
type StatusHistoryEntry struct {
	Status    Status    `json:"status" firestore:"status"`
	ChangedAt time.Time `json:"changedAt" firestore:"changedAt"`
	ChangedBy string    `json:"changedBy" firestore:"changedBy"`
	Note      string    `json:"note,omitempty" firestore:"note,omitempty"`
}

// ActivityEntry is a free-form informational event. Not used for state derivation.
type ActivityEntry struct {
	ID        string    `json:"id" firestore:"id"`
	Event     string    `json:"event" firestore:"event"`
	Actor     string    `json:"actor,omitempty" firestore:"actor,omitempty"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// Order is the root aggregate. Field names follow the document layout of the
// orders collection, hence the camelCase tags.
type Order struct {
	ID     string `json:"id" firestore:"id"`
	Status Status `json:"status" firestore:"status"`

	// Appraisal inputs, immutable after creation.
	Device      string `json:"device" firestore:"device"`
	StorageSize string `json:"storage" firestore:"storage"`
	Carrier     string `json:"carrier" firestore:"carrier"`

	// EstimatedQuote is the original appraisal price. Never mutated; a
	// re-offer resolution lands in FinalQuote instead.
	EstimatedQuote int64 `json:"estimatedQuote" firestore:"estimatedQuote"`
	FinalQuote     int64 `json:"finalQuote,omitempty" firestore:"finalQuote,omitempty"`

	ShippingPreference ShippingPreference `json:"shippingPreference" firestore:"shippingPreference"`
	ShippingInfo       ShippingInfo       `json:"shippingInfo" firestore:"shippingInfo"`

	// Payout instructions are read-only for this engine; payment capture is
	// an external collaborator's job.
	PaymentMethod  string            `json:"paymentMethod" firestore:"paymentMethod"`
	PaymentDetails map[string]string `json:"paymentDetails,omitempty" firestore:"paymentDetails,omitempty"`

	Labels map[LabelKey]*Label `json:"labels,omitempty" firestore:"labels,omitempty"`
	// TrackingNumbers mirrors the tracking numbers of all registered labels
	// so the orders collection can be queried by carrier webhook payloads.
	TrackingNumbers []string `json:"trackingNumbers,omitempty" firestore:"trackingNumbers,omitempty"`

	ReOffer  *ReOffer      `json:"reOffer,omitempty" firestore:"reOffer,omitempty"`
	Reminder ReminderState `json:"reminder" firestore:"reminder"`

	StatusHistory []StatusHistoryEntry `json:"statusHistory" firestore:"statusHistory"`
	ActivityLog   []ActivityEntry      `json:"activityLog,omitempty" firestore:"activityLog,omitempty"`

	// ReviewPromptEligible gates the post-payout review prompt shown by the
	// account page. Cleared when a re-offer is declined.
	ReviewPromptEligible bool `json:"reviewPromptEligible" firestore:"reviewPromptEligible"`

	CreatedAt          time.Time `json:"createdAt" firestore:"createdAt"`
	LastStatusUpdateAt time.Time `json:"lastStatusUpdateAt" firestore:"lastStatusUpdateAt"`
}

// NewOrder creates an order in order_pending with an initial history entry.
func NewOrder(device, storageSize, carrier string, estimatedQuote int64, pref ShippingPreference, info ShippingInfo, paymentMethod string, paymentDetails map[string]string, now time.Time) *Order {
	o := &Order{
		ID:                   uuid.NewString(),
		Status:               StatusOrderPending,
		Device:               device,
		StorageSize:          storageSize,
		Carrier:              carrier,
		EstimatedQuote:       estimatedQuote,
		ShippingPreference:   pref,
		ShippingInfo:         info,
		PaymentMethod:        paymentMethod,
		PaymentDetails:       paymentDetails,
		Labels:               map[LabelKey]*Label{},
		Reminder:             ReminderState{Status: ReminderNotSent},
		ReviewPromptEligible: true,
		CreatedAt:            now,
		LastStatusUpdateAt:   now,
	}
	o.StatusHistory = append(o.StatusHistory, StatusHistoryEntry{
		Status:    StatusOrderPending,
		ChangedAt: now,
		ChangedBy: "customer",
		Note:      "order submitted",
	})
	return o
}

// Transition moves the order to target, appending a history entry and
// bumping lastStatusUpdateAt. It validates the terminal rule, the
// allowed-edges table and the sub-state preconditions of the target edge,
// but never mutates labels, re-offer or reminder sub-state itself; callers
// keep those consistent with the new status.
func (o *Order) Transition(target Status, actor, note string, now time.Time) error {
	if o.Status.IsTerminal() {
		return fmt.Errorf("%w: order %s is %s", ErrTerminalState, o.ID, o.Status)
	}
	if !CanTransition(o.Status, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, target)
	}
	if err := o.checkEdgeGuard(target); err != nil {
		return err
	}
	o.Status = target
	o.StatusHistory = append(o.StatusHistory, StatusHistoryEntry{
		Status:    target,
		ChangedAt: now,
		ChangedBy: actor,
		Note:      note,
	})
	o.LastStatusUpdateAt = now
	return nil
}

// checkEdgeGuard enforces the sub-state preconditions of the load-bearing edges.
func (o *Order) checkEdgeGuard(target Status) error {
	switch target {
	case StatusLabelGenerated:
		key := o.ShippingLabelKey()
		if _, ok := o.Labels[key]; !ok {
			return fmt.Errorf("%w: %s -> %s requires a %q label", ErrInvalidTransition, o.Status, target, key)
		}
	case StatusReturnLabelGenerated:
		if _, ok := o.Labels[LabelKeyReturn]; !ok {
			return fmt.Errorf("%w: %s -> %s requires a return label", ErrInvalidTransition, o.Status, target)
		}
	case StatusReofferPending:
		if o.ReOffer == nil {
			return fmt.Errorf("%w: %s -> %s requires an attached re-offer", ErrInvalidTransition, o.Status, target)
		}
	}
	return nil
}

// ShippingLabelKey returns the label role the shipping preference makes
// relevant for the outbound leg: a single emailed label, or the outbound
// half of the kit pair.
func (o *Order) ShippingLabelKey() LabelKey {
	if o.ShippingPreference == ShippingPreferenceKit {
		return LabelKeyOutboundKit
	}
	return LabelKeyPrimary
}

// AppendActivity records a free-form informational event.
func (o *Order) AppendActivity(event, actor string, now time.Time) {
	o.ActivityLog = append(o.ActivityLog, ActivityEntry{
		ID:        uuid.NewString(),
		Event:     event,
		Actor:     actor,
		CreatedAt: now,
	})
}

// StatusReachedAt returns the time the order first entered s, if ever.
func (o *Order) StatusReachedAt(s Status) (time.Time, bool) {
	for _, h := range o.StatusHistory {
		if h.Status == s {
			return h.ChangedAt, true
		}
	}
	return time.Time{}, false
}

// FulfillmentStarted reports whether the order has progressed past the point
// where shipping info may still be edited. Once a label exists the address
// is baked into it, so edits are no longer allowed.
func (o *Order) FulfillmentStarted() bool {
	if len(o.Labels) > 0 {
		return true
	}
	switch o.Status {
	case StatusOrderPending, StatusShippingKitRequested, StatusKitNeedsPrinting:
		return false
	}
	return true
}
