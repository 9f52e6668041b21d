package domain

import (
	"fmt"
	"time"
)

// ReminderKind is the escalation stage of the ship-your-device nag sequence.
type ReminderKind string

const (
	ReminderNotSent    ReminderKind = "not_sent"
	ReminderSevenDay   ReminderKind = "seven_day"
	ReminderFifteenDay ReminderKind = "fifteen_day"
	ReminderCanceled   ReminderKind = "canceled"
)

// ReminderState tracks escalation independently of the order status. It only
// advances forward (not_sent -> seven_day -> fifteen_day -> canceled) unless
// an operator explicitly resets it.
type ReminderState struct {
	Status     ReminderKind `json:"status" firestore:"status"`
	LastSentAt *time.Time   `json:"lastSentAt,omitempty" firestore:"lastSentAt,omitempty"`
}

// reminderPredecessor maps each sendable kind to the stage it must follow.
var reminderPredecessor = map[ReminderKind]ReminderKind{
	ReminderSevenDay:   ReminderNotSent,
	ReminderFifteenDay: ReminderSevenDay,
}

// MarkReminderSent advances the reminder state to kind. Only valid while the
// order is still awaiting shipment, and only in escalation order.
func (o *Order) MarkReminderSent(kind ReminderKind, now time.Time) error {
	if !o.Status.IsPreReceived() {
		return fmt.Errorf("%w: reminders only apply before the device is received (status %s)", ErrInvalidReminderState, o.Status)
	}
	prev, ok := reminderPredecessor[kind]
	if !ok {
		return fmt.Errorf("%w: %q is not a sendable reminder kind", ErrValidation, kind)
	}
	if o.Reminder.Status != prev {
		return fmt.Errorf("%w: %s reminder requires current state %s, have %s", ErrInvalidReminderState, kind, prev, o.Reminder.Status)
	}
	o.Reminder.Status = kind
	o.Reminder.LastSentAt = &now
	return nil
}

// ResetReminder is the operator escape hatch: back to not_sent without
// touching the order status.
func (o *Order) ResetReminder() {
	o.Reminder.Status = ReminderNotSent
	o.Reminder.LastSentAt = nil
}
