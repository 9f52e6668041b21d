package jobs

import (
	"context"
	"errors"
	"time"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/logger"
)

// awaitingShipmentStatuses are the order statuses during which reminder
// escalation applies.
var awaitingShipmentStatuses = []domain.Status{
	domain.StatusOrderPending,
	domain.StatusShippingKitRequested,
	domain.StatusLabelGenerated,
	domain.StatusEmailed,
}

// SendSevenDayReminders sends the first nag to orders that have sat in an
// awaiting-shipment status past the first threshold with no reminder yet.
func (jr *JobRunner) SendSevenDayReminders() {
	jr.runWithRecovery("SendSevenDayReminders", func() {
		jr.sweepReminders(domain.ReminderSevenDay, domain.ReminderNotSent,
			jr.config.Lifecycle.SevenDayReminderAfterDays)
	})
}

// SendFifteenDayReminders escalates orders that already got the seven-day
// reminder and still have not shipped.
func (jr *JobRunner) SendFifteenDayReminders() {
	jr.runWithRecovery("SendFifteenDayReminders", func() {
		jr.sweepReminders(domain.ReminderFifteenDay, domain.ReminderSevenDay,
			jr.config.Lifecycle.FifteenDayReminderAfterDays)
	})
}

func (jr *JobRunner) sweepReminders(kind domain.ReminderKind, current domain.ReminderKind, afterDays int) {
	ctx := context.Background()
	cutoff := time.Now().UTC().AddDate(0, 0, -afterDays)

	orders, err := jr.orderRepo.ListStale(ctx, awaitingShipmentStatuses, cutoff, current)
	if err != nil {
		logger.Error("Failed to list orders for reminder sweep", "kind", kind, "error", err)
		return
	}

	count := 0
	for _, o := range orders {
		if _, err := jr.services.Reminder.SendReminder(ctx, o.ID, kind, "cron"); err != nil {
			// Another worker or an admin may have advanced the order since
			// the query; skip and keep sweeping.
			if errors.Is(err, domain.ErrInvalidReminderState) {
				logger.Debug("Skipping reminder, state moved on", "order_id", o.ID, "kind", kind)
				continue
			}
			logger.Error("Failed to send reminder", "order_id", o.ID, "kind", kind, "error", err)
			continue
		}
		count++
	}
	logger.Info("Reminder sweep finished", "kind", kind, "sent", count, "candidates", len(orders))
}

// CancelStaleOrders cancels orders that ran through the full reminder
// escalation and still never shipped.
func (jr *JobRunner) CancelStaleOrders() {
	jr.runWithRecovery("CancelStaleOrders", func() {
		ctx := context.Background()
		cutoff := time.Now().UTC().AddDate(0, 0, -jr.config.Lifecycle.CancelAfterDays)

		orders, err := jr.orderRepo.ListStale(ctx, awaitingShipmentStatuses, cutoff, domain.ReminderFifteenDay)
		if err != nil {
			logger.Error("Failed to list stale orders", "error", err)
			return
		}

		count := 0
		for _, o := range orders {
			if _, err := jr.services.Reminder.CancelAfterReminder(ctx, o.ID, "cron", false); err != nil {
				logger.Error("Failed to cancel stale order", "order_id", o.ID, "error", err)
				continue
			}
			count++
		}
		logger.Info("Stale order sweep finished", "cancelled", count, "candidates", len(orders))
	})
}
