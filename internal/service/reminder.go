package service

import (
	"context"
	"fmt"
	"time"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/logger"
	"buyback-backend/internal/repository"
)

type reminderService struct {
	orderRepo repository.OrderRepository
	emailSvc  EmailService
	now       func() time.Time
}

func NewReminderService(orderRepo repository.OrderRepository, emailSvc EmailService) ReminderService {
	return &reminderService{
		orderRepo: orderRepo,
		emailSvc:  emailSvc,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SendReminder advances the escalation state and emails the customer. The
// state change is persisted before the email goes out, so a double send of
// the same stage fails the state check rather than spamming the customer.
func (s *reminderService) SendReminder(ctx context.Context, orderID string, kind domain.ReminderKind, actor string) (*domain.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := o.MarkReminderSent(kind, now); err != nil {
		return nil, err
	}
	o.AppendActivity(fmt.Sprintf("%s reminder sent", kind), actor, now)
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err := s.emailSvc.SendReminderEmail(ctx, o.ShippingInfo.Email, o.ShippingInfo.Name, o.ID, kind); err != nil {
		logger.Warn("Failed to send reminder email", "order_id", o.ID, "kind", kind, "error", err)
	}
	logger.Info("Reminder sent", "order_id", o.ID, "kind", kind, "actor", actor)
	return o, nil
}

// CancelAfterReminder closes out an order that never shipped. Unless forced,
// it requires the full escalation to have run: the fifteen-day reminder must
// already be out.
func (s *reminderService) CancelAfterReminder(ctx context.Context, orderID, actor string, force bool) (*domain.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !force && o.Reminder.Status != domain.ReminderFifteenDay {
		return nil, fmt.Errorf("%w: cancellation requires the fifteen-day reminder first, have %s", domain.ErrInvalidReminderState, o.Reminder.Status)
	}

	now := s.now()
	if err := o.Transition(domain.StatusCancelled, actor, "no shipment after reminders", now); err != nil {
		return nil, err
	}
	o.Reminder.Status = domain.ReminderCanceled
	o.AppendActivity("order cancelled after reminder escalation", actor, now)
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err := s.emailSvc.SendOrderCancelledEmail(ctx, o.ShippingInfo.Email, o.ShippingInfo.Name, o.ID); err != nil {
		logger.Warn("Failed to send cancellation email", "order_id", o.ID, "error", err)
	}
	logger.Info("Order cancelled after reminders", "order_id", o.ID, "actor", actor, "forced", force)
	return o, nil
}

// Reset puts the reminder sequence back to not_sent, e.g. after the customer
// got in touch and asked for more time.
func (s *reminderService) Reset(ctx context.Context, orderID, actor string) (*domain.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.ResetReminder()
	o.AppendActivity("reminder sequence reset", actor, s.now())
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
