package service

import (
	"context"
	"fmt"
	"time"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/logger"
	"buyback-backend/internal/repository"
)

type orderService struct {
	orderRepo repository.OrderRepository
	emailSvc  EmailService
	now       func() time.Time
}

func NewOrderService(orderRepo repository.OrderRepository, emailSvc EmailService) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		emailSvc:  emailSvc,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *orderService) Submit(ctx context.Context, in SubmitOrderInput) (*domain.Order, error) {
	if in.Device == "" {
		return nil, fmt.Errorf("%w: device is required", domain.ErrValidation)
	}
	if in.EstimatedQuote < 0 {
		return nil, fmt.Errorf("%w: estimated quote must not be negative", domain.ErrValidation)
	}
	switch in.ShippingPreference {
	case domain.ShippingPreferenceKit, domain.ShippingPreferenceEmailLabel:
	default:
		return nil, fmt.Errorf("%w: unknown shipping preference %q", domain.ErrValidation, in.ShippingPreference)
	}
	if in.ShippingInfo.Email == "" {
		return nil, fmt.Errorf("%w: shipping email is required", domain.ErrValidation)
	}

	o := domain.NewOrder(in.Device, in.StorageSize, in.Carrier, in.EstimatedQuote,
		in.ShippingPreference, in.ShippingInfo, in.PaymentMethod, in.PaymentDetails, s.now())
	o.AppendActivity("order submitted", "customer", s.now())

	if err := s.orderRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	logger.Info("Order submitted", "order_id", o.ID, "device", o.Device, "preference", o.ShippingPreference)
	return o, nil
}

func (s *orderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

func (s *orderService) List(ctx context.Context, status domain.Status, page, pageSize int) ([]domain.Order, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	return s.orderRepo.List(ctx, status, pageSize, (page-1)*pageSize)
}

func (s *orderService) Transition(ctx context.Context, id string, target domain.Status, actor, note string) (*domain.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.Transition(target, actor, note, s.now()); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	logger.Info("Order status changed", "order_id", o.ID, "status", o.Status, "actor", actor)
	return o, nil
}

func (s *orderService) Cancel(ctx context.Context, id, actor, reason string) (*domain.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.Transition(domain.StatusCancelled, actor, reason, s.now()); err != nil {
		return nil, err
	}
	o.AppendActivity("order cancelled: "+reason, actor, s.now())
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	// Email failures never roll back the cancellation.
	if err := s.emailSvc.SendOrderCancelledEmail(ctx, o.ShippingInfo.Email, o.ShippingInfo.Name, o.ID); err != nil {
		logger.Warn("Failed to send cancellation email", "order_id", o.ID, "error", err)
	}
	return o, nil
}

func (s *orderService) ManualFulfill(ctx context.Context, id, actor string) (*domain.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.Transition(domain.StatusCompleted, actor, "manually fulfilled", s.now()); err != nil {
		return nil, err
	}
	// An accepted re-offer already stamped FinalQuote, and zero is a legal
	// accepted price. Only orders that never resolved a re-offer fall back
	// to the original estimate.
	if !o.HasAcceptedReoffer() {
		o.FinalQuote = o.EstimatedQuote
	}
	o.AppendActivity("payout issued", actor, s.now())
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err := s.emailSvc.SendPayoutEmail(ctx, o.ShippingInfo.Email, o.ShippingInfo.Name, o.ID, o.FinalQuote); err != nil {
		logger.Warn("Failed to send payout email", "order_id", o.ID, "error", err)
	}
	return o, nil
}

func (s *orderService) UpdateShippingInfo(ctx context.Context, id string, info domain.ShippingInfo) (*domain.Order, error) {
	if info.Email == "" || info.Address1 == "" || info.Zip == "" {
		return nil, fmt.Errorf("%w: shipping info requires email, address and zip", domain.ErrValidation)
	}
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.FulfillmentStarted() {
		return nil, fmt.Errorf("%w: shipping info is locked once fulfillment has started", domain.ErrConflict)
	}
	o.ShippingInfo = info
	o.AppendActivity("shipping info updated", "customer", s.now())
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// HandleTrackingEvent applies a carrier tracking update. Webhooks are
// delivered at least once and can arrive late, so a transition the order has
// already moved past is dropped quietly instead of failing the webhook.
func (s *orderService) HandleTrackingEvent(ctx context.Context, trackingNumber, carrierStatus string) (*domain.Order, error) {
	o, err := s.orderRepo.GetByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	label, ok := o.LabelByTrackingNumber(trackingNumber)
	if !ok {
		return nil, fmt.Errorf("%w: label for tracking number %s", domain.ErrNotFound, trackingNumber)
	}

	target, ok := trackingTarget(label.Key, carrierStatus)
	if !ok {
		logger.Debug("Ignoring tracking event", "order_id", o.ID, "label", label.Key, "carrier_status", carrierStatus)
		return o, nil
	}
	if err := o.Transition(target, "carrier", "tracking update: "+carrierStatus, s.now()); err != nil {
		logger.Debug("Dropping stale tracking event", "order_id", o.ID, "target", target, "error", err)
		return o, nil
	}
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	logger.Info("Tracking event applied", "order_id", o.ID, "status", o.Status, "tracking_number", trackingNumber)
	return o, nil
}

// trackingTarget maps a carrier scan on a given label role to the status it
// implies. The outbound kit leg moves the kit steps; the inbound leg (or the
// single emailed label) delivering to the warehouse means the device arrived.
func trackingTarget(key domain.LabelKey, carrierStatus string) (domain.Status, bool) {
	switch key {
	case domain.LabelKeyOutboundKit:
		switch carrierStatus {
		case "in_transit":
			return domain.StatusKitInTransit, true
		case "delivered":
			return domain.StatusKitDelivered, true
		}
	case domain.LabelKeyInboundDevice, domain.LabelKeyPrimary:
		if carrierStatus == "delivered" {
			return domain.StatusReceived, true
		}
	}
	return "", false
}
