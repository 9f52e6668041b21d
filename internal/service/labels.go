package service

import (
	"context"
	"fmt"
	"time"

	"buyback-backend/internal/carrier"
	"buyback-backend/internal/domain"
	"buyback-backend/internal/logger"
	"buyback-backend/internal/repository"
)

type labelService struct {
	orderRepo   repository.OrderRepository
	carrierClnt carrier.Client
	now         func() time.Time
}

func NewLabelService(orderRepo repository.OrderRepository, carrierClnt carrier.Client) LabelService {
	return &labelService{
		orderRepo:   orderRepo,
		carrierClnt: carrierClnt,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GenerateShippingLabel issues the outbound label(s): a single primary label
// for the email-label preference, the outbound/inbound pair for a kit. All
// issued labels and the status change land in one write.
func (s *labelService) GenerateShippingLabel(ctx context.Context, orderID, actor string) (*domain.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: order %s is %s", domain.ErrTerminalState, o.ID, o.Status)
	}

	roles := []domain.LabelKey{domain.LabelKeyPrimary}
	if o.ShippingPreference == domain.ShippingPreferenceKit {
		roles = []domain.LabelKey{domain.LabelKeyOutboundKit, domain.LabelKeyInboundDevice}
	}
	for _, role := range roles {
		if existing, ok := o.Labels[role]; ok && existing.Status == domain.LabelStatusActive {
			return nil, fmt.Errorf("%w: label %q already active on order %s", domain.ErrConflict, role, o.ID)
		}
	}

	now := s.now()
	for _, role := range roles {
		issued, err := s.issueLabel(ctx, o, role)
		if err != nil {
			return nil, err
		}
		if err := o.RegisterLabel(role, &domain.Label{
			LabelID:        issued.LabelID,
			Status:         domain.LabelStatusActive,
			TrackingNumber: issued.TrackingNumber,
			LabelURL:       issued.LabelURL,
			GeneratedAt:    now,
		}); err != nil {
			return nil, err
		}
	}

	if err := o.Transition(domain.StatusLabelGenerated, actor, "", now); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	logger.Info("Shipping label generated", "order_id", o.ID, "roles", len(roles))
	return o, nil
}

// GenerateReturnLabel issues the send-it-back label after a declined
// re-offer and advances the order to return-label-generated.
func (s *labelService) GenerateReturnLabel(ctx context.Context, orderID, actor string) (*domain.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.StatusReofferDeclined {
		return nil, fmt.Errorf("%w: return label requires a declined re-offer, order %s is %s", domain.ErrInvalidTransition, o.ID, o.Status)
	}

	now := s.now()
	issued, err := s.issueLabel(ctx, o, domain.LabelKeyReturn)
	if err != nil {
		return nil, err
	}
	if err := o.RegisterLabel(domain.LabelKeyReturn, &domain.Label{
		LabelID:        issued.LabelID,
		Status:         domain.LabelStatusActive,
		TrackingNumber: issued.TrackingNumber,
		LabelURL:       issued.LabelURL,
		GeneratedAt:    now,
	}); err != nil {
		return nil, err
	}
	if err := o.Transition(domain.StatusReturnLabelGenerated, actor, "", now); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	logger.Info("Return label generated", "order_id", o.ID)
	return o, nil
}

func (s *labelService) MarkKitSent(ctx context.Context, orderID, actor string) (*domain.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.ShippingPreference != domain.ShippingPreferenceKit {
		return nil, fmt.Errorf("%w: order %s has no shipping kit", domain.ErrValidation, o.ID)
	}
	if err := o.Transition(domain.StatusKitSent, actor, "", s.now()); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// RequestVoid evaluates each requested key independently: unknown and
// non-voidable labels are rejected in place, voidable ones go to the
// carrier, and whatever the carrier decides is recorded. The whole batch is
// persisted in one write; a carrier transport failure leaves that label
// untouched and is reported in its result instead of failing the batch.
func (s *labelService) RequestVoid(ctx context.Context, orderID string, keys []domain.LabelKey, actor string) (*domain.Order, []domain.VoidResult, error) {
	if len(keys) == 0 {
		return nil, nil, fmt.Errorf("%w: no label keys given", domain.ErrValidation)
	}
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	results := make([]domain.VoidResult, 0, len(keys))
	dirty := false
	for _, key := range keys {
		label, ok := o.Labels[key]
		if !ok {
			results = append(results, domain.VoidResult{Key: key, Approved: false, Message: "label not found on order"})
			continue
		}
		if !label.IsVoidable() {
			results = append(results, domain.VoidResult{Key: key, Approved: false, Message: fmt.Sprintf("label is %s and cannot be voided", label.Status)})
			continue
		}

		outcome, err := s.carrierClnt.VoidLabel(ctx, label.LabelID)
		if err != nil {
			logger.Warn("Carrier void call failed", "order_id", o.ID, "label", key, "error", err)
			results = append(results, domain.VoidResult{Key: key, Approved: false, Message: "carrier unreachable, label left active"})
			continue
		}
		if outcome.Approved {
			label.Status = domain.LabelStatusVoided
		} else {
			label.Status = domain.LabelStatusVoidDenied
		}
		label.Message = outcome.Message
		dirty = true
		results = append(results, domain.VoidResult{Key: key, Approved: outcome.Approved, Message: outcome.Message})
	}

	if dirty {
		o.AppendActivity("label void requested", actor, now)
		if err := s.orderRepo.Update(ctx, o); err != nil {
			return nil, nil, err
		}
	}
	return o, results, nil
}

func (s *labelService) issueLabel(ctx context.Context, o *domain.Order, role domain.LabelKey) (*carrier.IssuedLabel, error) {
	logger.ExternalServiceCall("carrier", "create_label", "order_id", o.ID, "role", role)
	issued, err := s.carrierClnt.CreateLabel(ctx, carrier.LabelRequest{
		OrderID:  o.ID,
		Role:     string(role),
		ToName:   o.ShippingInfo.Name,
		Address1: o.ShippingInfo.Address1,
		Address2: o.ShippingInfo.Address2,
		City:     o.ShippingInfo.City,
		State:    o.ShippingInfo.State,
		Zip:      o.ShippingInfo.Zip,
	})
	if err != nil {
		return nil, fmt.Errorf("carrier failed to issue %s label for order %s: %w", role, o.ID, err)
	}
	return issued, nil
}
