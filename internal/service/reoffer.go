package service

import (
	"context"
	"fmt"
	"time"

	"buyback-backend/internal/catalog"
	"buyback-backend/internal/domain"
	"buyback-backend/internal/logger"
	"buyback-backend/internal/repository"
)

type reofferService struct {
	orderRepo  repository.OrderRepository
	emailSvc   EmailService
	priceCat   catalog.PriceCatalog
	autoAccept time.Duration
	now        func() time.Time
}

// NewReofferService builds the negotiator. autoAcceptWindow is the default
// deadline applied when the proposer does not supply an explicit date.
func NewReofferService(orderRepo repository.OrderRepository, emailSvc EmailService, priceCat catalog.PriceCatalog, autoAcceptWindow time.Duration) ReofferService {
	if autoAcceptWindow <= 0 {
		autoAcceptWindow = domain.DefaultAutoAcceptWindow
	}
	return &reofferService{
		orderRepo:  orderRepo,
		emailSvc:   emailSvc,
		priceCat:   priceCat,
		autoAccept: autoAcceptWindow,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Propose attaches a re-offer and moves the order to re-offered-pending in
// one persisted write: the status and the re-offer land together or not at all.
func (s *reofferService) Propose(ctx context.Context, orderID string, newPrice int64, reasons []domain.ReofferReason, comments string, autoAcceptDate *time.Time, actor string) (*domain.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.ReOffer != nil {
		return nil, fmt.Errorf("%w: order %s already has a pending re-offer", domain.ErrConflict, o.ID)
	}

	now := s.now()
	reOffer, err := domain.NewReOffer(newPrice, reasons, comments, autoAcceptDate, s.autoAccept, now)
	if err != nil {
		return nil, err
	}

	o.ReOffer = reOffer
	if err := o.Transition(domain.StatusReofferPending, actor, "re-offer proposed", now); err != nil {
		o.ReOffer = nil
		return nil, err
	}
	o.AppendActivity(fmt.Sprintf("re-offer proposed at %d", newPrice), actor, now)
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	logger.Info("Re-offer proposed", "order_id", o.ID, "new_price", newPrice, "auto_accept_date", reOffer.AutoAcceptDate)

	if err := s.emailSvc.SendReofferProposedEmail(ctx, o.ShippingInfo.Email, o.ShippingInfo.Name, o.ID, newPrice, reOffer.AutoAcceptDate); err != nil {
		logger.Warn("Failed to send re-offer email", "order_id", o.ID, "error", err)
	}
	return o, nil
}

func (s *reofferService) Accept(ctx context.Context, orderID, actor string) (*domain.Order, error) {
	return s.resolve(ctx, orderID, actor, domain.StatusReofferAccepted)
}

func (s *reofferService) AutoAccept(ctx context.Context, orderID, actor string) (*domain.Order, error) {
	return s.resolve(ctx, orderID, actor, domain.StatusReofferAutoAccepted)
}

func (s *reofferService) Decline(ctx context.Context, orderID, actor string) (*domain.Order, error) {
	return s.resolve(ctx, orderID, actor, domain.StatusReofferDeclined)
}

// resolve closes the negotiation: exactly one of accepted, auto-accepted or
// declined. The re-offer is cleared in the same write; acceptance stamps the
// final quote, a decline forfeits the review prompt.
func (s *reofferService) resolve(ctx context.Context, orderID, actor string, target domain.Status) (*domain.Order, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.ReOffer == nil || o.Status != domain.StatusReofferPending {
		return nil, fmt.Errorf("%w: order %s has no pending re-offer", domain.ErrConflict, orderID)
	}

	now := s.now()
	newPrice := o.ReOffer.NewPrice
	if err := o.Transition(target, actor, "", now); err != nil {
		return nil, err
	}

	switch target {
	case domain.StatusReofferAccepted, domain.StatusReofferAutoAccepted:
		o.FinalQuote = newPrice
		o.AppendActivity(fmt.Sprintf("re-offer accepted at %d", newPrice), actor, now)
	case domain.StatusReofferDeclined:
		o.ReviewPromptEligible = false
		o.AppendActivity("re-offer declined, device will be returned", actor, now)
	}
	o.ReOffer = nil

	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	logger.Info("Re-offer resolved", "order_id", o.ID, "status", o.Status)
	return o, nil
}

// SuggestPrice pre-fills the re-offer form from the price catalog. Purely
// advisory; a catalog miss is reported, not invented.
func (s *reofferService) SuggestPrice(ctx context.Context, orderID string) (int64, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return 0, err
	}
	return s.priceCat.SuggestedPrice(ctx, o.Device, o.StorageSize, o.Carrier)
}
