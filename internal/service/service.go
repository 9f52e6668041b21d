package service

import (
	"context"
	"time"

	"buyback-backend/internal/domain"
)

// SubmitOrderInput carries the sell-flow submission.
type SubmitOrderInput struct {
	Device             string
	StorageSize        string
	Carrier            string
	EstimatedQuote     int64
	ShippingPreference domain.ShippingPreference
	ShippingInfo       domain.ShippingInfo
	PaymentMethod      string
	PaymentDetails     map[string]string
}

type OrderService interface {
	Submit(ctx context.Context, in SubmitOrderInput) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, status domain.Status, page, pageSize int) ([]domain.Order, error)

	// Transition applies the raw status machine. Sub-state consistency is
	// the caller's job; the dedicated re-offer, label and reminder
	// operations keep it for their flows.
	Transition(ctx context.Context, id string, target domain.Status, actor, note string) (*domain.Order, error)
	Cancel(ctx context.Context, id, actor, reason string) (*domain.Order, error)
	ManualFulfill(ctx context.Context, id, actor string) (*domain.Order, error)
	UpdateShippingInfo(ctx context.Context, id string, info domain.ShippingInfo) (*domain.Order, error)

	// HandleTrackingEvent maps a carrier webhook to a status transition.
	HandleTrackingEvent(ctx context.Context, trackingNumber, carrierStatus string) (*domain.Order, error)
}

type ReofferService interface {
	Propose(ctx context.Context, orderID string, newPrice int64, reasons []domain.ReofferReason, comments string, autoAcceptDate *time.Time, actor string) (*domain.Order, error)
	Accept(ctx context.Context, orderID, actor string) (*domain.Order, error)
	AutoAccept(ctx context.Context, orderID, actor string) (*domain.Order, error)
	Decline(ctx context.Context, orderID, actor string) (*domain.Order, error)
	SuggestPrice(ctx context.Context, orderID string) (int64, error)
}

type LabelService interface {
	// GenerateShippingLabel issues the outbound label(s) the shipping
	// preference calls for and moves the order to label_generated.
	GenerateShippingLabel(ctx context.Context, orderID, actor string) (*domain.Order, error)
	GenerateReturnLabel(ctx context.Context, orderID, actor string) (*domain.Order, error)
	MarkKitSent(ctx context.Context, orderID, actor string) (*domain.Order, error)
	RequestVoid(ctx context.Context, orderID string, keys []domain.LabelKey, actor string) (*domain.Order, []domain.VoidResult, error)
}

type ReminderService interface {
	SendReminder(ctx context.Context, orderID string, kind domain.ReminderKind, actor string) (*domain.Order, error)
	CancelAfterReminder(ctx context.Context, orderID, actor string, force bool) (*domain.Order, error)
	Reset(ctx context.Context, orderID, actor string) (*domain.Order, error)
}

type EmailService interface {
	SendReminderEmail(ctx context.Context, email, name, orderID string, kind domain.ReminderKind) error
	SendReofferProposedEmail(ctx context.Context, email, name, orderID string, newPrice int64, deadline time.Time) error
	SendOrderCancelledEmail(ctx context.Context, email, name, orderID string) error
	SendPayoutEmail(ctx context.Context, email, name, orderID string, amount int64) error
}
