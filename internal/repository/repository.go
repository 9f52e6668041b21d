package repository

import (
	"context"
	"time"

	"buyback-backend/internal/domain"
)

// OrderRepository persists the Order aggregate. Each Update writes the whole
// aggregate in one commit, which is the engine's atomicity unit: an operation
// either lands all of its field mutations or none of them. Concurrent
// operators are not coordinated here; last write wins, per the UI's
// re-fetch-after-write model.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// GetByTrackingNumber resolves carrier webhook payloads to an order.
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error

	// List returns orders for the admin console, newest first. An empty
	// status means all statuses.
	List(ctx context.Context, status domain.Status, limit, offset int) ([]domain.Order, error)

	// ListStale returns orders sitting in one of the given statuses whose
	// last status change predates cutoff and whose reminder state matches.
	// Drives the escalation sweeps.
	ListStale(ctx context.Context, statuses []domain.Status, cutoff time.Time, reminder domain.ReminderKind) ([]domain.Order, error)

	// ListExpiredReoffers returns orders in re-offered-pending whose
	// auto-accept deadline has passed.
	ListExpiredReoffers(ctx context.Context, now time.Time) ([]domain.Order, error)
}
