package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/logger"
	"buyback-backend/internal/repository"
)

type orderRepository struct {
	client *firestore.Client
}

func NewOrderRepository(client *firestore.Client) repository.OrderRepository {
	return &orderRepository{client: client}
}

func (r *orderRepository) orders() *firestore.CollectionRef {
	return r.client.Collection(ordersCollection)
}

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	logger.DatabaseCall("create", ordersCollection, "order_id", o.ID)
	_, err := r.orders().Doc(o.ID).Create(ctx, o)
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("%w: order %s already exists", domain.ErrConflict, o.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to create order %s: %w", o.ID, err)
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	snap, err := r.orders().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", id, err)
	}
	var o domain.Order
	if err := snap.DataTo(&o); err != nil {
		return nil, fmt.Errorf("failed to decode order %s: %w", id, err)
	}
	return &o, nil
}

func (r *orderRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Order, error) {
	iter := r.orders().
		Where("trackingNumbers", "array-contains", trackingNumber).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("%w: no order with tracking number %s", domain.ErrNotFound, trackingNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tracking number %s: %w", trackingNumber, err)
	}
	var o domain.Order
	if err := snap.DataTo(&o); err != nil {
		return nil, fmt.Errorf("failed to decode order %s: %w", snap.Ref.ID, err)
	}
	return &o, nil
}

// Update writes the whole aggregate in a single Set. One document write per
// logical operation is what makes the engine's mutations atomic.
func (r *orderRepository) Update(ctx context.Context, o *domain.Order) error {
	logger.DatabaseCall("update", ordersCollection, "order_id", o.ID, "status", o.Status)
	_, err := r.orders().Doc(o.ID).Set(ctx, o)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", o.ID, err)
	}
	return nil
}

func (r *orderRepository) List(ctx context.Context, st domain.Status, limit, offset int) ([]domain.Order, error) {
	q := r.orders().Query
	if st != "" {
		q = q.Where("status", "==", string(st))
	}
	q = q.OrderBy("createdAt", firestore.Desc).Offset(offset).Limit(limit)
	return collect(q.Documents(ctx))
}

func (r *orderRepository) ListStale(ctx context.Context, statuses []domain.Status, cutoff time.Time, reminder domain.ReminderKind) ([]domain.Order, error) {
	in := make([]string, 0, len(statuses))
	for _, s := range statuses {
		in = append(in, string(s))
	}
	q := r.orders().
		Where("status", "in", in).
		Where("reminder.status", "==", string(reminder)).
		Where("lastStatusUpdateAt", "<", cutoff)
	return collect(q.Documents(ctx))
}

func (r *orderRepository) ListExpiredReoffers(ctx context.Context, now time.Time) ([]domain.Order, error) {
	q := r.orders().
		Where("status", "==", string(domain.StatusReofferPending)).
		Where("reOffer.autoAcceptDate", "<=", now)
	return collect(q.Documents(ctx))
}

func collect(iter *firestore.DocumentIterator) ([]domain.Order, error) {
	defer iter.Stop()
	var orders []domain.Order
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			return orders, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate orders: %w", err)
		}
		var o domain.Order
		if err := snap.DataTo(&o); err != nil {
			// A malformed legacy document should not take down a sweep.
			logger.Warn("Skipping undecodable order document", "doc", snap.Ref.ID, "error", err)
			continue
		}
		orders = append(orders, o)
	}
}
