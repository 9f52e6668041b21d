package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"buyback-backend/internal/domain"
)

// MockOrderRepository is a mock implementation of repository.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Order, error) {
	args := m.Called(ctx, trackingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) List(ctx context.Context, status domain.Status, limit, offset int) ([]domain.Order, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListStale(ctx context.Context, statuses []domain.Status, cutoff time.Time, reminder domain.ReminderKind) ([]domain.Order, error) {
	args := m.Called(ctx, statuses, cutoff, reminder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListExpiredReoffers(ctx context.Context, now time.Time) ([]domain.Order, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

// MockEmailService is a mock implementation of EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendReminderEmail(ctx context.Context, email, name, orderID string, kind domain.ReminderKind) error {
	args := m.Called(ctx, email, name, orderID, kind)
	return args.Error(0)
}

func (m *MockEmailService) SendReofferProposedEmail(ctx context.Context, email, name, orderID string, newPrice int64, deadline time.Time) error {
	args := m.Called(ctx, email, name, orderID, newPrice, deadline)
	return args.Error(0)
}

func (m *MockEmailService) SendOrderCancelledEmail(ctx context.Context, email, name, orderID string) error {
	args := m.Called(ctx, email, name, orderID)
	return args.Error(0)
}

func (m *MockEmailService) SendPayoutEmail(ctx context.Context, email, name, orderID string, amount int64) error {
	args := m.Called(ctx, email, name, orderID, amount)
	return args.Error(0)
}

// MockPriceCatalog is a mock implementation of catalog.PriceCatalog
type MockPriceCatalog struct {
	mock.Mock
}

func (m *MockPriceCatalog) SuggestedPrice(ctx context.Context, device, storageSize, carrier string) (int64, error) {
	args := m.Called(ctx, device, storageSize, carrier)
	return args.Get(0).(int64), args.Error(1)
}
