package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"buyback-backend/internal/config"
	"buyback-backend/internal/domain"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Order, error) {
	args := m.Called(ctx, trackingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) Update(ctx context.Context, o *domain.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrderRepo) List(ctx context.Context, status domain.Status, limit, offset int) ([]domain.Order, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepo) ListStale(ctx context.Context, statuses []domain.Status, cutoff time.Time, reminder domain.ReminderKind) ([]domain.Order, error) {
	args := m.Called(ctx, statuses, cutoff, reminder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepo) ListExpiredReoffers(ctx context.Context, now time.Time) ([]domain.Order, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

type mockReminderService struct {
	mock.Mock
}

func (m *mockReminderService) SendReminder(ctx context.Context, orderID string, kind domain.ReminderKind, actor string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, kind, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockReminderService) CancelAfterReminder(ctx context.Context, orderID, actor string, force bool) (*domain.Order, error) {
	args := m.Called(ctx, orderID, actor, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockReminderService) Reset(ctx context.Context, orderID, actor string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

type mockReofferService struct {
	mock.Mock
}

func (m *mockReofferService) Propose(ctx context.Context, orderID string, newPrice int64, reasons []domain.ReofferReason, comments string, autoAcceptDate *time.Time, actor string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, newPrice, reasons, comments, autoAcceptDate, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockReofferService) Accept(ctx context.Context, orderID, actor string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockReofferService) AutoAccept(ctx context.Context, orderID, actor string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockReofferService) Decline(ctx context.Context, orderID, actor string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockReofferService) SuggestPrice(ctx context.Context, orderID string) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		Lifecycle: config.LifecycleConfig{
			SevenDayReminderAfterDays:   7,
			FifteenDayReminderAfterDays: 15,
			CancelAfterDays:             21,
			AutoAcceptDays:              7,
		},
	}
}

func staleOrder(status domain.Status, reminder domain.ReminderKind) domain.Order {
	o := domain.NewOrder("iPhone 13", "128GB", "Verizon", 450,
		domain.ShippingPreferenceEmailLabel,
		domain.ShippingInfo{Name: "Jamie Doe", Email: "jamie@example.com"},
		"paypal", nil, time.Now().UTC().AddDate(0, 0, -30))
	o.Status = status
	o.Reminder.Status = reminder
	return *o
}

func TestSendSevenDayReminders(t *testing.T) {
	o := staleOrder(domain.StatusLabelGenerated, domain.ReminderNotSent)
	repo := new(mockOrderRepo)
	repo.On("ListStale", mock.Anything, awaitingShipmentStatuses, mock.Anything, domain.ReminderNotSent).
		Return([]domain.Order{o}, nil)
	reminder := new(mockReminderService)
	reminder.On("SendReminder", mock.Anything, o.ID, domain.ReminderSevenDay, "cron").Return(&o, nil)

	jr := NewJobRunner(repo, &Services{Reminder: reminder, Reoffer: new(mockReofferService)}, testConfig())
	jr.SendSevenDayReminders()

	repo.AssertExpectations(t)
	reminder.AssertExpectations(t)
}

// An order whose reminder state moved on between the query and the send is
// skipped without aborting the sweep.
func TestSendFifteenDayReminders_SkipsMovedOn(t *testing.T) {
	first := staleOrder(domain.StatusLabelGenerated, domain.ReminderSevenDay)
	second := staleOrder(domain.StatusEmailed, domain.ReminderSevenDay)
	repo := new(mockOrderRepo)
	repo.On("ListStale", mock.Anything, awaitingShipmentStatuses, mock.Anything, domain.ReminderSevenDay).
		Return([]domain.Order{first, second}, nil)
	reminder := new(mockReminderService)
	reminder.On("SendReminder", mock.Anything, first.ID, domain.ReminderFifteenDay, "cron").
		Return(nil, domain.ErrInvalidReminderState)
	reminder.On("SendReminder", mock.Anything, second.ID, domain.ReminderFifteenDay, "cron").
		Return(&second, nil)

	jr := NewJobRunner(repo, &Services{Reminder: reminder, Reoffer: new(mockReofferService)}, testConfig())
	jr.SendFifteenDayReminders()

	reminder.AssertExpectations(t)
}

func TestCancelStaleOrders(t *testing.T) {
	o := staleOrder(domain.StatusLabelGenerated, domain.ReminderFifteenDay)
	repo := new(mockOrderRepo)
	repo.On("ListStale", mock.Anything, awaitingShipmentStatuses, mock.Anything, domain.ReminderFifteenDay).
		Return([]domain.Order{o}, nil)
	reminder := new(mockReminderService)
	reminder.On("CancelAfterReminder", mock.Anything, o.ID, "cron", false).Return(&o, nil)

	jr := NewJobRunner(repo, &Services{Reminder: reminder, Reoffer: new(mockReofferService)}, testConfig())
	jr.CancelStaleOrders()

	reminder.AssertExpectations(t)
}

func TestAutoAcceptReoffers(t *testing.T) {
	expired := staleOrder(domain.StatusReofferPending, domain.ReminderNotSent)
	reOffer, err := domain.NewReOffer(400, []domain.ReofferReason{domain.ReasonScreenDamage}, "", nil,
		domain.DefaultAutoAcceptWindow, time.Now().UTC().AddDate(0, 0, -10))
	assert.NoError(t, err)
	expired.ReOffer = reOffer

	repo := new(mockOrderRepo)
	repo.On("ListExpiredReoffers", mock.Anything, mock.Anything).Return([]domain.Order{expired}, nil)
	reoffer := new(mockReofferService)
	reoffer.On("AutoAccept", mock.Anything, expired.ID, "system").Return(&expired, nil)

	jr := NewJobRunner(repo, &Services{Reminder: new(mockReminderService), Reoffer: reoffer}, testConfig())
	jr.AutoAcceptReoffers()

	reoffer.AssertExpectations(t)
}

// A sweep must not auto-accept a re-offer that is not actually past its
// deadline, whatever the query returned.
func TestAutoAcceptReoffers_NotYetExpired(t *testing.T) {
	fresh := staleOrder(domain.StatusReofferPending, domain.ReminderNotSent)
	reOffer, err := domain.NewReOffer(400, []domain.ReofferReason{domain.ReasonScreenDamage}, "", nil,
		domain.DefaultAutoAcceptWindow, time.Now().UTC())
	assert.NoError(t, err)
	fresh.ReOffer = reOffer

	repo := new(mockOrderRepo)
	repo.On("ListExpiredReoffers", mock.Anything, mock.Anything).Return([]domain.Order{fresh}, nil)
	reoffer := new(mockReofferService)

	jr := NewJobRunner(repo, &Services{Reminder: new(mockReminderService), Reoffer: reoffer}, testConfig())
	jr.AutoAcceptReoffers()

	reoffer.AssertNotCalled(t, "AutoAccept", mock.Anything, mock.Anything, mock.Anything)
}
