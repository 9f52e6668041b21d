package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"buyback-backend/internal/domain"
)

// Full escalation on an order that never ships: seven-day, fifteen-day, then
// cancellation with the reminder state marked canceled.
func TestReminderService_EscalationThenCancel(t *testing.T) {
	o := newTestOrder(domain.StatusLabelGenerated)
	repo := new(MockOrderRepository)
	repo.On("GetByID", mock.Anything, o.ID).Return(o, nil)
	repo.On("Update", mock.Anything, o).Return(nil)
	email := new(MockEmailService)
	email.On("SendReminderEmail", mock.Anything, "jamie@example.com", "Jamie Doe", o.ID, domain.ReminderSevenDay).Return(nil)
	email.On("SendReminderEmail", mock.Anything, "jamie@example.com", "Jamie Doe", o.ID, domain.ReminderFifteenDay).Return(nil)
	email.On("SendOrderCancelledEmail", mock.Anything, "jamie@example.com", "Jamie Doe", o.ID).Return(nil)

	svc := &reminderService{orderRepo: repo, emailSvc: email, now: fixedNow}

	got, err := svc.SendReminder(context.Background(), o.ID, domain.ReminderSevenDay, "cron")
	require.NoError(t, err)
	assert.Equal(t, domain.ReminderSevenDay, got.Reminder.Status)

	got, err = svc.SendReminder(context.Background(), o.ID, domain.ReminderFifteenDay, "cron")
	require.NoError(t, err)
	assert.Equal(t, domain.ReminderFifteenDay, got.Reminder.Status)

	got, err = svc.CancelAfterReminder(context.Background(), o.ID, "cron", false)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Equal(t, domain.ReminderCanceled, got.Reminder.Status)
	email.AssertExpectations(t)
}

func TestReminderService_SendReminder_OutOfOrder(t *testing.T) {
	o := newTestOrder(domain.StatusLabelGenerated)
	repo := new(MockOrderRepository)
	repo.On("GetByID", mock.Anything, o.ID).Return(o, nil)

	svc := &reminderService{orderRepo: repo, emailSvc: new(MockEmailService), now: fixedNow}
	_, err := svc.SendReminder(context.Background(), o.ID, domain.ReminderFifteenDay, "cron")
	assert.ErrorIs(t, err, domain.ErrInvalidReminderState)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestReminderService_SendReminder_OnlyPreReceived(t *testing.T) {
	o := newTestOrder(domain.StatusReceived)
	repo := new(MockOrderRepository)
	repo.On("GetByID", mock.Anything, o.ID).Return(o, nil)

	svc := &reminderService{orderRepo: repo, emailSvc: new(MockEmailService), now: fixedNow}
	_, err := svc.SendReminder(context.Background(), o.ID, domain.ReminderSevenDay, "cron")
	assert.ErrorIs(t, err, domain.ErrInvalidReminderState)
}

func TestReminderService_CancelAfterReminder_RequiresFullEscalation(t *testing.T) {
	o := newTestOrder(domain.StatusLabelGenerated)
	o.Reminder.Status = domain.ReminderSevenDay
	repo := new(MockOrderRepository)
	repo.On("GetByID", mock.Anything, o.ID).Return(o, nil)

	svc := &reminderService{orderRepo: repo, emailSvc: new(MockEmailService), now: fixedNow}
	_, err := svc.CancelAfterReminder(context.Background(), o.ID, "admin", false)
	assert.ErrorIs(t, err, domain.ErrInvalidReminderState)
}

func TestReminderService_CancelAfterReminder_Forced(t *testing.T) {
	o := newTestOrder(domain.StatusLabelGenerated)
	repo := new(MockOrderRepository)
	repo.On("GetByID", mock.Anything, o.ID).Return(o, nil)
	repo.On("Update", mock.Anything, o).Return(nil)
	email := new(MockEmailService)
	email.On("SendOrderCancelledEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := &reminderService{orderRepo: repo, emailSvc: email, now: fixedNow}
	got, err := svc.CancelAfterReminder(context.Background(), o.ID, "admin", true)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Equal(t, domain.ReminderCanceled, got.Reminder.Status)
}

func TestReminderService_Reset(t *testing.T) {
	o := newTestOrder(domain.StatusLabelGenerated)
	o.Reminder.Status = domain.ReminderFifteenDay
	o.Reminder.LastSentAt = &testNow
	repo := new(MockOrderRepository)
	repo.On("GetByID", mock.Anything, o.ID).Return(o, nil)
	repo.On("Update", mock.Anything, o).Return(nil)

	svc := &reminderService{orderRepo: repo, emailSvc: new(MockEmailService), now: fixedNow}
	got, err := svc.Reset(context.Background(), o.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.ReminderNotSent, got.Reminder.Status)
	assert.Nil(t, got.Reminder.LastSentAt)
}
