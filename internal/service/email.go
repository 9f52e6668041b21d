package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"buyback-backend/internal/domain"
	"buyback-backend/internal/logger"
)

type sendgridEmailService struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
}

// NewSendGridEmailService builds the transactional email sender. All sends
// are best effort; callers log failures and move on.
func NewSendGridEmailService(apiKey, fromName, fromEmail string) EmailService {
	return &sendgridEmailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *sendgridEmailService) SendReminderEmail(ctx context.Context, email, name, orderID string, kind domain.ReminderKind) error {
	var subject, body string
	switch kind {
	case domain.ReminderSevenDay:
		subject = "Reminder: send us your device"
		body = fmt.Sprintf("Hi %s,\n\nYour buyback order %s is still waiting for your device. "+
			"Please ship it using the label we sent you. If you need a new label, just reply to this email.\n", name, orderID)
	case domain.ReminderFifteenDay:
		subject = "Final reminder: your buyback order will be cancelled soon"
		body = fmt.Sprintf("Hi %s,\n\nWe still have not received the device for order %s. "+
			"If we do not receive it within the next few days the order will be cancelled and your quote released.\n", name, orderID)
	default:
		return fmt.Errorf("%w: no email template for reminder kind %q", domain.ErrValidation, kind)
	}
	return s.send(ctx, email, name, subject, body)
}

func (s *sendgridEmailService) SendReofferProposedEmail(ctx context.Context, email, name, orderID string, newPrice int64, deadline time.Time) error {
	subject := "Updated offer for your device"
	body := fmt.Sprintf("Hi %s,\n\nAfter inspecting your device we have updated the offer for order %s to $%d. "+
		"You can accept or decline from your order page. If we do not hear from you by %s the new offer is accepted automatically.\n",
		name, orderID, newPrice, deadline.Format("January 2, 2006"))
	return s.send(ctx, email, name, subject, body)
}

func (s *sendgridEmailService) SendOrderCancelledEmail(ctx context.Context, email, name, orderID string) error {
	subject := "Your buyback order has been cancelled"
	body := fmt.Sprintf("Hi %s,\n\nYour buyback order %s has been cancelled. "+
		"If this was a mistake or you still want to sell your device, start a new order any time.\n", name, orderID)
	return s.send(ctx, email, name, subject, body)
}

func (s *sendgridEmailService) SendPayoutEmail(ctx context.Context, email, name, orderID string, amount int64) error {
	subject := "Your payout is on its way"
	body := fmt.Sprintf("Hi %s,\n\nGood news: order %s is complete and your payout of $%d has been issued. "+
		"Thanks for selling with us.\n", name, orderID, amount)
	return s.send(ctx, email, name, subject, body)
}

func (s *sendgridEmailService) send(ctx context.Context, toEmail, toName, subject, body string) error {
	if toEmail == "" {
		return fmt.Errorf("%w: recipient email is empty", domain.ErrValidation)
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	logger.ExternalServiceCall("sendgrid", "send", "subject", subject)
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "send", err)
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
		logger.ExternalServiceResult("sendgrid", "send", err)
		return err
	}
	logger.ExternalServiceResult("sendgrid", "send", nil, "status_code", resp.StatusCode)
	return nil
}
