package utils

import (
	"fmt"
	"html"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"ewaste-pickup/models"
)

// EmailService sends transactional mail through SendGrid.
type EmailService struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewEmailService returns nil when apiKey is empty; a nil *EmailService
// silently drops every message.
func NewEmailService(apiKey, sender string) *EmailService {
	if apiKey == "" || sender == "" {
		return nil
	}
	return &EmailService{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("E-Waste Pickup", sender),
	}
}

// SendEmail sends one message to toEmail.
func (es *EmailService) SendEmail(toName, toEmail, subject, htmlContent string) error {
	if es == nil {
		return nil
	}
	message := mail.NewSingleEmail(es.from, subject, mail.NewEmail(toName, toEmail), htmlContent, htmlContent)
	resp, err := es.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("failed to send email: sendgrid status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcomeEmail greets a newly registered user.
func (es *EmailService) SendWelcomeEmail(user *models.User) error {
	if es == nil || user == nil {
		return nil
	}
	content := fmt.Sprintf(
		"<strong>Welcome, %s!</strong><br><br>Your account is ready. You can now schedule e-waste pickups from your dashboard.",
		html.EscapeString(user.FullName),
	)
	return es.SendEmail(user.FullName, user.Email, "Welcome to E-Waste Pickup", content)
}

// SendOrderConfirmationEmail confirms a newly placed pickup.
func (es *EmailService) SendOrderConfirmationEmail(user *models.User, order models.Order) error {
	if es == nil || user == nil {
		return nil
	}
	content := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your pickup (ID: %s) has been scheduled for <strong>%s</strong>.<br><br>Waste type: <strong>%s</strong><br>Quantity: <strong>%g %s</strong><br>Address: %s, %s",
		html.EscapeString(user.FullName),
		order.OrderID,
		order.ScheduledDate.Format("2006-01-02"),
		html.EscapeString(order.WasteType),
		order.Quantity,
		html.EscapeString(order.Unit),
		html.EscapeString(order.Address),
		html.EscapeString(order.City),
	)
	return es.SendEmail(user.FullName, user.Email, "Pickup Confirmation", content)
}

// SendOrderCancelledEmail tells the user a pickup was cancelled.
func (es *EmailService) SendOrderCancelledEmail(user *models.User, order models.Order) error {
	if es == nil || user == nil {
		return nil
	}
	content := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your pickup (ID: %s) scheduled for %s has been cancelled.",
		html.EscapeString(user.FullName),
		order.OrderID,
		order.ScheduledDate.Format("2006-01-02"),
	)
	return es.SendEmail(user.FullName, user.Email, "Pickup Cancelled", content)
}
