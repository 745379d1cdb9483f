package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/oudaybenrhouma/ghalinino-api/internal/config"
)

// SendGridMailer sends transactional email through SendGrid
type SendGridMailer struct {
	apiKey   string
	fromName string
	fromAddr string
}

// NewSendGridMailer creates a SendGrid mailer from config
func NewSendGridMailer(cfg config.MailConfig) *SendGridMailer {
	return &SendGridMailer{
		apiKey:   cfg.SendGridKey,
		fromName: cfg.FromName,
		fromAddr: cfg.FromAddress,
	}
}

// Send sends an email using SendGrid
func (m *SendGridMailer) Send(_ context.Context, to, subject, body string) error {
	if m.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}

	fromEmail := mail.NewEmail(m.fromName, m.fromAddr)
	toEmail := mail.NewEmail("", to)
	message := mail.NewSingleEmail(fromEmail, subject, toEmail, body,
		fmt.Sprintf("<pre>%s</pre>", body))

	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s",
			response.StatusCode, response.Body)
	}

	return nil
}
