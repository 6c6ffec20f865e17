// Package mail sends transactional email: password resets and daily digests.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is a single outgoing email
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridMailer delivers through the SendGrid v3 API
type SendGridMailer struct {
	client   *sendgrid.Client
	fromAddr string
	fromName string
}

// NewSendGridMailer creates a mailer for apiKey sending as fromName <fromAddr>
func NewSendGridMailer(apiKey, fromAddr, fromName string) *SendGridMailer {
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		fromAddr: fromAddr,
		fromName: fromName,
	}
}

// Send delivers msg. SendGrid answers 202 on success.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	from := sgmail.NewEmail(m.fromName, m.fromAddr)
	to := sgmail.NewEmail(msg.ToName, msg.To)
	email := sgmail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status=%d body=%s", resp.StatusCode, resp.Body)
	}

	slog.Info("email sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// LogMailer writes messages to the log instead of sending them. Used when no
// SendGrid key is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	slog.Info("email not sent (mail disabled)",
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}

// ResetLink builds the frontend URL that completes a password reset
func ResetLink(frontendURL, token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", frontendURL, url.QueryEscape(token))
}

// PasswordReset renders the reset email for one recipient
func PasswordReset(to, name, link string) Message {
	return Message{
		To:      to,
		ToName:  name,
		Subject: "Reset your Learning Tracker password",
		Text: fmt.Sprintf("We received a request to reset your password.\n\nOpen this link to choose a new one:\n%s\n\n"+
			"If you did not ask for this, ignore this email.", link),
		HTML: fmt.Sprintf(`<p>We received a request to reset your password.</p>`+
			`<p><a href="%s">Choose a new password</a></p>`+
			`<p>If you did not ask for this, ignore this email.</p>`, link),
	}
}
