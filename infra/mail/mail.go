// Package mail renders and delivers payment confirmation emails.
package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/mstgnz/eventpay/infra/config"
	"github.com/mstgnz/eventpay/infra/logger"
	"gopkg.in/gomail.v2"
)

// Message is a multipart email with a plain-text fallback
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a message
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var ErrNoRecipient = errors.New("mail: recipient is required")

// SMTPMailer sends mail through an SMTP relay
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	if from == "" {
		from = user
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

// Send builds the MIME message and delivers it. gomail has no context
// support, so ctx only bounds how long the caller waits.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(gm)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("mail: send to %s: %w", msg.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mail: send to %s: %w", msg.To, ctx.Err())
	}
}

// LogMailer writes messages to the log instead of sending them. Used
// when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	logger.Info("Email not sent, SMTP is not configured", logger.LogContext{
		Fields: map[string]any{"to": msg.To, "subject": msg.Subject},
	})
	return nil
}

// FromConfig returns an SMTP mailer, or a LogMailer when SMTP_HOST is empty
func FromConfig(cfg *config.AppConfig) Mailer {
	if cfg.SMTPHost == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
}
