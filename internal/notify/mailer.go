// Package notify sends appointment notifications. Delivery failures are
// reported to the caller and never change booking state.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/okingsaam/Pulse/internal/config"
)

var (
	ErrDisabled       = errors.New("mail delivery disabled")
	ErrInvalidMessage = errors.New("invalid mail message")
)

type Message struct {
	To       string
	Subject  string
	TextBody string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// SMTPMailer delivers through an SMTP relay with gomail.
type SMTPMailer struct {
	cfg config.MailConfig
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (s *SMTPMailer) Send(ctx context.Context, m Message) error {
	if !s.cfg.Enabled {
		return ErrDisabled
	}

	msg, err := buildMessage(s.cfg.From, m)
	if err != nil {
		return err
	}

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.SSL = s.cfg.UseTLS

	done := make(chan error, 1)
	go func() {
		done <- d.DialAndSend(msg)
	}()

	wait := s.cfg.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left > 0 && left < wait {
			wait = left
		}
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", m.To, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return context.DeadlineExceeded
	}
}

func buildMessage(from string, m Message) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	to := strings.TrimSpace(m.To)
	subject := strings.TrimSpace(m.Subject)

	switch {
	case from == "":
		return nil, fmt.Errorf("%w: from is required", ErrInvalidMessage)
	case to == "":
		return nil, fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	case subject == "":
		return nil, fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	case strings.TrimSpace(m.TextBody) == "":
		return nil, fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", m.TextBody)
	return msg, nil
}
