package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/showrunner/notification-api/config"
)

// Service sends best-effort email copies of in-app notifications. Failures
// are reported to the caller for logging only; nothing retries.
type Service interface {
	SendNotificationCopy(ctx context.Context, to, title, message string) error
}

type service struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg config.SMTPConfig) Service {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *service) SendNotificationCopy(ctx context.Context, to, title, message string) error {
	if to == "" {
		return fmt.Errorf("recipient has no email address")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", title)
	m.SetBody("text/plain", message)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email copy: %w", err)
		}
		return nil
	}
}
