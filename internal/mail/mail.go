// Package mail delivers report notifications over SMTP.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"dirsentry/internal/report"
)

// Sender delivers one notification. The engine treats delivery as an
// external collaborator; tests substitute a recording fake.
type Sender interface {
	Send(ctx context.Context, n report.Notification) error
}

// SMTPConfig holds the delivery settings for a run.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends notifications through a single SMTP server.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp: host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp: from address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPSender{cfg: cfg}, nil
}

func (s *SMTPSender) Send(ctx context.Context, n report.Notification) error {
	if len(n.Recipients) == 0 {
		return fmt.Errorf("smtp: notification has no recipients")
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("smtp: from %q: %w", s.cfg.From, err)
	}
	if err := msg.To(n.Recipients...); err != nil {
		return fmt.Errorf("smtp: recipients %v: %w", n.Recipients, err)
	}
	msg.Subject(n.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, n.Body)
	if n.Priority == report.PriorityHigh {
		msg.SetImportance(gomail.ImportanceHigh)
	}

	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp: client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp: send to %v: %w", n.Recipients, err)
	}
	return nil
}
