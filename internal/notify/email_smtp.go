package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/wolfman30/therapy-booking/pkg/logging"
)

// SMTPDialer is satisfied by *gomail.Dialer.
type SMTPDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPConfig holds relay settings for SMTPSender.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	dialer    SMTPDialer
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// NewSMTPSender returns nil when no host is configured.
func NewSMTPSender(cfg SMTPConfig, logger *logging.Logger) *SMTPSender {
	if cfg.Host == "" {
		return nil
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	return newSMTPSenderWithDialer(gomail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password), cfg, logger)
}

func newSMTPSenderWithDialer(d SMTPDialer, cfg SMTPConfig, logger *logging.Logger) *SMTPSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = DefaultFromName
	}
	return &SMTPSender{dialer: d, fromEmail: cfg.FromEmail, fromName: cfg.FromName, logger: logger}
}

// Send composes msg with its attachments and hands it to the relay.
// gomail has no context support, so ctx is only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.dialer == nil {
		return fmt.Errorf("notify: SMTP relay not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(composeMIME(s.fromEmail, s.fromName, msg)); err != nil {
		s.logger.Error("SMTP send failed", "error", err, "to", msg.To)
		return fmt.Errorf("notify: SMTP send failed: %w", err)
	}
	s.logger.Info("email sent via SMTP", "to", msg.To, "subject", msg.Subject, "attachments", len(msg.Attachments))
	return nil
}

var _ EmailSender = (*SMTPSender)(nil)
