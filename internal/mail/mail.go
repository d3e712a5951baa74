// Package mail delivers the weekly report by e-mail through Resend or plain SMTP.
package mail

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"scout/internal/config"
)

// Message is a plain-text e-mail.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers a message. Send never returns an error: failures are logged and
// reported as false.
type Sender interface {
	Send(ctx context.Context, msg Message) bool
}

// deliverer is the error-returning half every transport implements.
type deliverer interface {
	Deliver(ctx context.Context, msg Message) error
	Provider() string
}

// Subject builds the report subject: "<prefix> Weekrapport <YYYY-MM-DD>".
func Subject(prefix string, date time.Time) string {
	subject := "Weekrapport " + date.Format("2006-01-02")
	if prefix == "" {
		return subject
	}
	return prefix + " " + subject
}

// NewSenderFromConfig selects the transport named by cfg.Provider ("resend" when empty).
func NewSenderFromConfig(cfg config.EmailConfig, logger *zap.Logger) (Sender, error) {
	switch cfg.Provider {
	case "resend", "":
		return NewResendSender(ResendConfig{APIKey: cfg.ResendAPIKey, BaseURL: cfg.ResendBaseURL}, logger), nil
	case "smtp":
		return NewSMTPSender(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s (valid: %v)", cfg.Provider, config.ValidEmailProviders)
	}
}

func send(ctx context.Context, d deliverer, msg Message, logger *zap.Logger) bool {
	if err := d.Deliver(ctx, msg); err != nil {
		logger.Error("sending report failed",
			zap.String("provider", d.Provider()),
			zap.String("to", msg.To),
			zap.Error(err))
		return false
	}
	logger.Info("report sent", zap.String("provider", d.Provider()), zap.String("to", msg.To))
	return true
}
