package mail

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendConfig configures the Resend transport.
type ResendConfig struct {
	APIKey  string
	BaseURL string // default https://api.resend.com
	Timeout time.Duration
}

// ResendSender posts messages to the Resend e-mail API.
type ResendSender struct {
	apiKey     string
	client     *resend.Client
	httpClient *http.Client
	logger     *zap.Logger
}

// NewResendSender creates a Resend transport. An unparsable BaseURL keeps the SDK default.
func NewResendSender(cfg ResendConfig, logger *zap.Logger) *ResendSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	client := resend.NewCustomClient(httpClient, cfg.APIKey)
	if cfg.BaseURL != "" {
		if u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/"); err == nil {
			client.BaseURL = u
		} else {
			logger.Warn("invalid resend base URL, using default", zap.String("base_url", cfg.BaseURL), zap.Error(err))
		}
	}

	return &ResendSender{
		apiKey:     cfg.APIKey,
		client:     client,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Provider implements deliverer.
func (s *ResendSender) Provider() string { return "resend" }

// Send implements Sender.
func (s *ResendSender) Send(ctx context.Context, msg Message) bool {
	return send(ctx, s, msg, s.logger)
}

// Deliver posts msg and returns the API error, if any.
func (s *ResendSender) Deliver(ctx context.Context, msg Message) error {
	if s.apiKey == "" {
		return fmt.Errorf("resend API key not configured")
	}

	resp, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Body,
	})
	if err != nil {
		return fmt.Errorf("resend API: %w", err)
	}

	s.logger.Debug("resend accepted message", zap.String("id", resp.Id))
	return nil
}
