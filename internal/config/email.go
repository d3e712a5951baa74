package config

import (
	"fmt"
	"strings"
)

// EmailConfig configures report delivery.
type EmailConfig struct {
	Provider      string `yaml:"provider"` // resend, smtp
	FromAddress   string `yaml:"from_address"`
	ToAddress     string `yaml:"to_address"`
	SubjectPrefix string `yaml:"subject_prefix"`

	// Resend
	ResendAPIKey  string `yaml:"resend_api_key"`
	ResendBaseURL string `yaml:"resend_base_url"`

	// SMTP (STARTTLS + login)
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
}

// ValidEmailProviders lists the supported delivery transports.
var ValidEmailProviders = []string{"resend", "smtp"}

// ValidateEmail checks the delivery settings for the selected provider.
func (c *Config) ValidateEmail() error {
	e := c.Email
	if strings.TrimSpace(e.FromAddress) == "" || strings.TrimSpace(e.ToAddress) == "" {
		return fmt.Errorf("email.from_address and email.to_address are required")
	}
	switch e.Provider {
	case "resend", "":
		if e.ResendAPIKey == "" {
			return fmt.Errorf("email.resend_api_key not configured (or set RESEND_API_KEY)")
		}
	case "smtp":
		if e.SMTPHost == "" {
			return fmt.Errorf("email.smtp_host is required for the smtp provider")
		}
		if e.SMTPPort <= 0 {
			return fmt.Errorf("email.smtp_port must be > 0")
		}
	default:
		return fmt.Errorf("invalid email provider: %s (valid: %v)", e.Provider, ValidEmailProviders)
	}
	return nil
}
