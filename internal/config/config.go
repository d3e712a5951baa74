package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned by Load when the config file does not exist.
var ErrConfigNotFound = errors.New("config not found")

// Config holds all scout configuration.
type Config struct {
	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Search phase tuning
	Search SearchConfig `yaml:"search"`

	// Input and output locations
	Paths PathsConfig `yaml:"paths"`

	// Report delivery
	Email EmailConfig `yaml:"email"`

	// Report post-processing
	Report ReportConfig `yaml:"report"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig locates the run's input files and output directories.
type PathsConfig struct {
	Prompts         string `yaml:"prompts"`
	SystemDesign    string `yaml:"system_design"`
	CurrentSetup    string `yaml:"current_setup"`
	SourceWeights   string `yaml:"source_weights"`
	ReportsDir      string `yaml:"reports_dir"`
	PublicationsDir string `yaml:"publications_dir"` // optional second copy
}

// ReportConfig configures report post-processing.
type ReportConfig struct {
	// FlagUnverifiedURLs appends a section listing report URLs that did not appear
	// in any verified source block.
	FlagUnverifiedURLs bool `yaml:"flag_unverified_urls"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "anthropic",
			Model:    "claude-sonnet-4-5",
			Timeout:  "10m",
		},

		Search: SearchConfig{
			DelayBetweenCalls: "5s",
			MaxRetries:        3,
			InitialDelay:      "5s",
			BackoffMultiplier: 2,
			MaxUses:           5,
			CallTimeout:       "3m",
		},

		Paths: PathsConfig{
			Prompts:       "prompts.yaml",
			SystemDesign:  "docs/system-design.md",
			CurrentSetup:  "docs/current-setup.md",
			SourceWeights: "sources.yaml",
			ReportsDir:    "reports",
		},

		Email: EmailConfig{
			Provider:      "resend",
			SubjectPrefix: "[Scout]",
			SMTPPort:      587,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "scout.log",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (copy config.example.yaml to config.yaml and fill in your details)", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides. Secrets set in the
// environment win over the file so config.yaml can be committed without them.
func (c *Config) applyEnvOverrides() {
	switch c.LLM.Provider {
	case "anthropic", "":
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			c.LLM.APIKey = key
		}
	case "gemini":
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			c.LLM.APIKey = key
		}
	}

	if key := os.Getenv("RESEND_API_KEY"); key != "" {
		c.Email.ResendAPIKey = key
	}
	if pw := os.Getenv("SCOUT_SMTP_PASSWORD"); pw != "" {
		c.Email.SMTPPassword = pw
	}
}

// ValidProviders lists all supported LLM providers.
var ValidProviders = []string{"anthropic", "gemini"}

// Validate validates everything a run needs except email, which is checked by
// ValidateEmail so runs without delivery can skip it.
func (c *Config) Validate() error {
	validProvider := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}

	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set llm.api_key, ANTHROPIC_API_KEY or GEMINI_API_KEY)")
	}

	required := []struct{ key, value string }{
		{"paths.prompts", c.Paths.Prompts},
		{"paths.system_design", c.Paths.SystemDesign},
		{"paths.current_setup", c.Paths.CurrentSetup},
		{"paths.source_weights", c.Paths.SourceWeights},
		{"paths.reports_dir", c.Paths.ReportsDir},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}

	return c.ValidateSearch()
}

// parseDuration accepts Go duration strings ("90s", "2m") and bare numbers, which are
// read as seconds.
func parseDuration(s string, fallback time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if secs < 0 {
			return fallback
		}
		return time.Duration(secs * float64(time.Second))
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
