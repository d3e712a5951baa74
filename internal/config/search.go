package config

import (
	"fmt"
	"time"
)

// SearchConfig tunes the search phase. Durations accept Go syntax ("5s") or bare
// seconds ("5").
type SearchConfig struct {
	DelayBetweenCalls string  `yaml:"delay_between_calls"` // pause between prompts
	MaxRetries        int     `yaml:"max_retries"`         // retries after the first attempt, rate limits only
	InitialDelay      string  `yaml:"initial_delay"`       // first backoff delay
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`  // growth factor per retry
	MaxUses           int     `yaml:"max_uses"`            // web search tool budget per call
	CallTimeout       string  `yaml:"call_timeout"`        // deadline for a single attempt
}

// GetDelayBetweenCalls returns the pause between consecutive prompts.
func (c *Config) GetDelayBetweenCalls() time.Duration {
	return parseDuration(c.Search.DelayBetweenCalls, 5*time.Second)
}

// GetInitialDelay returns the first backoff delay.
func (c *Config) GetInitialDelay() time.Duration {
	return parseDuration(c.Search.InitialDelay, 5*time.Second)
}

// GetCallTimeout returns the per-attempt deadline.
func (c *Config) GetCallTimeout() time.Duration {
	return parseDuration(c.Search.CallTimeout, 3*time.Minute)
}

// ValidateSearch checks that search tuning values are within acceptable ranges.
func (c *Config) ValidateSearch() error {
	if c.Search.MaxRetries < 0 {
		return fmt.Errorf("search.max_retries must be >= 0")
	}
	if c.Search.BackoffMultiplier < 1 {
		return fmt.Errorf("search.backoff_multiplier must be >= 1")
	}
	if c.Search.MaxUses < 1 {
		return fmt.Errorf("search.max_uses must be >= 1")
	}
	return nil
}
