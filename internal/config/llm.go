package config

import "time"

// LLMConfig configures the search and synthesis models.
type LLMConfig struct {
	Provider    string `yaml:"provider"` // anthropic, gemini
	APIKey      string `yaml:"api_key"`
	Model       string `yaml:"model"`        // synthesis model
	SearchModel string `yaml:"search_model"` // optional, falls back to Model
	BaseURL     string `yaml:"base_url"`
	Timeout     string `yaml:"timeout"`
}

// GetSearchModel returns the model used for the search phase.
func (c *Config) GetSearchModel() string {
	if c.LLM.SearchModel != "" {
		return c.LLM.SearchModel
	}
	return c.LLM.Model
}

// GetLLMTimeout returns the HTTP client timeout for LLM calls.
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 10*time.Minute)
}
