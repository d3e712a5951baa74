package llm

import (
	"context"
	"fmt"

	"scout/internal/config"

	"go.uber.org/zap"
)

// NewClientFromConfig creates the provider client named by cfg.LLM.Provider.
func NewClientFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Client, error) {
	switch Provider(cfg.LLM.Provider) {
	case ProviderAnthropic, "":
		return NewAnthropicClient(AnthropicConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.GetLLMTimeout(),
		}, logger), nil

	case ProviderGemini:
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.GetLLMTimeout(),
		}, logger)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (valid: %v)", cfg.LLM.Provider, config.ValidProviders)
	}
}
