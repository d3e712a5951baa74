package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	anthropicVersion   = "2023-06-01"
	webSearchToolType  = "web_search_20250305"
	webSearchToolName  = "web_search"
	defaultSearchTurns = 5
)

// AnthropicClient talks to the Anthropic Messages API.
// It does not retry: callers own the retry policy.
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// DefaultAnthropicConfig returns sensible defaults.
func DefaultAnthropicConfig(apiKey string) AnthropicConfig {
	return AnthropicConfig{
		APIKey:  apiKey,
		BaseURL: "https://api.anthropic.com/v1",
		Model:   "claude-sonnet-4-5",
		Timeout: 10 * time.Minute, // synthesis over large reference docs is slow
	}
}

// NewAnthropicClient creates a new Anthropic client with custom config.
// Zero fields in config fall back to DefaultAnthropicConfig.
func NewAnthropicClient(config AnthropicConfig, logger *zap.Logger) *AnthropicClient {
	defaults := DefaultAnthropicConfig(config.APIKey)
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Model == "" {
		config.Model = defaults.Model
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnthropicClient{
		apiKey:     config.APIKey,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		model:      config.Model,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

// Search sends a prompt with the server-side web search tool enabled.
func (c *AnthropicClient) Search(ctx context.Context, req SearchRequest) (*Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxUses := req.MaxUses
	if maxUses <= 0 {
		maxUses = defaultSearchTurns
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	resp, err := c.send(ctx, "Search", AnthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  []AnthropicMessage{{Role: "user", Content: req.Prompt}},
		Tools: []AnthropicTool{{
			Type:    webSearchToolType,
			Name:    webSearchToolName,
			MaxUses: maxUses,
		}},
	})
	if err != nil {
		return nil, err
	}
	return &Response{Content: resp.Content, Usage: resp.Usage}, nil
}

// CompleteWithSystem sends a prompt with a system message.
func (c *AnthropicClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.send(ctx, "CompleteWithSystem", AnthropicRequest{
		Model:     c.model,
		MaxTokens: 8192,
		System:    systemPrompt,
		Messages:  []AnthropicMessage{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return "", err
	}

	var result strings.Builder
	for _, block := range resp.Content {
		if block.Type == BlockText && block.Text != nil {
			result.WriteString(*block.Text)
		}
	}
	if result.Len() == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	return result.String(), nil
}

func (c *AnthropicClient) send(ctx context.Context, op string, reqBody AnthropicRequest) (*AnthropicResponse, error) {
	// Auto-apply timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	if c.apiKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}

	startTime := time.Now()
	c.logger.Debug("anthropic request",
		zap.String("op", op),
		zap.String("model", reqBody.Model),
		zap.Int("system_len", len(reqBody.System)),
		zap.Int("tools", len(reqBody.Tools)))

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Provider: ProviderAnthropic, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var envelope AnthropicResponse
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
			apiErr.Type = envelope.Error.Type
			apiErr.Message = envelope.Error.Message
		}
		c.logger.Warn("anthropic request failed",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("type", apiErr.Type),
			zap.Duration("elapsed", time.Since(startTime)))
		return nil, apiErr
	}

	var anthropicResp AnthropicResponse
	if err := json.Unmarshal(body, &anthropicResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if anthropicResp.Error != nil {
		return nil, &APIError{
			Provider:   ProviderAnthropic,
			StatusCode: resp.StatusCode,
			Type:       anthropicResp.Error.Type,
			Message:    anthropicResp.Error.Message,
		}
	}

	c.logger.Debug("anthropic response",
		zap.String("op", op),
		zap.Duration("elapsed", time.Since(startTime)),
		zap.Int("blocks", len(anthropicResp.Content)),
		zap.String("stop_reason", anthropicResp.StopReason),
		zap.Int("input_tokens", anthropicResp.Usage.InputTokens),
		zap.Int("output_tokens", anthropicResp.Usage.OutputTokens))

	return &anthropicResp, nil
}
