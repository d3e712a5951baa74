package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClient implements Client on the Gemini API with Google Search grounding.
type GeminiClient struct {
	client          *genai.Client
	model           string
	maxOutputTokens int
	timeout         time.Duration
	logger          *zap.Logger
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:          apiKey,
		Model:           "gemini-2.5-flash",
		Timeout:         10 * time.Minute,
		MaxOutputTokens: 8192,
	}
}

// NewGeminiClient creates a Gemini client. BaseURL is only needed for proxies.
func NewGeminiClient(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	defaults := DefaultGeminiConfig(config.APIKey)
	if config.Model == "" {
		config.Model = defaults.Model
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxOutputTokens <= 0 {
		config.MaxOutputTokens = defaults.MaxOutputTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		client:          client,
		model:           config.Model,
		maxOutputTokens: config.MaxOutputTokens,
		timeout:         config.Timeout,
		logger:          logger,
	}, nil
}

// Search runs the prompt with Google Search grounding. Gemini has no per-call cap on
// search invocations, so req.MaxUses is not forwarded.
func (c *GeminiClient) Search(ctx context.Context, req SearchRequest) (*Response, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	model := req.Model
	if model == "" {
		model = c.model
	}
	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	startTime := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		c.logger.Warn("gemini search failed", zap.String("model", model), zap.Error(err))
		return nil, err
	}

	out := &Response{Content: BlocksFromGemini(resp)}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	c.logger.Debug("gemini search completed",
		zap.String("model", model),
		zap.Duration("elapsed", time.Since(startTime)),
		zap.Int("blocks", len(out.Content)))
	return out, nil
}

// CompleteWithSystem sends a prompt with a system instruction and no tools.
func (c *GeminiClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(c.maxOutputTokens),
	}
	if strings.TrimSpace(systemPrompt) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), cfg)
	if err != nil {
		return "", err
	}
	var text strings.Builder
	for _, block := range BlocksFromGemini(resp) {
		if block.HasText() {
			text.WriteString(*block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	return text.String(), nil
}

func (c *GeminiClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// BlocksFromGemini maps the first candidate onto content blocks: non-thought text parts
// become one text block, grounding chunks become one web search result block.
func BlocksFromGemini(resp *genai.GenerateContentResponse) []ContentBlock {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	cand := resp.Candidates[0]

	var blocks []ContentBlock
	if cand.Content != nil {
		var parts []string
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought || part.Text == "" {
				continue
			}
			parts = append(parts, part.Text)
		}
		if len(parts) > 0 {
			blocks = append(blocks, TextBlock(strings.Join(parts, "")))
		}
	}

	if gm := cand.GroundingMetadata; gm != nil {
		var hits []SearchHit
		for _, chunk := range gm.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			hits = append(hits, SearchHit{URL: chunk.Web.URI, Title: chunk.Web.Title})
		}
		if len(hits) > 0 {
			blocks = append(blocks, SearchResultBlock(hits...))
		}
	}
	return blocks
}
