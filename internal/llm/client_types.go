package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"time"
)

// Provider represents an LLM provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// Block types that carry search data. Other types (server_tool_use, thinking, ...)
// pass through untouched.
const (
	BlockText            = "text"
	BlockWebSearchResult = "web_search_tool_result"
)

// Searcher runs a single prompt against a search-capable completion endpoint.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (*Response, error)
}

// Completer is a plain system+user completion, used for report synthesis.
type Completer interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Client is implemented by every provider backend.
type Client interface {
	Searcher
	Completer
}

// SearchRequest is one search-enabled completion call.
type SearchRequest struct {
	Model     string // empty means the client's default model
	Prompt    string
	MaxUses   int // ceiling on web-search tool invocations
	MaxTokens int
}

// Response is the provider-neutral result of a search call.
type Response struct {
	Content []ContentBlock
	Usage   Usage
}

// Usage reports token counts when the provider returns them.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ContentBlock is one block of a model response. Every field except Type is optional:
// Text is nil for blocks that carry no text, and Results/Citations are nil when absent
// or null in the payload.
type ContentBlock struct {
	Type      string     `json:"type"`
	Text      *string    `json:"text,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
	Results   SearchHits `json:"content,omitempty"`
	Name      string     `json:"name,omitempty"` // tool name on server_tool_use blocks
}

// HasText reports whether the block is text-bearing.
func (b ContentBlock) HasText() bool {
	return b.Text != nil
}

// TextBlock builds a text block.
func TextBlock(text string, citations ...Citation) ContentBlock {
	return ContentBlock{Type: BlockText, Text: &text, Citations: citations}
}

// SearchResultBlock builds a web-search tool result block.
func SearchResultBlock(hits ...SearchHit) ContentBlock {
	return ContentBlock{Type: BlockWebSearchResult, Results: hits}
}

// SearchHit is one item of a web-search tool result.
type SearchHit struct {
	Type    string `json:"type,omitempty"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	PageAge string `json:"page_age,omitempty"`
}

// Citation is an inline citation attached to a text block.
type Citation struct {
	Type      string `json:"type,omitempty"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	CitedText string `json:"cited_text,omitempty"`
}

// SearchHits decodes the "content" field of a tool result block. Anthropic sends either
// a list of results or an error object ({"type":"web_search_tool_result_error",...});
// anything but a list decodes to no hits.
type SearchHits []SearchHit

// UnmarshalJSON implements json.Unmarshaler.
func (h *SearchHits) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		*h = nil
		return nil
	}
	var items []SearchHit
	if err := json.Unmarshal(trimmed, &items); err != nil {
		// Tool results for other tools may carry lists of a different shape.
		*h = nil
		return nil
	}
	*h = items
	return nil
}

// AnthropicConfig holds configuration for Anthropic client.
type AnthropicConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GeminiConfig holds configuration for Gemini client.
type GeminiConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int // Maximum tokens in synthesis responses (default 8192)
}

// AnthropicMessage represents a message in the conversation.
type AnthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnthropicTool declares a server tool such as web search.
type AnthropicTool struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	MaxUses int    `json:"max_uses,omitempty"`
}

// AnthropicRequest represents the Anthropic API request.
type AnthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []AnthropicMessage `json:"messages"`
	Tools     []AnthropicTool    `json:"tools,omitempty"`
}

// AnthropicResponse represents the API response.
type AnthropicResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []ContentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
	Error      *anthropicErr  `json:"error,omitempty"`
}

type anthropicErr struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
