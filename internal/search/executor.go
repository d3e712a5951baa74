// Package search runs the configured web-search prompts against the LLM and turns the
// responses into tagged results with their verified sources.
package search

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"scout/internal/llm"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Options configures an Executor.
type Options struct {
	Model             string        // empty uses the client's model
	MaxRetries        int           // retries after the first attempt, rate limits only
	InitialDelay      time.Duration // first backoff delay
	BackoffMultiplier float64       // growth factor per retry
	MaxUses           int           // web search tool budget per call
	MaxTokens         int
	CallTimeout       time.Duration // per attempt; 0 disables
	Sleep             Sleeper
}

// DefaultOptions returns the standard search tuning.
func DefaultOptions() Options {
	return Options{
		MaxRetries:        3,
		InitialDelay:      5 * time.Second,
		BackoffMultiplier: 2,
		MaxUses:           5,
		MaxTokens:         4096,
		CallTimeout:       3 * time.Minute,
		Sleep:             Sleep,
	}
}

// Executor runs single prompts with retry on rate limiting.
type Executor struct {
	searcher llm.Searcher
	prompts  *PromptFile
	opts     Options
	logger   *zap.Logger
}

// NewExecutor creates an executor. Prompts supplies the shared instruction and output
// format; zero option values fall back to DefaultOptions (MaxRetries excepted, where
// zero means a single attempt).
func NewExecutor(searcher llm.Searcher, prompts *PromptFile, opts Options, logger *zap.Logger) *Executor {
	defaults := DefaultOptions()
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BackoffMultiplier <= 0 {
		opts.BackoffMultiplier = defaults.BackoffMultiplier
	}
	if opts.MaxUses <= 0 {
		opts.MaxUses = defaults.MaxUses
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaults.MaxTokens
	}
	if opts.Sleep == nil {
		opts.Sleep = defaults.Sleep
	}
	if prompts == nil {
		prompts = &PromptFile{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{searcher: searcher, prompts: prompts, opts: opts, logger: logger}
}

// Backoff returns the delay before retry number attempt (zero-based):
// initial * multiplier^attempt.
func Backoff(initial time.Duration, multiplier float64, attempt int) time.Duration {
	return time.Duration(float64(initial) * math.Pow(multiplier, float64(attempt)))
}

// Run executes one prompt. It always returns a well-formed Result; failures are
// reported through StatusFailed.
func (e *Executor) Run(ctx context.Context, p Prompt) Result {
	res := Result{ID: p.ID, Name: p.Name}
	req := llm.SearchRequest{
		Model:     e.opts.Model,
		Prompt:    e.prompts.Compose(p),
		MaxUses:   e.opts.MaxUses,
		MaxTokens: e.opts.MaxTokens,
	}

	for attempt := 0; attempt <= e.opts.MaxRetries; attempt++ {
		res.Attempts = attempt + 1

		resp, err := e.call(ctx, req)
		if err == nil {
			e.fill(&res, resp)
			e.logger.Info("prompt finished",
				zap.String("prompt", p.ID),
				zap.Stringer("status", res.Status),
				zap.Int("chars", len(res.Text)),
				zap.Int("sources", len(res.Sources)),
				zap.Int("attempts", res.Attempts))
			return res
		}

		if ctx.Err() == nil && llm.IsRateLimited(err) && attempt < e.opts.MaxRetries {
			wait := Backoff(e.opts.InitialDelay, e.opts.BackoffMultiplier, attempt)
			e.logger.Warn("rate limited, backing off",
				zap.String("prompt", p.ID),
				zap.Int("retry", attempt+1),
				zap.Int("max_retries", e.opts.MaxRetries),
				zap.Duration("wait", wait),
				zap.Error(err))
			if serr := e.opts.Sleep(ctx, wait); serr != nil {
				err = serr
			} else {
				continue
			}
		}

		e.logger.Error("prompt failed", zap.String("prompt", p.ID), zap.Int("attempts", res.Attempts), zap.Error(err))
		res.Status = StatusFailed
		res.Err = err.Error()
		return res
	}
	return res
}

func (e *Executor) call(ctx context.Context, req llm.SearchRequest) (*llm.Response, error) {
	if e.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.CallTimeout)
		defer cancel()
	}
	return e.searcher.Search(ctx, req)
}

func (e *Executor) fill(res *Result, resp *llm.Response) {
	var blocks []llm.ContentBlock
	if resp != nil {
		blocks = resp.Content
	}

	var parts []string
	for _, b := range blocks {
		if b.HasText() {
			parts = append(parts, *b.Text)
		}
	}
	res.Sources = ExtractSources(blocks)
	if len(parts) == 0 {
		res.Status = StatusEmpty
		return
	}
	res.Status = StatusFound
	res.Text = strings.Join(parts, "\n")
}
