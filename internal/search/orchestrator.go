package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Runner executes a single prompt.
type Runner interface {
	Run(ctx context.Context, p Prompt) Result
}

// Orchestrator runs prompts one after another with a fixed pause between them.
// Prompts never run concurrently.
type Orchestrator struct {
	runner Runner
	delay  time.Duration
	sleep  Sleeper
	logger *zap.Logger
}

// NewOrchestrator creates an orchestrator. A nil sleep uses Sleep.
func NewOrchestrator(runner Runner, delay time.Duration, sleep Sleeper, logger *zap.Logger) *Orchestrator {
	if sleep == nil {
		sleep = Sleep
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{runner: runner, delay: delay, sleep: sleep, logger: logger}
}

// RunAll runs every prompt in order and returns one result per prompt, in input order.
// There is no pause after the last prompt. Once ctx is done the remaining prompts are
// recorded as failed without being sent.
func (o *Orchestrator) RunAll(ctx context.Context, prompts []Prompt) []Result {
	results := make([]Result, 0, len(prompts))
	total := len(prompts)

	for i, p := range prompts {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{ID: p.ID, Name: p.Name, Status: StatusFailed, Err: err.Error()})
			continue
		}

		o.logger.Info(fmt.Sprintf("[%d/%d] Zoeken: %s", i+1, total, p.Name), zap.String("prompt", p.ID))
		results = append(results, o.runner.Run(ctx, p))

		if i < total-1 {
			if err := o.sleep(ctx, o.delay); err != nil {
				o.logger.Warn("search phase interrupted", zap.Error(err))
			}
		}
	}
	return results
}
