// Package pipeline runs one scout cycle: search, filter, synthesize, store and mail.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scout/internal/config"
	"scout/internal/llm"
	"scout/internal/logging"
	"scout/internal/mail"
	"scout/internal/report"
	"scout/internal/search"
	"scout/internal/sources"
)

// ErrNoResults is returned when no prompt produced usable results. No report is
// generated in that case.
var ErrNoResults = errors.New("no search results")

// Deps are the collaborators of a run.
type Deps struct {
	Client llm.Client
	Sender mail.Sender // nil skips delivery
	Store  *report.Store
	Sleep  search.Sleeper // nil uses search.Sleep
	Now    func() time.Time
}

// Outcome summarizes a finished run.
type Outcome struct {
	RunID      string
	Results    []search.Result
	Usable     int
	ReportPath string
	Unverified []string
	EmailSent  bool
}

// Inputs are the files a run reads before searching.
type Inputs struct {
	Prompts      *search.PromptFile
	SystemDesign string
	CurrentSetup string
	Ledger       *sources.Ledger
}

// LoadInputs reads the prompts, both reference documents and the source ledger.
func LoadInputs(cfg *config.Config) (*Inputs, error) {
	prompts, err := search.LoadPrompts(cfg.Paths.Prompts)
	if err != nil {
		return nil, err
	}
	design, err := os.ReadFile(cfg.Paths.SystemDesign)
	if err != nil {
		return nil, fmt.Errorf("failed to read system design: %w", err)
	}
	setup, err := os.ReadFile(cfg.Paths.CurrentSetup)
	if err != nil {
		return nil, fmt.Errorf("failed to read current setup: %w", err)
	}
	ledger, err := sources.Load(cfg.Paths.SourceWeights)
	if err != nil {
		return nil, err
	}
	return &Inputs{
		Prompts:      prompts,
		SystemDesign: string(design),
		CurrentSetup: string(setup),
		Ledger:       ledger,
	}, nil
}

// SearchOptions maps the search config onto executor options.
func SearchOptions(cfg *config.Config, sleep search.Sleeper) search.Options {
	return search.Options{
		Model:             cfg.GetSearchModel(),
		MaxRetries:        cfg.Search.MaxRetries,
		InitialDelay:      cfg.GetInitialDelay(),
		BackoffMultiplier: cfg.Search.BackoffMultiplier,
		MaxUses:           cfg.Search.MaxUses,
		CallTimeout:       cfg.GetCallTimeout(),
		Sleep:             sleep,
	}
}

// Run executes one cycle. Setup failures and a failed report write are returned as
// errors; per-prompt, synthesis and delivery failures degrade as logged values.
func Run(ctx context.Context, cfg *config.Config, deps Deps, logger *zap.Logger) (*Outcome, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := &Outcome{RunID: uuid.NewString()}
	logger = logger.With(zap.String("run_id", out.RunID))
	log := logging.For(logger, logging.CategoryPipeline)

	now := deps.Now
	if now == nil {
		now = time.Now
	}
	store := deps.Store
	if store == nil {
		store = report.NewStore(cfg.Paths.ReportsDir, cfg.Paths.PublicationsDir, logging.For(logger, logging.CategoryReport))
	}
	// One date for the whole run: prompt, file name and mail subject.
	runDate := now()

	log.Info("scout run started")

	in, err := LoadInputs(cfg)
	if err != nil {
		return out, err
	}

	// Search phase
	log.Info("search phase", zap.Int("prompts", len(in.Prompts.Prompts)), zap.String("model", cfg.GetSearchModel()))
	searchLog := logging.For(logger, logging.CategorySearch)
	exec := search.NewExecutor(deps.Client, in.Prompts, SearchOptions(cfg, deps.Sleep), searchLog)
	orch := search.NewOrchestrator(exec, cfg.GetDelayBetweenCalls(), deps.Sleep, searchLog)
	out.Results = orch.RunAll(ctx, in.Prompts.Prompts)

	usable := search.Usable(out.Results)
	out.Usable = len(usable)
	log.Info(fmt.Sprintf("Zoekfase klaar: %d/%d prompts leverden resultaten op", len(usable), len(out.Results)))

	if len(usable) == 0 {
		log.Warn("no results found, skipping report")
		return out, ErrNoResults
	}

	// Synthesis phase
	date := runDate.Format(report.DateLayout)
	log.Info("synthesis phase", zap.String("date", date))
	synth := report.NewSynthesizer(deps.Client, logging.For(logger, logging.CategoryReport))
	text := synth.Synthesize(ctx, report.Input{
		Date:          date,
		Results:       usable,
		SystemDesign:  in.SystemDesign,
		CurrentSetup:  in.CurrentSetup,
		LedgerSummary: in.Ledger.RenderSummary(),
	})

	out.Unverified = report.UnverifiedURLs(text, usable)
	for _, u := range out.Unverified {
		log.Warn("report contains unverified URL", zap.String("url", u))
	}
	if cfg.Report.FlagUnverifiedURLs {
		text = report.AppendUnverified(text, out.Unverified)
	}

	path, err := store.Save(runDate, text)
	if err != nil {
		return out, err
	}
	out.ReportPath = path

	// Delivery phase
	if deps.Sender == nil {
		log.Info("email disabled, report kept on disk", zap.String("path", path))
		return out, nil
	}
	out.EmailSent = deps.Sender.Send(ctx, mail.Message{
		From:    cfg.Email.FromAddress,
		To:      cfg.Email.ToAddress,
		Subject: mail.Subject(cfg.Email.SubjectPrefix, runDate),
		Body:    text,
	})
	if out.EmailSent {
		log.Info("scout run finished, report sent")
	} else {
		log.Warn("email not sent, report kept on disk", zap.String("path", path))
	}
	return out, nil
}
