package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scout/internal/logging"
	"scout/internal/mail"
	"scout/internal/pipeline"
)

var noEmail bool

// runCmd runs the full weekly cycle
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the search, synthesis and delivery cycle",
	Long: `Runs every configured prompt, filters the results, synthesizes the weekly
report, stores it as rapport-YYYY-MM-DD.md and mails it.

A run where no prompt produced results ends without a report and exits 0.`,
	Args: cobra.NoArgs,
	RunE: runScout,
}

func init() {
	runCmd.Flags().BoolVar(&noEmail, "no-email", false, "Store the report without mailing it")
}

func runScout(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !noEmail {
		if err := cfg.ValidateEmail(); err != nil {
			return fmt.Errorf("invalid config: %w (use --no-email to skip delivery)", err)
		}
	}

	ctx, cancel := commandContext()
	defer cancel()

	client, err := newClient(ctx, cfg, logging.For(logger, logging.CategoryAPI))
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	deps := pipeline.Deps{Client: client}
	if !noEmail {
		sender, err := mail.NewSenderFromConfig(cfg.Email, logging.For(logger, logging.CategoryMail))
		if err != nil {
			return err
		}
		deps.Sender = sender
	}

	out, err := pipeline.Run(ctx, cfg, deps, logger)
	if errors.Is(err, pipeline.ErrNoResults) {
		fmt.Fprintln(cmd.OutOrStdout(), "Geen resultaten gevonden. Rapport wordt niet gegenereerd.")
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("scout run complete",
		zap.String("run_id", out.RunID),
		zap.String("report", out.ReportPath),
		zap.Int("usable", out.Usable),
		zap.Int("prompts", len(out.Results)),
		zap.Bool("emailed", out.EmailSent))
	fmt.Fprintf(cmd.OutOrStdout(), "Rapport opgeslagen: %s\n", out.ReportPath)
	return nil
}
