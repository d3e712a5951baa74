package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scout/internal/logging"
	"scout/internal/pipeline"
	"scout/internal/search"
)

// searchCmd runs one configured prompt
var searchCmd = &cobra.Command{
	Use:   "search [prompt-id]",
	Short: "Run a single configured prompt and print its raw output",
	Long: `Runs one prompt from the prompts file with the normal retry policy and prints
the text the synthesis step would receive, including the verified sources.

Example:
  scout search releases`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	prompts, err := search.LoadPrompts(cfg.Paths.Prompts)
	if err != nil {
		return err
	}
	prompt, ok := prompts.Find(args[0])
	if !ok {
		return fmt.Errorf("unknown prompt id %q", args[0])
	}

	ctx, cancel := commandContext()
	defer cancel()

	client, err := newClient(ctx, cfg, logging.For(logger, logging.CategoryAPI))
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	exec := search.NewExecutor(client, prompts, pipeline.SearchOptions(cfg, nil), logging.For(logger, logging.CategorySearch))
	res := exec.Run(ctx, prompt)

	fmt.Fprintf(cmd.OutOrStdout(), "--- %s (%s) [%s, %d attempt(s)] ---\n%s\n", res.Name, res.ID, res.Status, res.Attempts, res.RawOutput())
	return nil
}
