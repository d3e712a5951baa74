package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"scout/internal/report"
)

var (
	rawReport  bool
	reportWrap int
)

// reportCmd groups the stored report commands
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Work with stored reports",
}

var reportShowCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Render a stored report in the terminal (default: latest)",
	Long: `Renders rapport-YYYY-MM-DD.md from the reports directory.
Without a date the most recent report is shown.

Example:
  scout report show 2026-03-09`,
	Args: cobra.MaximumNArgs(1),
	RunE: reportShow,
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored report dates, newest first",
	Args:  cobra.NoArgs,
	RunE:  reportList,
}

func init() {
	reportShowCmd.Flags().BoolVar(&rawReport, "raw", false, "Print the Markdown without rendering")
	reportShowCmd.Flags().IntVar(&reportWrap, "width", 100, "Word wrap width")

	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportListCmd)
}

func reportShow(cmd *cobra.Command, args []string) error {
	store := report.NewStore(cfg.Paths.ReportsDir, "", logger)

	date := ""
	if len(args) == 1 {
		date = args[0]
	} else {
		dates, err := store.Dates()
		if err != nil {
			return err
		}
		if len(dates) == 0 {
			return fmt.Errorf("no reports in %s", cfg.Paths.ReportsDir)
		}
		date = dates[0]
	}

	text, err := store.Load(date)
	if err != nil {
		return err
	}

	if rawReport {
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(reportWrap),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}

func reportList(cmd *cobra.Command, args []string) error {
	dates, err := report.NewStore(cfg.Paths.ReportsDir, "", logger).Dates()
	if err != nil {
		return err
	}
	for _, d := range dates {
		fmt.Fprintln(cmd.OutOrStdout(), d)
	}
	return nil
}
