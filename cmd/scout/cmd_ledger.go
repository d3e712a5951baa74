package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scout/internal/logging"
	"scout/internal/sources"
)

var implemented bool

var (
	ledgerTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	ledgerDomainStyle = lipgloss.NewStyle().Width(32)
	ledgerBarStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	ledgerMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// ledgerCmd groups the source ledger commands
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and update the weighted source ledger",
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the sources ranked by weight",
	Args:  cobra.NoArgs,
	RunE:  ledgerShow,
}

var ledgerRecordCmd = &cobra.Command{
	Use:   "record [url-or-domain]",
	Short: "Record a source, optionally as implemented",
	Long: `Adds the domain of the given URL to the ledger when it is new. With
--implemented the source's weight goes up by one (max 10) and its
implementation count is incremented.

Example:
  scout ledger record https://www.anthropic.com/engineering/post --implemented`,
	Args: cobra.ExactArgs(1),
	RunE: ledgerRecord,
}

func init() {
	ledgerRecordCmd.Flags().BoolVar(&implemented, "implemented", false, "A suggestion from this source was implemented")

	ledgerCmd.AddCommand(ledgerShowCmd)
	ledgerCmd.AddCommand(ledgerRecordCmd)
}

func ledgerShow(cmd *cobra.Command, args []string) error {
	ledger, err := sources.Load(cfg.Paths.SourceWeights)
	if err != nil {
		return err
	}
	renderLedger(cmd.OutOrStdout(), ledger)
	return nil
}

func renderLedger(w io.Writer, ledger *sources.Ledger) {
	fmt.Fprintln(w, ledgerTitleStyle.Render("Gewogen bronnen (hoger = waardevoller)"))
	ranked := ledger.Ranked()
	if len(ranked) == 0 {
		fmt.Fprintln(w, ledgerMutedStyle.Render("  (leeg)"))
		return
	}
	for _, r := range ranked {
		bar := ledgerBarStyle.Render(strings.Repeat("█", r.Weight)) +
			ledgerMutedStyle.Render(strings.Repeat("░", sources.MaxWeight-r.Weight))
		line := fmt.Sprintf("  %s %s %2d  %dx geïmplementeerd",
			ledgerDomainStyle.Render(r.Domain), bar, r.Weight, r.ImplementedCount)
		if r.Notes != "" {
			line += ledgerMutedStyle.Render("  " + r.Notes)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, ledgerMutedStyle.Render(fmt.Sprintf("  standaardgewicht: %d", ledger.DefaultWeight)))
}

func ledgerRecord(cmd *cobra.Command, args []string) error {
	path := cfg.Paths.SourceWeights
	ledger, err := sources.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		ledger = sources.New(sources.FallbackDefaultWeight)
	} else if err != nil {
		return err
	}

	domain := sources.DomainOf(args[0])
	_, existed := ledger.Find(domain)
	rec := ledger.RecordEvent(domain, implemented)
	if err := ledger.Save(path); err != nil {
		return err
	}

	logging.For(logger, logging.CategoryLedger).Info("source recorded",
		zap.String("domain", rec.Domain),
		zap.Bool("new", !existed),
		zap.Bool("implemented", implemented),
		zap.Int("weight", rec.Weight))
	fmt.Fprintf(cmd.OutOrStdout(), "%s: weight %d, %dx geïmplementeerd\n", rec.Domain, rec.Weight, rec.ImplementedCount)
	return nil
}
