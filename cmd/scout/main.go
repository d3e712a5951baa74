package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scout/internal/config"
	"scout/internal/llm"
	"scout/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool
	timeout    time.Duration

	// Loaded in PersistentPreRunE
	cfg         *config.Config
	logger      *zap.Logger
	closeLogger func()

	// Swapped in tests
	newClient = func(ctx context.Context, c *config.Config, l *zap.Logger) (llm.Client, error) {
		return llm.NewClientFromConfig(ctx, c, l)
	}
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "scout - weekly research digest",
	Long: `scout sends a fixed set of web-search prompts to an LLM, keeps the sources the
model actually returned, and turns the findings into a Markdown report that is
compared against your own system design and setup.

The report is stored under the reports directory and mailed to you.
Run "scout run" from cron once a week.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		l, closeFn, err := logging.New(cfg.Logging, verbose, os.Stdout)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		closeLogger = closeFn
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Abort the command after this long (0 = no limit)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(reportCmd)

	// Finalizers also run when a command returns an error.
	cobra.OnFinalize(finishLogging)
}

// finishLogging flushes and closes the log file opened in PersistentPreRunE.
func finishLogging() {
	if closeLogger != nil {
		closeLogger()
		closeLogger = nil
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			fmt.Fprintln(os.Stderr, "Config niet gevonden:", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// commandContext returns a context cancelled on SIGINT/SIGTERM and, when --timeout is
// set, after the timeout.
func commandContext() (context.Context, context.CancelFunc) {
	var ctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal")
			cancel()
		case <-done:
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		close(done)
		cancel()
	}
}
