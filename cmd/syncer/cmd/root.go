// Package cmd wires the sms-sync CLI: one-shot sync runs, connectivity
// checks, schema migration and the liveness server.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"github.com/faroucksc/sms-sync/internal/config"
	"github.com/faroucksc/sms-sync/internal/logger"
)

var (
	cfg       *config.Config
	log       *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "sms-sync",
	Short: "Reconcile the Cloudflare D1 SMS log into a PostgreSQL replica",
	Long: `sms-sync catches a PostgreSQL replica up with an append-only
Cloudflare D1 table. Each invocation measures how many records the
replica is missing, fetches exactly that many in bounded batches,
normalizes timestamps and applies them idempotently, so re-running
after a partial failure resumes where the previous run stopped.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the CLI; a failed command exits non-zero so schedulers
// can observe the outcome.
func Execute() {
	err := rootCmd.Execute()
	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(_ *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, logCloser, err = logger.NewWithFile(cfg.Env, cfg.Logger.LogFile)
	if err != nil {
		// stdout-only logging is still usable; note the degradation.
		log.Warn("log file unavailable, logging to stdout only",
			"path", cfg.Logger.LogFile, "error", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(healthCmd)
}
