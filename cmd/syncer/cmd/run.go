package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/faroucksc/sms-sync/internal/d1"
	"github.com/faroucksc/sms-sync/internal/storage/postgres"
	"github.com/faroucksc/sms-sync/internal/syncer"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one sync run",
	Long: `Runs a single reconciliation pass: compute the record delta
between D1 and the replica, then fetch and upsert it batch by batch.
Interrupts are honored between batches, never inside one.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, _ []string) error {
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	retry := d1.RetryPolicy{
		MaxAttempts: cfg.Sync.MaxRetries,
		BaseDelay:   cfg.Sync.RetryBaseDelay,
	}
	client := d1.NewClient(cfg.Cloudflare, cfg.Sync.RequestTimeout, retry, log)

	storage, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect to replica: %w", err)
	}
	defer storage.Close()

	gateway := postgres.NewGateway(storage, cfg.Postgres.TableName, cfg.Sync.ChunkSize, log)
	service := syncer.NewService(client, gateway, cfg.Sync, log)

	run, err := service.Run(ctx)
	if err != nil {
		color.Red("sync %s aborted after %d committed batches: %v",
			run.SyncID, run.BatchesCommitted, err)
		return err
	}

	if run.Delta == 0 {
		color.Green("sync %s: replica already up to date (%d records)",
			run.SyncID, run.LocalCount)
		return nil
	}
	color.Green("sync %s: wrote %d records in %d batches",
		run.SyncID, run.RecordsWritten, run.BatchesCommitted)
	return nil
}
