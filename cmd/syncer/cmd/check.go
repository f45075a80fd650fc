package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/faroucksc/sms-sync/internal/d1"
	"github.com/faroucksc/sms-sync/internal/storage/postgres"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify connectivity to D1 and the replica",
	Long: `Runs the pre-flight self-tests: D1 reachability and record
count, replica reachability, schema verification and record count.
Count failures are reported but do not stop the remaining checks.`,
	RunE: runChecks,
}

func runChecks(cmd *cobra.Command, _ []string) error {
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}
	ctx := cmd.Context()

	retry := d1.RetryPolicy{
		MaxAttempts: cfg.Sync.MaxRetries,
		BaseDelay:   cfg.Sync.RetryBaseDelay,
	}
	client := d1.NewClient(cfg.Cloudflare, cfg.Sync.RequestTimeout, retry, log)

	failed := checkRemote(ctx, client)

	storage, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		color.Red("replica: connect failed: %v", err)
		return errors.New("connectivity checks failed")
	}
	defer storage.Close()

	if checkReplica(ctx, storage) {
		failed = true
	}

	if failed {
		return errors.New("connectivity checks failed")
	}
	color.Green("all checks passed")
	return nil
}

func checkRemote(ctx context.Context, client *d1.Client) (failed bool) {
	if err := client.TestConnection(ctx); err != nil {
		color.Red("d1: connection test failed: %v", err)
		return true
	}
	color.Green("d1: connection ok")

	count, err := client.Count(ctx)
	if err != nil {
		// Soft failure: a broken count query is worth knowing about but
		// should not mask the remaining checks.
		log.Error("d1 count failed", "error", err)
		color.Yellow("d1: count failed: %v", err)
		return true
	}
	fmt.Printf("d1: %d records in %s\n", count, cfg.Cloudflare.TableName)
	return false
}

func checkReplica(ctx context.Context, storage *postgres.Storage) (failed bool) {
	if err := storage.Ping(ctx); err != nil {
		color.Red("replica: connection test failed: %v", err)
		return true
	}
	color.Green("replica: connection ok")

	gateway := postgres.NewGateway(storage, cfg.Postgres.TableName, cfg.Sync.ChunkSize, log)
	if err := gateway.VerifySchema(ctx); err != nil {
		color.Red("replica: schema verification failed: %v", err)
		return true
	}
	color.Green("replica: schema ok")

	count, err := gateway.Count(ctx)
	if err != nil {
		log.Error("replica count failed", "error", err)
		color.Yellow("replica: count failed: %v", err)
		return true
	}
	fmt.Printf("replica: %d records in %s\n", count, cfg.Postgres.TableName)
	return false
}
