// Package syncer drives one reconciliation run: it measures the count
// delta between the remote source and the local replica, then fetches,
// normalizes and commits exactly that many records in bounded batches.
package syncer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"github.com/faroucksc/sms-sync/internal/config"
	"github.com/faroucksc/sms-sync/internal/model"
	"github.com/faroucksc/sms-sync/internal/normalize"
)

// RemoteSource is the paginated query API holding the source of truth.
type RemoteSource interface {
	Count(ctx context.Context) (int64, error)
	FetchBatch(ctx context.Context, limit, offset int64) ([]model.Record, error)
	TestConnection(ctx context.Context) error
}

// LocalStore is the relational replica being caught up.
type LocalStore interface {
	Count(ctx context.Context) (int64, error)
	VerifySchema(ctx context.Context) error
	UpsertBatch(ctx context.Context, records []model.Record, syncID string) error
}

// Service runs strictly sequential sync invocations. A Service is not
// safe for concurrent runs against the same stores; callers serialize
// externally.
type Service struct {
	remote RemoteSource
	local  LocalStore
	log    *slog.Logger

	batchSize    int64
	syncIDLayout string
	now          func() time.Time
}

func NewService(remote RemoteSource, local LocalStore, cfg config.Sync, log *slog.Logger) *Service {
	return &Service{
		remote:       remote,
		local:        local,
		log:          log.With("component", "syncer"),
		batchSize:    cfg.BatchSize,
		syncIDLayout: cfg.SyncIDLayout,
		now:          time.Now,
	}
}

// Delta is the number of records the replica is missing. Never negative.
func Delta(remote, local int64) int64 {
	if remote <= local {
		return 0
	}
	return remote - local
}

// TotalBatches is the number of pages needed to cover delta records.
func TotalBatches(delta, batchSize int64) int64 {
	return (delta + batchSize - 1) / batchSize
}

// Run executes one sync invocation. Batches already committed stay
// committed when a later batch fails; the next invocation recomputes
// the delta from the then-current counts and resumes naturally.
func (s *Service) Run(ctx context.Context) (*model.SyncRun, error) {
	run := &model.SyncRun{
		SyncID:    s.now().Format(s.syncIDLayout),
		BatchSize: s.batchSize,
	}
	log := s.log.With("sync_id", run.SyncID)
	log.Info("starting sync run")

	if err := s.initialize(ctx, log); err != nil {
		return run, err
	}
	if err := s.computeDelta(ctx, run, log); err != nil {
		return run, err
	}
	if run.Delta == 0 {
		log.Info("no new records to sync",
			"remote_count", run.RemoteCount, "local_count", run.LocalCount)
		return run, nil
	}

	if err := s.runBatches(ctx, run, log); err != nil {
		return run, err
	}

	log.Info("sync run completed",
		"batches_committed", run.BatchesCommitted,
		"records_written", run.RecordsWritten,
	)
	return run, nil
}

func (s *Service) initialize(ctx context.Context, log *slog.Logger) error {
	if err := s.remote.TestConnection(ctx); err != nil {
		log.Error("remote connection test failed", "error", err)
		return fmt.Errorf("initialize: %w", err)
	}
	if err := s.local.VerifySchema(ctx); err != nil {
		log.Error("replica schema verification failed", "error", err)
		return fmt.Errorf("initialize: %w", err)
	}
	return nil
}

func (s *Service) computeDelta(ctx context.Context, run *model.SyncRun, log *slog.Logger) error {
	remoteCount, err := s.remote.Count(ctx)
	if err != nil {
		log.Error("remote count failed", "error", err)
		return fmt.Errorf("compute delta: %w", err)
	}
	localCount, err := s.local.Count(ctx)
	if err != nil {
		log.Error("local count failed", "error", err)
		return fmt.Errorf("compute delta: %w", err)
	}

	run.RemoteCount = remoteCount
	run.LocalCount = localCount
	run.Delta = Delta(remoteCount, localCount)
	run.TotalBatches = TotalBatches(run.Delta, run.BatchSize)

	log.Info("computed delta",
		"remote_count", remoteCount,
		"local_count", localCount,
		"delta", run.Delta,
		"total_batches", run.TotalBatches,
	)
	return nil
}

func (s *Service) runBatches(ctx context.Context, run *model.SyncRun, log *slog.Logger) error {
	for batchNum := int64(0); batchNum < run.TotalBatches; batchNum++ {
		// Batch boundaries are the only clean cancellation points.
		if err := ctx.Err(); err != nil {
			log.Warn("sync cancelled between batches", "batch", batchNum+1)
			return err
		}

		// Offsets derive from the local count observed at run start, not
		// from re-querying the remote mid-run: the source is treated as
		// append-only and stable in ordering for the run's duration.
		offset := run.LocalCount + batchNum*run.BatchSize
		batchStart := s.now()

		records, err := s.remote.FetchBatch(ctx, run.BatchSize, offset)
		if err != nil {
			log.Error("batch fetch failed", "batch", batchNum+1, "offset", offset, "error", err)
			return fmt.Errorf("batch %d at offset %d: %w", batchNum+1, offset, err)
		}
		if len(records) == 0 {
			// The source shrank between the count query and this fetch.
			log.Info("empty page, ending run early", "batch", batchNum+1, "offset", offset)
			return nil
		}

		for i := range records {
			records[i].SentDate = normalize.Date(records[i].SentDate)
			records[i].CreatedAt = normalize.Date(records[i].CreatedAt)
		}

		if err := s.local.UpsertBatch(ctx, records, run.SyncID); err != nil {
			log.Error("batch commit failed", "batch", batchNum+1, "offset", offset, "error", err)
			return fmt.Errorf("batch %d at offset %d: %w", batchNum+1, offset, err)
		}

		run.BatchesCommitted++
		run.RecordsWritten += int64(len(records))

		elapsed := s.now().Sub(batchStart)
		log.Info("batch committed",
			"batch", fmt.Sprintf("%d/%d", batchNum+1, run.TotalBatches),
			"records", len(records),
			"elapsed", elapsed.Round(time.Millisecond),
			"records_per_sec", throughput(len(records), elapsed),
		)

		if int64(len(records)) < run.BatchSize {
			// Short page: nothing beyond this offset.
			return nil
		}
	}
	return nil
}

func throughput(records int, elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(records) / secs
}
