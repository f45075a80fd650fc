package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"github.com/faroucksc/sms-sync/internal/model"
)

// ErrTableMissing reports that the replica table does not exist. This
// is a fatal precondition for a sync run; the table is never created
// implicitly (see the migrate command).
var ErrTableMissing = errors.New("replica table does not exist")

// replicated columns, in insert order
var columns = []string{
	"id", "source", "msisdn", "response", "sent_date", "sms_id", "created_at", "sync_execution_id",
}

// Gateway exposes the replica operations the sync engine needs: row
// count, schema verification and the transactional batch upsert.
type Gateway struct {
	pool      *pgxpool.Pool
	log       *slog.Logger
	table     string
	chunkSize int
}

func NewGateway(storage *Storage, table string, chunkSize int, log *slog.Logger) *Gateway {
	return &Gateway{
		pool:      storage.Pool(),
		log:       log.With("component", "postgres_gateway"),
		table:     table,
		chunkSize: chunkSize,
	}
}

// Count returns the number of rows currently in the replica table.
func (g *Gateway) Count(ctx context.Context) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", g.quotedTable())
	if err := g.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		g.log.Error("failed to count replica rows", "table", g.table, "error", err)
		return 0, fmt.Errorf("count replica rows: %w", err)
	}
	return count, nil
}

// VerifySchema confirms the replica table exists and that the expected
// indexes are in place, creating any missing index. A missing table
// surfaces as ErrTableMissing.
func (g *Gateway) VerifySchema(ctx context.Context) error {
	var exists bool
	err := g.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)",
		g.table,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check table existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrTableMissing, g.table)
	}

	for _, col := range []string{"sync_execution_id", "created_at", "sent_date"} {
		ddl := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			g.indexName(col), g.quotedTable(), col)
		if _, err := g.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create index on %s: %w", col, err)
		}
	}

	g.log.Info("replica schema verified", "table", g.table)
	return nil
}

// UpsertBatch writes records inside one transaction, chunked into
// multi-row inserts. On primary-key conflict every replicated column
// and the sync id are overwritten with the incoming values. The batch
// either fully commits or fully rolls back.
func (g *Gateway) UpsertBatch(ctx context.Context, records []model.Record, syncID string) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for start := 0; start < len(records); start += g.chunkSize {
		end := start + g.chunkSize
		if end > len(records) {
			end = len(records)
		}
		if err := g.upsertChunk(ctx, tx, records[start:end], syncID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func (g *Gateway) upsertChunk(ctx context.Context, tx pgx.Tx, records []model.Record, syncID string) error {
	query := upsertStatement(g.quotedTable(), len(records))
	args := upsertArgs(records, syncID)

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		g.log.Error("chunk upsert failed", "rows", len(records), "error", err)
		return fmt.Errorf("upsert chunk of %d rows: %w", len(records), err)
	}
	return nil
}

// upsertStatement builds one multi-row insert with last-write-wins
// conflict resolution on the primary key.
func upsertStatement(quotedTable string, rows int) string {
	var placeholders strings.Builder
	for i := 0; i < rows; i++ {
		if i > 0 {
			placeholders.WriteString(", ")
		}
		placeholders.WriteByte('(')
		for j := range columns {
			if j > 0 {
				placeholders.WriteByte(',')
			}
			fmt.Fprintf(&placeholders, "$%d", i*len(columns)+j+1)
		}
		placeholders.WriteByte(')')
	}

	return fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES %s
		ON CONFLICT (id) DO UPDATE SET
			source = EXCLUDED.source,
			msisdn = EXCLUDED.msisdn,
			response = EXCLUDED.response,
			sent_date = EXCLUDED.sent_date,
			sms_id = EXCLUDED.sms_id,
			created_at = EXCLUDED.created_at,
			sync_execution_id = EXCLUDED.sync_execution_id`,
		quotedTable, strings.Join(columns, ", "), placeholders.String())
}

func upsertArgs(records []model.Record, syncID string) []any {
	args := make([]any, 0, len(records)*len(columns))
	for _, rec := range records {
		args = append(args,
			rec.ID, rec.Source, rec.MSISDN, rec.Response,
			rec.SentDate, rec.SMSID, rec.CreatedAt, syncID,
		)
	}
	return args
}

func (g *Gateway) quotedTable() string {
	return pgx.Identifier{g.table}.Sanitize()
}

func (g *Gateway) indexName(column string) string {
	switch column {
	case "sync_execution_id":
		return fmt.Sprintf("idx_%s_sync_id", g.table)
	default:
		return fmt.Sprintf("idx_%s_%s", g.table, column)
	}
}
