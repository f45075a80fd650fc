package postgres

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faroucksc/sms-sync/internal/model"
)

func TestUpsertStatement(t *testing.T) {
	query := upsertStatement(`"sms_logs"`, 2)

	assert.Contains(t, query, `INSERT INTO "sms_logs"`)
	assert.Contains(t, query, "($1,$2,$3,$4,$5,$6,$7,$8), ($9,$10,$11,$12,$13,$14,$15,$16)")
	assert.Contains(t, query, "ON CONFLICT (id) DO UPDATE SET")

	// Every replicated column and the sync id are overwritten on conflict.
	for _, col := range columns[1:] {
		assert.Contains(t, query, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
}

func TestUpsertStatementSingleRow(t *testing.T) {
	query := upsertStatement(`"t"`, 1)
	assert.Contains(t, query, "($1,$2,$3,$4,$5,$6,$7,$8)")
	assert.Equal(t, 8, strings.Count(query, "$"))
}

func TestUpsertArgs(t *testing.T) {
	source := "gw1"
	records := []model.Record{
		{ID: 1, Source: &source},
		{ID: 2},
	}

	args := upsertArgs(records, "run-1")

	require.Len(t, args, 16)
	assert.Equal(t, int64(1), args[0])
	assert.Equal(t, &source, args[1])
	assert.Equal(t, "run-1", args[7], "sync id stamps every row")
	assert.Equal(t, int64(2), args[8])
	assert.Equal(t, "run-1", args[15])
}

func TestIndexName(t *testing.T) {
	g := &Gateway{table: "sms_logs"}

	assert.Equal(t, "idx_sms_logs_sync_id", g.indexName("sync_execution_id"))
	assert.Equal(t, "idx_sms_logs_created_at", g.indexName("created_at"))
	assert.Equal(t, "idx_sms_logs_sent_date", g.indexName("sent_date"))
}

func TestQuotedTable(t *testing.T) {
	g := &Gateway{table: "sms_logs"}
	assert.Equal(t, `"sms_logs"`, g.quotedTable())
}
