package model

// Record is one replicated row from the remote sms_logs table.
// SentDate and CreatedAt stay textual: the remote side delivers several
// date formats and normalization happens before persistence.
type Record struct {
	ID              int64   `json:"id" db:"id"`
	Source          *string `json:"source" db:"source"`
	MSISDN          *string `json:"msisdn" db:"msisdn"`
	Response        *string `json:"response" db:"response"`
	SentDate        *string `json:"sent_date" db:"sent_date"`
	SMSID           *int64  `json:"sms_id" db:"sms_id"`
	CreatedAt       *string `json:"created_at" db:"created_at"`
	SyncExecutionID string  `json:"sync_execution_id,omitempty" db:"sync_execution_id"`
}

// SyncRun holds the counters of a single sync invocation. It lives only
// in memory and in log output; SyncID is the only part written to the
// replica, stamped onto every record the run touches.
type SyncRun struct {
	SyncID       string `json:"sync_id"`
	RemoteCount  int64  `json:"remote_count"`
	LocalCount   int64  `json:"local_count"`
	Delta        int64  `json:"delta"`
	BatchSize    int64  `json:"batch_size"`
	TotalBatches int64  `json:"total_batches"`

	// Progress, updated as batches commit.
	BatchesCommitted int64 `json:"batches_committed"`
	RecordsWritten   int64 `json:"records_written"`
}
