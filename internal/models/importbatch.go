package models

import (
	"database/sql"
	"time"
)

// Import batch statuses. Row-level errors never move a batch to FAILED;
// only structural errors do.
const (
	ImportStatusReceived    = "RECEIVED"
	ImportStatusNormalizing = "NORMALIZING"
	ImportStatusLoading     = "LOADING"
	ImportStatusDetecting   = "DETECTING"
	ImportStatusCompleted   = "COMPLETED"
	ImportStatusFailed      = "FAILED"
)

// ImportBatch records one execution of the import pipeline. It is
// created when the file is accepted and finalized exactly once, on
// COMPLETED or FAILED.
type ImportBatch struct {
	ID          int            `db:"id" json:"id"`
	BatchCode   string         `db:"batch_code" json:"batch_code"`
	ImportType  string         `db:"import_type" json:"import_type"`
	UserID      int            `db:"user_id" json:"user_id"`
	Filename    string         `db:"filename" json:"filename"`
	FilePath    string         `db:"file_path" json:"file_path"`
	RowsTotal   int            `db:"rows_total" json:"rows_total"`
	RowsOK      int            `db:"rows_succeeded" json:"rows_succeeded"`
	RowsFailed  int            `db:"rows_failed" json:"rows_failed"`
	Status      string         `db:"status" json:"status"`
	FailReason  sql.NullString `db:"fail_reason" json:"fail_reason"`
	DurationMS  int64          `db:"duration_ms" json:"duration_ms"`
	FinalizedAt sql.NullTime   `db:"finalized_at" json:"finalized_at"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// ImportRowError is one operator-facing row error. Reason is one of the
// fixed validation kinds, never a raw driver message.
type ImportRowError struct {
	ID        int       `db:"id" json:"id"`
	BatchID   int       `db:"batch_id" json:"batch_id"`
	RowNumber int       `db:"row_number" json:"row_number"`
	Field     string    `db:"field" json:"field"`
	Reason    string    `db:"reason" json:"reason"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ImportSummary is the result returned to the caller when a run ends.
type ImportSummary struct {
	BatchCode     string           `json:"batch_code"`
	Status        string           `json:"status"`
	RowsTotal     int              `json:"rows_total"`
	RowsSucceeded int              `json:"rows_succeeded"`
	RowsFailed    int              `json:"rows_failed"`
	Errors        []ImportRowError `json:"errors"`
	AlertsCreated []int            `json:"alerts_created"`
	DurationMS    int64            `json:"duration_ms"`
}
