package service

import (
	"context"
	"errors"
	"testing"

	"benefits-web/internal/models"
	"benefits-web/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceRowSource struct {
	rows   []RawRow
	i      int
	closed bool
}

func (s *sliceRowSource) Next() (RawRow, bool, error) {
	if s.i >= len(s.rows) {
		return RawRow{}, false, nil
	}
	row := s.rows[s.i]
	s.i++
	return row, true, nil
}

func (s *sliceRowSource) Close() error {
	s.closed = true
	return nil
}

type fakeBatchLog struct {
	batch     *models.ImportBatch
	statuses  []string
	rowErrors []models.ImportRowError
	finalized bool
}

func (l *fakeBatchLog) CreateBatch(ctx context.Context, batch *models.ImportBatch) error {
	batch.ID = 1
	l.batch = batch
	l.statuses = append(l.statuses, batch.Status)
	return nil
}

func (l *fakeBatchLog) UpdateStatus(ctx context.Context, batchID int, status string) error {
	l.statuses = append(l.statuses, status)
	return nil
}

func (l *fakeBatchLog) FinalizeBatch(ctx context.Context, batch *models.ImportBatch) error {
	l.statuses = append(l.statuses, batch.Status)
	l.finalized = true
	return nil
}

func (l *fakeBatchLog) SaveRowErrors(ctx context.Context, batchID int, errs []models.ImportRowError) error {
	l.rowErrors = errs
	return nil
}

func newTestOrchestrator(store RecordStore, batches *fakeBatchLog, rows []RawRow) (*Orchestrator, *sliceRowSource) {
	src := &sliceRowSource{rows: rows}
	detector := NewDetector(&fakeAuditStore{}, &fakeAlertSink{}, utils.GetLogger())
	cfg := ImportConfig{
		CompanyCodes:     testCompanyCodes,
		BatchSize:        2,
		MaxSummaryErrors: 50,
	}
	o := NewOrchestrator(cfg, store, detector, batches, utils.GetLogger()).
		WithSourceOpener(func(path string) (RowSource, error) { return src, nil })
	return o, src
}

func TestOrchestratorReportsMalformedRow(t *testing.T) {
	rows := []RawRow{
		activeEmployeeRow(2, nil),
		activeEmployeeRow(3, map[string]string{"CPF": "111.111.111-11"}),
		activeEmployeeRow(4, map[string]string{"CPF": "111.444.777-35"}),
	}
	batches := &fakeBatchLog{}
	o, src := newTestOrchestrator(&fakeStore{}, batches, rows)

	summary, err := o.Run(context.Background(), ImportRequest{
		ImportType: "ACTIVE_EMPLOYEES",
		FilePath:   "ativos.csv",
		Filename:   "ativos.csv",
		UserID:     1,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ImportStatusCompleted, summary.Status)
	assert.Equal(t, 3, summary.RowsTotal)
	assert.Equal(t, 2, summary.RowsSucceeded)
	assert.Equal(t, 1, summary.RowsFailed)
	assert.Equal(t, summary.RowsTotal, summary.RowsSucceeded+summary.RowsFailed)

	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 3, summary.Errors[0].RowNumber)
	assert.Equal(t, "national_id", summary.Errors[0].Field)
	assert.Equal(t, ReasonChecksumFailed, summary.Errors[0].Reason)

	assert.Equal(t, []string{
		models.ImportStatusReceived,
		models.ImportStatusNormalizing,
		models.ImportStatusLoading,
		models.ImportStatusDetecting,
		models.ImportStatusCompleted,
	}, batches.statuses)
	assert.True(t, src.closed)
	assert.True(t, batches.finalized)
}

func TestOrchestratorRejectsUnknownImportType(t *testing.T) {
	batches := &fakeBatchLog{}
	opened := false
	detector := NewDetector(&fakeAuditStore{}, &fakeAlertSink{}, utils.GetLogger())
	o := NewOrchestrator(ImportConfig{BatchSize: 2}, &fakeStore{}, detector, batches, utils.GetLogger()).
		WithSourceOpener(func(path string) (RowSource, error) {
			opened = true
			return &sliceRowSource{}, nil
		})

	summary, err := o.Run(context.Background(), ImportRequest{ImportType: "PAYROLL_EXPORT"})
	require.NoError(t, err)

	assert.Equal(t, models.ImportStatusFailed, summary.Status)
	assert.Equal(t, 0, summary.RowsTotal)
	assert.False(t, opened, "no row may be read for an unrecognized type")
	assert.Equal(t, "UNRECOGNIZED_IMPORT_TYPE", batches.batch.FailReason.String)
}

func TestOrchestratorPartialCompletionOnCancel(t *testing.T) {
	var rows []RawRow
	for i := 0; i < 10; i++ {
		rows = append(rows, activeEmployeeRow(i+2, nil))
	}
	store := &fakeStore{}
	batches := &fakeBatchLog{}
	o, _ := newTestOrchestrator(store, batches, rows)
	o.WithCancelCheck(func(ctx context.Context, batchCode string) bool {
		return len(store.batches) >= 2
	})

	summary, err := o.Run(context.Background(), ImportRequest{ImportType: "ACTIVE_EMPLOYEES"})
	require.NoError(t, err)

	// Cancellation is not a failure: committed batches stand and the
	// summary reflects only the rows consumed.
	assert.Equal(t, models.ImportStatusCompleted, summary.Status)
	assert.Len(t, store.batches, 2)
	assert.Equal(t, 4, summary.RowsSucceeded)
	assert.Equal(t, summary.RowsTotal, summary.RowsSucceeded+summary.RowsFailed)
}

func TestOrchestratorFailsWhenStoreUnavailable(t *testing.T) {
	rows := []RawRow{activeEmployeeRow(2, nil), activeEmployeeRow(3, nil)}
	batches := &fakeBatchLog{}
	o, _ := newTestOrchestrator(&fakeStore{down: true}, batches, rows)

	summary, err := o.Run(context.Background(), ImportRequest{ImportType: "ACTIVE_EMPLOYEES"})
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusFailed, summary.Status)
	assert.Equal(t, "STORE_UNAVAILABLE", batches.batch.FailReason.String)
}

func TestOrchestratorTruncatesSummaryErrors(t *testing.T) {
	var rows []RawRow
	for i := 0; i < 5; i++ {
		rows = append(rows, activeEmployeeRow(i+2, map[string]string{"CPF": "111.111.111-11"}))
	}
	batches := &fakeBatchLog{}
	o, _ := newTestOrchestrator(&fakeStore{}, batches, rows)
	o.cfg.MaxSummaryErrors = 2

	summary, err := o.Run(context.Background(), ImportRequest{ImportType: "ACTIVE_EMPLOYEES"})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.RowsFailed)
	assert.Len(t, summary.Errors, 2)
	// The full report is persisted even when the summary is bounded.
	assert.Len(t, batches.rowErrors, 5)
}

func TestOrchestratorSourceOpenFailureIsFatal(t *testing.T) {
	batches := &fakeBatchLog{}
	detector := NewDetector(&fakeAuditStore{}, &fakeAlertSink{}, utils.GetLogger())
	o := NewOrchestrator(ImportConfig{BatchSize: 2}, &fakeStore{}, detector, batches, utils.GetLogger()).
		WithSourceOpener(func(path string) (RowSource, error) {
			return nil, errors.New("corrupt zip container")
		})

	summary, err := o.Run(context.Background(), ImportRequest{ImportType: "ACTIVE_EMPLOYEES"})
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusFailed, summary.Status)
}
