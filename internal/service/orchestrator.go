package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"benefits-web/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ImportConfig is the immutable configuration handed to the
// orchestrator at construction.
type ImportConfig struct {
	CompanyCodes     map[string]string
	BatchSize        int
	MaxSummaryErrors int
}

// BatchLog persists the import batch record across the run's state
// transitions and stores the per-row error report.
type BatchLog interface {
	CreateBatch(ctx context.Context, batch *models.ImportBatch) error
	UpdateStatus(ctx context.Context, batchID int, status string) error
	FinalizeBatch(ctx context.Context, batch *models.ImportBatch) error
	SaveRowErrors(ctx context.Context, batchID int, errs []models.ImportRowError) error
}

// ImportRequest describes one accepted upload. BatchCode may be set by
// the caller when it needs to hand the code out before the run starts
// (the async path); left empty, the run generates one.
type ImportRequest struct {
	BatchCode  string
	ImportType string
	FilePath   string
	Filename   string
	UserID     int
}

// NewBatchCode returns a fresh short batch identifier.
func NewBatchCode() string {
	return "IMPORT-" + strings.Split(uuid.NewString(), "-")[0]
}

// Orchestrator drives one import run through
// RECEIVED -> NORMALIZING -> LOADING -> DETECTING -> COMPLETED, with
// FAILED reachable from any stage on a structural error. Row-level
// problems never fail a run; they are reported in the summary.
type Orchestrator struct {
	cfg      ImportConfig
	store    RecordStore
	detector *Detector
	batches  BatchLog
	log      *logrus.Logger

	// openSource is swappable so the pipeline only depends on the
	// row-iteration contract, not a concrete file format.
	openSource func(path string) (RowSource, error)
	// cancelRequested is polled between batches.
	cancelRequested func(ctx context.Context, batchCode string) bool
	// reportProgress publishes the running processed count.
	reportProgress func(batchCode string, processed int)
}

func NewOrchestrator(cfg ImportConfig, store RecordStore, detector *Detector, batches BatchLog, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		store:      store,
		detector:   detector,
		batches:    batches,
		log:        log,
		openSource: OpenRowSource,
	}
}

// WithSourceOpener replaces the file reader, primarily for tests.
func (o *Orchestrator) WithSourceOpener(open func(path string) (RowSource, error)) *Orchestrator {
	o.openSource = open
	return o
}

// WithCancelCheck installs the between-batches cancellation poll.
func (o *Orchestrator) WithCancelCheck(fn func(ctx context.Context, batchCode string) bool) *Orchestrator {
	o.cancelRequested = fn
	return o
}

// WithProgress installs the progress publisher.
func (o *Orchestrator) WithProgress(fn func(batchCode string, processed int)) *Orchestrator {
	o.reportProgress = fn
	return o
}

// Run executes the whole pipeline for one file. Fatal conditions
// finalize the batch record as FAILED and are reported through the
// summary status; an error return means the run could not even be
// recorded.
func (o *Orchestrator) Run(ctx context.Context, req ImportRequest) (*models.ImportSummary, error) {
	started := time.Now()
	batchCode := req.BatchCode
	if batchCode == "" {
		batchCode = NewBatchCode()
	}
	batch := &models.ImportBatch{
		BatchCode:  batchCode,
		ImportType: strings.ToUpper(strings.TrimSpace(req.ImportType)),
		UserID:     req.UserID,
		Filename:   req.Filename,
		FilePath:   req.FilePath,
		Status:     models.ImportStatusReceived,
	}
	if err := o.batches.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}

	logger := o.log.WithFields(logrus.Fields{
		"batch_code":  batch.BatchCode,
		"import_type": batch.ImportType,
		"filename":    req.Filename,
	})
	logger.Info("import received")

	importType, err := ParseImportType(req.ImportType)
	if err != nil {
		return o.fail(ctx, batch, started, "UNRECOGNIZED_IMPORT_TYPE", err)
	}

	o.transition(ctx, batch, models.ImportStatusNormalizing)

	src, err := o.openSource(req.FilePath)
	if err != nil {
		return o.fail(ctx, batch, started, "source file could not be parsed", err)
	}
	defer src.Close()

	normalizer := NewNormalizer(importType, o.cfg.CompanyCodes)

	var (
		rowsTotal     int
		failedRows    int
		rowErrors     []models.ImportRowError
		sourceFailure error
	)
	next := func() (*NormalizedRecord, bool) {
		for {
			row, ok, readErr := src.Next()
			if readErr != nil {
				sourceFailure = readErr
				return nil, false
			}
			if !ok {
				return nil, false
			}
			rowsTotal++
			rec, errs := normalizer.Normalize(row)
			if len(errs) > 0 {
				failedRows++
				rowErrors = append(rowErrors, errs...)
				continue
			}
			return rec, true
		}
	}

	o.transition(ctx, batch, models.ImportStatusLoading)

	importer := NewBatchImporter(o.store, o.cfg.BatchSize, o.log)
	if o.cancelRequested != nil {
		importer.WithCancelCheck(func(ctx context.Context) bool {
			return o.cancelRequested(ctx, batch.BatchCode)
		})
	}
	if o.reportProgress != nil {
		importer.WithProgress(func(processed int) {
			o.reportProgress(batch.BatchCode, processed+failedRows)
		})
	}

	loadRes, err := importer.Load(ctx, next)
	if err != nil {
		return o.fail(ctx, batch, started, "STORE_UNAVAILABLE", err)
	}
	if sourceFailure != nil {
		return o.fail(ctx, batch, started, "source file became unreadable", sourceFailure)
	}

	rowErrors = append(rowErrors, loadRes.Errors...)
	batch.RowsTotal = rowsTotal
	batch.RowsOK = loadRes.RowsSucceeded
	batch.RowsFailed = failedRows + loadRes.RowsFailed

	o.transition(ctx, batch, models.ImportStatusDetecting)

	alertIDs, err := o.detector.Detect(ctx, batch.BatchCode, loadRes.TouchedIDs)
	if err != nil {
		return o.fail(ctx, batch, started, "STORE_UNAVAILABLE", err)
	}

	if err := o.batches.SaveRowErrors(ctx, batch.ID, rowErrors); err != nil {
		logger.WithError(err).Error("failed to persist row error report")
	}

	batch.Status = models.ImportStatusCompleted
	batch.DurationMS = time.Since(started).Milliseconds()
	batch.FinalizedAt = sql.NullTime{Time: time.Now(), Valid: true}
	if err := o.batches.FinalizeBatch(ctx, batch); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"rows_total":     batch.RowsTotal,
		"rows_succeeded": batch.RowsOK,
		"rows_failed":    batch.RowsFailed,
		"alerts":         len(alertIDs),
		"cancelled":      loadRes.Cancelled,
		"duration_ms":    batch.DurationMS,
	}).Info("import completed")

	return &models.ImportSummary{
		BatchCode:     batch.BatchCode,
		Status:        batch.Status,
		RowsTotal:     batch.RowsTotal,
		RowsSucceeded: batch.RowsOK,
		RowsFailed:    batch.RowsFailed,
		Errors:        o.truncateErrors(rowErrors),
		AlertsCreated: alertIDs,
		DurationMS:    batch.DurationMS,
	}, nil
}

func (o *Orchestrator) transition(ctx context.Context, batch *models.ImportBatch, status string) {
	batch.Status = status
	if err := o.batches.UpdateStatus(ctx, batch.ID, status); err != nil {
		o.log.WithError(err).WithField("batch_code", batch.BatchCode).
			Warn("failed to record status transition")
	}
}

// fail finalizes the batch record in the terminal FAILED state. The
// operator-facing reason stays generic; the underlying error goes to
// the log only.
func (o *Orchestrator) fail(ctx context.Context, batch *models.ImportBatch, started time.Time, reason string, cause error) (*models.ImportSummary, error) {
	o.log.WithError(cause).WithFields(logrus.Fields{
		"batch_code": batch.BatchCode,
		"stage":      batch.Status,
	}).Error("import failed")

	batch.Status = models.ImportStatusFailed
	batch.FailReason = sql.NullString{String: reason, Valid: true}
	batch.DurationMS = time.Since(started).Milliseconds()
	batch.FinalizedAt = sql.NullTime{Time: time.Now(), Valid: true}
	if err := o.batches.FinalizeBatch(ctx, batch); err != nil {
		return nil, err
	}

	return &models.ImportSummary{
		BatchCode:     batch.BatchCode,
		Status:        models.ImportStatusFailed,
		RowsTotal:     batch.RowsTotal,
		RowsSucceeded: batch.RowsOK,
		RowsFailed:    batch.RowsFailed,
		DurationMS:    batch.DurationMS,
	}, nil
}

// truncateErrors bounds the summary to the first N row errors; the full
// report stays available through the batch record.
func (o *Orchestrator) truncateErrors(errs []models.ImportRowError) []models.ImportRowError {
	max := o.cfg.MaxSummaryErrors
	if max <= 0 || len(errs) <= max {
		return errs
	}
	return errs[:max]
}
