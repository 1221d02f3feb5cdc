package service

import (
	"context"
	"errors"
	"fmt"

	"benefits-web/internal/models"

	"github.com/sirupsen/logrus"
)

// RecordSource yields normalized records lazily; it returns false when
// the sequence is exhausted.
type RecordSource func() (*NormalizedRecord, bool)

// RecordStore applies normalized records to the persistent store.
// ApplyBatch applies the whole group in one transaction; a failure
// rolls the group back and leaves prior batches committed. Stores
// translate uniqueness violations into ConstraintError and connection
// failures into StoreUnavailableError.
type RecordStore interface {
	ApplyBatch(ctx context.Context, records []*NormalizedRecord) error
	ApplyRecord(ctx context.Context, record *NormalizedRecord) error
}

// ConstraintError is a store uniqueness violation scoped to one record.
// It is recoverable: the batch importer converts it into a row error.
type ConstraintError struct {
	Message string
}

func (e *ConstraintError) Error() string { return e.Message }

// StoreUnavailableError aborts the whole import.
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %v", e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// LoadResult accumulates the outcome of one load stage.
type LoadResult struct {
	RowsSucceeded int
	RowsFailed    int
	Errors        []models.ImportRowError
	// TouchedIDs are the national IDs applied, fed to the detector.
	TouchedIDs []string
	// Cancelled is set when the run stopped between batches on request.
	Cancelled bool
}

// BatchImporter groups normalized records into fixed-size batches and
// bulk-upserts each batch atomically. When a batch fails it is retried
// row by row so the exact offending rows are reported; a cancellation
// check runs between batches so an abort never rolls back committed
// work.
type BatchImporter struct {
	store     RecordStore
	batchSize int
	cancelled func(ctx context.Context) bool
	progress  func(processed int)
	log       *logrus.Logger
}

func NewBatchImporter(store RecordStore, batchSize int, log *logrus.Logger) *BatchImporter {
	if batchSize < 1 {
		batchSize = 500
	}
	return &BatchImporter{store: store, batchSize: batchSize, log: log}
}

// WithCancelCheck installs a flag checked before each new batch.
func (bi *BatchImporter) WithCancelCheck(fn func(ctx context.Context) bool) *BatchImporter {
	bi.cancelled = fn
	return bi
}

// WithProgress installs a callback invoked with the running processed
// count after each committed batch.
func (bi *BatchImporter) WithProgress(fn func(processed int)) *BatchImporter {
	bi.progress = fn
	return bi
}

// Load consumes the record source to exhaustion or cancellation. Only
// StoreUnavailableError is returned; everything recoverable lands in
// the result.
func (bi *BatchImporter) Load(ctx context.Context, next RecordSource) (*LoadResult, error) {
	res := &LoadResult{}
	batch := make([]*NormalizedRecord, 0, bi.batchSize)

	for {
		rec, ok := next()
		if !ok {
			break
		}
		batch = append(batch, rec)
		if len(batch) < bi.batchSize {
			continue
		}

		if err := bi.flush(ctx, batch, res); err != nil {
			return nil, err
		}
		batch = batch[:0]

		if bi.cancelled != nil && bi.cancelled(ctx) {
			res.Cancelled = true
			bi.log.WithField("processed", res.RowsSucceeded+res.RowsFailed).
				Warn("import cancelled between batches")
			return res, nil
		}
	}

	if len(batch) > 0 {
		if err := bi.flush(ctx, batch, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (bi *BatchImporter) flush(ctx context.Context, batch []*NormalizedRecord, res *LoadResult) error {
	err := bi.store.ApplyBatch(ctx, batch)
	if err == nil {
		res.RowsSucceeded += len(batch)
		for _, rec := range batch {
			if rec.NationalID != "" {
				res.TouchedIDs = append(res.TouchedIDs, rec.NationalID)
			}
		}
		bi.report(res)
		return nil
	}

	var unavailable *StoreUnavailableError
	if errors.As(err, &unavailable) {
		return err
	}

	// The batch rolled back; retry row by row to isolate the rows that
	// actually fail. Bulk error reports are not precise per row.
	bi.log.WithError(err).WithField("batch_size", len(batch)).
		Warn("batch apply failed, retrying row by row")

	for _, rec := range batch {
		rowErr := bi.store.ApplyRecord(ctx, rec)
		if rowErr == nil {
			res.RowsSucceeded++
			if rec.NationalID != "" {
				res.TouchedIDs = append(res.TouchedIDs, rec.NationalID)
			}
			continue
		}
		if errors.As(rowErr, &unavailable) {
			return rowErr
		}

		res.RowsFailed++
		message := "record conflicts with an existing one"
		var cerr *ConstraintError
		if errors.As(rowErr, &cerr) {
			message = cerr.Message
		}
		res.Errors = append(res.Errors, models.ImportRowError{
			RowNumber: rec.RowNumber,
			Field:     "national_id",
			Reason:    ReasonBatchConstraint,
			Message:   message,
		})
	}
	bi.report(res)
	return nil
}

func (bi *BatchImporter) report(res *LoadResult) {
	if bi.progress != nil {
		bi.progress(res.RowsSucceeded + res.RowsFailed)
	}
}
