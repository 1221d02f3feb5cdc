package service

import (
	"context"
	"errors"
	"testing"

	"benefits-web/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore records applied batches and fails configurable rows.
type fakeStore struct {
	batches      [][]*NormalizedRecord
	singles      []*NormalizedRecord
	conflictRows map[int]bool
	down         bool // store refuses everything
	fatalAfter   int  // fail everything once this many batches committed, 0 = never
}

func (s *fakeStore) ApplyBatch(ctx context.Context, records []*NormalizedRecord) error {
	if s.down {
		return &StoreUnavailableError{Err: errors.New("connection refused")}
	}
	if s.fatalAfter > 0 && len(s.batches) >= s.fatalAfter {
		return &StoreUnavailableError{Err: errors.New("connection refused")}
	}
	for _, rec := range records {
		if s.conflictRows[rec.RowNumber] {
			return &ConstraintError{Message: "duplicate national ID"}
		}
	}
	s.batches = append(s.batches, records)
	return nil
}

func (s *fakeStore) ApplyRecord(ctx context.Context, record *NormalizedRecord) error {
	if s.down {
		return &StoreUnavailableError{Err: errors.New("connection refused")}
	}
	if s.conflictRows[record.RowNumber] {
		return &ConstraintError{Message: "duplicate national ID"}
	}
	s.singles = append(s.singles, record)
	return nil
}

func sourceOf(records []*NormalizedRecord) RecordSource {
	i := 0
	return func() (*NormalizedRecord, bool) {
		if i >= len(records) {
			return nil, false
		}
		rec := records[i]
		i++
		return rec, true
	}
}

func makeRecords(n int) []*NormalizedRecord {
	records := make([]*NormalizedRecord, n)
	for i := range records {
		records[i] = &NormalizedRecord{RowNumber: i + 2, NationalID: "12345678909"}
	}
	return records
}

func TestBatchImporterSplitsIntoBatches(t *testing.T) {
	store := &fakeStore{}
	bi := NewBatchImporter(store, 2, utils.GetLogger())

	res, err := bi.Load(context.Background(), sourceOf(makeRecords(5)))
	require.NoError(t, err)

	assert.Equal(t, 5, res.RowsSucceeded)
	assert.Equal(t, 0, res.RowsFailed)
	require.Len(t, store.batches, 3)
	assert.Len(t, store.batches[0], 2)
	assert.Len(t, store.batches[2], 1)
	assert.Len(t, res.TouchedIDs, 5)
}

func TestBatchImporterRetriesRowByRow(t *testing.T) {
	store := &fakeStore{conflictRows: map[int]bool{3: true}}
	bi := NewBatchImporter(store, 3, utils.GetLogger())

	res, err := bi.Load(context.Background(), sourceOf(makeRecords(3)))
	require.NoError(t, err)

	assert.Equal(t, 2, res.RowsSucceeded)
	assert.Equal(t, 1, res.RowsFailed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].RowNumber)
	assert.Equal(t, ReasonBatchConstraint, res.Errors[0].Reason)
	// The clean rows were applied individually after the batch rolled back.
	assert.Len(t, store.singles, 2)
}

func TestBatchImporterStopsOnCancel(t *testing.T) {
	store := &fakeStore{}
	cancelAfter := 2
	bi := NewBatchImporter(store, 2, utils.GetLogger()).
		WithCancelCheck(func(ctx context.Context) bool {
			return len(store.batches) >= cancelAfter
		})

	res, err := bi.Load(context.Background(), sourceOf(makeRecords(10)))
	require.NoError(t, err)

	assert.True(t, res.Cancelled)
	assert.Equal(t, 4, res.RowsSucceeded)
	assert.Len(t, store.batches, 2)
}

func TestBatchImporterPropagatesStoreUnavailable(t *testing.T) {
	store := &fakeStore{fatalAfter: 1}
	bi := NewBatchImporter(store, 2, utils.GetLogger())

	_, err := bi.Load(context.Background(), sourceOf(makeRecords(4)))
	require.Error(t, err)

	var unavailable *StoreUnavailableError
	assert.True(t, errors.As(err, &unavailable))
}

func TestBatchImporterReportsProgress(t *testing.T) {
	store := &fakeStore{}
	var seen []int
	bi := NewBatchImporter(store, 2, utils.GetLogger()).
		WithProgress(func(processed int) { seen = append(seen, processed) })

	_, err := bi.Load(context.Background(), sourceOf(makeRecords(4)))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, seen)
}
