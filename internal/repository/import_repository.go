package repository

import (
	"context"

	"benefits-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type ImportRepository struct {
	db *sqlx.DB
}

func NewImportRepository(db *sqlx.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

func (r *ImportRepository) CreateBatch(ctx context.Context, batch *models.ImportBatch) error {
	query := `INSERT INTO import_batches (batch_code, import_type, user_id, filename, file_path, status)
	          VALUES (:batch_code, :import_type, :user_id, :filename, :file_path, :status)`
	result, err := r.db.NamedExecContext(ctx, query, batch)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	batch.ID = int(id)
	return nil
}

func (r *ImportRepository) UpdateStatus(ctx context.Context, batchID int, status string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE import_batches SET status = ? WHERE id = ? AND finalized_at IS NULL",
		status, batchID)
	return err
}

// FinalizeBatch writes the terminal counts exactly once. The predicate
// on finalized_at keeps a finalized batch immutable.
func (r *ImportRepository) FinalizeBatch(ctx context.Context, batch *models.ImportBatch) error {
	query := `UPDATE import_batches
	          SET status = :status, rows_total = :rows_total, rows_succeeded = :rows_succeeded,
	              rows_failed = :rows_failed, fail_reason = :fail_reason,
	              duration_ms = :duration_ms, finalized_at = :finalized_at
	          WHERE id = :id AND finalized_at IS NULL`
	_, err := r.db.NamedExecContext(ctx, query, batch)
	return err
}

func (r *ImportRepository) SaveRowErrors(ctx context.Context, batchID int, errs []models.ImportRowError) error {
	if len(errs) == 0 {
		return nil
	}

	// Chunk to stay well under the MySQL placeholder limit.
	const chunkSize = 5000

	for i := range errs {
		errs[i].BatchID = batchID
	}
	for i := 0; i < len(errs); i += chunkSize {
		end := i + chunkSize
		if end > len(errs) {
			end = len(errs)
		}
		query := "INSERT INTO import_row_errors (batch_id, `row_number`, field, reason, message)" +
			" VALUES (:batch_id, :row_number, :field, :reason, :message)"
		if _, err := r.db.NamedExecContext(ctx, query, errs[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *ImportRepository) FindBatchByCode(code string) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	query := "SELECT * FROM import_batches WHERE batch_code = ? LIMIT 1"
	if err := r.db.Get(&batch, query, code); err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *ImportRepository) GetBatches(limit, offset int) ([]models.ImportBatch, int, error) {
	var batches []models.ImportBatch
	var total int

	if err := r.db.Get(&total, "SELECT COUNT(*) FROM import_batches"); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM import_batches ORDER BY created_at DESC LIMIT ? OFFSET ?"
	if err := r.db.Select(&batches, query, limit, offset); err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

// GetRowErrors returns the full error report for a batch, beyond the
// first N surfaced in the summary.
func (r *ImportRepository) GetRowErrors(batchID int, limit, offset int) ([]models.ImportRowError, int, error) {
	var errs []models.ImportRowError
	var total int

	if err := r.db.Get(&total, "SELECT COUNT(*) FROM import_row_errors WHERE batch_id = ?", batchID); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM import_row_errors WHERE batch_id = ?" +
		" ORDER BY `row_number`, id LIMIT ? OFFSET ?"
	if err := r.db.Select(&errs, query, batchID, limit, offset); err != nil {
		return nil, 0, err
	}
	return errs, total, nil
}

func (r *ImportRepository) AllRowErrors(batchID int) ([]models.ImportRowError, error) {
	var errs []models.ImportRowError
	query := "SELECT * FROM import_row_errors WHERE batch_id = ? ORDER BY `row_number`, id"
	err := r.db.Select(&errs, query, batchID)
	return errs, err
}

// CountsByStatus feeds the dashboard.
func (r *ImportRepository) CountsByStatus() (map[string]int, error) {
	rows := []struct {
		Status string `db:"status"`
		Total  int    `db:"total"`
	}{}
	query := "SELECT status, COUNT(*) as total FROM import_batches GROUP BY status"
	if err := r.db.Select(&rows, query); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
