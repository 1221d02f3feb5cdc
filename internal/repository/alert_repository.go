package repository

import (
	"context"
	"database/sql"
	"time"

	"benefits-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type AlertRepository struct {
	db *sqlx.DB
}

func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// CreateIfAbsent stores the alert unless an unresolved one already
// exists for the same category and subject. The existing alert id is
// returned in that case so findings are never double-reported.
func (r *AlertRepository) CreateIfAbsent(ctx context.Context, alert *models.Alert) (bool, int, error) {
	var existingID int
	err := r.db.GetContext(ctx, &existingID,
		`SELECT id FROM alerts WHERE category = ? AND subject_ref = ? AND resolved = FALSE LIMIT 1`,
		alert.Category, alert.SubjectRef)
	if err == nil {
		return false, existingID, nil
	}
	if err != sql.ErrNoRows {
		return false, 0, err
	}

	query := `INSERT INTO alerts (category, severity, message, subject_ref, batch_code)
	          VALUES (:category, :severity, :message, :subject_ref, :batch_code)`
	result, err := r.db.NamedExecContext(ctx, query, alert)
	if err != nil {
		return false, 0, err
	}
	id, _ := result.LastInsertId()
	alert.ID = int(id)
	return true, alert.ID, nil
}

func (r *AlertRepository) FindByID(id int) (*models.Alert, error) {
	var alert models.Alert
	if err := r.db.Get(&alert, "SELECT * FROM alerts WHERE id = ? LIMIT 1", id); err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *AlertRepository) FindAll(limit, offset int, onlyUnresolved bool, severity, category string) ([]models.Alert, int, error) {
	var alerts []models.Alert
	var total int

	whereClause := "WHERE 1=1"
	args := []interface{}{}

	if onlyUnresolved {
		whereClause += " AND resolved = FALSE"
	}
	if severity != "" {
		whereClause += " AND severity = ?"
		args = append(args, severity)
	}
	if category != "" {
		whereClause += " AND category = ?"
		args = append(args, category)
	}

	if err := r.db.Get(&total, "SELECT COUNT(*) FROM alerts "+whereClause, args...); err != nil {
		return nil, 0, err
	}

	query := `SELECT * FROM alerts ` + whereClause + `
	          ORDER BY FIELD(severity, 'HIGH', 'MEDIUM', 'LOW'), created_at DESC
	          LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	if err := r.db.Select(&alerts, query, args...); err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}

// Resolve closes an alert on behalf of an operator. Resolving twice is
// a no-op.
func (r *AlertRepository) Resolve(id int, userID int) error {
	_, err := r.db.Exec(`UPDATE alerts SET resolved = TRUE, resolved_at = ?, resolved_by = ?
	                     WHERE id = ? AND resolved = FALSE`, time.Now(), userID, id)
	return err
}

// Reopen puts a resolved alert back in the unresolved queue.
func (r *AlertRepository) Reopen(id int) error {
	_, err := r.db.Exec(`UPDATE alerts SET resolved = FALSE, resolved_at = NULL, resolved_by = NULL
	                     WHERE id = ? AND resolved = TRUE`, id)
	return err
}

func (r *AlertRepository) CountUnresolved() (map[string]int, error) {
	rows := []struct {
		Severity string `db:"severity"`
		Total    int    `db:"total"`
	}{}
	query := `SELECT severity, COUNT(*) as total FROM alerts
	          WHERE resolved = FALSE GROUP BY severity`
	if err := r.db.Select(&rows, query); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Severity] = row.Total
	}
	return counts, nil
}
