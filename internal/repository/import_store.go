package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"benefits-web/internal/models"
	"benefits-web/internal/service"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

const mysqlErrDuplicateEntry = 1062

// ImportStore applies normalized import records to the relational
// store. Each batch runs in one transaction so a failed batch rolls
// back without touching earlier commits; uniqueness violations are
// translated into ConstraintError so the importer can isolate them.
type ImportStore struct {
	db *sqlx.DB
}

func NewImportStore(db *sqlx.DB) *ImportStore {
	return &ImportStore{db: db}
}

func (s *ImportStore) ApplyBatch(ctx context.Context, records []*service.NormalizedRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &service.StoreUnavailableError{Err: err}
	}
	defer tx.Rollback()

	for _, rec := range records {
		if err := applyRecordTx(ctx, tx, rec); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return translateStoreError(err)
	}
	return nil
}

func (s *ImportStore) ApplyRecord(ctx context.Context, record *service.NormalizedRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return &service.StoreUnavailableError{Err: err}
	}
	defer tx.Rollback()

	if err := applyRecordTx(ctx, tx, record); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return translateStoreError(err)
	}
	return nil
}

func applyRecordTx(ctx context.Context, tx *sqlx.Tx, rec *service.NormalizedRecord) error {
	switch {
	case rec.Terminate:
		return terminateEmployeeTx(ctx, tx, rec)
	case rec.Enrollment != nil:
		return upsertEnrollmentTx(ctx, tx, rec)
	default:
		return upsertEmployeeTx(ctx, tx, rec)
	}
}

// upsertEmployeeTx creates or refreshes the employee keyed by national
// ID, reactivating soft-deleted rows, then assigns the imported
// registration code.
func upsertEmployeeTx(ctx context.Context, tx *sqlx.Tx, rec *service.NormalizedRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO employees (name, national_id, email, phone, hire_date, birth_date)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			email = COALESCE(VALUES(email), email),
			phone = COALESCE(VALUES(phone), phone),
			hire_date = COALESCE(VALUES(hire_date), hire_date),
			birth_date = COALESCE(VALUES(birth_date), birth_date),
			is_deleted = FALSE,
			deleted_at = NULL,
			deleted_reason = NULL`,
		rec.Name, rec.NationalID,
		nullString(rec.Email), nullString(rec.Phone),
		nullTime(rec.HireDate), nullTime(rec.BirthDate))
	if err != nil {
		return translateStoreError(err)
	}

	employeeID, err := employeeIDByNationalID(ctx, tx, rec.NationalID)
	if err != nil {
		return err
	}

	if rec.RegistrationCode != "" {
		startDate := rec.HireDate
		if startDate.IsZero() {
			startDate = time.Now()
		}
		if err := assignCodeTx(tx, employeeID, rec.RegistrationCode, rec.CompanyCode, startDate, "bulk import"); err != nil {
			return translateStoreError(err)
		}
	}
	return nil
}

// terminateEmployeeTx soft-deletes the employee, closes its codes and
// flags dependents. An unknown national ID is a row-level conflict.
func terminateEmployeeTx(ctx context.Context, tx *sqlx.Tx, rec *service.NormalizedRecord) error {
	employeeID, err := employeeIDByNationalID(ctx, tx, rec.NationalID)
	if err != nil {
		return err
	}

	deletedAt := rec.TerminationDate
	if deletedAt.IsZero() {
		deletedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE employees SET is_deleted = TRUE, deleted_at = ?, deleted_reason = 'terminated via import'
		WHERE id = ?`, deletedAt, employeeID); err != nil {
		return translateStoreError(err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE registration_codes SET active = FALSE, end_date = ?
		WHERE employee_id = ? AND active = TRUE`, deletedAt, employeeID); err != nil {
		return translateStoreError(err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE dependents SET orphaned = TRUE WHERE employee_id = ?`, employeeID); err != nil {
		return translateStoreError(err)
	}
	return nil
}

// upsertEnrollmentTx creates or refreshes the plan enrollment, keyed by
// employee, plan kind and operator.
func upsertEnrollmentTx(ctx context.Context, tx *sqlx.Tx, rec *service.NormalizedRecord) error {
	employeeID, err := employeeIDByNationalID(ctx, tx, rec.NationalID)
	if err != nil {
		return err
	}

	e := rec.Enrollment
	_, err = tx.ExecContext(ctx, `
		INSERT INTO plan_enrollments
			(employee_id, kind, operator, plan_name, contract, linked_code, company_code,
			 start_date, active, copay_type, monthly_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, TRUE, ?, ?)
		ON DUPLICATE KEY UPDATE
			plan_name = VALUES(plan_name),
			linked_code = VALUES(linked_code),
			monthly_value = VALUES(monthly_value),
			start_date = VALUES(start_date),
			active = TRUE,
			end_date = NULL`,
		employeeID, e.Kind, e.Operator, e.PlanName, e.Contract, e.LinkedCode,
		rec.CompanyCode, e.StartDate, e.CopayType, e.MonthlyValue)
	if err != nil {
		return translateStoreError(err)
	}
	return nil
}

func employeeIDByNationalID(ctx context.Context, tx *sqlx.Tx, nationalID string) (int, error) {
	var id int
	err := tx.GetContext(ctx, &id, "SELECT id FROM employees WHERE national_id = ? LIMIT 1", nationalID)
	if err == sql.ErrNoRows {
		return 0, &service.ConstraintError{Message: "no employee registered for this national ID"}
	}
	if err != nil {
		return 0, translateStoreError(err)
	}
	return id, nil
}

// translateStoreError sorts driver failures into the import taxonomy:
// duplicate-key errors are row conflicts, other MySQL errors (lock
// waits, statement timeouts) stay batch-scoped and trigger the
// row-by-row retry, and anything else means the store is unreachable.
func translateStoreError(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if myErr.Number == mysqlErrDuplicateEntry {
			return &service.ConstraintError{Message: "record conflicts with an existing one"}
		}
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &service.StoreUnavailableError{Err: err}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// AuditStore queries, scoped to the touched national IDs when given.

func (s *ImportStore) DuplicateActiveNationalIDs(ctx context.Context, ids []string) ([]string, error) {
	query := `SELECT national_id FROM employees
	          WHERE is_deleted = FALSE`
	args := []interface{}{}
	if len(ids) > 0 {
		in, inArgs, err := sqlx.In(" AND national_id IN (?)", ids)
		if err != nil {
			return nil, err
		}
		query += in
		args = append(args, inArgs...)
	}
	query += ` GROUP BY national_id HAVING COUNT(*) > 1`

	var duplicates []string
	if err := s.db.SelectContext(ctx, &duplicates, query, args...); err != nil {
		return nil, err
	}
	return duplicates, nil
}

func (s *ImportStore) EnrolledWithoutActiveCode(ctx context.Context, ids []string) ([]models.Employee, error) {
	query := `SELECT DISTINCT e.id, e.name, e.national_id
	          FROM employees e
	          JOIN plan_enrollments pe ON pe.employee_id = e.id AND pe.active = TRUE
	          LEFT JOIN registration_codes rc ON rc.employee_id = e.id AND rc.active = TRUE
	          WHERE e.is_deleted = FALSE AND rc.id IS NULL`
	args := []interface{}{}
	if len(ids) > 0 {
		in, inArgs, err := sqlx.In(" AND e.national_id IN (?)", ids)
		if err != nil {
			return nil, err
		}
		query += in
		args = append(args, inArgs...)
	}

	var employees []models.Employee
	if err := s.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, err
	}
	return employees, nil
}

func (s *ImportStore) OrphanedDependents(ctx context.Context, ids []string) ([]models.Dependent, error) {
	query := `SELECT d.id, d.employee_id, d.name, d.linked_code, d.orphaned
	          FROM dependents d
	          JOIN employees e ON e.id = d.employee_id
	          WHERE e.is_deleted = TRUE`
	args := []interface{}{}
	if len(ids) > 0 {
		in, inArgs, err := sqlx.In(" AND e.national_id IN (?)", ids)
		if err != nil {
			return nil, err
		}
		query += in
		args = append(args, inArgs...)
	}

	var dependents []models.Dependent
	if err := s.db.SelectContext(ctx, &dependents, query, args...); err != nil {
		return nil, err
	}
	return dependents, nil
}
