package repository

import (
	"database/sql"
	"fmt"
	"time"

	"benefits-web/internal/models"

	"github.com/jmoiron/sqlx"
)

type EmployeeRepository struct {
	db *sqlx.DB
}

func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) FindAll(limit, offset int, search string, includeDeleted bool) ([]models.Employee, int, error) {
	var employees []models.Employee
	var total int

	whereClause := "WHERE 1=1"
	args := []interface{}{}

	if !includeDeleted {
		whereClause += " AND is_deleted = FALSE"
	}
	if search != "" {
		whereClause += " AND (name LIKE ? OR national_id LIKE ?)"
		searchPattern := "%" + search + "%"
		args = append(args, searchPattern, searchPattern)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees %s", whereClause)
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, name, national_id, email, phone, hire_date, birth_date,
		       is_deleted, deleted_at, deleted_reason, created_at, updated_at
		FROM employees %s
		ORDER BY name
		LIMIT ? OFFSET ?`, whereClause)
	args = append(args, limit, offset)
	if err := r.db.Select(&employees, query, args...); err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

func (r *EmployeeRepository) FindByID(id int) (*models.Employee, error) {
	var employee models.Employee
	query := "SELECT * FROM employees WHERE id = ? LIMIT 1"
	if err := r.db.Get(&employee, query, id); err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *EmployeeRepository) FindByNationalID(nationalID string) (*models.Employee, error) {
	var employee models.Employee
	query := "SELECT * FROM employees WHERE national_id = ? LIMIT 1"
	if err := r.db.Get(&employee, query, nationalID); err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *EmployeeRepository) Create(employee *models.Employee) error {
	query := `INSERT INTO employees (name, national_id, email, phone, hire_date, birth_date)
	          VALUES (:name, :national_id, :email, :phone, :hire_date, :birth_date)`
	result, err := r.db.NamedExec(query, employee)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	employee.ID = int(id)
	return nil
}

func (r *EmployeeRepository) Update(employee *models.Employee) error {
	query := `UPDATE employees SET name = :name, national_id = :national_id,
	          email = :email, phone = :phone, hire_date = :hire_date, birth_date = :birth_date
	          WHERE id = :id`
	_, err := r.db.NamedExec(query, employee)
	return err
}

// SoftDelete marks the employee deleted, closes its active registration
// codes and flags its dependents for review. The row itself is kept.
func (r *EmployeeRepository) SoftDelete(id int, reason string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	_, err = tx.Exec(`UPDATE employees SET is_deleted = TRUE, deleted_at = ?, deleted_reason = ?
	                  WHERE id = ? AND is_deleted = FALSE`, now, reason, id)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`UPDATE registration_codes SET active = FALSE, end_date = ?
	                  WHERE employee_id = ? AND active = TRUE`, now, id)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`UPDATE dependents SET orphaned = TRUE WHERE employee_id = ?`, id)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Restore reactivates a soft-deleted employee and clears the orphan
// flag on its dependents. Closed registration codes stay closed; a new
// one must be assigned explicitly.
func (r *EmployeeRepository) Restore(id int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`UPDATE employees SET is_deleted = FALSE, deleted_at = NULL, deleted_reason = NULL
	                  WHERE id = ?`, id)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`UPDATE dependents SET orphaned = FALSE WHERE employee_id = ?`, id)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *EmployeeRepository) ActiveCode(employeeID int) (*models.RegistrationCode, error) {
	var code models.RegistrationCode
	query := `SELECT * FROM registration_codes
	          WHERE employee_id = ? AND active = TRUE
	          ORDER BY start_date DESC LIMIT 1`
	if err := r.db.Get(&code, query, employeeID); err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *EmployeeRepository) CodeHistory(employeeID int) ([]models.RegistrationCode, error) {
	var codes []models.RegistrationCode
	query := `SELECT * FROM registration_codes
	          WHERE employee_id = ?
	          ORDER BY start_date DESC, id DESC`
	err := r.db.Select(&codes, query, employeeID)
	return codes, err
}

// AssignCode gives the employee a new active registration code, closing
// whatever code was active before. Re-assigning a code the employee
// held earlier reactivates the old row instead of inserting a twin.
func (r *EmployeeRepository) AssignCode(employeeID int, code, companyCode string, startDate time.Time, reason string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := assignCodeTx(tx, employeeID, code, companyCode, startDate, reason); err != nil {
		return err
	}
	return tx.Commit()
}

// assignCodeTx is the transactional body of AssignCode, shared with the
// bulk import path.
func assignCodeTx(tx *sqlx.Tx, employeeID int, code, companyCode string, startDate time.Time, reason string) error {
	var currentID int
	err := tx.Get(&currentID, `SELECT id FROM registration_codes
	                           WHERE employee_id = ? AND code = ? AND active = TRUE LIMIT 1`,
		employeeID, code)
	if err == nil {
		// Already the active code, nothing to change.
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}

	now := time.Now()
	if _, err := tx.Exec(`UPDATE registration_codes SET active = FALSE, end_date = ?
	                      WHERE employee_id = ? AND active = TRUE`, now, employeeID); err != nil {
		return err
	}

	var dormantID int
	err = tx.Get(&dormantID, `SELECT id FROM registration_codes
	                          WHERE employee_id = ? AND code = ? AND active = FALSE LIMIT 1`,
		employeeID, code)
	if err == nil {
		_, err = tx.Exec(`UPDATE registration_codes
		                  SET active = TRUE, end_date = NULL, start_date = ?, company_code = ?, change_reason = ?
		                  WHERE id = ?`, startDate, companyCode, reason, dormantID)
		return err
	}
	if err != sql.ErrNoRows {
		return err
	}

	var changeReason sql.NullString
	if reason != "" {
		changeReason = sql.NullString{String: reason, Valid: true}
	}
	_, err = tx.Exec(`INSERT INTO registration_codes (employee_id, code, company_code, start_date, active, change_reason)
	                  VALUES (?, ?, ?, ?, TRUE, ?)`,
		employeeID, code, companyCode, startDate, changeReason)
	return err
}

func (r *EmployeeRepository) ListDependents(employeeID int) ([]models.Dependent, error) {
	var dependents []models.Dependent
	query := "SELECT * FROM dependents WHERE employee_id = ? ORDER BY name"
	err := r.db.Select(&dependents, query, employeeID)
	return dependents, err
}

func (r *EmployeeRepository) CreateDependent(dependent *models.Dependent) error {
	query := `INSERT INTO dependents (employee_id, name, national_id, birth_date, relationship, linked_code)
	          VALUES (:employee_id, :name, :national_id, :birth_date, :relationship, :linked_code)`
	result, err := r.db.NamedExec(query, dependent)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	dependent.ID = int(id)
	return nil
}

func (r *EmployeeRepository) UpdateDependent(dependent *models.Dependent) error {
	query := `UPDATE dependents SET name = :name, national_id = :national_id,
	          birth_date = :birth_date, relationship = :relationship,
	          linked_code = :linked_code, orphaned = :orphaned
	          WHERE id = :id`
	_, err := r.db.NamedExec(query, dependent)
	return err
}

func (r *EmployeeRepository) DeleteDependent(id int) error {
	_, err := r.db.Exec("DELETE FROM dependents WHERE id = ?", id)
	return err
}

// Counts returns the dashboard totals.
func (r *EmployeeRepository) Counts() (active int, deleted int, err error) {
	if err = r.db.Get(&active, "SELECT COUNT(*) FROM employees WHERE is_deleted = FALSE"); err != nil {
		return 0, 0, err
	}
	if err = r.db.Get(&deleted, "SELECT COUNT(*) FROM employees WHERE is_deleted = TRUE"); err != nil {
		return 0, 0, err
	}
	return active, deleted, nil
}
