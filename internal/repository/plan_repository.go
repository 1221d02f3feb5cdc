package repository

import (
	"time"

	"benefits-web/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PlanRepository struct {
	db *sqlx.DB
}

func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) FindByEmployee(employeeID int) ([]models.PlanEnrollment, error) {
	var enrollments []models.PlanEnrollment
	query := `SELECT * FROM plan_enrollments WHERE employee_id = ?
	          ORDER BY active DESC, start_date DESC`
	err := r.db.Select(&enrollments, query, employeeID)
	return enrollments, err
}

func (r *PlanRepository) FindByID(id int) (*models.PlanEnrollment, error) {
	var enrollment models.PlanEnrollment
	if err := r.db.Get(&enrollment, "SELECT * FROM plan_enrollments WHERE id = ? LIMIT 1", id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *PlanRepository) Create(enrollment *models.PlanEnrollment) error {
	query := `INSERT INTO plan_enrollments
	          (employee_id, kind, operator, plan_name, contract, linked_code, company_code,
	           start_date, active, copay_type, monthly_value)
	          VALUES (:employee_id, :kind, :operator, :plan_name, :contract, :linked_code,
	           :company_code, :start_date, :active, :copay_type, :monthly_value)`
	result, err := r.db.NamedExec(query, enrollment)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	enrollment.ID = int(id)
	return nil
}

func (r *PlanRepository) Update(enrollment *models.PlanEnrollment) error {
	query := `UPDATE plan_enrollments SET plan_name = :plan_name, contract = :contract,
	          linked_code = :linked_code, company_code = :company_code,
	          start_date = :start_date, end_date = :end_date, active = :active,
	          copay_type = :copay_type, monthly_value = :monthly_value
	          WHERE id = :id`
	_, err := r.db.NamedExec(query, enrollment)
	return err
}

// Close ends an enrollment without deleting it, for audit trail.
func (r *PlanRepository) Close(id int) error {
	_, err := r.db.Exec(`UPDATE plan_enrollments SET active = FALSE, end_date = ?
	                     WHERE id = ? AND active = TRUE`, time.Now(), id)
	return err
}

func (r *PlanRepository) CreateVisit(visit *models.CopayVisit) error {
	query := `INSERT INTO copay_visits
	          (enrollment_id, employee_id, competence, contract, national_id, beneficiary,
	           registration_code, guide, visit_date, description, quantity, base_value, copay_value)
	          VALUES (:enrollment_id, :employee_id, :competence, :contract, :national_id,
	           :beneficiary, :registration_code, :guide, :visit_date, :description,
	           :quantity, :base_value, :copay_value)`
	result, err := r.db.NamedExec(query, visit)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	visit.ID = int(id)
	return nil
}

func (r *PlanRepository) FindVisitsByEmployee(employeeID int) ([]models.CopayVisit, error) {
	var visits []models.CopayVisit
	query := `SELECT * FROM copay_visits WHERE employee_id = ?
	          ORDER BY visit_date DESC, id DESC`
	err := r.db.Select(&visits, query, employeeID)
	return visits, err
}

// VisitTotalsByEmployee sums the statement lines per enrollment and
// derives the co-participation share of the billed total.
func (r *PlanRepository) VisitTotalsByEmployee(employeeID int) ([]models.CopayTotals, error) {
	var totals []models.CopayTotals
	query := `SELECT enrollment_id,
	                 COALESCE(SUM(base_value), 0) AS total_base,
	                 COALESCE(SUM(copay_value), 0) AS total_copay
	          FROM copay_visits WHERE employee_id = ?
	          GROUP BY enrollment_id`
	if err := r.db.Select(&totals, query, employeeID); err != nil {
		return nil, err
	}

	hundred := decimal.NewFromInt(100)
	for i := range totals {
		if totals[i].TotalBase.IsPositive() {
			totals[i].Percent = totals[i].TotalCopay.Div(totals[i].TotalBase).Mul(hundred).Round(2)
		}
	}
	return totals, nil
}

func (r *PlanRepository) CountActiveByKind() (map[string]int, error) {
	rows := []struct {
		Kind  string `db:"kind"`
		Total int    `db:"total"`
	}{}
	query := `SELECT kind, COUNT(*) as total FROM plan_enrollments
	          WHERE active = TRUE GROUP BY kind`
	if err := r.db.Select(&rows, query); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Kind] = row.Total
	}
	return counts, nil
}
