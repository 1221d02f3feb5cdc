package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Plan kinds
const (
	PlanKindHealth = "HEALTH"
	PlanKindDental = "DENTAL"
)

// Co-payment terms
const (
	CopayTypeMonthly  = "MONTHLY"
	CopayTypeCopay    = "COPAY"
	CopayTypeCombined = "COMBINED"
)

// PlanEnrollment associates an employee with a health or dental plan
// from an operator. Many enrollments per employee, one employee per
// enrollment.
type PlanEnrollment struct {
	ID           int                 `db:"id" json:"id"`
	EmployeeID   int                 `db:"employee_id" json:"employee_id"`
	Kind         string              `db:"kind" json:"kind"`
	Operator     string              `db:"operator" json:"operator"`
	PlanName     string              `db:"plan_name" json:"plan_name"`
	Contract     sql.NullString      `db:"contract" json:"contract"`
	LinkedCode   string              `db:"linked_code" json:"linked_code"`
	CompanyCode  string              `db:"company_code" json:"company_code"`
	StartDate    time.Time           `db:"start_date" json:"start_date"`
	EndDate      sql.NullTime        `db:"end_date" json:"end_date"`
	Active       bool                `db:"active" json:"active"`
	CopayType    string              `db:"copay_type" json:"copay_type"`
	MonthlyValue decimal.NullDecimal `db:"monthly_value" json:"monthly_value"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`
}

// CopayVisit is one co-participation line from an operator's monthly
// statement: a consultation, exam or procedure charged back against
// the enrollment. Competence is the statement month as YYYYMM.
type CopayVisit struct {
	ID               int                 `db:"id" json:"id"`
	EnrollmentID     int                 `db:"enrollment_id" json:"enrollment_id"`
	EmployeeID       int                 `db:"employee_id" json:"employee_id"`
	Competence       string              `db:"competence" json:"competence"`
	Contract         sql.NullString      `db:"contract" json:"contract"`
	NationalID       sql.NullString      `db:"national_id" json:"national_id"`
	Beneficiary      string              `db:"beneficiary" json:"beneficiary"`
	RegistrationCode string              `db:"registration_code" json:"registration_code"`
	Guide            sql.NullString      `db:"guide" json:"guide"`
	VisitDate        time.Time           `db:"visit_date" json:"visit_date"`
	Description      sql.NullString      `db:"description" json:"description"`
	Quantity         decimal.Decimal     `db:"quantity" json:"quantity"`
	BaseValue        decimal.NullDecimal `db:"base_value" json:"base_value"`
	CopayValue       decimal.Decimal     `db:"copay_value" json:"copay_value"`
	CreatedAt        time.Time           `db:"created_at" json:"created_at"`
}

// CopayTotals aggregates an enrollment's visits: what the operator
// billed and what the employee co-paid.
type CopayTotals struct {
	EnrollmentID int             `db:"enrollment_id" json:"enrollment_id"`
	TotalBase    decimal.Decimal `db:"total_base" json:"total_base"`
	TotalCopay   decimal.Decimal `db:"total_copay" json:"total_copay"`
	Percent      decimal.Decimal `db:"-" json:"percent"`
}
