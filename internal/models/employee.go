package models

import (
	"database/sql"
	"time"
)

// Employee is an internal employee record (CI). Employees are never
// hard-deleted; termination marks the record deleted and closes its
// registration codes.
type Employee struct {
	ID         int            `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	NationalID string         `db:"national_id" json:"national_id"`
	Email      sql.NullString `db:"email" json:"email"`
	Phone      sql.NullString `db:"phone" json:"phone"`
	HireDate   sql.NullTime   `db:"hire_date" json:"hire_date"`
	BirthDate  sql.NullTime   `db:"birth_date" json:"birth_date"`

	IsDeleted     bool           `db:"is_deleted" json:"is_deleted"`
	DeletedAt     sql.NullTime   `db:"deleted_at" json:"deleted_at"`
	DeletedReason sql.NullString `db:"deleted_reason" json:"deleted_reason"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RegistrationCode is an NC assignment. An employee has at most one
// active code at a time; assigning a new one closes the previous.
type RegistrationCode struct {
	ID           int            `db:"id" json:"id"`
	EmployeeID   int            `db:"employee_id" json:"employee_id"`
	Code         string         `db:"code" json:"code"`
	CompanyCode  string         `db:"company_code" json:"company_code"`
	StartDate    time.Time      `db:"start_date" json:"start_date"`
	EndDate      sql.NullTime   `db:"end_date" json:"end_date"`
	Active       bool           `db:"active" json:"active"`
	ChangeReason sql.NullString `db:"change_reason" json:"change_reason"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// Dependent belongs to exactly one employee. Soft-deleting the employee
// does not delete dependents; they are flagged orphaned for review.
type Dependent struct {
	ID           int            `db:"id" json:"id"`
	EmployeeID   int            `db:"employee_id" json:"employee_id"`
	Name         string         `db:"name" json:"name"`
	NationalID   sql.NullString `db:"national_id" json:"national_id"`
	BirthDate    sql.NullTime   `db:"birth_date" json:"birth_date"`
	Relationship sql.NullString `db:"relationship" json:"relationship"`
	LinkedCode   string         `db:"linked_code" json:"linked_code"`
	Orphaned     bool           `db:"orphaned" json:"orphaned"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}
