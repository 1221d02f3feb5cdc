package models

// EmployeeRequest is the payload for manual create/update. National ID
// and dates go through the same field validators as imported rows.
type EmployeeRequest struct {
	Name             string `json:"name" validate:"required,max=200"`
	NationalID       string `json:"national_id" validate:"required"`
	Email            string `json:"email" validate:"omitempty,email"`
	Phone            string `json:"phone"`
	HireDate         string `json:"hire_date"`
	BirthDate        string `json:"birth_date"`
	RegistrationCode string `json:"registration_code"`
	CompanyCode      string `json:"company_code"`
}

type SoftDeleteRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type AssignCodeRequest struct {
	Code        string `json:"code" validate:"required,max=20"`
	CompanyCode string `json:"company_code" validate:"required"`
	StartDate   string `json:"start_date"`
	Reason      string `json:"reason" validate:"omitempty,max=200"`
}

type ImportUploadRequest struct {
	ImportType string `json:"import_type" form:"import_type" validate:"required"`
}

type DependentRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	NationalID   string `json:"national_id"`
	BirthDate    string `json:"birth_date"`
	Relationship string `json:"relationship" validate:"omitempty,max=50"`
	LinkedCode   string `json:"linked_code" validate:"required"`
}

type EnrollmentRequest struct {
	Kind         string `json:"kind" validate:"required,oneof=HEALTH DENTAL"`
	Operator     string `json:"operator" validate:"required,max=100"`
	PlanName     string `json:"plan_name" validate:"required,max=100"`
	Contract     string `json:"contract"`
	LinkedCode   string `json:"linked_code" validate:"required"`
	CompanyCode  string `json:"company_code" validate:"required"`
	StartDate    string `json:"start_date" validate:"required"`
	CopayType    string `json:"copay_type" validate:"omitempty,oneof=MONTHLY COPAY COMBINED"`
	MonthlyValue string `json:"monthly_value"`
}

type CopayVisitRequest struct {
	EnrollmentID int    `json:"enrollment_id" validate:"required"`
	Competence   string `json:"competence" validate:"required,len=6,numeric"`
	Contract     string `json:"contract"`
	NationalID   string `json:"national_id"`
	Beneficiary  string `json:"beneficiary" validate:"required,max=200"`
	Guide        string `json:"guide"`
	VisitDate    string `json:"visit_date" validate:"required"`
	Description  string `json:"description" validate:"omitempty,max=255"`
	Quantity     string `json:"quantity"`
	BaseValue    string `json:"base_value"`
	CopayValue   string `json:"copay_value" validate:"required"`
}
