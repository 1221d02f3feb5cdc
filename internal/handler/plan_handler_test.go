package handler

import (
	"database/sql"
	"testing"
	"time"

	"benefits-web/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnrollment() *models.PlanEnrollment {
	return &models.PlanEnrollment{
		ID:         42,
		EmployeeID: 7,
		Kind:       models.PlanKindHealth,
		Operator:   "Unimed",
		LinkedCode: "123456",
		Contract:   sql.NullString{String: "CT-889", Valid: true},
	}
}

func TestBuildVisitFillsDefaultsFromEnrollment(t *testing.T) {
	visit, problems := buildVisit(testEnrollment(), models.CopayVisitRequest{
		EnrollmentID: 42,
		Competence:   "202504",
		Beneficiary:  "  MARIA DA SILVA  ",
		VisitDate:    "12/04/2025",
		CopayValue:   "35,90",
	})
	require.Nil(t, problems)

	assert.Equal(t, 42, visit.EnrollmentID)
	assert.Equal(t, 7, visit.EmployeeID)
	assert.Equal(t, "MARIA DA SILVA", visit.Beneficiary)
	assert.Equal(t, "123456", visit.RegistrationCode)
	assert.Equal(t, "CT-889", visit.Contract.String)
	assert.Equal(t, time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC), visit.VisitDate)
	assert.Equal(t, "35.9", visit.CopayValue.String())
	assert.Equal(t, "1", visit.Quantity.String())
	assert.False(t, visit.BaseValue.Valid)
	assert.False(t, visit.NationalID.Valid)
}

func TestBuildVisitParsesOptionalFields(t *testing.T) {
	visit, problems := buildVisit(testEnrollment(), models.CopayVisitRequest{
		EnrollmentID: 42,
		Competence:   "202504",
		Beneficiary:  "MARIA DA SILVA",
		NationalID:   "123.456.789-09",
		Guide:        "G-1001",
		VisitDate:    "12/04/2025",
		Description:  "Consulta clinica",
		Quantity:     "2",
		BaseValue:    "180,00",
		CopayValue:   "36,00",
	})
	require.Nil(t, problems)

	assert.Equal(t, "12345678909", visit.NationalID.String)
	assert.Equal(t, "G-1001", visit.Guide.String)
	assert.Equal(t, "Consulta clinica", visit.Description.String)
	assert.Equal(t, "2", visit.Quantity.String())
	require.True(t, visit.BaseValue.Valid)
	assert.Equal(t, "180", visit.BaseValue.Decimal.String())
}

func TestBuildVisitCollectsProblems(t *testing.T) {
	visit, problems := buildVisit(testEnrollment(), models.CopayVisitRequest{
		EnrollmentID: 42,
		Competence:   "202504",
		Beneficiary:  "MARIA DA SILVA",
		NationalID:   "111.111.111-11",
		VisitDate:    "not-a-date",
		Quantity:     "-1",
		CopayValue:   "35,90",
	})
	require.Nil(t, visit)

	assert.Contains(t, problems, "national_id")
	assert.Contains(t, problems, "visit_date")
	assert.Contains(t, problems, "quantity")
}
