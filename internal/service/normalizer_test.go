package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCompanyCodes = map[string]string{"0101": "Matriz", "0106": "Filial Nordeste"}

func activeEmployeeRow(number int, overrides map[string]string) RawRow {
	values := map[string]string{
		"MATRICULA":          "00123456",
		"NOME COLABORADOR":   "JOÃO DA SILVA",
		"CPF":                "123.456.789-09",
		"DATA ADMISSÃO":      "15/03/2022",
		"DATA DE NASCIMENTO": "31/12/1990",
		"E-MAIL PESSOAL":     "joao.silva@example.com",
		"TELEFONE":           "11987654321",
		"EMPRESA":            "0101",
	}
	for k, v := range overrides {
		values[k] = v
	}
	columns := []string{"MATRICULA", "NOME COLABORADOR", "CPF", "DATA ADMISSÃO",
		"DATA DE NASCIMENTO", "E-MAIL PESSOAL", "TELEFONE", "EMPRESA"}
	return RawRow{Number: number, Columns: columns, Values: values}
}

func TestNormalizeActiveEmployee(t *testing.T) {
	n := NewNormalizer(ImportActiveEmployees, testCompanyCodes)

	rec, errs := n.Normalize(activeEmployeeRow(2, nil))
	require.Empty(t, errs)

	assert.Equal(t, 2, rec.RowNumber)
	assert.Equal(t, "12345678909", rec.NationalID)
	assert.Equal(t, "João da Silva", rec.Name)
	assert.Equal(t, "123456", rec.RegistrationCode)
	assert.Equal(t, "joao.silva@example.com", rec.Email)
	assert.Equal(t, "(11) 98765-4321", rec.Phone)
	assert.Equal(t, "0101", rec.CompanyCode)
	assert.Equal(t, time.Date(2022, 3, 15, 0, 0, 0, 0, time.UTC), rec.HireDate)
	assert.False(t, rec.Terminate)
	assert.Nil(t, rec.Enrollment)
}

func TestNormalizeCollectsAllFieldErrors(t *testing.T) {
	n := NewNormalizer(ImportActiveEmployees, testCompanyCodes)

	_, errs := n.Normalize(activeEmployeeRow(3, map[string]string{
		"CPF":            "111.111.111-11",
		"E-MAIL PESSOAL": "not-an-email",
		"TELEFONE":       "123",
	}))
	require.Len(t, errs, 3)

	byField := map[string]string{}
	for _, e := range errs {
		assert.Equal(t, 3, e.RowNumber)
		byField[e.Field] = e.Reason
	}
	assert.Equal(t, ReasonChecksumFailed, byField["national_id"])
	assert.Equal(t, ReasonFormatInvalid, byField["email"])
	assert.Equal(t, ReasonFormatInvalid, byField["phone"])
}

func TestNormalizeRequiredMissing(t *testing.T) {
	n := NewNormalizer(ImportActiveEmployees, testCompanyCodes)

	_, errs := n.Normalize(activeEmployeeRow(4, map[string]string{
		"CPF":              "",
		"NOME COLABORADOR": "   ",
	}))
	require.NotEmpty(t, errs)

	reasons := map[string]string{}
	for _, e := range errs {
		reasons[e.Field] = e.Reason
	}
	assert.Equal(t, ReasonRequiredMissing, reasons["national_id"])
	assert.Equal(t, ReasonRequiredMissing, reasons["name"])
}

func TestNormalizeStructureError(t *testing.T) {
	n := NewNormalizer(ImportActiveEmployees, testCompanyCodes)

	row := RawRow{
		Number:  2,
		Columns: []string{"NOME COLABORADOR"},
		Values:  map[string]string{"NOME COLABORADOR": "Ana"},
	}
	rec, errs := n.Normalize(row)
	assert.Nil(t, rec)
	require.Len(t, errs, 1)
	assert.Equal(t, ReasonStructureError, errs[0].Reason)
	assert.Equal(t, 2, errs[0].RowNumber)
}

func TestNormalizeTerminatedEmployee(t *testing.T) {
	n := NewNormalizer(ImportTerminatedEmployees, testCompanyCodes)

	row := RawRow{
		Number:  2,
		Columns: []string{"CPF", "DATA DEMISSÃO"},
		Values:  map[string]string{"CPF": "123.456.789-09", "DATA DEMISSÃO": "10/01/2024"},
	}
	rec, errs := n.Normalize(row)
	require.Empty(t, errs)
	assert.True(t, rec.Terminate)
	assert.Equal(t, "12345678909", rec.NationalID)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), rec.TerminationDate)
}

func TestNormalizeHealthProviderB(t *testing.T) {
	n := NewNormalizer(ImportHealthPlanProviderB, testCompanyCodes)

	row := RawRow{
		Number:  5,
		Columns: []string{"BENEFICIARIO", "CPF", "VALOR"},
		Values: map[string]string{
			"BENEFICIARIO": "0AFP5000442003-LUIZ GUSTAVO SANTINI",
			"CPF":          "123.456.789-09",
			"VALOR":        "R$ 1.234,56",
		},
	}
	rec, errs := n.Normalize(row)
	require.Empty(t, errs)

	assert.Equal(t, "Luiz Gustavo Santini", rec.Name)
	assert.Equal(t, "442003", rec.RegistrationCode)
	require.NotNil(t, rec.Enrollment)
	assert.Equal(t, "HAPVIDA", rec.Enrollment.Operator)
	assert.Equal(t, "HEALTH", rec.Enrollment.Kind)
	assert.Equal(t, "442003", rec.Enrollment.LinkedCode)
	assert.Equal(t, "1234.56", rec.Enrollment.MonthlyValue.Decimal.String())
}

func TestNormalizeDentalProvider(t *testing.T) {
	n := NewNormalizer(ImportDentalPlanProvider, testCompanyCodes)

	row := RawRow{
		Number:  2,
		Columns: []string{"MATRICULA", "NOME", "CPF", "VALOR"},
		Values: map[string]string{
			"MATRICULA": "123456",
			"NOME":      "MARIA DOS SANTOS",
			"CPF":       "123.456.789-09",
			"VALOR":     "5622",
		},
	}
	rec, errs := n.Normalize(row)
	require.Empty(t, errs)
	require.NotNil(t, rec.Enrollment)
	assert.Equal(t, "ODONTOPREV", rec.Enrollment.Operator)
	assert.Equal(t, "DENTAL", rec.Enrollment.Kind)
	assert.Equal(t, "56.22", rec.Enrollment.MonthlyValue.Decimal.String())
}
