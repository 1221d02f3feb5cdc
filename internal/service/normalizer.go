package service

import (
	"strings"
	"time"

	"benefits-web/internal/models"

	"github.com/shopspring/decimal"
)

// NormalizedRecord is one import row after validation, ready for the
// batch importer. Employee imports fill the identity fields; plan
// imports additionally carry an enrollment keyed by registration code.
type NormalizedRecord struct {
	RowNumber int

	NationalID       string
	Name             string
	Email            string
	Phone            string
	HireDate         time.Time
	BirthDate        time.Time
	RegistrationCode string
	CompanyCode      string

	// Terminate marks the employee soft-deleted instead of upserted.
	Terminate       bool
	TerminationDate time.Time

	Enrollment *models.PlanEnrollment
}

// Normalizer maps raw rows of one import type onto normalized records,
// collecting field errors instead of failing. A malformed row is
// reported and skipped; only a structurally unreadable row (required
// column absent) produces a STRUCTURE_ERROR.
type Normalizer struct {
	importType   ImportType
	schema       importSchema
	companyCodes map[string]string
}

func NewNormalizer(importType ImportType, companyCodes map[string]string) *Normalizer {
	return &Normalizer{
		importType:   importType,
		schema:       importSchemas[importType],
		companyCodes: companyCodes,
	}
}

// Normalize validates one raw row. It returns the record draft together
// with every field error found; the record is importable only when the
// error list is empty.
func (n *Normalizer) Normalize(row RawRow) (*NormalizedRecord, []models.ImportRowError) {
	for _, col := range n.schema.requiredColumns {
		if _, ok := row.Values[col]; !ok {
			return nil, []models.ImportRowError{{
				RowNumber: row.Number,
				Field:     strings.ToLower(col),
				Reason:    ReasonStructureError,
				Message:   "row is missing column " + col,
			}}
		}
	}

	switch n.importType {
	case ImportActiveEmployees:
		return n.normalizeActiveEmployee(row)
	case ImportTerminatedEmployees:
		return n.normalizeTerminatedEmployee(row)
	case ImportHealthPlanProviderA, ImportDentalPlanProvider:
		return n.normalizeProviderRow(row, row.Values["MATRICULA"], row.Values["NOME"])
	case ImportHealthPlanProviderB:
		code, name := splitBeneficiary(row.Values["BENEFICIARIO"])
		return n.normalizeProviderRow(row, code, name)
	default:
		// ParseImportType guards the entry point; this is unreachable
		// for accepted types.
		return nil, []models.ImportRowError{{
			RowNumber: row.Number,
			Reason:    ReasonStructureError,
			Message:   "no schema for import type " + string(n.importType),
		}}
	}
}

func (n *Normalizer) normalizeActiveEmployee(row RawRow) (*NormalizedRecord, []models.ImportRowError) {
	rec := &NormalizedRecord{RowNumber: row.Number}
	var errs []models.ImportRowError

	rec.NationalID = n.requireNationalID(row, "CPF", &errs)

	rec.Name = CleanName(row.Values["NOME COLABORADOR"])
	if rec.Name == "" {
		errs = appendRowError(errs, row.Number, "name", &FieldError{
			Reason: ReasonRequiredMissing, Message: "employee name is required",
		})
	}

	if code, ferr := CleanRegistrationCode(row.Values["MATRICULA"]); ferr != nil {
		if strings.TrimSpace(row.Values["MATRICULA"]) == "" {
			ferr = &FieldError{Reason: ReasonRequiredMissing, Message: "registration code is required"}
		}
		errs = appendRowError(errs, row.Number, "registration_code", ferr)
	} else {
		rec.RegistrationCode = code
	}

	if raw := strings.TrimSpace(row.Values["E-MAIL PESSOAL"]); raw != "" {
		if email, ferr := CleanEmail(raw); ferr != nil {
			errs = appendRowError(errs, row.Number, "email", ferr)
		} else {
			rec.Email = email
		}
	}

	if raw := strings.TrimSpace(row.Values["TELEFONE"]); raw != "" {
		if phone, ferr := CleanPhone(raw); ferr != nil {
			errs = appendRowError(errs, row.Number, "phone", ferr)
		} else {
			rec.Phone = phone
		}
	}

	if t, ferr := CleanDate(row.Values["DATA ADMISSÃO"]); ferr != nil {
		errs = appendRowError(errs, row.Number, "hire_date", ferr)
	} else {
		rec.HireDate = t
	}

	if t, ferr := CleanDate(row.Values["DATA DE NASCIMENTO"]); ferr != nil {
		errs = appendRowError(errs, row.Number, "birth_date", ferr)
	} else {
		rec.BirthDate = t
	}

	if raw := strings.TrimSpace(row.Values["EMPRESA"]); raw != "" {
		if code, ferr := CleanCompanyCode(raw, n.companyCodes); ferr != nil {
			errs = appendRowError(errs, row.Number, "company_code", ferr)
		} else {
			rec.CompanyCode = code
		}
	}

	return rec, errs
}

func (n *Normalizer) normalizeTerminatedEmployee(row RawRow) (*NormalizedRecord, []models.ImportRowError) {
	rec := &NormalizedRecord{RowNumber: row.Number, Terminate: true}
	var errs []models.ImportRowError

	rec.NationalID = n.requireNationalID(row, "CPF", &errs)

	if t, ferr := CleanDate(row.Values["DATA DEMISSÃO"]); ferr != nil {
		errs = appendRowError(errs, row.Number, "termination_date", ferr)
	} else {
		rec.TerminationDate = t
	}

	return rec, errs
}

// normalizeProviderRow handles the three plan-provider layouts, which
// differ only in how the registration code and name are sourced.
func (n *Normalizer) normalizeProviderRow(row RawRow, rawCode, rawName string) (*NormalizedRecord, []models.ImportRowError) {
	rec := &NormalizedRecord{RowNumber: row.Number}
	var errs []models.ImportRowError

	rec.NationalID = n.requireNationalID(row, "CPF", &errs)
	rec.Name = CleanName(rawName)

	if code, ferr := CleanRegistrationCode(extractMemberCode(rawCode)); ferr != nil {
		if strings.TrimSpace(rawCode) == "" {
			ferr = &FieldError{Reason: ReasonRequiredMissing, Message: "member registration code is required"}
		}
		errs = appendRowError(errs, row.Number, "registration_code", ferr)
	} else {
		rec.RegistrationCode = code
	}

	value := decimal.Zero
	if raw := strings.TrimSpace(row.Values["VALOR"]); raw != "" {
		v, ferr := CleanMoney(raw)
		if ferr != nil {
			errs = appendRowError(errs, row.Number, "monthly_value", ferr)
		} else {
			value = v
		}
	}

	start := time.Now()
	if t, ferr := CleanDate(row.Values["DATA INICIO"]); ferr != nil {
		errs = appendRowError(errs, row.Number, "start_date", ferr)
	} else if !t.IsZero() {
		start = t
	}

	rec.Enrollment = &models.PlanEnrollment{
		Kind:         n.schema.planKind,
		Operator:     n.schema.operator,
		PlanName:     strings.TrimSpace(row.Values["PLANO"]),
		LinkedCode:   rec.RegistrationCode,
		StartDate:    start,
		Active:       true,
		CopayType:    models.CopayTypeMonthly,
		MonthlyValue: decimal.NullDecimal{Decimal: value, Valid: true},
	}
	return rec, errs
}

// requireNationalID validates the row's CPF column, recording a
// REQUIRED_MISSING error when the cell is empty.
func (n *Normalizer) requireNationalID(row RawRow, col string, errs *[]models.ImportRowError) string {
	raw := strings.TrimSpace(row.Values[col])
	if raw == "" {
		*errs = appendRowError(*errs, row.Number, "national_id", &FieldError{
			Reason: ReasonRequiredMissing, Message: "national ID is required",
		})
		return ""
	}
	id, ferr := CleanNationalID(raw)
	if ferr != nil {
		*errs = appendRowError(*errs, row.Number, "national_id", ferr)
		return ""
	}
	return id
}

func appendRowError(errs []models.ImportRowError, rowNumber int, field string, ferr *FieldError) []models.ImportRowError {
	return append(errs, models.ImportRowError{
		RowNumber: rowNumber,
		Field:     field,
		Reason:    ferr.Reason,
		Message:   ferr.Message,
	})
}

// extractMemberCode reduces a provider member number to the embedded
// registration code. Long member numbers carry the code in the last six
// digits.
func extractMemberCode(raw string) string {
	digits := digitsOnly.ReplaceAllString(strings.TrimSpace(raw), "")
	if len(digits) > 6 {
		return digits[len(digits)-6:]
	}
	return digits
}

// splitBeneficiary parses the "0AFP5000442003-FULL NAME" member field
// some providers use.
func splitBeneficiary(raw string) (code, name string) {
	parts := strings.SplitN(strings.TrimSpace(raw), "-", 2)
	code = parts[0]
	if len(parts) == 2 {
		name = parts[1]
	}
	return code, name
}
