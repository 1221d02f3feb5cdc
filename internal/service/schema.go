package service

import (
	"fmt"
	"strings"
)

// ImportType selects which field schema and validators apply to a file.
// The set is closed: anything else is rejected before a row is read.
type ImportType string

const (
	ImportActiveEmployees     ImportType = "ACTIVE_EMPLOYEES"
	ImportTerminatedEmployees ImportType = "TERMINATED_EMPLOYEES"
	ImportHealthPlanProviderA ImportType = "HEALTH_PLAN_PROVIDER_A"
	ImportHealthPlanProviderB ImportType = "HEALTH_PLAN_PROVIDER_B"
	ImportDentalPlanProvider  ImportType = "DENTAL_PLAN_PROVIDER"
)

// UnrecognizedImportTypeError aborts an import before any row is
// processed.
type UnrecognizedImportTypeError struct {
	Value string
}

func (e *UnrecognizedImportTypeError) Error() string {
	return fmt.Sprintf("unrecognized import type %q", e.Value)
}

// ParseImportType maps a request string onto the closed import-type set.
func ParseImportType(s string) (ImportType, error) {
	switch ImportType(strings.ToUpper(strings.TrimSpace(s))) {
	case ImportActiveEmployees:
		return ImportActiveEmployees, nil
	case ImportTerminatedEmployees:
		return ImportTerminatedEmployees, nil
	case ImportHealthPlanProviderA:
		return ImportHealthPlanProviderA, nil
	case ImportHealthPlanProviderB:
		return ImportHealthPlanProviderB, nil
	case ImportDentalPlanProvider:
		return ImportDentalPlanProvider, nil
	default:
		return "", &UnrecognizedImportTypeError{Value: s}
	}
}

// importSchema describes the source-file layout for one import type.
// Column names match the headers the providers actually ship.
type importSchema struct {
	// requiredColumns must all be present in the header; a row missing
	// any of them structurally is unreadable for this type.
	requiredColumns []string
	// operator and planKind apply to the plan-provider schemas.
	operator string
	planKind string
}

var importSchemas = map[ImportType]importSchema{
	ImportActiveEmployees: {
		requiredColumns: []string{"MATRICULA", "NOME COLABORADOR", "CPF"},
	},
	ImportTerminatedEmployees: {
		requiredColumns: []string{"CPF"},
	},
	ImportHealthPlanProviderA: {
		requiredColumns: []string{"MATRICULA", "NOME", "CPF"},
		operator:        "UNIMED",
		planKind:        "HEALTH",
	},
	ImportHealthPlanProviderB: {
		requiredColumns: []string{"BENEFICIARIO", "CPF"},
		operator:        "HAPVIDA",
		planKind:        "HEALTH",
	},
	ImportDentalPlanProvider: {
		requiredColumns: []string{"MATRICULA", "NOME", "CPF"},
		operator:        "ODONTOPREV",
		planKind:        "DENTAL",
	},
}

// ImportTypes returns the accepted import-type values, for request
// validation and UI listings.
func ImportTypes() []ImportType {
	return []ImportType{
		ImportActiveEmployees,
		ImportTerminatedEmployees,
		ImportHealthPlanProviderA,
		ImportHealthPlanProviderB,
		ImportDentalPlanProvider,
	}
}
