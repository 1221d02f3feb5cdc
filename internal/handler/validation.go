package handler

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type fieldViolation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Error string `json:"error"`
}

// validateStruct runs the request tags and flattens the result into a
// response-friendly list.
func validateStruct(req interface{}) []fieldViolation {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []fieldViolation{{Field: "", Rule: "", Error: err.Error()}}
	}

	violations := make([]fieldViolation, 0, len(errs))
	for _, fe := range errs {
		violations = append(violations, fieldViolation{
			Field: fe.Field(),
			Rule:  fe.Tag(),
			Error: fmt.Sprintf("field %s failed on rule %s", fe.Field(), fe.Tag()),
		})
	}
	return violations
}
