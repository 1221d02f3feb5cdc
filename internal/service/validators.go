package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Field validation failure reasons. Row-scoped reasons (structure, batch
// constraint) live alongside them because they share the same error report.
const (
	ReasonFormatInvalid   = "FORMAT_INVALID"
	ReasonChecksumFailed  = "CHECKSUM_FAILED"
	ReasonOutOfRange      = "OUT_OF_RANGE"
	ReasonRequiredMissing = "REQUIRED_MISSING"
	ReasonStructureError  = "STRUCTURE_ERROR"
	ReasonBatchConstraint = "BATCH_CONSTRAINT_ERROR"
)

// FieldError is the failure result of a single field validator. The Reason
// is one of the Reason* constants; Message is operator-facing and never
// contains internal error text.
type FieldError struct {
	Reason  string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func newFieldError(reason, format string, args ...interface{}) *FieldError {
	return &FieldError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	digitsOnly    = regexp.MustCompile(`[^0-9]`)
	multiSpace    = regexp.MustCompile(`\s+`)
	excelSerialRe = regexp.MustCompile(`^[0-9]+([.,][0-9]+)?$`)
)

// Supported textual date layouts, day-first preferred.
var dateLayouts = []string{
	"02/01/2006",
	"02/01/06",
	"02-01-2006",
	"02-01-06",
	"2006/01/02",
	"2006-01-02",
	"02.01.2006",
	"02.01.06",
}

// excelEpoch anchors Excel serial dates (serial 1 is 1899-12-31).
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// CleanNationalID strips formatting from a Brazilian CPF and verifies its
// check digits. All-identical-digit IDs are rejected even though their
// checksum computes, since they are a well-known invalid pattern.
func CleanNationalID(raw string) (string, *FieldError) {
	cpf := digitsOnly.ReplaceAllString(strings.TrimSpace(raw), "")
	if len(cpf) != 11 {
		return "", newFieldError(ReasonFormatInvalid, "national ID must have 11 digits, got %d", len(cpf))
	}

	allSame := true
	for i := 1; i < 11; i++ {
		if cpf[i] != cpf[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return "", newFieldError(ReasonChecksumFailed, "national ID check digits do not match")
	}

	if int(cpf[9]-'0') != cpfCheckDigit(cpf, 9) || int(cpf[10]-'0') != cpfCheckDigit(cpf, 10) {
		return "", newFieldError(ReasonChecksumFailed, "national ID check digits do not match")
	}

	return cpf, nil
}

// cpfCheckDigit computes the weighted mod-11 check digit over the first n
// digits of the ID.
func cpfCheckDigit(cpf string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(cpf[i]-'0') * (n + 1 - i)
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

// CleanRegistrationCode normalizes an internal registration code to bare
// digits without leading zeros. A code of all zeros collapses to "0".
func CleanRegistrationCode(raw string) (string, *FieldError) {
	code := digitsOnly.ReplaceAllString(strings.TrimSpace(raw), "")
	if code == "" {
		return "", newFieldError(ReasonFormatInvalid, "registration code must contain digits")
	}
	if len(code) > 20 {
		return "", newFieldError(ReasonOutOfRange, "registration code longer than 20 digits")
	}
	trimmed := strings.TrimLeft(code, "0")
	if trimmed == "" {
		trimmed = "0"
	}
	return trimmed, nil
}

// CleanEmail lowercases and validates an email address.
func CleanEmail(raw string) (string, *FieldError) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !emailRegex.MatchString(email) {
		return "", newFieldError(ReasonFormatInvalid, "email address is malformed")
	}
	return email, nil
}

// CleanPhone normalizes a Brazilian phone number to the display format
// "(XX) XXXXX-XXXX" (mobile) or "(XX) XXXX-XXXX" (landline).
func CleanPhone(raw string) (string, *FieldError) {
	digits := digitsOnly.ReplaceAllString(strings.TrimSpace(raw), "")
	if len(digits) != 10 && len(digits) != 11 {
		return "", newFieldError(ReasonFormatInvalid, "phone must have 10 or 11 digits, got %d", len(digits))
	}
	ddd, _ := strconv.Atoi(digits[:2])
	if ddd < 11 || ddd > 99 {
		return "", newFieldError(ReasonOutOfRange, "area code %02d outside 11-99", ddd)
	}
	if len(digits) == 11 {
		return fmt.Sprintf("(%s) %s-%s", digits[:2], digits[2:7], digits[7:]), nil
	}
	return fmt.Sprintf("(%s) %s-%s", digits[:2], digits[2:6], digits[6:]), nil
}

// CleanName collapses whitespace and title-cases a person name, keeping
// Portuguese particles (da, de, do, das, dos, e) lowercase.
func CleanName(raw string) string {
	name := multiSpace.ReplaceAllString(strings.TrimSpace(raw), " ")
	if name == "" {
		return ""
	}
	words := strings.Split(name, " ")
	for i, w := range words {
		lower := strings.ToLower(w)
		switch lower {
		case "da", "de", "do", "das", "dos", "e":
			words[i] = lower
		default:
			words[i] = capitalize(lower)
		}
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	runes := []rune(w)
	if len(runes) == 0 {
		return w
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// CleanDate parses a date from any of the accepted textual layouts or from
// an Excel serial number. Empty values and the "00/00/0000" placeholder
// return a zero time without error.
func CleanDate(raw string) (time.Time, *FieldError) {
	value := strings.TrimSpace(raw)
	if value == "" || value == "00/00/0000" {
		return time.Time{}, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			if t.Year() < 1900 || t.Year() > 2100 {
				return time.Time{}, newFieldError(ReasonOutOfRange, "date year %d outside 1900-2100", t.Year())
			}
			return t, nil
		}
	}

	// Excel serial date, possibly with a fractional time part.
	if excelSerialRe.MatchString(value) {
		serial, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
		if err == nil {
			return excelSerialDate(serial)
		}
	}

	return time.Time{}, newFieldError(ReasonFormatInvalid, "unrecognized date %q", value)
}

func excelSerialDate(serial float64) (time.Time, *FieldError) {
	if serial < 1 || serial > 50000 {
		return time.Time{}, newFieldError(ReasonOutOfRange, "excel date serial %v outside 1-50000", serial)
	}
	t := excelEpoch.AddDate(0, 0, int(serial))
	if t.Year() < 1900 || t.Year() > 2100 {
		return time.Time{}, newFieldError(ReasonOutOfRange, "date year %d outside 1900-2100", t.Year())
	}
	return t, nil
}

// CleanMoney parses a Brazilian-format monetary value. Accepts "R$ 1.234,56",
// plain decimals, and spreadsheet-quoted values like ="5622". A bare integer
// of 100 or more is read as centavos (5622 means 56.22).
func CleanMoney(raw string) (decimal.Decimal, *FieldError) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero, nil
	}

	value = strings.ReplaceAll(value, "R$", "")
	value = strings.ReplaceAll(value, "$", "")
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, `="`) && strings.HasSuffix(value, `"`) {
		value = value[2 : len(value)-1]
	}
	if value == "" {
		return decimal.Zero, nil
	}

	hasComma := strings.Contains(value, ",")
	hasDot := strings.Contains(value, ".")

	switch {
	case !hasComma && !hasDot:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return decimal.Zero, newFieldError(ReasonFormatInvalid, "unrecognized monetary value %q", raw)
		}
		if n >= 100 || n <= -100 {
			return decimal.New(n, -2), nil
		}
		return decimal.NewFromInt(n), nil

	case hasComma && hasDot:
		// Brazilian 1.234,56: dots are thousands separators.
		value = strings.ReplaceAll(value, ".", "")
		value = strings.ReplaceAll(value, ",", ".")

	case hasComma:
		value = strings.ReplaceAll(value, ",", ".")

	case hasDot:
		// A single dot with up to two trailing digits is a decimal point;
		// anything else is a thousands separator.
		parts := strings.Split(value, ".")
		if len(parts) != 2 || len(parts[1]) > 2 {
			value = strings.ReplaceAll(value, ".", "")
		}
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, newFieldError(ReasonFormatInvalid, "unrecognized monetary value %q", raw)
	}
	return d, nil
}

// CleanCompanyCode validates a company code against the configured set.
func CleanCompanyCode(raw string, validCodes map[string]string) (string, *FieldError) {
	code := digitsOnly.ReplaceAllString(strings.TrimSpace(raw), "")
	if code == "" {
		return "", newFieldError(ReasonFormatInvalid, "company code must contain digits")
	}
	if _, ok := validCodes[code]; !ok {
		return "", newFieldError(ReasonOutOfRange, "company code %s is not registered", code)
	}
	return code, nil
}
