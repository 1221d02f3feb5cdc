package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanNationalID(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		want       string
		wantReason string
	}{
		{name: "formatted valid", input: "123.456.789-09", want: "12345678909"},
		{name: "bare valid", input: "12345678909", want: "12345678909"},
		{name: "valid with surrounding spaces", input: " 111.444.777-35 ", want: "11144477735"},
		{name: "too short", input: "123", wantReason: ReasonFormatInvalid},
		{name: "too long", input: "123456789012", wantReason: ReasonFormatInvalid},
		{name: "all identical digits", input: "111.111.111-11", wantReason: ReasonChecksumFailed},
		{name: "bad check digit", input: "123.456.789-00", wantReason: ReasonChecksumFailed},
		{name: "empty", input: "", wantReason: ReasonFormatInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanNationalID(tt.input)
			if tt.wantReason != "" {
				require.NotNil(t, err)
				assert.Equal(t, tt.wantReason, err.Reason)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Re-validating an already normalized ID must succeed and return the same
// value.
func TestCleanNationalIDIdempotent(t *testing.T) {
	normalized, err := CleanNationalID("123.456.789-09")
	require.Nil(t, err)

	again, err := CleanNationalID(normalized)
	require.Nil(t, err)
	assert.Equal(t, normalized, again)
}

func TestCleanRegistrationCode(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		want       string
		wantReason string
	}{
		{name: "plain", input: "123456", want: "123456"},
		{name: "leading zeros stripped", input: "00123456", want: "123456"},
		{name: "all zeros keeps one", input: "0000", want: "0"},
		{name: "formatted", input: " 12.345 ", want: "12345"},
		{name: "no digits", input: "abc", wantReason: ReasonFormatInvalid},
		{name: "empty", input: "", wantReason: ReasonFormatInvalid},
		{name: "over 20 digits", input: "123456789012345678901", wantReason: ReasonOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanRegistrationCode(tt.input)
			if tt.wantReason != "" {
				require.NotNil(t, err)
				assert.Equal(t, tt.wantReason, err.Reason)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanEmail(t *testing.T) {
	got, err := CleanEmail("  Maria.Silva@Example.COM ")
	require.Nil(t, err)
	assert.Equal(t, "maria.silva@example.com", got)

	_, err = CleanEmail("not-an-email")
	require.NotNil(t, err)
	assert.Equal(t, ReasonFormatInvalid, err.Reason)
}

func TestCleanPhone(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		want       string
		wantReason string
	}{
		{name: "mobile", input: "11987654321", want: "(11) 98765-4321"},
		{name: "landline", input: "1133334444", want: "(11) 3333-4444"},
		{name: "formatted input", input: "(21) 98765-4321", want: "(21) 98765-4321"},
		{name: "too short", input: "12345", wantReason: ReasonFormatInvalid},
		{name: "invalid area code", input: "0987654321", wantReason: ReasonOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanPhone(tt.input)
			if tt.wantReason != "" {
				require.NotNil(t, err)
				assert.Equal(t, tt.wantReason, err.Reason)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "  joão   DA  silva  ", want: "João da Silva"},
		{input: "MARIA DOS SANTOS E SOUZA", want: "Maria dos Santos e Souza"},
		{input: "ana", want: "Ana"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanName(tt.input))
	}
}

func TestCleanDate(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		want       time.Time
		wantReason string
	}{
		{name: "brazilian", input: "31/12/2023", want: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
		{name: "iso", input: "2023-12-31", want: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
		{name: "dotted", input: "05.04.2021", want: time.Date(2021, 4, 5, 0, 0, 0, 0, time.UTC)},
		{name: "excel serial", input: "45000", want: time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)},
		{name: "placeholder is empty", input: "00/00/0000", want: time.Time{}},
		{name: "blank is empty", input: "", want: time.Time{}},
		{name: "garbage", input: "not a date", wantReason: ReasonFormatInvalid},
		{name: "serial out of range", input: "99999", wantReason: ReasonOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanDate(tt.input)
			if tt.wantReason != "" {
				require.NotNil(t, err)
				assert.Equal(t, tt.wantReason, err.Reason)
				return
			}
			require.Nil(t, err)
			assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
		})
	}
}

func TestCleanMoney(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		want       string
		wantReason string
	}{
		{name: "brazilian full", input: "R$ 1.234,56", want: "1234.56"},
		{name: "comma decimal", input: "1234,56", want: "1234.56"},
		{name: "dot decimal", input: "1234.56", want: "1234.56"},
		{name: "thousands only", input: "1.234", want: "1234"},
		{name: "bare centavos", input: "5622", want: "56.22"},
		{name: "small integer kept whole", input: "5", want: "5"},
		{name: "spreadsheet quoted", input: `="5622"`, want: "56.22"},
		{name: "empty is zero", input: "", want: "0"},
		{name: "garbage", input: "abc", wantReason: ReasonFormatInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanMoney(tt.input)
			if tt.wantReason != "" {
				require.NotNil(t, err)
				assert.Equal(t, tt.wantReason, err.Reason)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCleanCompanyCode(t *testing.T) {
	codes := map[string]string{"0101": "Matriz", "0210": "Filial Sul"}

	got, err := CleanCompanyCode(" 0101 ", codes)
	require.Nil(t, err)
	assert.Equal(t, "0101", got)

	_, err = CleanCompanyCode("9999", codes)
	require.NotNil(t, err)
	assert.Equal(t, ReasonOutOfRange, err.Reason)

	_, err = CleanCompanyCode("", codes)
	require.NotNil(t, err)
	assert.Equal(t, ReasonFormatInvalid, err.Reason)
}
