package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImportType(t *testing.T) {
	for _, typ := range ImportTypes() {
		got, err := ParseImportType(string(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	got, err := ParseImportType("  active_employees ")
	require.NoError(t, err)
	assert.Equal(t, ImportActiveEmployees, got)

	_, err = ParseImportType("PAYROLL_EXPORT")
	require.Error(t, err)
	var unrecognized *UnrecognizedImportTypeError
	assert.True(t, errors.As(err, &unrecognized))
}
