package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func drainRows(t *testing.T, src RowSource) []RawRow {
	t.Helper()
	var rows []RawRow
	for {
		row, ok, err := src.Next()
		require.NoError(t, err)
		if !ok {
			return rows
		}
		rows = append(rows, row)
	}
}

func TestOpenCSVSourceLatin1Semicolon(t *testing.T) {
	// Legacy provider export: semicolon-delimited, ISO 8859-1 encoded.
	// 0xC9 is "É" in Latin-1 and an invalid byte sequence in UTF-8.
	data := []byte("NOME;EMPRESA\nJOS\xc9 SANTOS;0101\n")
	path := writeFixture(t, "export.csv", data)

	src, err := OpenRowSource(path)
	require.NoError(t, err)
	defer src.Close()

	rows := drainRows(t, src)
	require.Len(t, rows, 1)

	assert.Equal(t, []string{"NOME", "EMPRESA"}, rows[0].Columns)
	assert.Equal(t, "JOSÉ SANTOS", rows[0].Values["NOME"])
	assert.Equal(t, "0101", rows[0].Values["EMPRESA"])
}

func TestOpenCSVSourceSkipsBlankRowsKeepingNumbers(t *testing.T) {
	data := []byte("NOME;CPF\nANA;111\n;;\nBIA;222\n")
	path := writeFixture(t, "export.csv", data)

	src, err := OpenRowSource(path)
	require.NoError(t, err)
	defer src.Close()

	rows := drainRows(t, src)
	require.Len(t, rows, 2)

	// The all-empty row still counts toward source row numbers, so the
	// error report lines up with what the operator sees in the file.
	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, "ANA", rows[0].Values["NOME"])
	assert.Equal(t, 4, rows[1].Number)
	assert.Equal(t, "BIA", rows[1].Values["NOME"])
}

func TestOpenCSVSourceDeduplicatesRepeatedHeaders(t *testing.T) {
	// Provider exports repeat EMPRESA: the code first, the display
	// name second. The first occurrence wins.
	data := []byte("EMPRESA;NOME;EMPRESA\n0106;CARLA;Filial Nordeste\n")
	path := writeFixture(t, "export.csv", data)

	src, err := OpenRowSource(path)
	require.NoError(t, err)
	defer src.Close()

	rows := drainRows(t, src)
	require.Len(t, rows, 1)

	assert.Equal(t, []string{"EMPRESA", "NOME", ""}, rows[0].Columns)
	assert.Equal(t, "0106", rows[0].Values["EMPRESA"])
	assert.Equal(t, "CARLA", rows[0].Values["NOME"])
}

func TestOpenCSVSourcePadsShortRows(t *testing.T) {
	data := []byte("NOME,CPF,TELEFONE\nDORA,333\n")
	path := writeFixture(t, "export.csv", data)

	src, err := OpenRowSource(path)
	require.NoError(t, err)
	defer src.Close()

	rows := drainRows(t, src)
	require.Len(t, rows, 1)

	assert.Equal(t, "DORA", rows[0].Values["NOME"])
	assert.Equal(t, "333", rows[0].Values["CPF"])
	assert.Equal(t, "", rows[0].Values["TELEFONE"])
}

func TestOpenExcelSource(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"MATRICULA", "NOME"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"123456", "ANA"}))
	// A cells-but-blank row: present in the sheet, skipped by the reader.
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{" ", ""}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"654321", "BIA"}))

	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	src, err := OpenRowSource(path)
	require.NoError(t, err)
	defer src.Close()

	rows := drainRows(t, src)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, "123456", rows[0].Values["MATRICULA"])
	assert.Equal(t, 4, rows[1].Number)
	assert.Equal(t, "BIA", rows[1].Values["NOME"])
}

func TestOpenRowSourceRejectsUnsupportedExtensions(t *testing.T) {
	for _, name := range []string{"report.pdf", "legacy.xls"} {
		path := writeFixture(t, name, []byte("whatever"))
		_, err := OpenRowSource(path)
		assert.Error(t, err, name)
	}
}
