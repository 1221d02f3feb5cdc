package service

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// RawRow is one data row as produced by the file reader: the header
// columns in file order plus the cell values keyed by column name.
// Number is the row's position in the source file (header is row 1).
type RawRow struct {
	Number  int
	Columns []string
	Values  map[string]string
}

// RowSource iterates raw rows lazily so large files never need full
// materialization. Next returns false when the source is exhausted.
type RowSource interface {
	Next() (RawRow, bool, error)
	Close() error
}

// OpenRowSource opens a spreadsheet or CSV file and returns a lazy row
// iterator over its first sheet. The header row is consumed eagerly.
// Legacy OLE2 .xls workbooks are not readable; providers still shipping
// them must convert to .xlsx first.
func OpenRowSource(path string) (RowSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return openExcelSource(path)
	case ".csv", ".txt":
		return openCSVSource(path)
	default:
		return nil, fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}
}

// normalizeHeader trims and uppercases column names and drops duplicate
// occurrences, keeping the first. Provider exports repeat the EMPRESA
// column with the code first and the display name second.
func normalizeHeader(cells []string) []string {
	seen := make(map[string]bool, len(cells))
	columns := make([]string, len(cells))
	for i, c := range cells {
		name := strings.ToUpper(strings.TrimSpace(c))
		if name == "" || seen[name] {
			columns[i] = ""
			continue
		}
		seen[name] = true
		columns[i] = name
	}
	return columns
}

func buildRow(number int, columns, cells []string) RawRow {
	values := make(map[string]string, len(columns))
	for i, col := range columns {
		if col == "" {
			continue
		}
		if i < len(cells) {
			values[col] = cells[i]
		} else {
			values[col] = ""
		}
	}
	return RawRow{Number: number, Columns: columns, Values: values}
}

type excelSource struct {
	file    *excelize.File
	rows    *excelize.Rows
	columns []string
	number  int
}

func openExcelSource(path string) (*excelSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	if !rows.Next() {
		rows.Close()
		f.Close()
		return nil, fmt.Errorf("spreadsheet has no header row")
	}
	header, err := rows.Columns()
	if err != nil {
		rows.Close()
		f.Close()
		return nil, fmt.Errorf("read header row: %w", err)
	}

	return &excelSource{
		file:    f,
		rows:    rows,
		columns: normalizeHeader(header),
		number:  1,
	}, nil
}

func (s *excelSource) Next() (RawRow, bool, error) {
	for s.rows.Next() {
		s.number++
		cells, err := s.rows.Columns()
		if err != nil {
			return RawRow{}, false, fmt.Errorf("read row %d: %w", s.number, err)
		}
		if isBlankRow(cells) {
			continue
		}
		return buildRow(s.number, s.columns, cells), true, nil
	}
	return RawRow{}, false, s.rows.Error()
}

func (s *excelSource) Close() error {
	s.rows.Close()
	return s.file.Close()
}

type csvSource struct {
	file    *os.File
	reader  *csv.Reader
	columns []string
	number  int
}

func openCSVSource(path string) (*csvSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	sample := make([]byte, 2048)
	n, _ := f.Read(sample)
	sample = sample[:n]
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}

	var body io.Reader = bufio.NewReader(f)
	if !utf8.Valid(sample) {
		// Legacy provider exports come in Latin-1.
		body = transform.NewReader(body, charmap.ISO8859_1.NewDecoder())
	}

	reader := csv.NewReader(body)
	reader.Comma = detectDelimiter(sample)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read header row: %w", err)
	}

	return &csvSource{
		file:    f,
		reader:  reader,
		columns: normalizeHeader(header),
		number:  1,
	}, nil
}

func (s *csvSource) Next() (RawRow, bool, error) {
	for {
		cells, err := s.reader.Read()
		if err == io.EOF {
			return RawRow{}, false, nil
		}
		if err != nil {
			return RawRow{}, false, fmt.Errorf("read row %d: %w", s.number+1, err)
		}
		s.number++
		if isBlankRow(cells) {
			continue
		}
		return buildRow(s.number, s.columns, cells), true, nil
	}
}

func (s *csvSource) Close() error {
	return s.file.Close()
}

func detectDelimiter(sample []byte) rune {
	text := string(sample)
	if strings.Count(text, ";") > strings.Count(text, ",") {
		return ';'
	}
	return ','
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
