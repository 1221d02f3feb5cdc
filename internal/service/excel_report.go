package service

import (
	"database/sql"
	"fmt"

	"benefits-web/internal/models"

	"github.com/xuri/excelize/v2"
)

type ExcelReportService struct{}

func NewExcelReportService() *ExcelReportService {
	return &ExcelReportService{}
}

// GenerateErrorReport writes the row errors of an import batch to an Excel
// workbook so operators can fix the source file and re-submit it.
func (s *ExcelReportService) GenerateErrorReport(batch *models.ImportBatch, rowErrors []models.ImportRowError, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Import Errors"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := []string{
		"Row Number", "Field", "Reason", "Message",
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFE6E6"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	for rowIdx, rowErr := range rowErrors {
		row := rowIdx + 2
		values := []interface{}{
			rowErr.RowNumber,
			rowErr.Field,
			rowErr.Reason,
			rowErr.Message,
		}

		for colIdx, value := range values {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 20)
	f.SetColWidth(sheetName, "C", "C", 25)
	f.SetColWidth(sheetName, "D", "D", 60)

	summaryStartRow := len(rowErrors) + 4
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow), "Import Summary")
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+1), "Batch Code:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+1), batch.BatchCode)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+2), "Import Type:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+2), batch.ImportType)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+3), "Rows Processed:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+3), batch.RowsTotal)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+4), "Rows Succeeded:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+4), batch.RowsOK)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+5), "Rows Failed:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+5), batch.RowsFailed)
	if batch.RowsTotal > 0 {
		successRate := float64(batch.RowsOK) / float64(batch.RowsTotal) * 100
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+6), "Success Rate:")
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+6), fmt.Sprintf("%.1f%%", successRate))
	}

	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryStartRow), fmt.Sprintf("A%d", summaryStartRow), summaryStyle)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

// ExportEmployees writes the current employee roster to an Excel workbook.
func (s *ExcelReportService) ExportEmployees(employees []models.Employee, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Employees"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := []string{
		"National ID", "Name", "Email", "Phone",
		"Hire Date", "Birth Date", "Status", "Termination Reason",
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	for i, emp := range employees {
		row := i + 2

		status := "Active"
		if emp.IsDeleted {
			status = "Terminated"
		}

		values := []interface{}{
			emp.NationalID,
			emp.Name,
			emp.Email.String,
			emp.Phone.String,
			formatNullDate(emp.HireDate),
			formatNullDate(emp.BirthDate),
			status,
			emp.DeletedReason.String,
		}

		for colIdx, value := range values {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 16)
	f.SetColWidth(sheetName, "B", "B", 35)
	f.SetColWidth(sheetName, "C", "C", 30)
	f.SetColWidth(sheetName, "D", "D", 18)
	f.SetColWidth(sheetName, "E", "F", 14)
	f.SetColWidth(sheetName, "G", "G", 12)
	f.SetColWidth(sheetName, "H", "H", 25)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

// GenerateImportTemplate creates a template workbook for the given import type
// with the expected header row and a few sample rows.
func (s *ExcelReportService) GenerateImportTemplate(importType ImportType, outputPath string) error {
	schema, ok := importSchemas[importType]
	if !ok {
		return &UnrecognizedImportTypeError{Value: string(importType)}
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Import Data"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers, samples := templateLayout(importType, schema)

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	for rowIdx, rowData := range samples {
		row := rowIdx + 2
		for colIdx, value := range rowData {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range headers {
		colName := getColumnName(i)
		f.SetColWidth(sheetName, colName, colName, 22)
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

func templateLayout(importType ImportType, schema importSchema) ([]string, [][]interface{}) {
	switch importType {
	case ImportActiveEmployees:
		headers := []string{
			"MATRICULA", "NOME COLABORADOR", "CPF", "DATA ADMISSÃO",
			"DATA DE NASCIMENTO", "E-MAIL PESSOAL", "TELEFONE", "EMPRESA",
		}
		samples := [][]interface{}{
			{"0101000123456", "MARIA APARECIDA DOS SANTOS", "123.456.789-09", "01/02/2023", "15/05/1990", "maria.santos@example.com", "11987654321", "0101"},
			{"0106000654321", "JOSE CARLOS DE OLIVEIRA", "111.444.777-35", "10/08/2021", "03/11/1985", "jose.oliveira@example.com", "21912345678", "0106"},
		}
		return headers, samples
	case ImportTerminatedEmployees:
		headers := []string{"CPF", "NOME COLABORADOR", "DATA DEMISSÃO"}
		samples := [][]interface{}{
			{"123.456.789-09", "MARIA APARECIDA DOS SANTOS", "28/02/2025"},
		}
		return headers, samples
	default:
		headers := append([]string{}, schema.requiredColumns...)
		headers = append(headers, "VALOR", "DATA INICIO", "PLANO")
		samples := [][]interface{}{}
		return headers, samples
	}
}

func formatNullDate(t sql.NullTime) string {
	if !t.Valid || t.Time.IsZero() {
		return ""
	}
	return t.Time.Format("02/01/2006")
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}
