package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Generates sample source files covering the formats the import
// pipeline has to survive: formatted and bare national IDs, Excel
// serial dates, quoted money cells and rows that must be rejected.
func main() {
	if err := os.MkdirAll(filepath.Join("storage", "uploads"), 0o755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
		return
	}
	if err := writeActiveEmployees(); err != nil {
		fmt.Printf("Error writing active employees file: %v\n", err)
		return
	}
	if err := writeDentalPlan(); err != nil {
		fmt.Printf("Error writing dental plan file: %v\n", err)
		return
	}
}

func writeActiveEmployees() error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Colaboradores"
	_, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := []string{
		"MATRICULA", "NOME COLABORADOR", "CPF", "DATA ADMISSÃO",
		"DATA DE NASCIMENTO", "E-MAIL PESSOAL", "TELEFONE", "EMPRESA",
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

	rows := [][]interface{}{
		// Clean row with formatted national ID
		{"0101000123456", "MARIA APARECIDA DOS SANTOS", "123.456.789-09", "01/02/2023", "15/05/1990", "maria.santos@example.com", "11987654321", "0101"},
		// Bare digits and an Excel serial hire date
		{"0106000654321", "JOSE CARLOS DE OLIVEIRA", "11144477735", 45000, "03/11/1985", "jose.oliveira@example.com", "(21) 91234-5678", "0106"},
		// Rejected: repeated-digit national ID
		{"0101000111111", "FULANO DE TAL", "111.111.111-11", "10/01/2024", "01/01/1990", "", "", "0101"},
		// Rejected: bad check digits
		{"0210000222222", "BELTRANO DA SILVA", "123.456.789-00", "00/00/0000", "", "beltrano@", "0012345", "0210"},
		// Placeholder dates and blank optionals survive
		{"0210000333333", "SICRANA PEREIRA E SOUZA", "529.982.247-25", "00/00/0000", "", "", "", "0210"},
	}

	for rowIdx, rowData := range rows {
		row := rowIdx + 2
		for colIdx, value := range rowData {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 18)
	f.SetColWidth(sheetName, "B", "B", 35)
	f.SetColWidth(sheetName, "C", "C", 18)
	f.SetColWidth(sheetName, "D", "E", 18)
	f.SetColWidth(sheetName, "F", "F", 30)
	f.SetColWidth(sheetName, "G", "G", 18)
	f.SetColWidth(sheetName, "H", "H", 12)

	f.DeleteSheet("Sheet1")

	outputPath := filepath.Join("storage", "uploads", "sample_active_employees.xlsx")
	if err := f.SaveAs(outputPath); err != nil {
		return err
	}

	fmt.Printf("✓ Sample file created: %s (%d rows)\n", outputPath, len(rows))
	return nil
}

func writeDentalPlan() error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Beneficiarios"
	_, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := []string{"MATRICULA", "NOME", "CPF", "VALOR", "DATA INICIO", "PLANO"}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	rows := [][]interface{}{
		// Currency-formatted value
		{"0101000123456", "MARIA APARECIDA DOS SANTOS", "123.456.789-09", "R$ 56,22", "01/03/2024", "DENTAL BASICO"},
		// Bare integer treated as centavos, formula-quoted cell
		{"0106000654321", "JOSE CARLOS DE OLIVEIRA", "11144477735", `="5622"`, "15/03/2024", "DENTAL PREMIUM"},
		// No matching employee: fails the row at load time
		{"0999000888888", "PESSOA DESCONHECIDA", "529.982.247-25", "R$ 49,90", "01/04/2024", "DENTAL BASICO"},
	}

	for rowIdx, rowData := range rows {
		row := rowIdx + 2
		for colIdx, value := range rowData {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 18)
	f.SetColWidth(sheetName, "B", "B", 35)
	f.SetColWidth(sheetName, "C", "C", 18)
	f.SetColWidth(sheetName, "D", "D", 14)
	f.SetColWidth(sheetName, "E", "E", 14)
	f.SetColWidth(sheetName, "F", "F", 20)

	f.DeleteSheet("Sheet1")

	outputPath := filepath.Join("storage", "uploads", "sample_dental_plan.xlsx")
	if err := f.SaveAs(outputPath); err != nil {
		return err
	}

	fmt.Printf("✓ Sample file created: %s (%d rows)\n", outputPath, len(rows))
	return nil
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}
