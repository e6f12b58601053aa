// Package export writes display tables as spreadsheet reports and builds the
// Capstone courier upload file.
package export

import (
	"bytes"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/jimelj/mailApp/internal/table"
)

const sheetName = "Sheet1"

// ExportError reports a file that could not be written.
type ExportError struct {
	Path  string
	Cause error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Cause)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// ReportFileName names the CSM report for a job.
func ReportFileName(job string) string {
	return fmt.Sprintf("CSM_Report %s.xlsx", job)
}

// CapstoneFileName names the Capstone upload for a job.
func CapstoneFileName(job string) string {
	return fmt.Sprintf("Capstone_Report %s.CSV", job)
}

// XLSX renders t as a workbook with a bold header row. Each column is as
// wide as its longest cell plus two.
func XLSX(t table.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	columns := t.Columns()
	widths := make([]int, len(columns))

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, c := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, c); err != nil {
			return nil, fmt.Errorf("failed to write header %s: %w", c, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return nil, fmt.Errorf("failed to style header %s: %w", c, err)
		}
		widths[i] = len(c)
	}

	for r := 0; r < t.Len(); r++ {
		for i, c := range columns {
			v, ok := t.Value(r, c)
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
			widths[i] = max(widths[i], len(table.FormatCell(v)))
		}
	}

	for i, w := range widths {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, colName, colName, float64(w+2)); err != nil {
			return nil, fmt.Errorf("failed to size column %s: %w", colName, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteXLSX writes t to path as a workbook.
func WriteXLSX(t table.Table, path string) error {
	data, err := XLSX(t)
	if err != nil {
		return &ExportError{Path: path, Cause: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &ExportError{Path: path, Cause: err}
	}
	return nil
}

// WriteCSV writes t to path as CSV with a header row.
func WriteCSV(t table.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &ExportError{Path: path, Cause: err}
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return &ExportError{Path: path, Cause: err}
	}
	if err := f.Close(); err != nil {
		return &ExportError{Path: path, Cause: err}
	}
	return nil
}
