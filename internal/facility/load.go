package facility

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Load reads a facility report, choosing the reader by file extension.
// Workbooks (.xlsx, .xlsm) are read from their first sheet; anything else is
// treated as CSV.
func Load(path string) ([]Facility, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path)
	default:
		return LoadCSV(path)
	}
}

// LoadXLSX reads the first sheet of a workbook.
func LoadXLSX(path string) ([]Facility, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to open workbook", Cause: err}
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, &LoadError{Path: path, Message: "no sheets found in workbook"}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read rows", Cause: err}
	}
	return fromRows(path, rows)
}

// LoadCSV reads a CSV export of the facility report.
func LoadCSV(path string) ([]Facility, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to open file", Cause: err}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to parse CSV", Cause: err}
	}
	return fromRows(path, rows)
}

// fromRows maps raw rows to facilities using the header on HeaderRow.
func fromRows(path string, rows [][]string) ([]Facility, error) {
	if len(rows) <= HeaderRow {
		return nil, &LoadError{Path: path, Message: "missing header row"}
	}

	index := make(map[string]int)
	for i, h := range rows[HeaderRow] {
		index[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{ColumnDropsiteKey, ColumnAddress, ColumnCity, ColumnState, ColumnZIP} {
		if _, ok := index[col]; !ok {
			return nil, &LoadError{Path: path, Message: "missing column " + col}
		}
	}

	cell := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	facilities := make([]Facility, 0, len(rows)-HeaderRow-1)
	for _, row := range rows[HeaderRow+1:] {
		f := Facility{
			DropsiteKey: cell(row, ColumnDropsiteKey),
			Address:     cell(row, ColumnAddress),
			City:        cell(row, ColumnCity),
			State:       cell(row, ColumnState),
			ZIP:         cell(row, ColumnZIP),
		}
		if f == (Facility{}) {
			continue
		}
		facilities = append(facilities, f)
	}
	return facilities, nil
}
