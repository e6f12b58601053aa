// Package table provides an immutable column-ordered table used to hand data
// between pipeline stages. Every transform returns a new Table.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Row maps a column name to a value. Missing keys are absent values.
type Row map[string]any

// Table is an ordered set of columns and rows.
type Table struct {
	columns []string
	rows    []Row
}

// New builds a table from columns and rows. Both are copied.
func New(columns []string, rows []Row) Table {
	t := Table{columns: append([]string(nil), columns...)}
	t.rows = make([]Row, len(rows))
	for i, r := range rows {
		t.rows[i] = cloneRow(r)
	}
	return t
}

// Columns returns the column names in order.
func (t Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.rows) }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.rows) == 0 }

// Row returns a copy of row i.
func (t Table) Row(i int) Row { return cloneRow(t.rows[i]) }

// Rows returns a copy of all rows.
func (t Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = cloneRow(r)
	}
	return out
}

// Value returns the value of column in row i.
func (t Table) Value(i int, column string) (any, bool) {
	v, ok := t.rows[i][column]
	return v, ok
}

// Text returns the value of column in row i formatted as a cell.
func (t Table) Text(i int, column string) string {
	v, ok := t.rows[i][column]
	if !ok {
		return ""
	}
	return FormatCell(v)
}

// Project returns a table with only the given columns, in that order.
// Columns missing from the source are kept as all-absent columns.
func (t Table) Project(columns []string) Table {
	out := Table{columns: append([]string(nil), columns...), rows: make([]Row, len(t.rows))}
	for i, r := range t.rows {
		nr := make(Row, len(columns))
		for _, c := range columns {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		out.rows[i] = nr
	}
	return out
}

// WithColumn returns a table with column appended (or replaced), computed per
// row by fn. Rows for which fn reports false have the column absent.
func (t Table) WithColumn(column string, fn func(Row) (any, bool)) Table {
	cols := t.Columns()
	if !contains(cols, column) {
		cols = append(cols, column)
	}
	out := Table{columns: cols, rows: make([]Row, len(t.rows))}
	for i, r := range t.rows {
		nr := cloneRow(r)
		delete(nr, column)
		if v, ok := fn(cloneRow(r)); ok {
			nr[column] = v
		}
		out.rows[i] = nr
	}
	return out
}

// Count returns how many rows have a value in column.
func (t Table) Count(column string) int {
	n := 0
	for _, r := range t.rows {
		if _, ok := r[column]; ok {
			n++
		}
	}
	return n
}

// FormatCell renders a value as CSV/spreadsheet text.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// WriteCSV writes the table with a header row. Absent values become empty cells.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := range t.rows {
		record := make([]string, len(t.columns))
		for j, c := range t.columns {
			record[j] = t.Text(i, c)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RestoreFunc converts a CSV cell back to a typed value. Returning false
// leaves the value absent.
type RestoreFunc func(column, cell string) (any, bool)

// ReadCSV reads a table written by WriteCSV. A nil restore keeps every
// non-empty cell as a string.
func ReadCSV(r io.Reader, restore RestoreFunc) (Table, error) {
	if restore == nil {
		restore = func(_, cell string) (any, bool) { return cell, cell != "" }
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	t := Table{columns: header}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("failed to read CSV row: %w", err)
		}
		row := make(Row, len(header))
		for i, cell := range record {
			if i >= len(header) {
				break
			}
			if v, ok := restore(header[i], cell); ok {
				row[header[i]] = v
			}
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func cloneRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
