package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jimelj/mailApp/internal/table"
)

// Aggregate combines the rows of one or more reports with a grand total
// built from each report's declared totals.
type Aggregate struct {
	Rows       []Row         `json:"rows"`
	GrandTotal Totals        `json:"grand_total"`
	Skipped    []SkippedLine `json:"skipped,omitempty"`
	Errors     []*FileError  `json:"-"`
	Files      int           `json:"files"`
}

// AggregateFiles parses every path in order. A file that cannot be read is
// recorded in Errors and the rest are still processed. The returned error is
// non-nil only when ctx is cancelled.
func AggregateFiles(ctx context.Context, paths []string) (*Aggregate, error) {
	results := make([]*ParseResult, 0, len(paths))
	var errs []*FileError
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := ParseFile(path)
		if err != nil {
			var fe *FileError
			if !errors.As(err, &fe) {
				fe = &FileError{Path: path, Cause: err}
			}
			errs = append(errs, fe)
			continue
		}
		results = append(results, res)
	}

	agg := Combine(results, len(paths) > 1)
	agg.Errors = errs
	return agg, nil
}

// Combine merges parsed reports. The grand total is labelled "Grand Totals:"
// when multi is set and "Report Totals:" otherwise. Reports without a totals
// line contribute nothing to it.
func Combine(results []*ParseResult, multi bool) *Aggregate {
	label := LabelReportTotals
	if multi {
		label = LabelGrandTotals
	}

	agg := &Aggregate{GrandTotal: Totals{Label: label, Postage: decimal.Zero}}
	for _, res := range results {
		agg.Files++
		agg.Rows = append(agg.Rows, res.Rows...)
		agg.Skipped = append(agg.Skipped, res.Skipped...)
		if res.Totals != nil {
			agg.GrandTotal.Copies += res.Totals.Copies
			agg.GrandTotal.Weight += res.Totals.Weight
			agg.GrandTotal.Postage = agg.GrandTotal.Postage.Add(res.Totals.Postage)
		}
	}
	return agg
}

// Table renders the rows followed by the grand total row. Money columns
// are formatted as "$0.00" and piece weight in ounces.
func (a *Aggregate) Table() table.Table {
	rows := make([]table.Row, 0, len(a.Rows)+1)
	for _, r := range a.Rows {
		rows = append(rows, formatRow(r))
	}
	rows = append(rows, formatRow(a.GrandTotal.Row()))
	return table.New(Columns, rows)
}

func formatRow(r Row) table.Row {
	out := table.Row{
		ColumnEntryPointName: r.EntryPointName,
		ColumnTotalCopies:    r.TotalCopies,
		ColumnTotalWeight:    r.TotalWeight,
		ColumnTotalPostage:   "$" + r.TotalPostage.StringFixed(2),
		ColumnCPM:            "$" + r.CPM.StringFixed(2),
		ColumnAvgPieceWeight: fmt.Sprintf("%.2f oz", r.AvgPieceWeight),
	}
	if r.DropSiteKey != "" {
		out[ColumnDropSiteKey] = r.DropSiteKey
	}
	return out
}
