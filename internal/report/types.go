// Package report parses postage report text dumps (RptList.txt) into
// per-entry-point rows and aggregates them across files.
package report

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultFileName is the report file shipped inside a mailing's archive.
const DefaultFileName = "RptList.txt"

// Total row labels.
const (
	LabelReportTotals = "Report Totals:"
	LabelGrandTotals  = "Grand Totals:"
)

// Output table columns, in order.
const (
	ColumnEntryPointName = "Entry Point Name"
	ColumnDropSiteKey    = "Drop Site Key"
	ColumnTotalCopies    = "Total Copies"
	ColumnTotalWeight    = "Total Weight"
	ColumnTotalPostage   = "Total Postage"
	ColumnCPM            = "CPM"
	ColumnAvgPieceWeight = "AVR Piece Weight"
)

// Columns lists the aggregated table's columns.
var Columns = []string{
	ColumnEntryPointName,
	ColumnDropSiteKey,
	ColumnTotalCopies,
	ColumnTotalWeight,
	ColumnTotalPostage,
	ColumnCPM,
	ColumnAvgPieceWeight,
}

var thousand = decimal.NewFromInt(1000)

// Row is one entry point line from a report.
type Row struct {
	EntryPointName string          `json:"entry_point_name"`
	DropSiteKey    string          `json:"drop_site_key,omitempty"`
	TotalCopies    int             `json:"total_copies"`
	TotalWeight    float64         `json:"total_weight"`
	TotalPostage   decimal.Decimal `json:"total_postage"`
	CPM            decimal.Decimal `json:"cpm"`
	AvgPieceWeight float64         `json:"avg_piece_weight"`
}

// Totals are the totals a report declares for itself. They are never
// derived from the report's rows.
type Totals struct {
	Label   string          `json:"label"`
	Copies  int             `json:"copies"`
	Weight  float64         `json:"weight"`
	Postage decimal.Decimal `json:"postage"`
}

// CPM returns the cost per thousand pieces.
func (t Totals) CPM() decimal.Decimal {
	return costPerThousand(t.Postage, t.Copies)
}

// AvgPieceWeight returns the average piece weight in ounces.
func (t Totals) AvgPieceWeight() float64 {
	return pieceWeight(t.Weight, t.Copies)
}

// Row renders the totals as a report row.
func (t Totals) Row() Row {
	return Row{
		EntryPointName: t.Label,
		TotalCopies:    t.Copies,
		TotalWeight:    t.Weight,
		TotalPostage:   t.Postage,
		CPM:            t.CPM(),
		AvgPieceWeight: t.AvgPieceWeight(),
	}
}

// SkippedLine records a report line that looked like data but could not be parsed.
type SkippedLine struct {
	Source string `json:"source,omitempty"`
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

func (s SkippedLine) String() string {
	if s.Source != "" {
		return fmt.Sprintf("%s:%d: %s: %s", s.Source, s.Line, s.Reason, s.Text)
	}
	return fmt.Sprintf("line %d: %s: %s", s.Line, s.Reason, s.Text)
}

// ParseResult is everything read from one report.
type ParseResult struct {
	Rows    []Row         `json:"rows"`
	Totals  *Totals       `json:"totals,omitempty"`
	Skipped []SkippedLine `json:"skipped,omitempty"`
}

// FileError reports a report file that could not be read.
type FileError struct {
	Path  string
	Cause error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to read report %s: %v", e.Path, e.Cause)
}

func (e *FileError) Unwrap() error {
	return e.Cause
}

func costPerThousand(postage decimal.Decimal, copies int) decimal.Decimal {
	if copies == 0 {
		return decimal.Zero
	}
	return postage.Mul(thousand).Div(decimal.NewFromInt(int64(copies)))
}

func pieceWeight(weight float64, copies int) float64 {
	if copies == 0 {
		return 0
	}
	return weight / float64(copies) * 16
}
