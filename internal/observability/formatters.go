// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jimelj/mailApp/internal/csm"
	"github.com/jimelj/mailApp/internal/report"
	"github.com/jimelj/mailApp/internal/table"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCSMSummary outputs row and match counts for a display table and its
// first few containers.
func (p *Printer) PrintCSMSummary(source string, display table.Table, enrichErr error) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Source:   %s\n", source))
	sb.WriteString(fmt.Sprintf("Rows:     %d\n", display.Len()))
	sb.WriteString(fmt.Sprintf("Matched:  %d addresses\n", display.Count(csm.FieldAddress)))
	if enrichErr != nil {
		sb.WriteString("Warning:  facility report unavailable\n")
	}

	if !display.Empty() {
		sb.WriteString("\n")
		count := min(display.Len(), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("• %s  %s  %s\n",
				display.Text(i, csm.FieldDisplayContainerID),
				display.Text(i, csm.FieldNumberOfPieces),
				display.Text(i, csm.FieldTotalWeight)))
			if addr := display.Text(i, csm.FieldAddress); addr != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", addr))
			}
		}
		if display.Len() > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more rows\n", display.Len()-maxItemsToShow))
		}
	}

	p.printBox("CSM SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReport outputs the aggregated report totals and the first entry points.
func (p *Printer) PrintReport(agg *report.Aggregate) {
	if agg == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Files:    %d\n", agg.Files))
	sb.WriteString(fmt.Sprintf("Rows:     %d\n", len(agg.Rows)))
	sb.WriteString("\n")

	count := min(len(agg.Rows), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := agg.Rows[i]
		sb.WriteString(fmt.Sprintf("• %s\n", r.EntryPointName))
		sb.WriteString(fmt.Sprintf("  %d copies  $%s  CPM $%s\n", r.TotalCopies, r.TotalPostage.StringFixed(2), r.CPM.StringFixed(2)))
	}
	if len(agg.Rows) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more rows\n", len(agg.Rows)-maxItemsToShow))
	}

	gt := agg.GrandTotal
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s %d copies, %.2f lbs\n", gt.Label, gt.Copies, gt.Weight))
	sb.WriteString(fmt.Sprintf("Postage $%s  CPM $%s  %.2f oz", gt.Postage.StringFixed(2), gt.CPM().StringFixed(2), gt.AvgPieceWeight()))

	p.printBox("POSTAGE REPORT", sb.String())
}

// PrintSkipped outputs report lines that could not be parsed.
func (p *Printer) PrintSkipped(skipped []report.SkippedLine) {
	if len(skipped) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Skipped %d lines:\n\n", len(skipped)))
	count := min(len(skipped), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := skipped[i]
		sb.WriteString(fmt.Sprintf("⚠ line %d: %s\n", s.Line, s.Reason))
		sb.WriteString(fmt.Sprintf("  %s\n", s.Text))
	}
	if len(skipped) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more", len(skipped)-maxItemsToShow))
	}

	p.printBox("SKIPPED LINES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintErrors outputs at most maxItemsToShow errors with an overflow count.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintErrors(title string, errs []error) {
	if len(errs) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO ERRORS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d failed:\n\n", len(errs)))
	count := min(len(errs), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("✗ %v\n", errs[i]))
	}
	if len(errs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more", len(errs)-maxItemsToShow))
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}
