package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Numeric tail positions, counted after "$" tokens are removed.
const (
	copiesIndex  = 9
	weightIndex  = 10
	postageIndex = 11
	minTailLen   = postageIndex + 1
)

const dropSiteKeyPrefix = "Drop Site Key:"

var dataPrefixes = []string{"DDU-", "SCF-"}

var ignorablePrefixes = []string{
	"Page ",
	"Summary",
	"Report Date",
	"Report Name",
	"Run Date",
	"Entry Point Name",
	"-------",
	"=======",
}

// ParseFile opens and parses one report file. Skipped lines carry the path
// as their source.
func ParseFile(path string) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Cause: err}
	}
	defer f.Close()

	res, err := Parse(f)
	if err != nil {
		return nil, &FileError{Path: path, Cause: err}
	}
	for i := range res.Skipped {
		res.Skipped[i].Source = path
	}
	return res, nil
}

// Parse reads report text. Malformed data lines are recorded in Skipped;
// only read failures return an error.
func Parse(r io.Reader) (*ParseResult, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read report lines: %w", err)
	}

	res := &ParseResult{}
	for i := 0; i < len(lines); i++ {
		text := strings.TrimSpace(lines[i])
		lineNo := i + 1

		switch {
		case text == "":
		case strings.HasPrefix(text, LabelReportTotals):
			totals, reason := parseTotals(text)
			if reason != "" {
				res.Skipped = append(res.Skipped, SkippedLine{Line: lineNo, Text: text, Reason: reason})
				continue
			}
			res.Totals = totals
		case isIgnorable(text):
		case isDataLine(text):
			row, reason := parseDataLine(text)
			if reason != "" {
				res.Skipped = append(res.Skipped, SkippedLine{Line: lineNo, Text: text, Reason: reason})
				continue
			}
			key, consumed := lookAheadDropSiteKey(lines[i+1:])
			row.DropSiteKey = key
			i += consumed
			res.Rows = append(res.Rows, row)
		}
	}
	return res, nil
}

func parseTotals(text string) (*Totals, string) {
	tokens := withoutDollarTokens(strings.Fields(strings.TrimPrefix(text, LabelReportTotals)))
	if len(tokens) < minTailLen {
		return nil, fmt.Sprintf("totals line has %d numeric fields, need %d", len(tokens), minTailLen)
	}
	copies, weight, postage, reason := numericTail(tokens)
	if reason != "" {
		return nil, reason
	}
	return &Totals{Label: LabelReportTotals, Copies: copies, Weight: weight, Postage: postage}, ""
}

func parseDataLine(text string) (Row, string) {
	tokens := strings.Fields(text)
	start := -1
	for i, tok := range tokens {
		if _, ok := parseNumber(tok); ok {
			start = i
			break
		}
	}
	if start < 0 {
		return Row{}, "no numeric fields"
	}

	tail := withoutDollarTokens(tokens[start:])
	if len(tail) < minTailLen {
		return Row{}, fmt.Sprintf("data line has %d numeric fields, need %d", len(tail), minTailLen)
	}
	copies, weight, postage, reason := numericTail(tail)
	if reason != "" {
		return Row{}, reason
	}

	return Row{
		EntryPointName: strings.Join(tokens[:start], " "),
		TotalCopies:    copies,
		TotalWeight:    weight,
		TotalPostage:   postage,
		CPM:            costPerThousand(postage, copies),
		AvgPieceWeight: pieceWeight(weight, copies),
	}, ""
}

func numericTail(tail []string) (int, float64, decimal.Decimal, string) {
	copies, err := strconv.Atoi(cleanNumber(tail[copiesIndex]))
	if err != nil {
		return 0, 0, decimal.Zero, fmt.Sprintf("invalid copies %q", tail[copiesIndex])
	}
	weight, ok := parseNumber(tail[weightIndex])
	if !ok {
		return 0, 0, decimal.Zero, fmt.Sprintf("invalid weight %q", tail[weightIndex])
	}
	postage, err := decimal.NewFromString(cleanNumber(tail[postageIndex]))
	if err != nil {
		return 0, 0, decimal.Zero, fmt.Sprintf("invalid postage %q", tail[postageIndex])
	}
	return copies, weight, postage, ""
}

// lookAheadDropSiteKey scans the lines after a data line for a Drop Site Key
// continuation. It stops at the key, a blank line, or a separator, all of
// which are consumed, and at the next data or totals line, which is not.
func lookAheadDropSiteKey(rest []string) (string, int) {
	for i, line := range rest {
		text := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(text, dropSiteKeyPrefix):
			return strings.TrimSpace(strings.TrimPrefix(text, dropSiteKeyPrefix)), i + 1
		case text == "" || isSeparator(text):
			return "", i + 1
		case isDataLine(text) || strings.HasPrefix(text, LabelReportTotals):
			return "", i
		}
	}
	return "", len(rest)
}

func isDataLine(text string) bool {
	for _, p := range dataPrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

func isIgnorable(text string) bool {
	for _, p := range ignorablePrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

func isSeparator(text string) bool {
	return strings.HasPrefix(text, "-------") || strings.HasPrefix(text, "=======")
}

func withoutDollarTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "$" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// cleanNumber drops thousands separators and a leading currency sign.
func cleanNumber(tok string) string {
	return strings.ReplaceAll(strings.TrimPrefix(tok, "$"), ",", "")
}

func parseNumber(tok string) (float64, bool) {
	v, err := strconv.ParseFloat(cleanNumber(tok), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
