// Package facility loads the drop-site facility reference table and joins
// facility addresses onto decoded CSM records.
package facility

import (
	"fmt"
	"strings"
)

// Column headers expected in the facility report.
const (
	ColumnDropsiteKey = "Dropsite Key"
	ColumnAddress     = "Address"
	ColumnCity        = "City"
	ColumnState       = "State"
	ColumnZIP         = "ZIP Code"
)

// HeaderRow is the zero-based row holding column headers; the first row of
// the report is a title line.
const HeaderRow = 1

// KeyLength is the number of trailing characters compared when matching
// locale keys to dropsite keys.
const KeyLength = 6

// Facility is one row of the facility reference table.
type Facility struct {
	DropsiteKey string `json:"dropsite_key"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZIP         string `json:"zip"`
}

// FormattedAddress renders "Address, City, State, ZIP5", leaving out empty
// parts after the street. It reports false only when the street address is
// missing.
func (f Facility) FormattedAddress() (string, bool) {
	if f.Address == "" {
		return "", false
	}
	zip := []rune(f.ZIP)
	if len(zip) > 5 {
		zip = zip[:5]
	}
	parts := []string{f.Address}
	for _, p := range []string{f.City, f.State, string(zip)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", "), true
}

// LoadError reports that the reference table could not be loaded.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return "failed to load facility report: " + e.Message
	}
	if e.Cause != nil {
		return fmt.Sprintf("failed to load facility report %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load facility report %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
