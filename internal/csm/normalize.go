package csm

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// weightFractionDigits is the number of implied decimal places in Total Weight.
const weightFractionDigits = 4

const (
	rawDateLayout     = "20060102"
	displayDateLayout = "01-02-2006"
)

// ConvertWeight turns a fixed-point Total Weight value into whole pounds,
// rounding up, e.g. "000123451000" -> "12346 LBS".
// Returns false when the value is not purely numeric.
func ConvertWeight(raw string) (string, bool) {
	if raw == "" || !isDigits(raw) {
		return "", false
	}

	whole, frac := "0", raw
	if len(raw) > weightFractionDigits {
		whole = raw[:len(raw)-weightFractionDigits]
		frac = raw[len(raw)-weightFractionDigits:]
	}

	d, err := decimal.NewFromString(whole + "." + frac)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s LBS", d.Ceil().String()), true
}

// FormatDate converts YYYYMMDD to MM-DD-YYYY. Any value that is not an
// 8-character valid calendar date yields false.
func FormatDate(raw string) (string, bool) {
	if len(raw) != len(rawDateLayout) {
		return "", false
	}
	t, err := time.Parse(rawDateLayout, raw)
	if err != nil {
		return "", false
	}
	return t.Format(displayDateLayout), true
}

// ParseCount converts an all-digit piece count to an int.
func ParseCount(raw string) (int, bool) {
	if raw == "" || !isDigits(raw) {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
