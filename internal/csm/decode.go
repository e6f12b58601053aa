package csm

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DefaultBatchSize is the number of records handed to a batch callback at once.
const DefaultBatchSize = 500

// Record is one decoded CSM line keyed by field name. A field with no value
// is absent from the map; it is never stored as an empty string.
type Record map[string]any

// String returns a field's value rendered as text.
func (r Record) String(name string) (string, bool) {
	v, ok := r[name]
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case int:
		return fmt.Sprintf("%d", val), true
	default:
		return fmt.Sprint(val), true
	}
}

// Int returns an integer-valued field such as Number of Pieces.
func (r Record) Int(name string) (int, bool) {
	n, ok := r[name].(int)
	return n, ok
}

// DecodeLine slices a raw record into its fields and applies the weight,
// date and piece-count conversions. Malformed values are dropped; decoding
// itself never fails.
func DecodeLine(line string) Record {
	rec := make(Record)
	for _, f := range fields {
		if f.Start-1 >= len(line) {
			continue
		}
		end := f.End
		if end > len(line) {
			end = len(line)
		}
		value := strings.TrimSpace(line[f.Start-1 : end])
		if value == "" {
			continue
		}

		switch f.Name {
		case FieldTotalWeight:
			if w, ok := ConvertWeight(value); ok {
				rec[f.Name] = w
			}
		case FieldInductionStartDate:
			if d, ok := FormatDate(value); ok {
				rec[f.Name] = d
			}
		case FieldNumberOfPieces:
			if n, ok := ParseCount(value); ok {
				rec[f.Name] = n
			}
		default:
			rec[f.Name] = value
		}
	}
	return rec
}

// Decode reads every non-blank line from r and calls fn with batches of at
// most batchSize decoded records. It returns the number of records decoded.
func Decode(r io.Reader, batchSize int, fn func(batch []Record) error) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, RecordLength+2), 1024*1024)

	total := 0
	batch := make([]Record, 0, batchSize)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		batch = append(batch, DecodeLine(line))
		if len(batch) == batchSize {
			if err := fn(batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = make([]Record, 0, batchSize)
		}
	}
	if err := scanner.Err(); err != nil {
		return total, fmt.Errorf("failed to read CSM lines: %w", err)
	}

	if len(batch) > 0 {
		if err := fn(batch); err != nil {
			return total, err
		}
		total += len(batch)
	}
	return total, nil
}

// RestoreCell converts a persisted text cell back to the decoded value type
// for its column. Empty cells are absent.
func RestoreCell(column, cell string) (any, bool) {
	if cell == "" {
		return nil, false
	}
	if column == FieldNumberOfPieces {
		return ParseCount(cell)
	}
	return cell, true
}
