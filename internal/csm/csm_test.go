package csm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildLine returns a space-filled record of the given length with values
// placed at their field positions.
func buildLine(t *testing.T, length int, values map[string]string) string {
	t.Helper()
	buf := []byte(strings.Repeat(" ", length))
	for name, v := range values {
		f, ok := Lookup(name)
		require.True(t, ok, "unknown field %q", name)
		require.LessOrEqual(t, len(v), f.Len(), "value too wide for %q", name)
		copy(buf[f.Start-1:], v)
	}
	return string(buf)
}

func TestFields_Layout(t *testing.T) {
	all := Fields()
	require.Len(t, all, 75)

	assert.Equal(t, FieldSpec{Name: "Job ID", Start: 1, End: 8}, all[0])
	assert.Equal(t, FieldSpec{Name: "Closing Character", Start: 790, End: 790}, all[len(all)-1])
	assert.Equal(t, RecordLength, all[len(all)-1].End)

	prevEnd := 0
	for _, f := range all {
		assert.LessOrEqual(t, f.Start, f.End, f.Name)
		assert.Greater(t, f.Start, prevEnd, "%s overlaps previous field", f.Name)
		prevEnd = f.End
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name  string
		start int
		end   int
	}{
		{FieldLocaleKey, 52, 60},
		{FieldInductionStartDate, 148, 155},
		{FieldNumberOfPieces, 208, 215},
		{FieldTotalWeight, 216, 227},
		{FieldIMContainerFinal, 368, 391},
		{FieldDestinationLine1, 416, 445},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := Lookup(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.start, f.Start)
			assert.Equal(t, tt.end, f.End)
		})
	}

	_, ok := Lookup("No Such Field")
	assert.False(t, ok)
}

func TestFields_ReturnsCopy(t *testing.T) {
	a := Fields()
	a[0].Name = "changed"
	assert.Equal(t, FieldJobID, Fields()[0].Name)
}

func TestConvertWeight(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"000123451000", "12346 LBS", true},
		{"000120000000", "12000 LBS", true},
		{"0012345", "2 LBS", true},
		{"000000000001", "1 LBS", true},
		{"000000000000", "0 LBS", true},
		{"12", "1 LBS", true},
		{"12.5", "", false},
		{"ABC", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ConvertWeight(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"20240115", "01-15-2024", true},
		{"20241231", "12-31-2024", true},
		{"2024115", "", false},
		{"20241301", "", false},
		{"20240230", "", false},
		{"2024011501", "", false},
		{"ABCDEFGH", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := FormatDate(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCount(t *testing.T) {
	n, ok := ParseCount("00000123")
	assert.True(t, ok)
	assert.Equal(t, 123, n)

	_, ok = ParseCount("ABCDEF")
	assert.False(t, ok)

	_, ok = ParseCount("12 4")
	assert.False(t, ok)
}

func TestDecodeLine_RoundTrip(t *testing.T) {
	values := map[string]string{
		FieldJobID:              "JOB00001",
		"Segment ID":            "SEG1",
		FieldDisplayContainerID: "000042",
		FieldContainerDestZip:   "08837",
		FieldLocaleKey:          "LOC123456",
		"Reservation Number":    "RES-7",
		"Number of Copies":      "00000500",
	}
	line := buildLine(t, 227, values)

	rec := DecodeLine(line)
	for _, f := range Fields() {
		if f.Start-1 >= len(line) {
			continue
		}
		end := min(f.End, len(line))
		want := strings.TrimSpace(line[f.Start-1 : end])
		got, ok := rec.String(f.Name)
		if want == "" {
			assert.False(t, ok, "%s should be absent", f.Name)
			continue
		}
		require.True(t, ok, "%s should be present", f.Name)
		assert.Equal(t, want, got, f.Name)
	}
}

func TestDecodeLine_EmptyValuesOmitted(t *testing.T) {
	line := buildLine(t, RecordLength, map[string]string{FieldJobID: "J1"})
	rec := DecodeLine(line)

	assert.Len(t, rec, 1)
	assert.Equal(t, "J1", rec[FieldJobID])
	for name, v := range rec {
		assert.NotEqual(t, "", v, name)
	}
}

func TestDecodeLine_Transforms(t *testing.T) {
	line := buildLine(t, RecordLength, map[string]string{
		FieldInductionStartDate: "20240115",
		FieldNumberOfPieces:     "00000123",
		FieldTotalWeight:        "000123451000",
		"Closing Character":     "#",
	})
	rec := DecodeLine(line)

	assert.Equal(t, "01-15-2024", rec[FieldInductionStartDate])
	assert.Equal(t, 123, rec[FieldNumberOfPieces])
	assert.Equal(t, "12346 LBS", rec[FieldTotalWeight])
	assert.Equal(t, "#", rec["Closing Character"])
}

func TestDecodeLine_MalformedFieldsAbsent(t *testing.T) {
	line := buildLine(t, RecordLength, map[string]string{
		FieldJobID:              "JOB9",
		FieldInductionStartDate: "20241301",
		FieldNumberOfPieces:     "ABCDEF",
		FieldTotalWeight:        "12.5LBS",
	})
	rec := DecodeLine(line)

	assert.Equal(t, "JOB9", rec[FieldJobID])
	assert.NotContains(t, rec, FieldInductionStartDate)
	assert.NotContains(t, rec, FieldNumberOfPieces)
	assert.NotContains(t, rec, FieldTotalWeight)
}

func TestDecodeLine_ShortLine(t *testing.T) {
	// Ends inside Locale Key (52-60): the key is truncated, later fields are absent.
	line := buildLine(t, 56, map[string]string{
		FieldJobID:     "JOB1",
		FieldLocaleKey: "ABCDE",
	})
	rec := DecodeLine(line)

	assert.Equal(t, "JOB1", rec[FieldJobID])
	assert.Equal(t, "ABCDE", rec[FieldLocaleKey])
	assert.NotContains(t, rec, "Entry Point - Actual Postal Code")
	assert.NotContains(t, rec, FieldTotalWeight)
}

func TestDecode_Batches(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 5; i++ {
		sb.WriteString(buildLine(t, RecordLength, map[string]string{FieldJobID: "JOB"}))
		sb.WriteString("\r\n")
		sb.WriteString("   \n")
	}

	var sizes []int
	total, err := Decode(strings.NewReader(sb.String()), 2, func(batch []Record) error {
		sizes = append(sizes, len(batch))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, []int{2, 2, 1}, sizes)
}

func TestDecode_EndToEndPieces(t *testing.T) {
	line1 := buildLine(t, RecordLength, map[string]string{FieldJobID: "JOB1", FieldNumberOfPieces: "00000123"})
	line2 := buildLine(t, RecordLength, map[string]string{
		FieldJobID:              "JOB2",
		FieldNumberOfPieces:     "ABCDEF",
		FieldDisplayContainerID: "000007",
		FieldTotalWeight:        "000000250000",
	})

	var recs []Record
	_, err := Decode(strings.NewReader(line1+"\n"+line2+"\n"), 0, func(batch []Record) error {
		recs = append(recs, batch...)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	n, ok := recs[0].Int(FieldNumberOfPieces)
	assert.True(t, ok)
	assert.Equal(t, 123, n)

	assert.NotContains(t, recs[1], FieldNumberOfPieces)
	assert.Equal(t, "JOB2", recs[1][FieldJobID])
	assert.Equal(t, "000007", recs[1][FieldDisplayContainerID])
	assert.Equal(t, "25 LBS", recs[1][FieldTotalWeight])
}

func TestRestoreCell(t *testing.T) {
	v, ok := RestoreCell(FieldNumberOfPieces, "42")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	v, ok = RestoreCell(FieldJobID, "J1")
	assert.True(t, ok)
	assert.Equal(t, "J1", v)

	_, ok = RestoreCell(FieldJobID, "")
	assert.False(t, ok)
}
