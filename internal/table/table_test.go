package table

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Table {
	return New([]string{"A", "B", "C"}, []Row{
		{"A": "a1", "B": 1},
		{"A": "a2", "C": "c2"},
	})
}

func TestNew_CopiesInput(t *testing.T) {
	rows := []Row{{"A": "x"}}
	tbl := New([]string{"A"}, rows)
	rows[0]["A"] = "changed"

	assert.Equal(t, "x", tbl.Text(0, "A"))

	r := tbl.Row(0)
	r["A"] = "changed"
	assert.Equal(t, "x", tbl.Text(0, "A"))
}

func TestProject(t *testing.T) {
	p := sample().Project([]string{"C", "A", "Z"})

	assert.Equal(t, []string{"C", "A", "Z"}, p.Columns())
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, "a1", p.Text(0, "A"))
	_, ok := p.Value(0, "B")
	assert.False(t, ok)
	_, ok = p.Value(0, "Z")
	assert.False(t, ok)
	assert.Equal(t, "c2", p.Text(1, "C"))
}

func TestWithColumn_DoesNotMutateSource(t *testing.T) {
	src := sample()
	out := src.WithColumn("D", func(r Row) (any, bool) {
		if r["A"] == "a1" {
			return "d1", true
		}
		return nil, false
	})

	assert.Equal(t, []string{"A", "B", "C"}, src.Columns())
	assert.Equal(t, []string{"A", "B", "C", "D"}, out.Columns())
	assert.Equal(t, "d1", out.Text(0, "D"))
	_, ok := out.Value(1, "D")
	assert.False(t, ok)
	_, ok = src.Value(0, "D")
	assert.False(t, ok)
	assert.Equal(t, 1, out.Count("D"))
}

func TestCSV_RoundTrip(t *testing.T) {
	src := sample()
	var buf bytes.Buffer
	require.NoError(t, src.WriteCSV(&buf))
	assert.Equal(t, "A,B,C\na1,1,\na2,,c2\n", buf.String())

	restore := func(column, cell string) (any, bool) {
		if cell == "" {
			return nil, false
		}
		if column == "B" {
			n, err := strconv.Atoi(cell)
			return n, err == nil
		}
		return cell, true
	}
	got, err := ReadCSV(&buf, restore)
	require.NoError(t, err)

	assert.Equal(t, src.Columns(), got.Columns())
	assert.Equal(t, src.Rows(), got.Rows())
}

func TestReadCSV_Empty(t *testing.T) {
	got, err := ReadCSV(bytes.NewReader(nil), nil)
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", FormatCell(nil))
	assert.Equal(t, "12", FormatCell(12))
	assert.Equal(t, "1.5", FormatCell(1.5))
	assert.Equal(t, "x", FormatCell("x"))
}
