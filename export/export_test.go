package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/alecthomas/assert"
	"github.com/sebdah/goldie/v2"
	"gopkg.in/yaml.v3"
)

func rentTable(t *testing.T) *Table {
	tbl := NewTable(
		Column{Name: "#", Int: true},
		Column{Name: "Tenant ID", Int: true},
		Column{Name: "Current Rent Debt", Int: true},
		Column{Name: "Due Date"},
	)
	assert.NoError(t, tbl.AddRow("1", "3", "10", "2024-05-01"))
	assert.NoError(t, tbl.AddRow("2", "12", "350", "2024-06-01"))
	return tbl
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, Write(&buf, FormatText, rentTable(t)))
	newGoldie(t).Assert(t, "rent_table", buf.Bytes())

	tbl := NewTable(
		Column{Name: "#"},
		Column{Name: "Property ID"},
		Column{Name: "Cost"},
		Column{Name: "Priority"},
		Column{Name: "Maintenance Type"},
		Column{Name: "Expected Maintenance Date"},
	)
	d, err := tbl.Text()
	assert.NoError(t, err)
	newGoldie(t).Assert(t, "empty_table", d)
}

func TestAddRow(t *testing.T) {
	tbl := rentTable(t)
	assert.Error(t, tbl.AddRow("1"))
	assert.Equal(t, 2, len(tbl.Rows))
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, Write(&buf, FormatJSON, rentTable(t)))
	s := buf.String()
	// keys stay in column order
	idx1 := strings.Index(s, `"Tenant ID"`)
	idx2 := strings.Index(s, `"Current Rent Debt"`)
	idx3 := strings.Index(s, `"Due Date"`)
	assert.True(t, idx1 >= 0 && idx1 < idx2 && idx2 < idx3, "%s", s)

	var v []map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &v))
	assert.Equal(t, 2, len(v))
	assert.Equal(t, float64(350), v[1]["Current Rent Debt"])
	assert.Equal(t, "2024-06-01", v[1]["Due Date"])

	d, err := NewTable(Column{Name: "x"}).JSON()
	assert.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(d)))
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, Write(&buf, FormatYAML, rentTable(t)))
	s := buf.String()
	assert.True(t, strings.HasPrefix(s, "- "), "%s", s)
	assert.True(t, strings.Contains(s, "Tenant ID: 3\n"), "%s", s)

	var v []map[string]any
	assert.NoError(t, yaml.Unmarshal(buf.Bytes(), &v))
	assert.Equal(t, 2, len(v))
	assert.Equal(t, 12, v[1]["Tenant ID"])
	assert.Equal(t, "2024-05-01", v[0]["Due Date"])

	d, err := NewTable(Column{Name: "x"}).YAML()
	assert.NoError(t, err)
	assert.Equal(t, "[]\n", string(d))
}

func TestNumericColumnKeepsText(t *testing.T) {
	tbl := NewTable(Column{Name: "n", Int: true})
	assert.NoError(t, tbl.AddRow("not a number"))
	d, err := tbl.YAML()
	assert.NoError(t, err)
	assert.Equal(t, "- n: not a number\n", string(d))
}

func TestTOON(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, Write(&buf, FormatTOON, rentTable(t)))
	s := buf.String()
	assert.True(t, strings.HasSuffix(s, "\n"))
	for _, sub := range []string{"Tenant ID", "Current Rent Debt", "350", "2024-06-01"} {
		assert.True(t, strings.Contains(s, sub), "missing '%s' in:\n%s", sub, s)
	}
}

func TestFormats(t *testing.T) {
	for _, f := range Formats {
		assert.True(t, IsValidFormat(f))
		var buf bytes.Buffer
		assert.NoError(t, Write(&buf, f, rentTable(t)))
		assert.NotEqual(t, 0, buf.Len())
	}
	assert.False(t, IsValidFormat("xml"))
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, "xml", rentTable(t)))
}
