// Package export renders tables of records as text, JSON, TOON or YAML
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/tidwall/pretty"
	"github.com/toon-format/toon-go"
	"gopkg.in/yaml.v3"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatTOON = "toon"
	FormatYAML = "yaml"
)

// Formats lists supported formats, default first
var Formats = []string{FormatText, FormatJSON, FormatTOON, FormatYAML}

type Column struct {
	Name string
	// if true, values are decimal numbers and are exported as numbers
	Int bool
}

type Table struct {
	Columns []Column
	Rows    [][]string
}

func NewTable(columns ...Column) *Table {
	return &Table{
		Columns: columns,
	}
}

// AddRow adds values, one per column
func (t *Table) AddRow(values ...string) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.Columns))
	}
	t.Rows = append(t.Rows, values)
	return nil
}

// IsValidFormat returns true if format is one of Formats
func IsValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Write renders t to w in a given format
func Write(w io.Writer, format string, t *Table) error {
	var d []byte
	var err error
	switch format {
	case FormatText, "":
		d, err = t.Text()
	case FormatJSON:
		d, err = t.JSON()
	case FormatTOON:
		d, err = t.TOON()
	case FormatYAML:
		d, err = t.YAML()
	default:
		return fmt.Errorf("unknown format '%s', must be one of: %s", format, strings.Join(Formats, ", "))
	}
	if err != nil {
		return err
	}
	_, err = w.Write(d)
	return err
}

// Text renders t as aligned columns with a header line
func (t *Table) Text() ([]byte, error) {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	fmt.Fprintln(tw, strings.Join(names, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// value of a cell as a number, if the column is numeric
func (t *Table) cellValue(col int, v string) any {
	if t.Columns[col].Int {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return v
}

// JSON renders t as an array of objects with keys in column order
func (t *Table) JSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, v := range row {
			if j > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(t.Columns[j].Name)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(t.cellValue(j, v))
			if err != nil {
				return nil, err
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return pretty.Pretty(buf.Bytes()), nil
}

func (t *Table) maps() []map[string]any {
	res := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		m := make(map[string]any, len(row))
		for j, v := range row {
			m[t.Columns[j].Name] = t.cellValue(j, v)
		}
		res = append(res, m)
	}
	return res
}

// TOON renders t in Token-Oriented Object Notation
func (t *Table) TOON() ([]byte, error) {
	d, err := toon.Marshal(t.maps())
	if err != nil {
		return nil, err
	}
	if n := len(d); n == 0 || d[n-1] != '\n' {
		d = append(d, '\n')
	}
	return d, nil
}

// YAML renders t as a sequence of mappings with keys in column order
func (t *Table) YAML() ([]byte, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range t.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for j, v := range row {
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t.Columns[j].Name}
			val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
			if n, ok := t.cellValue(j, v).(int); ok {
				val.Tag = "!!int"
				val.Value = strconv.Itoa(n)
			}
			m.Content = append(m.Content, key, val)
		}
		seq.Content = append(seq.Content, m)
	}
	if len(seq.Content) == 0 {
		return []byte("[]\n"), nil
	}
	return yaml.Marshal(seq)
}
