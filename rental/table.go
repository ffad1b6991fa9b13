package rental

import (
	"strconv"

	"github.com/kjk/rentman/export"
)

// Table returns items as a table with record number in the first column
func (k *Kind[T]) Table(items []T) *export.Table {
	cols := []export.Column{{Name: "#", Int: true}}
	for _, f := range k.Fields {
		cols = append(cols, export.Column{Name: f.Label, Int: f.Int})
	}
	t := export.NewTable(cols...)
	for _, v := range items {
		row := append([]string{strconv.Itoa(v.Number())}, k.Values(v)...)
		// can't fail, Values returns one value per field
		_ = t.AddRow(row...)
	}
	return t
}
