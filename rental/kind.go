// Package rental stores property, tenant, rent and maintenance records,
// one kind per file, and orders them by their sort key.
package rental

import (
	"fmt"
	"strconv"

	"github.com/kjk/rentman/order"
	"github.com/kjk/rentman/record"
)

// Entity is a decoded record that remembers its line number
type Entity interface {
	order.Keyed
	Number() int
}

// Field describes one key:value pair of a record
type Field struct {
	// key in the stored line
	Label string
	// name of the command line flag
	Flag string
	// true if value must be a decimal number
	Int bool
}

// Kind describes how entities of type T are stored and ordered
type Kind[T Entity] struct {
	Name     string
	FileName string
	Fields   []Field
	// label of the field returned by SortKey
	KeyLabel string
	// sorts ascending by key
	Sort func(s []T, key func(T) int)
	// if true, Ordered returns the largest key first
	Descending bool

	encode func(v T) []any
	decode func(number int, d *decoder) T
}

// Labels returns field labels in stored order
func (k *Kind[T]) Labels() []string {
	res := make([]string, len(k.Fields))
	for i, f := range k.Fields {
		res[i] = f.Label
	}
	return res
}

// Encode returns a line payload for v
func (k *Kind[T]) Encode(v T) (string, error) {
	var r record.Record
	if err := r.Write(k.encode(v)...); err != nil {
		return "", fmt.Errorf("%s: %w", k.Name, err)
	}
	return r.Marshal(), nil
}

// Decode converts a record read from line number into an entity
func (k *Kind[T]) Decode(number int, r *record.Record) (T, error) {
	d := &decoder{r: r}
	v := k.decode(number, d)
	if d.err != nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", k.Name, d.err)
	}
	return v, nil
}

// FromValues builds an entity from values keyed by field label.
// Used to create entities from user input.
func (k *Kind[T]) FromValues(values map[string]string) (T, error) {
	var r record.Record
	for _, f := range k.Fields {
		v := values[f.Label]
		if f.Int {
			if _, err := strconv.Atoi(v); err != nil {
				var zero T
				return zero, fmt.Errorf("%w: %s: '%s' must be a number, got '%s'", record.ErrInvalidField, k.Name, f.Label, v)
			}
		}
		r.Entries = append(r.Entries, record.Entry{Key: f.Label, Value: v})
	}
	return k.Decode(0, &r)
}

// Values returns entity fields as strings, in Fields order
func (k *Kind[T]) Values(v T) []string {
	kv := k.encode(v)
	res := make([]string, 0, len(kv)/2)
	for i := 1; i < len(kv); i += 2 {
		switch x := kv[i].(type) {
		case string:
			res = append(res, x)
		case int:
			res = append(res, strconv.Itoa(x))
		default:
			res = append(res, fmt.Sprintf("%v", x))
		}
	}
	return res
}

type decoder struct {
	r   *record.Record
	err error
}

func (d *decoder) int(key string) int {
	if d.err != nil {
		return 0
	}
	n, err := d.r.GetInt(key)
	d.err = err
	return n
}

func (d *decoder) str(key string) string {
	if d.err != nil {
		return ""
	}
	s, err := d.r.MustGet(key)
	d.err = err
	return s
}
