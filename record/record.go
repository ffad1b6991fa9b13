package record

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

/*
Serialize/Deserialize a list of key/value pairs as a single line of text:

	Property ID:3 / Bedrooms:2 / Address:Main St 5

Keys can't contain ':' and neither keys nor values can contain newlines
or the separator " / ".
*/

// Separator is placed between key:value pairs
const Separator = " / "

// ErrInvalidField is returned when a key or value can't be serialized
var ErrInvalidField = errors.New("invalid field")

type Entry struct {
	Key   string
	Value string
}

// Record is an ordered list of key/value pairs
type Record struct {
	Entries []Entry
}

func toStr(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	}
	return fmt.Sprintf("%v", v)
}

func validateKey(k string) error {
	if k == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidField)
	}
	if strings.ContainsAny(k, ":\r\n") || strings.Contains(k, Separator) {
		return fmt.Errorf("%w: key %q", ErrInvalidField, k)
	}
	return nil
}

func validateValue(k, v string) error {
	// " /" at the end would merge with the separator that follows
	if strings.ContainsAny(v, "\r\n") || strings.Contains(v, Separator) || strings.HasSuffix(v, " /") {
		return fmt.Errorf("%w: value %q of key %q", ErrInvalidField, v, k)
	}
	return nil
}

// Write appends key/value pairs. Values are converted to strings,
// ints in decimal, everything else with %v.
func (r *Record) Write(args ...any) error {
	n := len(args)
	if n == 0 || n%2 != 0 {
		return fmt.Errorf("invalid number of args: %d. Should be multiple of 2", n)
	}
	// validate everything first so a failed Write doesn't leave
	// a partial record
	entries := make([]Entry, 0, n/2)
	for i := 0; i < n; i += 2 {
		k := toStr(args[i])
		v := toStr(args[i+1])
		if err := validateKey(k); err != nil {
			return err
		}
		if err := validateValue(k, v); err != nil {
			return err
		}
		entries = append(entries, Entry{Key: k, Value: v})
	}
	r.Entries = append(r.Entries, entries...)
	return nil
}

// Reset to re-use the record
func (r *Record) Reset() {
	r.Entries = r.Entries[:0]
}

// Get returns a value for a given key
func (r *Record) Get(key string) (string, bool) {
	for _, e := range r.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// GetInt returns value for a given key parsed as a decimal number
func (r *Record) GetInt(key string) (int, error) {
	v, ok := r.Get(key)
	if !ok {
		return 0, fmt.Errorf("missing key '%s'", key)
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("value '%s' of key '%s' is not a number", v, key)
	}
	return n, nil
}

// MustGet returns a value for a given key or an error if it's missing
func (r *Record) MustGet(key string) (string, error) {
	v, ok := r.Get(key)
	if !ok {
		return "", fmt.Errorf("missing key '%s'", key)
	}
	return v, nil
}

// Keys returns keys in order
func (r *Record) Keys() []string {
	res := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		res[i] = e.Key
	}
	return res
}

// Marshal converts record to a single line, without a newline
func (r *Record) Marshal() string {
	var sb strings.Builder
	for i, e := range r.Entries {
		if i > 0 {
			sb.WriteString(Separator)
		}
		sb.WriteString(e.Key)
		sb.WriteByte(':')
		sb.WriteString(e.Value)
	}
	return sb.String()
}

// Unmarshal decodes a line created by Marshal
func Unmarshal(s string) (*Record, error) {
	if s == "" {
		return nil, errors.New("empty record")
	}
	r := &Record{}
	for _, part := range strings.Split(s, Separator) {
		idx := strings.IndexByte(part, ':')
		if idx <= 0 {
			return nil, fmt.Errorf("field in unrecognized format: '%s'", part)
		}
		r.Entries = append(r.Entries, Entry{
			Key:   part[:idx],
			Value: part[idx+1:],
		})
	}
	return r, nil
}
