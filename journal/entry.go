package journal

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Entry describes a single mutation of a record file
type Entry struct {
	ID   string
	Time time.Time
	Op   string
	// base name of the record file
	File string
	// 1-based line number the mutation targeted
	Line int
	// unified diff of the file, before vs. after
	Diff string
}

// values longer than this are written in the long form
const maxShortValue = 120

func needsLongForm(s string) bool {
	n := len(s)
	if n == 0 || n > maxShortValue {
		return true
	}
	for i := range n {
		b := s[i]
		if b < 32 || b == 127 {
			return true
		}
	}
	return s[0] == ' ' || s[n-1] == ' '
}

// serializes a value as:
//
//	key: value\n
//
// or, for empty, long or non-printable values:
//
//	key:+${len}\n
//	value\n
func appendKeyValue(b *bytes.Buffer, key, val string) {
	b.WriteString(key)
	if !needsLongForm(val) {
		b.WriteString(": ")
		b.WriteString(val)
		b.WriteByte('\n')
		return
	}
	b.WriteString(":+")
	b.WriteString(strconv.Itoa(len(val)))
	b.WriteByte('\n')
	b.WriteString(val)
	b.WriteByte('\n')
}

// Marshal returns the body of a block
func (e *Entry) Marshal() []byte {
	var b bytes.Buffer
	appendKeyValue(&b, "id", e.ID)
	appendKeyValue(&b, "op", e.Op)
	appendKeyValue(&b, "file", e.File)
	appendKeyValue(&b, "line", strconv.Itoa(e.Line))
	appendKeyValue(&b, "diff", e.Diff)
	return b.Bytes()
}

func parseKeyValue(s string) (key, val, rest string, err error) {
	idx := strings.IndexByte(s, '\n')
	if idx < 0 {
		return "", "", "", fmt.Errorf("missing newline in '%s'", s)
	}
	line := s[:idx]
	rest = s[idx+1:]
	key, v, ok := strings.Cut(line, ":")
	if !ok || key == "" {
		return "", "", "", fmt.Errorf("invalid line '%s'", line)
	}
	if val, ok := strings.CutPrefix(v, " "); ok {
		return key, val, rest, nil
	}
	sizeStr, ok := strings.CutPrefix(v, "+")
	if !ok {
		return "", "", "", fmt.Errorf("invalid line '%s'", line)
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 0 || size >= len(rest) {
		return "", "", "", fmt.Errorf("invalid size in line '%s'", line)
	}
	if rest[size] != '\n' {
		return "", "", "", fmt.Errorf("value of '%s' not terminated by newline", key)
	}
	return key, rest[:size], rest[size+1:], nil
}

// UnmarshalEntry decodes a block body created with Marshal
func UnmarshalEntry(d []byte, t time.Time) (*Entry, error) {
	e := &Entry{
		Time: t,
	}
	s := string(d)
	for len(s) > 0 {
		key, val, rest, err := parseKeyValue(s)
		if err != nil {
			return nil, err
		}
		s = rest
		switch key {
		case "id":
			e.ID = val
		case "op":
			e.Op = val
		case "file":
			e.File = val
		case "line":
			e.Line, err = strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("invalid line number '%s'", val)
			}
		case "diff":
			e.Diff = val
		}
	}
	return e, nil
}
