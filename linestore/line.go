package linestore

import (
	"strconv"
	"strings"
)

// Marker separates line number from payload
const Marker = "-)"

// Line is a single stored line. Number is its position at the time
// it was read.
type Line struct {
	Number  int
	Payload string
}

// String formats the line as stored in the file, without the newline
func (l Line) String() string {
	return strconv.Itoa(l.Number) + Marker + l.Payload
}

// ParseLine splits "N-)payload" into its parts.
// If s has no marker or the part before it isn't a positive number,
// Number is 0 and Payload is the text after the marker (or all of s
// if there's no marker).
func ParseLine(s string) Line {
	idx := strings.Index(s, Marker)
	if idx == -1 {
		return Line{Payload: s}
	}
	payload := s[idx+len(Marker):]
	n, err := strconv.Atoi(s[:idx])
	if err != nil || n < 1 {
		return Line{Payload: payload}
	}
	return Line{Number: n, Payload: payload}
}

// leadingNumber returns the number before the marker or 0
func leadingNumber(s string) int {
	return ParseLine(s).Number
}

// splitLines splits file content into non-empty lines
func splitLines(s string) []string {
	parts := strings.Split(s, "\n")
	res := parts[:0]
	for _, l := range parts {
		if l != "" {
			res = append(res, l)
		}
	}
	return res
}

// joinLines renders payloads numbered by position, 1-based
func joinLines(payloads []string) []byte {
	var sb strings.Builder
	for i, p := range payloads {
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString(Marker)
		sb.WriteString(p)
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

func validateText(text string) error {
	if strings.ContainsAny(text, "\r\n") {
		return ErrInvalidText
	}
	return nil
}
