package linestore

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// kinds of changes reported to Store.OnChange
const (
	OpWrite  = "write"
	OpAppend = "append"
	OpEdit   = "edit"
	OpDelete = "delete"
)

// Change describes a successful mutation of the store file
type Change struct {
	Op   string
	Path string
	// number of the line that was written, appended, edited or deleted
	Line int
	// content of the file before and after the change
	Before string
	After  string
}

// Store is a text file of numbered lines
type Store struct {
	Path string

	// if set, called after every successful mutation
	OnChange func(*Change)
}

// New returns a store for a file at path. The file is created lazily,
// on first write.
func New(path string) *Store {
	return &Store{
		Path: path,
	}
}

func (s *Store) read() (string, error) {
	d, err := os.ReadFile(s.Path)
	if err != nil {
		return "", ioErr("read", s.Path, err)
	}
	// \r is not structural, we only care about \n
	return strings.ReplaceAll(string(d), "\r", ""), nil
}

// readMaybeMissing is like read but treats a missing file as empty
func (s *Store) readMaybeMissing() (string, error) {
	content, err := s.read()
	if err != nil && IsNotExist(err) {
		return "", nil
	}
	return content, err
}

func (s *Store) notify(op string, line int, before string, after string) {
	if s.OnChange == nil {
		return
	}
	s.OnChange(&Change{
		Op:     op,
		Path:   s.Path,
		Line:   line,
		Before: before,
		After:  after,
	})
}

// ReadAll returns the whole content of the file with \r removed.
// If the file doesn't exist, returns an error for which IsNotExist is true.
func (s *Store) ReadAll() (string, error) {
	return s.read()
}

// ReadLines returns all non-empty lines of the file
func (s *Store) ReadLines() ([]Line, error) {
	content, err := s.read()
	if err != nil {
		return nil, err
	}
	lines := splitLines(content)
	res := make([]Line, len(lines))
	for i, l := range lines {
		res[i] = ParseLine(l)
	}
	return res, nil
}

// Count returns number of lines in the file
func (s *Store) Count() (int, error) {
	content, err := s.read()
	if err != nil {
		return 0, err
	}
	return len(splitLines(content)), nil
}

// WriteInitial replaces the content of the file with a single line "1-)text"
func (s *Store) WriteInitial(text string) error {
	if err := validateText(text); err != nil {
		return err
	}
	before, err := s.readMaybeMissing()
	if err != nil {
		return err
	}
	d := joinLines([]string{text})
	if err = WriteFileAtomic(s.Path, d); err != nil {
		return ioErr("write", s.Path, err)
	}
	s.notify(OpWrite, 1, before, string(d))
	return nil
}

// Append adds text as a new last line, numbered one more than the current
// last line. A missing or empty file, or a last line without a number,
// starts numbering at 1.
func (s *Store) Append(text string) error {
	if err := validateText(text); err != nil {
		return err
	}
	before, err := s.readMaybeMissing()
	if err != nil {
		return err
	}
	next := 1
	lines := splitLines(before)
	if len(lines) > 0 {
		n := leadingNumber(lines[len(lines)-1])
		if n == math.MaxInt {
			return fmt.Errorf("%w: last line is numbered %d", ErrInvalidLineNumber, n)
		}
		if n > 0 {
			next = n + 1
		}
	}

	newLine := strconv.Itoa(next) + Marker + text + "\n"
	toWrite := newLine
	if before != "" && !strings.HasSuffix(before, "\n") {
		toWrite = "\n" + newLine
	}
	if err = appendToFile(s.Path, []byte(toWrite)); err != nil {
		return err
	}
	s.notify(OpAppend, next, before, before+toWrite)
	return nil
}

func appendToFile(path string, d []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return ioErr("open", path, err)
	}
	_, err = f.Write(d)
	if err == nil {
		err = f.Sync()
	}
	errClose := f.Close()
	if err == nil {
		err = errClose
	}
	return ioErr("write", path, err)
}

// payloadsWithLineNumber reads all lines and verifies lineNo is in 1..count
func (s *Store) payloadsWithLineNumber(lineNo int) (string, []string, error) {
	content, err := s.read()
	if err != nil {
		return "", nil, err
	}
	lines := splitLines(content)
	if lineNo < 1 || lineNo > len(lines) {
		return "", nil, fmt.Errorf("%w: %d, file has %d lines", ErrInvalidLineNumber, lineNo, len(lines))
	}
	payloads := make([]string, len(lines))
	for i, l := range lines {
		payloads[i] = ParseLine(l).Payload
	}
	return content, payloads, nil
}

// rewrite writes payloads numbered by their position
func (s *Store) rewrite(op string, lineNo int, before string, payloads []string) error {
	d := joinLines(payloads)
	if err := WriteFileAtomic(s.Path, d); err != nil {
		return ioErr("write", s.Path, err)
	}
	s.notify(op, lineNo, before, string(d))
	return nil
}

// Edit replaces the payload of line lineNo (1-based) with text
func (s *Store) Edit(lineNo int, text string) error {
	if err := validateText(text); err != nil {
		return err
	}
	before, payloads, err := s.payloadsWithLineNumber(lineNo)
	if err != nil {
		return err
	}
	payloads[lineNo-1] = text
	return s.rewrite(OpEdit, lineNo, before, payloads)
}

// Delete removes line lineNo (1-based) and renumbers the lines after it
// so that numbers stay 1..count
func (s *Store) Delete(lineNo int) error {
	before, payloads, err := s.payloadsWithLineNumber(lineNo)
	if err != nil {
		return err
	}
	payloads = append(payloads[:lineNo-1], payloads[lineNo:]...)
	return s.rewrite(OpDelete, lineNo, before, payloads)
}
