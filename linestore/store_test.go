package linestore

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/alecthomas/assert"
)

const fiveLines = "1-)TEXT STRING1\n2-)TEXT STRING2\n3-)TEXT STRING3\n4-)TEXT STRING4\n5-)TEXT STRING5\n"

func a(_ *testing.T, cond bool, format string, args ...any) {
	if !cond {
		msg := format
		if len(args) > 0 {
			msg = fmt.Sprintf(format, args...)
		}
		panic(msg)
	}
}

func newStoreWithContent(t *testing.T, content string) *Store {
	path := filepath.Join(t.TempDir(), "test.txt")
	if content != "" {
		err := os.WriteFile(path, []byte(content), 0644)
		assert.NoError(t, err)
	}
	return New(path)
}

func readFile(t *testing.T, s *Store) string {
	d, err := os.ReadFile(s.Path)
	assert.NoError(t, err)
	return string(d)
}

// verifyNumbering checks that numbers in the file are exactly 1..count
func verifyNumbering(t *testing.T, s *Store) int {
	lines, err := s.ReadLines()
	assert.NoError(t, err)
	for i, l := range lines {
		a(t, l.Number == i+1, "line %d has number %d, content: %q", i+1, l.Number, readFile(t, s))
	}
	return len(lines)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		s       string
		number  int
		payload string
	}{
		{"1-)TEXT", 1, "TEXT"},
		{"12-)a-)b", 12, "a-)b"},
		{"3-)", 3, ""},
		{"x-)TEXT", 0, "TEXT"},
		{"0-)TEXT", 0, "TEXT"},
		{"-1-)TEXT", 0, "TEXT"},
		{"no marker", 0, "no marker"},
		{"", 0, ""},
	}
	for _, test := range tests {
		l := ParseLine(test.s)
		assert.Equal(t, test.number, l.Number, "s: %q", test.s)
		assert.Equal(t, test.payload, l.Payload, "s: %q", test.s)
	}
	assert.Equal(t, "7-)foo", Line{Number: 7, Payload: "foo"}.String())
}

func TestReadAll(t *testing.T) {
	s := newStoreWithContent(t, fiveLines)
	got, err := s.ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, fiveLines, got)

	// \r is dropped
	s = newStoreWithContent(t, "1-)A\r\n2-)B\r\n")
	got, err = s.ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, "1-)A\n2-)B\n", got)
}

func TestReadAllMissingVsEmpty(t *testing.T) {
	s := newStoreWithContent(t, "")
	_, err := s.ReadAll()
	assert.Error(t, err)
	assert.True(t, IsNotExist(err))
	assert.True(t, IsIOError(err))

	err = os.WriteFile(s.Path, nil, 0644)
	assert.NoError(t, err)
	got, err := s.ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestReadLines(t *testing.T) {
	s := newStoreWithContent(t, "1-)A\n\n2-)B\ngarbage\n")
	lines, err := s.ReadLines()
	assert.NoError(t, err)
	assert.Equal(t, []Line{{1, "A"}, {2, "B"}, {0, "garbage"}}, lines)
	n, err := s.Count()
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestWriteInitial(t *testing.T) {
	s := newStoreWithContent(t, fiveLines)
	err := s.WriteInitial("TEXT STRING WRITE")
	assert.NoError(t, err)
	assert.Equal(t, "1-)TEXT STRING WRITE\n", readFile(t, s))

	// creates missing file
	s = newStoreWithContent(t, "")
	err = s.WriteInitial("first")
	assert.NoError(t, err)
	assert.Equal(t, "1-)first\n", readFile(t, s))
}

func TestWriteInitialUnwritable(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "no", "such", "dir", "f.txt"))
	err := s.WriteInitial("x")
	assert.Error(t, err)
	assert.True(t, IsIOError(err))
}

func TestAppend(t *testing.T) {
	s := newStoreWithContent(t, fiveLines)
	err := s.Append("TEXT STRING6")
	assert.NoError(t, err)
	assert.Equal(t, fiveLines+"6-)TEXT STRING6\n", readFile(t, s))
}

func TestAppendMissingAndEmpty(t *testing.T) {
	s := newStoreWithContent(t, "")
	err := s.Append("A")
	assert.NoError(t, err)
	assert.Equal(t, "1-)A\n", readFile(t, s))

	err = os.WriteFile(s.Path, nil, 0644)
	assert.NoError(t, err)
	err = s.Append("B")
	assert.NoError(t, err)
	assert.Equal(t, "1-)B\n", readFile(t, s))
}

func TestAppendNumbering(t *testing.T) {
	// continues from the last line's number
	s := newStoreWithContent(t, "1-)A\n7-)B\n")
	err := s.Append("C")
	assert.NoError(t, err)
	assert.Equal(t, "1-)A\n7-)B\n8-)C\n", readFile(t, s))

	// last line without a number starts at 1
	s = newStoreWithContent(t, "1-)A\nno number\n")
	err = s.Append("C")
	assert.NoError(t, err)
	assert.Equal(t, "1-)A\nno number\n1-)C\n", readFile(t, s))

	// missing final newline
	s = newStoreWithContent(t, "1-)A")
	err = s.Append("B")
	assert.NoError(t, err)
	assert.Equal(t, "1-)A\n2-)B\n", readFile(t, s))
}

func TestAppendNumberOverflow(t *testing.T) {
	content := strconv.Itoa(math.MaxInt) + "-)A\n"
	s := newStoreWithContent(t, content)
	err := s.Append("B")
	assert.True(t, errors.Is(err, ErrInvalidLineNumber), "err: %v", err)
	assert.Equal(t, content, readFile(t, s))

	s = newStoreWithContent(t, strconv.Itoa(math.MaxInt-1)+"-)A\n")
	assert.NoError(t, s.Append("B"))
	lines, err := s.ReadLines()
	assert.NoError(t, err)
	assert.Equal(t, math.MaxInt, lines[1].Number)
}

func TestAppendUnwritable(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing-dir", "f.txt"))
	err := s.Append("x")
	assert.Error(t, err)
	assert.True(t, IsIOError(err))
}

func TestEdit(t *testing.T) {
	s := newStoreWithContent(t, fiveLines)
	err := s.Edit(3, "TEXT STRING EDIT")
	assert.NoError(t, err)
	exp := "1-)TEXT STRING1\n2-)TEXT STRING2\n3-)TEXT STRING EDIT\n4-)TEXT STRING4\n5-)TEXT STRING5\n"
	assert.Equal(t, exp, readFile(t, s))
}

func TestEditFails(t *testing.T) {
	s := newStoreWithContent(t, "")
	err := s.Edit(3, "TEXT STRING EDIT")
	assert.Error(t, err)
	assert.True(t, IsNotExist(err))

	s = newStoreWithContent(t, fiveLines)
	for _, n := range []int{0, -1, 6, 100} {
		err = s.Edit(n, "TEXT STRING EDIT")
		assert.True(t, errors.Is(err, ErrInvalidLineNumber), "n: %d, err: %v", n, err)
	}
	// nothing was written
	assert.Equal(t, fiveLines, readFile(t, s))
}

func TestDelete(t *testing.T) {
	s := newStoreWithContent(t, fiveLines)
	err := s.Delete(1)
	assert.NoError(t, err)
	exp := "1-)TEXT STRING2\n2-)TEXT STRING3\n3-)TEXT STRING4\n4-)TEXT STRING5\n"
	assert.Equal(t, exp, readFile(t, s))

	s = newStoreWithContent(t, "1-)A\n2-)B\n3-)C\n")
	err = s.Delete(1)
	assert.NoError(t, err)
	assert.Equal(t, "1-)B\n2-)C\n", readFile(t, s))

	err = s.Delete(2)
	assert.NoError(t, err)
	assert.Equal(t, "1-)B\n", readFile(t, s))

	err = s.Delete(1)
	assert.NoError(t, err)
	assert.Equal(t, "", readFile(t, s))
}

func TestDeleteRenumbersByPosition(t *testing.T) {
	// numbers in the file are ignored, only positions matter
	s := newStoreWithContent(t, "5-)A\n9-)B-)x\n2-)C\n")
	err := s.Delete(2)
	assert.NoError(t, err)
	assert.Equal(t, "1-)A\n2-)C\n", readFile(t, s))

	s = newStoreWithContent(t, "5-)A\n9-)B-)x\n2-)C\n")
	err = s.Delete(3)
	assert.NoError(t, err)
	assert.Equal(t, "1-)A\n2-)B-)x\n", readFile(t, s))
}

func TestDeleteFails(t *testing.T) {
	s := newStoreWithContent(t, "")
	err := s.Delete(2)
	assert.True(t, IsNotExist(err))

	s = newStoreWithContent(t, fiveLines)
	for _, n := range []int{0, 6, 100} {
		err = s.Delete(n)
		assert.True(t, errors.Is(err, ErrInvalidLineNumber), "n: %d, err: %v", n, err)
	}
	assert.Equal(t, fiveLines, readFile(t, s))
}

func TestInvalidText(t *testing.T) {
	s := newStoreWithContent(t, fiveLines)
	assert.Equal(t, ErrInvalidText, s.Append("a\nb"))
	assert.Equal(t, ErrInvalidText, s.Edit(1, "a\r"))
	assert.Equal(t, ErrInvalidText, s.WriteInitial("\n"))
	assert.Equal(t, fiveLines, readFile(t, s))
}

func TestOnChange(t *testing.T) {
	s := newStoreWithContent(t, "")
	var changes []*Change
	s.OnChange = func(c *Change) {
		changes = append(changes, c)
	}
	assert.NoError(t, s.WriteInitial("A"))
	assert.NoError(t, s.Append("B"))
	assert.NoError(t, s.Edit(1, "AA"))
	assert.NoError(t, s.Delete(2))
	// failures are not reported
	assert.Error(t, s.Delete(5))

	assert.Equal(t, 4, len(changes))
	ops := []string{OpWrite, OpAppend, OpEdit, OpDelete}
	lineNos := []int{1, 2, 1, 2}
	for i, c := range changes {
		assert.Equal(t, ops[i], c.Op)
		assert.Equal(t, lineNos[i], c.Line)
		assert.Equal(t, s.Path, c.Path)
	}
	assert.Equal(t, "", changes[0].Before)
	assert.Equal(t, "1-)A\n2-)B\n", changes[1].After)
	assert.Equal(t, "1-)AA\n2-)B\n", changes[3].Before)
	assert.Equal(t, "1-)AA\n", changes[3].After)
}

// random sequence of append / edit / delete keeps numbers contiguous
func TestRenumberingInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	s := newStoreWithContent(t, "")
	var model []string
	for i := 0; i < 500; i++ {
		text := fmt.Sprintf("payload %d", i)
		n := len(model)
		switch op := rng.IntN(3); {
		case op == 0 || n == 0:
			assert.NoError(t, s.Append(text))
			model = append(model, text)
		case op == 1:
			lineNo := rng.IntN(n) + 1
			assert.NoError(t, s.Edit(lineNo, text))
			model[lineNo-1] = text
		default:
			lineNo := rng.IntN(n) + 1
			assert.NoError(t, s.Delete(lineNo))
			model = append(model[:lineNo-1], model[lineNo:]...)
		}
		count := verifyNumbering(t, s)
		a(t, count == len(model), "count: %d, expected: %d", count, len(model))
	}
	lines, err := s.ReadLines()
	assert.NoError(t, err)
	for i, l := range lines {
		assert.Equal(t, model[i], l.Payload)
	}
}

func TestEditPreservesCount(t *testing.T) {
	s := newStoreWithContent(t, fiveLines)
	for k := 1; k <= 5; k++ {
		assert.NoError(t, s.Edit(k, "edited"))
		lines, err := s.ReadLines()
		assert.NoError(t, err)
		assert.Equal(t, 5, len(lines))
		assert.Equal(t, "edited", lines[k-1].Payload)
	}
	assert.Equal(t, 5, strings.Count(readFile(t, s), "edited"))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	assert.NoError(t, WriteFileAtomic(path, []byte("foo")))
	assert.NoError(t, WriteFileAtomic(path, []byte("bar")))
	d, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "bar", string(d))

	// no temporary files left behind
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries))

	// can't create files in directories that don't exist
	err = WriteFileAtomic(filepath.Join(dir, "foo", "bar.txt"), []byte("x"))
	assert.Error(t, err)

	err = WriteFileAtomic(dir+string(filepath.Separator), []byte("x"))
	assert.Error(t, err)
}
