// Package journal keeps an append-only history of changes to record files.
// Each change is a block in a daily file, holding a unified diff of the
// record file before and after the change.
package journal

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kjk/rentman/linestore"
	"github.com/pmezard/go-difflib/difflib"
)

// name of the block in the file
const blockName = "change"

type Journal struct {
	Dir string

	w *DailyFile
}

// Open creates dir if needed. Files are created lazily on first Record.
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Journal{
		Dir: dir,
		w:   NewDailyFile(dir),
	}, nil
}

// Diff returns a unified diff between before and after text of a file
func Diff(name, before, after string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: name,
		ToFile:   name,
		Context:  1,
	}
	s, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return s
}

// Write appends e as a block to today's file
func (j *Journal) Write(e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	return j.w.Write(MarshalBlock(blockName, e.Time, e.Marshal()))
}

// Record writes an entry describing c
func (j *Journal) Record(c *linestore.Change) error {
	name := filepath.Base(c.Path)
	e := &Entry{
		Op:   c.Op,
		File: name,
		Line: c.Line,
		Diff: Diff(name, c.Before, c.After),
	}
	return j.Write(e)
}

func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.w.Close()
}

// ReadFile returns entries from a single journal file
func ReadFile(path string) ([]*Entry, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var res []*Entry
	r := NewReader(bytes.NewReader(d))
	for r.Next() {
		if r.Name != blockName {
			continue
		}
		e, err := UnmarshalEntry(r.Data, r.Time)
		if err != nil {
			return res, err
		}
		res = append(res, e)
	}
	return res, r.Err()
}

// ReadDir returns entries from all journal files in dir, oldest first
func ReadDir(dir string) ([]*Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, fi := range files {
		name := fi.Name()
		if fi.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		names = append(names, name)
	}
	// YYYY-MM-DD.txt sorts chronologically
	slices.Sort(names)
	var res []*Entry
	for _, name := range names {
		entries, err := ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		res = append(res, entries...)
	}
	return res, nil
}
