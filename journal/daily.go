package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DailyFile appends to a file named after the current day (YYYY-MM-DD.txt)
// in Dir. When the day changes, the next write goes to a new file.
// Methods are safe to call on nil receiver, which makes them no-ops.
type DailyFile struct {
	Dir string

	mu          sync.Mutex
	currentDate int // YYYYMMDD
	file        *os.File
	// for tests
	now func() time.Time
}

func NewDailyFile(dir string) *DailyFile {
	return &DailyFile{
		Dir: dir,
	}
}

func dayFromTime(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

func (w *DailyFile) timeNow() time.Time {
	if w.now != nil {
		return w.now().UTC()
	}
	return time.Now().UTC()
}

// must be called with w.mu locked
func (w *DailyFile) openForToday() error {
	now := w.timeNow()
	today := dayFromTime(now)
	if w.file != nil && w.currentDate == today {
		return nil
	}
	if err := w.close(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(w.Dir, now.Format("2006-01-02")+".txt")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	w.file = f
	w.currentDate = today
	return nil
}

// Write appends d to today's file
func (w *DailyFile) Write(d []byte) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.openForToday(); err != nil {
		return fmt.Errorf("journal: open daily file in '%s': %w", w.Dir, err)
	}
	_, err := w.file.Write(d)
	return err
}

// Path returns the path of the currently open file or "" if none is open
func (w *DailyFile) Path() string {
	if w == nil {
		return ""
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return ""
	}
	return w.file.Name()
}

func (w *DailyFile) close() error {
	if w.file == nil {
		return nil
	}
	errSync := w.file.Sync()
	err := w.file.Close()
	w.file = nil
	w.currentDate = 0
	if err == nil {
		err = errSync
	}
	return err
}

// Close closes the current file. Next Write re-opens it.
func (w *DailyFile) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.close()
}
