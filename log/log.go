package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/kjk/rentman/journal"
	"github.com/toon-format/toon-go"
)

var (
	log       *journal.DailyFile
	errorsLog *journal.DailyFile
	eventsLog *journal.DailyFile

	// if true, Verbosef() will log messages
	Verbose bool

	// Logf() echoes messages here. Stdout is for command output.
	Out io.Writer = os.Stderr

	mu sync.Mutex
)

type Config struct {
	// directory where log files are stored
	// each log type (regular, error, event) has its own subdirectory
	// if empty, nothing is written to disk
	Dir     string
	Verbose bool
	// if true, don't echo to Out
	Quiet bool
}

var quiet bool

// Init initializes the logging system
// log files are stored in config.Dir
func Init(config *Config) {
	Close()
	mu.Lock()
	defer mu.Unlock()
	Verbose = config.Verbose
	quiet = config.Quiet
	dir := config.Dir
	if dir == "" {
		return
	}
	// files are created on first write so if nothing is logged
	// there's nothing on disk
	log = journal.NewDailyFile(filepath.Join(dir, "log"))
	errorsLog = journal.NewDailyFile(filepath.Join(dir, "errors"))
	eventsLog = journal.NewDailyFile(filepath.Join(dir, "events"))
}

func closeDaily(w **journal.DailyFile) {
	if *w == nil {
		return
	}
	_ = (*w).Close()
	*w = nil
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeDaily(&log)
	closeDaily(&errorsLog)
	closeDaily(&eventsLog)
}

func Logf(s string, args ...any) {
	if len(args) > 0 {
		s = fmt.Sprintf(s, args...)
	}
	mu.Lock()
	defer mu.Unlock()
	if !quiet {
		fmt.Fprint(Out, s)
	}
	_ = log.Write([]byte(s))
}

func GetCallstackFrames(skip int) []string {
	var callers [32]uintptr
	n := runtime.Callers(skip+1, callers[:])
	frames := runtime.CallersFrames(callers[:n])
	var cs []string
	for {
		frame, more := frames.Next()
		if !more {
			break
		}
		s := frame.File + ":" + strconv.Itoa(frame.Line)
		cs = append(cs, s)
	}
	return cs
}

func GetCallstack(skip int) string {
	frames := GetCallstackFrames(skip + 1)
	return strings.Join(frames, "\n")
}

func Verbosef(format string, args ...any) {
	if !Verbose {
		return
	}
	Logf(format, args...)
}

// Errorf logs an error message along with the callstack.
// It's also written to errors log.
func Errorf(s string, args ...any) {
	if len(args) > 0 {
		s = fmt.Sprintf(s, args...)
	}
	cs := GetCallstack(2)
	s = fmt.Sprintf("%s\n%s\n", strings.TrimSuffix(s, "\n"), cs)
	Logf("%s", s)
	mu.Lock()
	_ = errorsLog.Write([]byte(s))
	mu.Unlock()
}

// if err != nil, log and return true
// IfErrf(err) => logs err.Error()
// IfErrf(err, "error is: %v", err) => logs message formatted
func IfErrf(err error, a ...any) bool {
	if err == nil {
		return false
	}
	if len(a) == 0 {
		Errorf("%s", err.Error())
		return true
	}
	s, ok := a[0].(string)
	if !ok {
		s = fmt.Sprintf("%s", a[0])
	}
	if len(a) > 1 {
		s = fmt.Sprintf(s, a[1:]...)
	}
	Errorf("%s", s)
	return true
}

// Dump logs a detailed representation of values when Verbose is set
func Dump(msg string, vals ...any) {
	if !Verbose {
		return
	}
	Logf("%s:\n%s", msg, spew.Sdump(vals...))
}

// simpleTypeToStr converts simple types to string
// panics if v is of complex type
func simpleTypeToStr(v any) string {
	rt := reflect.TypeOf(v)
	kind := rt.Kind()
	switch kind {
	case reflect.Array, reflect.Slice, reflect.Struct, reflect.Map, reflect.Chan, reflect.Interface, reflect.Pointer:
		panic(fmt.Sprintf("toStr: value is of kind %v", kind))
	case reflect.String:
		return v.(string)
	}
	return fmt.Sprintf("%v", v)
}

// MarshalEvent returns event encoded as toon, framed as a journal block
func MarshalEvent(name string, t time.Time, vals ...any) []byte {
	n := len(vals)
	if n%2 != 0 {
		panic(fmt.Sprintf("odd number of vals: %d", n))
	}
	var d []byte
	if n > 0 {
		m := map[string]any{}
		for i := 0; i < n; i += 2 {
			k := simpleTypeToStr(vals[i])
			m[k] = vals[i+1]
		}
		var err error
		d, err = toon.Marshal(m)
		if err != nil {
			d = []byte(err.Error())
		}
	}
	return journal.MarshalBlock(name, t, d)
}

// Event logs event in toon format
func Event(name string, vals ...any) {
	d := MarshalEvent(name, time.Now().UTC(), vals...)
	mu.Lock()
	defer mu.Unlock()
	_ = eventsLog.Write(d)
}

func EventWithDuration(name string, dur time.Duration, vals ...any) {
	vals = append(vals, "durmicro", dur.Microseconds())
	Event(name, vals...)
}
