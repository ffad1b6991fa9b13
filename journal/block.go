package journal

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"
)

// A journal file is a sequence of blocks:
//
//	--- ${size} ${timestamp_in_unix_epoch_ms} ${name}\n
//	${data}
//
// For readability a '\n' is added after data if it doesn't end with one.
// ${name} is optional.

var hdrPrefix = []byte("--- ")

// MaxBlockSize is the largest block Reader accepts. A bigger size in
// a header means the file is corrupted.
const MaxBlockSize = 64 << 20

// MarshalBlock frames d as a block
func MarshalBlock(name string, t time.Time, d []byte) []byte {
	var b bytes.Buffer
	b.Grow(len(hdrPrefix) + len(name) + len(d) + 32)
	b.Write(hdrPrefix)
	b.WriteString(strconv.Itoa(len(d)))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(t.UnixMilli(), 10))
	if name != "" {
		b.WriteByte(' ')
		b.WriteString(name)
	}
	b.WriteByte('\n')
	if n := len(d); n > 0 {
		b.Write(d)
		if d[n-1] != '\n' {
			b.WriteByte('\n')
		}
	}
	return b.Bytes()
}

// Reader reads blocks written with MarshalBlock
type Reader struct {
	r *bufio.Reader

	// valid after Next() returns true, over-written by the next call
	Name string
	Time time.Time
	Data []byte

	size int
	err  error
	done bool
}

func NewReader(r io.Reader) *Reader {
	return &Reader{
		r: bufio.NewReader(r),
	}
}

// Err returns the first error other than io.EOF
func (r *Reader) Err() error {
	return r.err
}

// Next reads the next block. Returns false at the end or on error.
func (r *Reader) Next() bool {
	if r.err != nil || r.done {
		return false
	}
	hdr, err := r.r.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(hdr) == 0 {
			r.done = true
		} else if err == io.EOF {
			r.err = fmt.Errorf("truncated header '%s'", hdr)
		} else {
			r.err = err
		}
		return false
	}
	if err = r.parseHeader(hdr); err != nil {
		r.err = err
		return false
	}
	// the buffer only grows with data actually read
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r.r, int64(r.size)))
	if err == nil && n < int64(r.size) {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		r.err = fmt.Errorf("reading %d bytes of block '%s': %w", r.size, r.Name, err)
		return false
	}
	r.Data = buf.Bytes()
	// skip the newline added for readability
	if n > 0 && r.Data[n-1] != '\n' {
		if _, err = r.r.Discard(1); err != nil {
			r.err = err
			return false
		}
	}
	return true
}

func (r *Reader) parseHeader(hdr []byte) error {
	line, ok := bytes.CutPrefix(hdr[:len(hdr)-1], hdrPrefix)
	if !ok {
		return fmt.Errorf("unexpected header '%s'", hdr)
	}
	parts := bytes.SplitN(line, []byte{' '}, 3)
	if len(parts) < 2 {
		return fmt.Errorf("unexpected header '%s'", hdr)
	}
	size, err := strconv.Atoi(string(parts[0]))
	if err != nil || size < 0 || size > MaxBlockSize {
		return fmt.Errorf("invalid size in header '%s'", hdr)
	}
	ms, err := strconv.ParseInt(string(parts[1]), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp in header '%s'", hdr)
	}
	r.Time = time.UnixMilli(ms)
	r.Name = ""
	if len(parts) == 3 {
		r.Name = string(parts[2])
	}
	r.size = size
	return nil
}
