package linestore

import (
	"os"
	"path/filepath"
)

// WriteFileAtomic writes d to path via a temporary file in the same
// directory that is renamed over path only after it was fully written
// and synced. On failure the temporary file is removed and path keeps
// its previous content.
// Some references:
// - https://lwn.net/Articles/457667/
// - https://www.joeshaw.org/dont-defer-close-on-writable-files/
func WriteFileAtomic(path string, d []byte) error {
	dir, name := filepath.Split(path)
	if name == "" {
		return &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, name+".tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	// CreateTemp uses 0600, store files are regular data files
	_ = tmp.Chmod(0644)
	didRename := false
	defer func() {
		if !didRename {
			_ = os.Remove(tmpPath)
		}
	}()

	_, err = tmp.Write(d)
	errSync := tmp.Sync()
	errClose := tmp.Close()
	for _, e := range []error{err, errSync, errClose} {
		if e != nil {
			return e
		}
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return err
	}
	didRename = true

	// a nice to have: make the rename durable
	if fdir, _ := os.Open(dir); fdir != nil {
		_ = fdir.Sync()
		_ = fdir.Close()
	}
	return nil
}
