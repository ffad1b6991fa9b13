// Package backup creates and restores compressed archives of the data
// directory and uploads them to S3, SFTP or HTTP servers.
package backup

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/kjk/rentman/linestore"
	"github.com/kjk/rentman/log"
)

// RecordFilesPattern matches record files in the data directory
const RecordFilesPattern = "*_records.txt"

var ErrUnknownFormat = errors.New("unknown backup format")

const (
	compressNone = iota
	compressZstd
	compressBrotli
	compressGzip
)

func compressionFromPath(path string) (int, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".zip":
		return compressNone, nil
	case ".zst", ".zstd":
		return compressZstd, nil
	case ".br":
		return compressBrotli, nil
	case ".gz":
		return compressGzip, nil
	}
	return 0, fmt.Errorf("%w: '%s', use .zip, .zst, .br or .gz", ErrUnknownFormat, ext)
}

// ContentType returns mime type of a backup file based on extension
func ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return "application/zip"
	case ".zst", ".zstd":
		return "application/zstd"
	case ".br":
		return "application/x-brotli"
	case ".gz":
		return "application/gzip"
	}
	return "application/octet-stream"
}

func compress(d []byte, kind int) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error
	switch kind {
	case compressNone:
		return d, nil
	case compressZstd:
		w, err = zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	case compressBrotli:
		w = brotli.NewWriterLevel(&buf, brotli.BestCompression)
	case compressGzip:
		w, err = gzip.NewWriterLevel(&buf, gzip.BestCompression)
	}
	if err != nil {
		return nil, err
	}
	if _, err = w.Write(d); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(d []byte, kind int) ([]byte, error) {
	switch kind {
	case compressZstd:
		r, err := zstd.NewReader(bytes.NewReader(d))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case compressBrotli:
		return io.ReadAll(brotli.NewReader(bytes.NewReader(d)))
	case compressGzip:
		r, err := gzip.NewReader(bytes.NewReader(d))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	}
	return d, nil
}

// FilesToBackup returns record files in dataDir followed by extra files
// that exist, sorted by name
func FilesToBackup(dataDir string, extra ...string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dataDir, RecordFilesPattern))
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	for _, path := range extra {
		if path == "" || slices.Contains(files, path) {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

func zipFiles(files []string, method uint16) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := map[string]bool{}
	for _, path := range files {
		name := filepath.Base(path)
		if seen[name] {
			return nil, fmt.Errorf("duplicate file name '%s'", name)
		}
		seen[name] = true
		d, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		hdr := &zip.FileHeader{
			Name:     name,
			Method:   method,
			Modified: time.Now(),
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, err
		}
		if _, err = w.Write(d); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Create writes an archive of record files in dataDir plus extra files
// (e.g. credentials) to dst. Compression is picked by extension of dst.
// Returns names of archived files.
func Create(dataDir, dst string, extra ...string) ([]string, error) {
	kind, err := compressionFromPath(dst)
	if err != nil {
		return nil, err
	}
	files, err := FilesToBackup(dataDir, extra...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to backup in '%s'", dataDir)
	}
	// no point deflating what will be compressed better later
	method := zip.Store
	if kind == compressNone {
		method = zip.Deflate
	}
	d, err := zipFiles(files, method)
	if err != nil {
		return nil, err
	}
	if d, err = compress(d, kind); err != nil {
		return nil, err
	}
	if err = linestore.WriteFileAtomic(dst, d); err != nil {
		return nil, err
	}
	names := make([]string, len(files))
	for i, path := range files {
		names[i] = filepath.Base(path)
	}
	log.Event("backup.created", "path", dst, "files", len(files), "size", len(d))
	return names, nil
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid file name '%s' in archive", name)
	}
	return nil
}

// restorePath returns where archive entry name goes: record files to
// dataDir, extra files back to their own path
func restorePath(name, dataDir string, extra []string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if ok, _ := filepath.Match(RecordFilesPattern, name); ok {
		return filepath.Join(dataDir, name), nil
	}
	for _, path := range extra {
		if path != "" && filepath.Base(path) == name {
			return path, nil
		}
	}
	return "", fmt.Errorf("unexpected file '%s' in archive", name)
}

// Restore extracts archive src created by Create with the same extra
// files, overwriting existing files. Record files go to dataDir, extra
// files to their original paths. Returns names of restored files.
func Restore(src, dataDir string, extra ...string) ([]string, error) {
	kind, err := compressionFromPath(src)
	if err != nil {
		return nil, err
	}
	d, err := os.ReadFile(src)
	if err != nil {
		return nil, err
	}
	if d, err = decompress(d, kind); err != nil {
		return nil, fmt.Errorf("decompressing '%s': %w", src, err)
	}
	zr, err := zip.NewReader(bytes.NewReader(d), int64(len(d)))
	if err != nil {
		return nil, fmt.Errorf("reading '%s': %w", src, err)
	}
	// validate everything before writing anything
	dsts := make([]string, len(zr.File))
	for i, f := range zr.File {
		if dsts[i], err = restorePath(f.Name, dataDir, extra); err != nil {
			return nil, err
		}
	}
	var names []string
	for i, f := range zr.File {
		fd, err := readZipFile(f)
		if err != nil {
			return names, err
		}
		if err = os.MkdirAll(filepath.Dir(dsts[i]), 0755); err != nil {
			return names, err
		}
		if err = linestore.WriteFileAtomic(dsts[i], fd); err != nil {
			return names, err
		}
		names = append(names, f.Name)
	}
	log.Event("backup.restored", "path", src, "files", len(names))
	return names, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
