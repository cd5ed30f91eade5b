package dataset

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/wonny/strikezone/internal/contracts"
)

// Writer writes one CSV dataset.
// Rows go to a temp file next to the target; Commit renames it into place.
type Writer struct {
	path   string
	tmp    *os.File
	w      *csv.Writer
	rows   int
	closed bool
}

// NewWriter creates the parent directory and writes the header
func NewWriter(path string, header []string) (*Writer, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp for %s: %w", path, err)
	}

	w := &Writer{path: path, tmp: tmp, w: csv.NewWriter(tmp)}
	if err := w.w.Write(header); err != nil {
		w.Abort()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return w, nil
}

// Write appends a row
func (w *Writer) Write(row []string) error {
	if err := w.w.Write(row); err != nil {
		return err
	}
	w.rows++
	return nil
}

// Rows returns the number of data rows written
func (w *Writer) Rows() int {
	return w.rows
}

// Path returns the final location of the dataset
func (w *Writer) Path() string {
	return w.path
}

// Commit flushes and moves the dataset into place
func (w *Writer) Commit() error {
	return CommitAll([]*Writer{w})
}

// Abort discards everything written so far
func (w *Writer) Abort() {
	if !w.closed {
		w.tmp.Close()
		w.closed = true
	}
	os.Remove(w.tmp.Name())
}

// CommitAll moves a group of datasets into place together.
// Every temp file is flushed and closed before the first rename; if a rename
// fails, targets already replaced get their previous content back.
func CommitAll(writers []*Writer) error {
	for _, w := range writers {
		if err := w.finish(); err != nil {
			for _, other := range writers {
				other.Abort()
			}
			return err
		}
	}

	placed := make([]placement, 0, len(writers))
	for i, w := range writers {
		p, err := w.place()
		if err != nil {
			for _, rest := range writers[i+1:] {
				rest.Abort()
			}
			for j := len(placed) - 1; j >= 0; j-- {
				placed[j].undo()
			}
			return err
		}
		placed = append(placed, p)
	}

	for _, p := range placed {
		p.release()
	}
	return nil
}

// finish flushes and closes the temp file, keeping it on disk
func (w *Writer) finish() error {
	if w.closed {
		return nil
	}
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		w.Abort()
		return fmt.Errorf("flush %s: %w", w.path, err)
	}
	w.closed = true
	if err := w.tmp.Close(); err != nil {
		os.Remove(w.tmp.Name())
		return fmt.Errorf("close %s: %w", w.path, err)
	}
	return nil
}

// placement remembers what a rename replaced
type placement struct {
	path   string
	backup string // 기존 파일이 없었으면 ""
}

func (w *Writer) place() (placement, error) {
	p := placement{path: w.path}
	if info, err := os.Lstat(w.path); err == nil && info.Mode().IsRegular() {
		p.backup = w.tmp.Name() + ".bak"
		if err := os.Rename(w.path, p.backup); err != nil {
			os.Remove(w.tmp.Name())
			return p, fmt.Errorf("back up %s: %w", w.path, err)
		}
	}
	if err := os.Rename(w.tmp.Name(), w.path); err != nil {
		os.Remove(w.tmp.Name())
		if p.backup != "" {
			os.Rename(p.backup, w.path)
		}
		return p, fmt.Errorf("rename %s: %w", w.path, err)
	}
	return p, nil
}

func (p placement) undo() {
	if p.backup != "" {
		os.Rename(p.backup, p.path)
		return
	}
	os.Remove(p.path)
}

func (p placement) release() {
	if p.backup != "" {
		os.Remove(p.backup)
	}
}

// Checksum returns the hex sha256 of a file's bytes
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &contracts.SourceNotFoundError{Path: path}
		}
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksum %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
