// Package workspace owns the scratch directory of one engine run.
//
// The directory (dsk_workspace*) holds one bank file per partition,
// kmer_bank_0 .. kmer_bank_{parts-1}, each a raw concatenation of
// fixed-width packed k-mers with no framing (or, when compression is
// enabled, that same stream inside snappy frames). The workspace is removed on
// every exit path, success or failure.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"

	"dsk/internal/errors"
)

// Workspace is a scoped scratch directory of partition bank files.
type Workspace struct {
	dir        string
	parts      int
	recordSize int
	compress   bool
	removed    bool
}

// New creates the scratch directory. recordSize is the fixed packed width of
// one k-mer; compress enables snappy framing of the bank files on disk (the
// record stream inside the frames is unchanged).
func New(parts, recordSize int, compress bool) (*Workspace, error) {
	dir, err := os.MkdirTemp("", "dsk_workspace")
	if err != nil {
		return nil, errors.Wrap(errors.IOError, pkgerrors.WithStack(err), "creating scratch directory")
	}
	return &Workspace{dir: dir, parts: parts, recordSize: recordSize, compress: compress}, nil
}

// Dir returns the scratch directory path.
func (w *Workspace) Dir() string { return w.dir }

// Parts returns the number of bank files.
func (w *Workspace) Parts() int { return w.parts }

// RecordSize returns the fixed record width in bytes.
func (w *Workspace) RecordSize() int { return w.recordSize }

func (w *Workspace) bankPath(p int) string {
	return filepath.Join(w.dir, fmt.Sprintf("kmer_bank_%d", p))
}

// Remove deletes the scratch directory and everything in it. Idempotent.
func (w *Workspace) Remove() error {
	if w.removed {
		return nil
	}
	w.removed = true
	if err := os.RemoveAll(w.dir); err != nil {
		return errors.Wrap(errors.IOError, err, "removing scratch directory")
	}
	return nil
}
