package workspace

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/snappy"

	"dsk/internal/errors"
)

// BankWriter appends fixed-width records to one bank file.
type BankWriter struct {
	f    *os.File
	buf  *bufio.Writer
	sn   *snappy.Writer
	out  io.Writer
	path string
}

// OpenWriters truncate-creates every bank file for one pass. On failure the
// writers opened so far are closed and the first error is returned.
func (w *Workspace) OpenWriters() ([]*BankWriter, error) {
	writers := make([]*BankWriter, 0, w.parts)
	for p := 0; p < w.parts; p++ {
		bw, err := w.openWriter(p)
		if err != nil {
			for _, open := range writers {
				open.close()
			}
			return nil, err
		}
		writers = append(writers, bw)
	}
	return writers, nil
}

func (w *Workspace) openWriter(p int) (*BankWriter, error) {
	path := w.bankPath(p)
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(errors.IOError, err, "creating bank file %s", filepath.Base(path))
	}
	bw := &BankWriter{f: f, buf: bufio.NewWriter(f), path: path}
	if w.compress {
		bw.sn = snappy.NewBufferedWriter(bw.buf)
		bw.out = bw.sn
	} else {
		bw.out = bw.buf
	}
	return bw, nil
}

// WriteRecord appends one packed k-mer.
func (b *BankWriter) WriteRecord(rec []byte) error {
	if _, err := b.out.Write(rec); err != nil {
		return errors.Wrapf(errors.IOError, err, "writing k-mer to %s", filepath.Base(b.path))
	}
	return nil
}

func (b *BankWriter) close() error {
	var first error
	if b.sn != nil {
		if err := b.sn.Close(); err != nil && first == nil {
			first = err
		}
	}
	if err := b.buf.Flush(); err != nil && first == nil {
		first = err
	}
	if err := b.f.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// CloseWriters flushes and closes all writers of a pass.
func CloseWriters(writers []*BankWriter) error {
	var first error
	for _, b := range writers {
		if err := b.close(); err != nil && first == nil {
			first = errors.Wrapf(errors.IOError, err, "flushing bank file %s", filepath.Base(b.path))
		}
	}
	return first
}

// BankReader reads fixed-width records back from one bank file.
type BankReader struct {
	f          *os.File
	r          io.Reader
	path       string
	recordSize int
}

// OpenReader opens bank p for sequential record reads.
func (w *Workspace) OpenReader(p int) (*BankReader, error) {
	path := w.bankPath(p)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.IOError, err, "opening bank file %s", filepath.Base(path))
	}
	br := &BankReader{f: f, path: path, recordSize: w.recordSize}
	if w.compress {
		br.r = snappy.NewReader(bufio.NewReader(f))
	} else {
		br.r = bufio.NewReader(f)
	}
	return br, nil
}

// Next reads the next record into buf, which must be RecordSize bytes.
// It returns false at a clean end of file. A nonzero tail shorter than one
// record means the bank is corrupt.
func (b *BankReader) Next(buf []byte) (bool, error) {
	n, err := io.ReadFull(b.r, buf)
	switch err {
	case nil:
		return true, nil
	case io.EOF:
		return false, nil
	case io.ErrUnexpectedEOF:
		return false, errors.Newf(errors.FormatError,
			"bank file %s ends mid-record (%d of %d bytes)", filepath.Base(b.path), n, b.recordSize)
	default:
		return false, errors.Wrapf(errors.IOError, err, "reading bank file %s", filepath.Base(b.path))
	}
}

// Close releases the bank file.
func (b *BankReader) Close() error {
	return b.f.Close()
}
