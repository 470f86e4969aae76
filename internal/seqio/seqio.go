// Package seqio adapts FASTA/FASTQ files into a restartable record source.
//
// The engine runs multiple passes over its input, so the contract here is
// "restartable from a path": Open returns a fresh reader every time.
// Parsing is delegated to shenwei356/bio's fastx reader, which handles both
// FASTA and FASTQ transparently.
package seqio

import (
	"io"
	"os"

	"github.com/shenwei356/bio/seqio/fastx"

	"dsk/internal/errors"
	"dsk/internal/kmer"
)

// Format names the declared input format.
type Format int

const (
	FormatFasta Format = iota
	FormatFastq
)

// String returns the format name for logging.
func (f Format) String() string {
	if f == FormatFastq {
		return "fastq"
	}
	return "fasta"
}

// Source is a sequence file that can be opened any number of times.
type Source struct {
	Path   string
	Format Format
}

// Reader yields the sequence bytes of successive records.
type Reader struct {
	fr    *fastx.Reader
	empty bool
}

// Open starts a fresh read of the source.
func (s Source) Open() (*Reader, error) {
	fi, err := os.Stat(s.Path)
	if err != nil {
		return nil, errors.Wrapf(errors.IOError, err, "opening sequence file %s", s.Path)
	}
	// fastx rejects zero-length input as malformed; an empty file is a
	// legitimate source of zero records here.
	if fi.Size() == 0 {
		return &Reader{empty: true}, nil
	}
	fr, err := fastx.NewReader(nil, s.Path, "")
	if err != nil {
		return nil, errors.Wrapf(errors.IOError, err, "opening sequence file %s", s.Path)
	}
	return &Reader{fr: fr}, nil
}

// Read returns the next record's sequence bytes, or io.EOF.
func (r *Reader) Read() ([]byte, error) {
	if r.empty {
		return nil, io.EOF
	}
	rec, err := r.fr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(errors.IOError, err, "reading sequence record")
	}
	return rec.Seq.Seq, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.empty || r.fr == nil {
		return nil
	}
	r.fr.Close()
	return nil
}

// CountEmissions scans the source once and returns the record count and the
// total number of k-mers the iterator will emit for the given k.
func (s Source) CountEmissions(k int) (records, emissions uint64, err error) {
	rd, err := s.Open()
	if err != nil {
		return 0, 0, err
	}
	defer rd.Close()
	for {
		seq, err := rd.Read()
		if err == io.EOF {
			return records, emissions, nil
		}
		if err != nil {
			return 0, 0, err
		}
		records++
		emissions += kmer.Emissions(len(seq), k)
	}
}
