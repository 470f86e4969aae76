// Package countmap serializes {packed k-mer -> count} mappings.
//
// The format is self-describing and deterministic: a fixed header carrying
// k and the alphabet symbols, entries sorted by key bytes with explicit
// length prefixes, and an xxhash64 checksum of the entry region. All
// integers are big-endian, matching the packed k-mer byte order.
//
//	magic    [6]byte "DSKMAP"
//	version  uint8   1
//	flags    uint8   reserved, zero
//	k        uint32
//	alphabet uint8 n, then n symbol bytes in rank order
//	entries  uint64
//	entry*   keyLen uint32, key bytes, count uint64   (ascending key order)
//	checksum uint64 xxhash64 over the entry region
package countmap

import (
	"bufio"
	"encoding/binary"
	"io"
	"sort"

	"github.com/cespare/xxhash/v2"

	"dsk/internal/errors"
)

var magic = [6]byte{'D', 'S', 'K', 'M', 'A', 'P'}

// Version is the current format version.
const Version = 1

// File is a decoded count map.
type File struct {
	K       int
	Symbols []byte
	Counts  map[string]uint64
}

// Write serializes counts. Keys are written in ascending byte order so the
// same mapping always produces the same bytes.
func Write(w io.Writer, k int, symbols []byte, counts map[string]uint64) error {
	bw := bufio.NewWriter(w)

	var scratch [8]byte
	if _, err := bw.Write(magic[:]); err != nil {
		return wrap(err)
	}
	if err := bw.WriteByte(Version); err != nil {
		return wrap(err)
	}
	if err := bw.WriteByte(0); err != nil {
		return wrap(err)
	}
	binary.BigEndian.PutUint32(scratch[:4], uint32(k))
	if _, err := bw.Write(scratch[:4]); err != nil {
		return wrap(err)
	}
	if len(symbols) > 255 {
		return errors.Newf(errors.SerializationError, "alphabet of %d symbols does not fit the header", len(symbols))
	}
	if err := bw.WriteByte(byte(len(symbols))); err != nil {
		return wrap(err)
	}
	if _, err := bw.Write(symbols); err != nil {
		return wrap(err)
	}
	binary.BigEndian.PutUint64(scratch[:], uint64(len(counts)))
	if _, err := bw.Write(scratch[:]); err != nil {
		return wrap(err)
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	digest := xxhash.New()
	body := io.MultiWriter(bw, digest)
	for _, key := range keys {
		binary.BigEndian.PutUint32(scratch[:4], uint32(len(key)))
		if _, err := body.Write(scratch[:4]); err != nil {
			return wrap(err)
		}
		if _, err := io.WriteString(body, key); err != nil {
			return wrap(err)
		}
		binary.BigEndian.PutUint64(scratch[:], counts[key])
		if _, err := body.Write(scratch[:]); err != nil {
			return wrap(err)
		}
	}

	binary.BigEndian.PutUint64(scratch[:], digest.Sum64())
	if _, err := bw.Write(scratch[:]); err != nil {
		return wrap(err)
	}
	if err := bw.Flush(); err != nil {
		return wrap(err)
	}
	return nil
}

// Read parses a serialized count map and verifies its checksum.
func Read(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)

	var head [6]byte
	if err := readFull(br, head[:]); err != nil {
		return nil, err
	}
	if head != magic {
		return nil, errors.Newf(errors.SerializationError, "bad magic %q, not a dsk count map", head[:])
	}
	var hdr [2]byte
	if err := readFull(br, hdr[:]); err != nil {
		return nil, err
	}
	if hdr[0] != Version {
		return nil, errors.Newf(errors.SerializationError, "unsupported format version %d", hdr[0])
	}

	var scratch [8]byte
	if err := readFull(br, scratch[:4]); err != nil {
		return nil, err
	}
	k := int(binary.BigEndian.Uint32(scratch[:4]))

	nsym, err := br.ReadByte()
	if err != nil {
		return nil, errors.Wrap(errors.SerializationError, err, "reading count map")
	}
	symbols := make([]byte, nsym)
	if err := readFull(br, symbols); err != nil {
		return nil, err
	}

	if err := readFull(br, scratch[:]); err != nil {
		return nil, err
	}
	entries := binary.BigEndian.Uint64(scratch[:])

	digest := xxhash.New()
	counts := make(map[string]uint64, entries)
	for i := uint64(0); i < entries; i++ {
		if err := readFull(br, scratch[:4]); err != nil {
			return nil, err
		}
		digest.Write(scratch[:4])
		keyLen := binary.BigEndian.Uint32(scratch[:4])
		key := make([]byte, keyLen)
		if err := readFull(br, key); err != nil {
			return nil, err
		}
		digest.Write(key)
		if err := readFull(br, scratch[:]); err != nil {
			return nil, err
		}
		digest.Write(scratch[:])
		counts[string(key)] = binary.BigEndian.Uint64(scratch[:])
	}

	if err := readFull(br, scratch[:]); err != nil {
		return nil, err
	}
	if sum := binary.BigEndian.Uint64(scratch[:]); sum != digest.Sum64() {
		return nil, errors.Newf(errors.SerializationError,
			"checksum mismatch: file says %016x, entries hash to %016x", sum, digest.Sum64())
	}
	return &File{K: k, Symbols: symbols, Counts: counts}, nil
}

func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errors.Newf(errors.SerializationError, "count map is truncated")
		}
		return errors.Wrap(errors.SerializationError, err, "reading count map")
	}
	return nil
}

func wrap(err error) error {
	return errors.Wrap(errors.SerializationError, err, "encoding count map")
}
