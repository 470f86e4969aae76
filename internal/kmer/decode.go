package kmer

import (
	"math/big"

	"dsk/internal/alphabet"
	"dsk/internal/errors"
)

// Decode expands packed big-endian k-mer bytes back into symbols.
// It is the inverse of Window.Append for the same alphabet and k.
func Decode(a *alphabet.Alphabet, k int, packed []byte) ([]byte, error) {
	want := BytesPerKmer(a, k)
	if len(packed) != want {
		return nil, errors.Newf(errors.FormatError,
			"packed k-mer is %d bytes, want %d for k=%d", len(packed), want, k)
	}
	nbits := a.BitsPerLetter()
	x := new(big.Int).SetBytes(packed)
	letterMask := new(big.Int).SetUint64((uint64(1) << nbits) - 1)
	t := new(big.Int)

	out := make([]byte, k)
	for i := k - 1; i >= 0; i-- {
		r := t.And(x, letterMask).Uint64()
		b, ok := a.Unrank(uint8(r))
		if !ok {
			return nil, errors.Newf(errors.FormatError,
				"rank %d at position %d is outside the alphabet", r, i)
		}
		out[i] = b
		x.Rsh(x, nbits)
	}
	if x.Sign() != 0 {
		return nil, errors.Newf(errors.FormatError,
			"packed k-mer has nonzero bits above letter %d", k)
	}
	return out, nil
}
