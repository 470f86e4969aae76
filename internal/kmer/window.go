// Package kmer packs sliding-window substrings into integers.
//
// A Window holds the rolling packed value of the most recent k symbols.
// Two implementations exist with identical bit layout: a machine-word form
// for bits_per_letter*k <= 64 and an arbitrary-precision form beyond that.
// The form is resolved once at construction; everything downstream sees the
// Window interface only.
package kmer

import (
	"dsk/internal/alphabet"
)

// Window is the rolling packed state of the k most recent symbols.
type Window interface {
	// Reset clears the state for a new sequence.
	Reset()
	// Push shifts in one symbol rank, dropping the oldest symbol.
	Push(rank uint8)
	// Append appends the packed big-endian bytes of the current k-mer,
	// zero-padded on the most significant side to BytesPerKmer bytes.
	Append(dst []byte) []byte
	// Iteration returns x mod iters for the current value x.
	Iteration(iters uint64) uint64
	// Bucket returns (x div iters) mod parts for the current value x.
	Bucket(iters, parts uint64) uint64
}

// BitsPerKmer returns bits_per_letter * k.
func BitsPerKmer(a *alphabet.Alphabet, k int) uint {
	return a.BitsPerLetter() * uint(k)
}

// BytesPerKmer returns the fixed packed width, ceil(bits_per_letter*k / 8).
func BytesPerKmer(a *alphabet.Alphabet, k int) int {
	return int((BitsPerKmer(a, k) + 7) / 8)
}

// IsSmall reports whether the word-sized path is legal for this k.
func IsSmall(a *alphabet.Alphabet, k int) bool {
	return k <= a.MaxSmallK()
}

// New returns the window form appropriate for the alphabet and k.
func New(a *alphabet.Alphabet, k int) Window {
	if IsSmall(a, k) {
		return newSmallWindow(a.BitsPerLetter(), k)
	}
	return newLargeWindow(a.BitsPerLetter(), k)
}

// NewSmall forces the machine-word form. Used by tests that compare the two
// paths on inputs legal for both; callers should normally use New.
func NewSmall(a *alphabet.Alphabet, k int) Window {
	return newSmallWindow(a.BitsPerLetter(), k)
}

// NewLarge forces the big-integer form.
func NewLarge(a *alphabet.Alphabet, k int) Window {
	return newLargeWindow(a.BitsPerLetter(), k)
}
