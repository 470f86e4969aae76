package kmer

import (
	"dsk/internal/alphabet"
	"dsk/internal/errors"
)

// Scanner streams the packed k-mers of a sequence through a Window.
// A sequence of n symbols yields max(0, n-k+1) k-mers; the first k-1
// symbols prime the window before emission begins. A scanner is reused
// across sequences with SetSequence.
type Scanner struct {
	alpha  *alphabet.Alphabet
	win    Window
	k      int
	seq    []byte
	pos    int
	primed int
	err    error
}

// NewScanner returns a scanner emitting into win, which must have been
// built for the same alphabet and k.
func NewScanner(a *alphabet.Alphabet, k int, win Window) *Scanner {
	return &Scanner{alpha: a, win: win, k: k}
}

// SetSequence starts the scanner over on a new sequence.
func (s *Scanner) SetSequence(seq []byte) {
	s.seq = seq
	s.pos = 0
	s.primed = 0
	s.err = nil
	s.win.Reset()
}

// Next advances to the next k-mer. It returns false at the end of the
// sequence or on a decode failure; check Err afterwards.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}
	for s.pos < len(s.seq) {
		b := s.seq[s.pos]
		r, ok := s.alpha.Rank(b)
		if !ok {
			s.err = errors.Newf(errors.DecodeError,
				"symbol %q at offset %d is not in the alphabet", b, s.pos)
			return false
		}
		s.pos++
		s.win.Push(r)
		s.primed++
		if s.primed >= s.k {
			return true
		}
	}
	return false
}

// Window returns the window holding the current k-mer. Valid after Next
// returned true and until the next call to Next or SetSequence.
func (s *Scanner) Window() Window { return s.win }

// Err returns the decode error that stopped the scan, if any.
func (s *Scanner) Err() error { return s.err }

// Emissions returns the number of k-mers a sequence of length n yields.
func Emissions(n, k int) uint64 {
	if n < k {
		return 0
	}
	return uint64(n - k + 1)
}
