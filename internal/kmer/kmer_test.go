package kmer

import (
	"bytes"
	"testing"

	"dsk/internal/alphabet"
	"dsk/internal/errors"
)

func dnaAlphabet(t *testing.T) *alphabet.Alphabet {
	t.Helper()
	a, err := alphabet.ByName("DNA")
	if err != nil {
		t.Fatal(err)
	}
	return a
}

// collect runs a scanner over seq and returns every packed k-mer.
func collect(t *testing.T, a *alphabet.Alphabet, k int, win Window, seq string) [][]byte {
	t.Helper()
	scan := NewScanner(a, k, win)
	scan.SetSequence([]byte(seq))
	var out [][]byte
	for scan.Next() {
		out = append(out, scan.Window().Append(nil))
	}
	if err := scan.Err(); err != nil {
		t.Fatalf("scanning %q: %v", seq, err)
	}
	return out
}

func TestPackedValueKnown(t *testing.T) {
	a := dnaAlphabet(t)
	// A=00 C=01 G=10 T=11, so ACGT packs to 0b00011011.
	got := collect(t, a, 4, New(a, 4), "ACGT")
	if len(got) != 1 {
		t.Fatalf("got %d k-mers, want 1", len(got))
	}
	if !bytes.Equal(got[0], []byte{0x1b}) {
		t.Errorf("ACGT packed to %x, want 1b", got[0])
	}
}

func TestEmissionCount(t *testing.T) {
	a := dnaAlphabet(t)
	cases := []struct {
		seq  string
		k    int
		want int
	}{
		{"AATTCCGGAATTCCGG", 4, 13},
		{"ACGT", 4, 1},
		{"AC", 4, 0},
		{"", 4, 0},
		{"ACGTA", 1, 5},
	}
	for _, c := range cases {
		got := collect(t, a, c.k, New(a, c.k), c.seq)
		if len(got) != c.want {
			t.Errorf("seq %q k=%d: emitted %d k-mers, want %d", c.seq, c.k, len(got), c.want)
		}
		if e := Emissions(len(c.seq), c.k); e != uint64(c.want) {
			t.Errorf("Emissions(%d, %d) = %d, want %d", len(c.seq), c.k, e, c.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	a := dnaAlphabet(t)
	const seq = "AATTCCGGAATTCCGG"
	const k = 4
	packed := collect(t, a, k, New(a, k), seq)
	for i, p := range packed {
		letters, err := Decode(a, k, p)
		if err != nil {
			t.Fatalf("decoding k-mer %d: %v", i, err)
		}
		if want := seq[i : i+k]; string(letters) != want {
			t.Errorf("k-mer %d decoded to %q, want %q", i, letters, want)
		}
	}
}

func TestRoundTripLargePath(t *testing.T) {
	a := dnaAlphabet(t)
	const seq = "ACGTACGTTTGGCCAATTACGTACGTGGGCCCAATTACGT"
	const k = 33 // 66 bits, beyond the 64-bit word
	if IsSmall(a, k) {
		t.Fatalf("k=%d unexpectedly fits the small path", k)
	}
	packed := collect(t, a, k, New(a, k), seq)
	if want := len(seq) - k + 1; len(packed) != want {
		t.Fatalf("emitted %d k-mers, want %d", len(packed), want)
	}
	for i, p := range packed {
		if len(p) != BytesPerKmer(a, k) {
			t.Fatalf("k-mer %d is %d bytes, want %d", i, len(p), BytesPerKmer(a, k))
		}
		letters, err := Decode(a, k, p)
		if err != nil {
			t.Fatalf("decoding k-mer %d: %v", i, err)
		}
		if want := seq[i : i+k]; string(letters) != want {
			t.Errorf("k-mer %d decoded to %q, want %q", i, letters, want)
		}
	}
}

func TestPathEquivalence(t *testing.T) {
	a := dnaAlphabet(t)
	const seq = "AATTCCGGAATTCCGGACGTACGTTTGG"
	for _, k := range []int{1, 4, 7, 16, 31, 32} {
		smallKmers := collect(t, a, k, NewSmall(a, k), seq)
		largeKmers := collect(t, a, k, NewLarge(a, k), seq)
		if len(smallKmers) != len(largeKmers) {
			t.Fatalf("k=%d: small path emitted %d, large path %d", k, len(smallKmers), len(largeKmers))
		}
		for i := range smallKmers {
			if !bytes.Equal(smallKmers[i], largeKmers[i]) {
				t.Errorf("k=%d k-mer %d: small %x != large %x", k, i, smallKmers[i], largeKmers[i])
			}
		}
	}
}

func TestRoutingEquivalence(t *testing.T) {
	a := dnaAlphabet(t)
	const seq = "AATTCCGGAATTCCGGACGTACGTTTGG"
	const k = 9
	configs := []struct{ iters, parts uint64 }{
		{1, 1}, {2, 3}, {7, 5}, {13, 1},
	}
	small := NewSmall(a, k)
	large := NewLarge(a, k)
	ss := NewScanner(a, k, small)
	ls := NewScanner(a, k, large)
	ss.SetSequence([]byte(seq))
	ls.SetSequence([]byte(seq))
	for ss.Next() {
		if !ls.Next() {
			t.Fatal("large path ended early")
		}
		for _, c := range configs {
			si, li := small.Iteration(c.iters), large.Iteration(c.iters)
			sb, lb := small.Bucket(c.iters, c.parts), large.Bucket(c.iters, c.parts)
			if si != li {
				t.Fatalf("iters=%d: small iteration %d != large %d", c.iters, si, li)
			}
			if sb != lb {
				t.Fatalf("iters=%d parts=%d: small bucket %d != large %d", c.iters, c.parts, sb, lb)
			}
			if si >= c.iters || sb >= c.parts {
				t.Fatalf("routing out of range: iteration %d of %d, bucket %d of %d", si, c.iters, sb, c.parts)
			}
		}
	}
}

func TestRouterIsPure(t *testing.T) {
	a := dnaAlphabet(t)
	win := New(a, 5)
	for _, r := range []uint8{0, 1, 2, 3, 2} {
		win.Push(r)
	}
	first := win.Bucket(7, 3)
	for i := 0; i < 10; i++ {
		if got := win.Bucket(7, 3); got != first {
			t.Fatalf("bucket changed from %d to %d on repeated calls", first, got)
		}
	}
}

func TestDecodeErrorOnForeignSymbol(t *testing.T) {
	a := dnaAlphabet(t)
	scan := NewScanner(a, 2, New(a, 2))
	scan.SetSequence([]byte("ACXGT"))
	n := 0
	for scan.Next() {
		n++
	}
	err := scan.Err()
	if err == nil {
		t.Fatal("expected a decode error for 'X'")
	}
	if !errors.IsKind(err, errors.DecodeError) {
		t.Errorf("got kind %q, want DecodeError", errors.KindOf(err))
	}
	if n != 1 {
		t.Errorf("emitted %d k-mers before the bad symbol, want 1", n)
	}
}

func TestWiderAlphabetWidths(t *testing.T) {
	a, err := alphabet.ByName("dna+N")
	if err != nil {
		t.Fatal(err)
	}
	const k = 5
	if BitsPerKmer(a, k) != 15 {
		t.Fatalf("dna+N k=5: %d bits per k-mer, want 15", BitsPerKmer(a, k))
	}
	if BytesPerKmer(a, k) != 2 {
		t.Fatalf("dna+N k=5: %d bytes per k-mer, want 2", BytesPerKmer(a, k))
	}
	packed := collect(t, a, k, New(a, k), "ACGTNACGT")
	if len(packed) != 5 {
		t.Fatalf("emitted %d k-mers, want 5", len(packed))
	}
	for i, p := range packed {
		letters, err := Decode(a, k, p)
		if err != nil {
			t.Fatal(err)
		}
		if want := "ACGTNACGT"[i : i+5]; string(letters) != want {
			t.Errorf("k-mer %d decoded to %q, want %q", i, letters, want)
		}
	}
}

func TestFullWordMask(t *testing.T) {
	// 2 bits * 32 letters fills the word exactly; the mask must not overflow.
	a := dnaAlphabet(t)
	const k = 32
	if !IsSmall(a, k) {
		t.Fatal("k=32 should fit the small path for DNA")
	}
	seq := bytes.Repeat([]byte("T"), k)
	packed := collect(t, a, k, New(a, k), string(seq))
	if len(packed) != 1 {
		t.Fatalf("emitted %d k-mers, want 1", len(packed))
	}
	want := bytes.Repeat([]byte{0xff}, 8)
	if !bytes.Equal(packed[0], want) {
		t.Errorf("all-T 32-mer packed to %x, want %x", packed[0], want)
	}
}
