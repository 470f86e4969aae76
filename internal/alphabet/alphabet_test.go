package alphabet

import (
	"bytes"
	"testing"

	"dsk/internal/errors"
)

func mustByName(t *testing.T, name string) *Alphabet {
	t.Helper()
	a, err := ByName(name)
	if err != nil {
		t.Fatalf("ByName(%q) failed: %v", name, err)
	}
	return a
}

func TestPresets(t *testing.T) {
	cases := []struct {
		name string
		size int
		bits uint
	}{
		{"DNA", 4, 2},
		{"dna", 8, 3},
		{"dna+N", 6, 3},
		{"iupac", 32, 5},
	}
	for _, c := range cases {
		a := mustByName(t, c.name)
		if a.Len() != c.size {
			t.Errorf("%s: got %d symbols, want %d", c.name, a.Len(), c.size)
		}
		if a.BitsPerLetter() != c.bits {
			t.Errorf("%s: got %d bits per letter, want %d", c.name, a.BitsPerLetter(), c.bits)
		}
		if a.Name() != c.name {
			t.Errorf("%s: Name() returned %q", c.name, a.Name())
		}
	}
}

func TestDNARanks(t *testing.T) {
	a := mustByName(t, "DNA")
	want := map[byte]uint8{'A': 0, 'C': 1, 'G': 2, 'T': 3}
	for b, r := range want {
		got, ok := a.Rank(b)
		if !ok || got != r {
			t.Errorf("Rank(%q) = (%d, %v), want (%d, true)", b, got, ok, r)
		}
		back, ok := a.Unrank(r)
		if !ok || back != b {
			t.Errorf("Unrank(%d) = (%q, %v), want (%q, true)", r, back, ok, b)
		}
	}
}

func TestUppercasePresetRejectsLowercase(t *testing.T) {
	a := mustByName(t, "DNA")
	if _, ok := a.Rank('a'); ok {
		t.Error("DNA preset accepted lowercase 'a'")
	}
	if _, ok := a.Rank('N'); ok {
		t.Error("DNA preset accepted 'N'")
	}
}

func TestRanksFollowByteOrder(t *testing.T) {
	// The caller's listing order must not matter.
	a1, err := New([]byte("TGCA"))
	if err != nil {
		t.Fatal(err)
	}
	a2, err := New([]byte("ACGT"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a1.Symbols(), a2.Symbols()) {
		t.Errorf("symbol order differs: %q vs %q", a1.Symbols(), a2.Symbols())
	}
}

func TestNewDeduplicates(t *testing.T) {
	a, err := New([]byte("AACCAA"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Len() != 2 {
		t.Errorf("got %d symbols, want 2", a.Len())
	}
	if a.BitsPerLetter() != 1 {
		t.Errorf("got %d bits per letter, want 1", a.BitsPerLetter())
	}
}

func TestSingleSymbolAlphabet(t *testing.T) {
	a, err := New([]byte("A"))
	if err != nil {
		t.Fatal(err)
	}
	if a.BitsPerLetter() != 1 {
		t.Errorf("one-symbol alphabet: got %d bits per letter, want 1", a.BitsPerLetter())
	}
}

func TestUnknownPreset(t *testing.T) {
	_, err := ByName("protein")
	if err == nil {
		t.Fatal("expected an error for an unknown preset")
	}
	if !errors.IsKind(err, errors.ConfigError) {
		t.Errorf("got kind %q, want ConfigError", errors.KindOf(err))
	}
}

func TestEmptyAlphabet(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected an error for an empty alphabet")
	}
}

func TestMaxSmallK(t *testing.T) {
	if got := mustByName(t, "DNA").MaxSmallK(); got != 32 {
		t.Errorf("DNA MaxSmallK = %d, want 32", got)
	}
	if got := mustByName(t, "dna+N").MaxSmallK(); got != 21 {
		t.Errorf("dna+N MaxSmallK = %d, want 21", got)
	}
	if got := mustByName(t, "iupac").MaxSmallK(); got != 12 {
		t.Errorf("iupac MaxSmallK = %d, want 12", got)
	}
}
