package kmer

import "math/big"

// largeWindow keeps the packed k-mer in a big integer with the same bit
// layout as smallWindow. The scratch integers avoid per-push allocation.
type largeWindow struct {
	x      *big.Int
	mask   *big.Int
	t      *big.Int
	q      *big.Int
	nbits  uint
	nbytes int
}

func newLargeWindow(bitsPerLetter uint, k int) *largeWindow {
	total := bitsPerLetter * uint(k)
	mask := new(big.Int).Lsh(big.NewInt(1), total)
	mask.Sub(mask, big.NewInt(1))
	return &largeWindow{
		x:      new(big.Int),
		mask:   mask,
		t:      new(big.Int),
		q:      new(big.Int),
		nbits:  bitsPerLetter,
		nbytes: int((total + 7) / 8),
	}
}

func (w *largeWindow) Reset() { w.x.SetUint64(0) }

func (w *largeWindow) Push(rank uint8) {
	w.x.Lsh(w.x, w.nbits)
	w.x.Or(w.x, w.t.SetUint64(uint64(rank)))
	w.x.And(w.x, w.mask)
}

func (w *largeWindow) Append(dst []byte) []byte {
	start := len(dst)
	for i := 0; i < w.nbytes; i++ {
		dst = append(dst, 0)
	}
	w.x.FillBytes(dst[start : start+w.nbytes])
	return dst
}

func (w *largeWindow) Iteration(iters uint64) uint64 {
	w.q.Mod(w.x, w.t.SetUint64(iters))
	return w.q.Uint64()
}

func (w *largeWindow) Bucket(iters, parts uint64) uint64 {
	w.q.Div(w.x, w.t.SetUint64(iters))
	w.q.Mod(w.q, w.t.SetUint64(parts))
	return w.q.Uint64()
}
