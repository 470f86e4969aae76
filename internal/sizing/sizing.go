// Package sizing implements the DSK budget model: from the total number of
// k-mer emissions and the memory/disk caps, derive how many passes over the
// input are needed and how many scratch buckets each pass writes.
package sizing

import "math"

// Plan is the partitioning decision for one run.
type Plan struct {
	Iters uint64
	Parts uint64
}

// Beta returns 2^ceil(log2(2k)), the rounded-up bits-per-k-mer estimate the
// DSK budget formula uses. It is deliberately not bits_per_letter*k; the
// original budgeting behavior depends on this exact constant.
func Beta(k int) float64 {
	return math.Exp2(math.Ceil(math.Log2(float64(2 * k))))
}

// Compute derives the iteration and partition counts. totalKmers is the sum
// over all sequences of max(0, len-k+1); memGB and diskGB are the caps in
// gigabytes and must be positive. Both outputs are at least 1.
//
// iters bounds scratch disk: each pass writes roughly totalKmers*beta/iters
// bits. parts bounds aggregation memory: each bucket holds roughly
// totalKmers*(beta+32)/(iters*parts) bits of map payload, with a 0.7 factor
// reserving headroom for hashmap overhead.
func Compute(totalKmers uint64, k int, memGB, diskGB float64) Plan {
	if totalKmers == 0 {
		return Plan{Iters: 1, Parts: 1}
	}
	v := float64(totalKmers)
	beta := Beta(k)
	diskBits := diskGB * 8e9
	memBits := memGB * 8e9

	iters := math.Ceil(v * beta / diskBits)
	if iters < 1 {
		iters = 1
	}
	parts := math.Ceil(v * (beta + 32) / (0.7 * iters * memBits))
	if parts < 1 {
		parts = 1
	}
	return Plan{Iters: uint64(iters), Parts: uint64(parts)}
}
