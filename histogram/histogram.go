// Package histogram remaps escape times through their cumulative distribution so
// that each color band covers a similar share of the image.
package histogram

import (
	"math"

	"MandelbrotExplorer/frame"
)

// Counts returns how many pixels of f have each escape time. The last bucket,
// index f.MaxIterations, counts the pixels in the set.
func Counts(f *frame.Frame) []uint {
	counts := make([]uint, f.MaxIterations+1)
	for _, p := range f.Cells() {
		counts[p.Iterations]++
	}
	return counts
}

// Lookup builds the table mapping a raw escape time to its equalized value.
// Points in the set are excluded from the distribution and map to max. When
// every escaping pixel sits in bucket 0, or no pixel escapes at all, the
// distribution cannot be normalized; the table is then the identity and
// degenerate is true.
func Lookup(counts []uint, max uint) (lookup []uint, degenerate bool) {
	cdf := make([]uint, max+1)
	var last uint
	for i := uint(0); i < max; i++ {
		cdf[i] = last + counts[i]
		last = cdf[i]
	}

	var total uint
	for _, c := range counts[:max] {
		total += c
	}

	lookup = make([]uint, max+1)
	lookup[max] = max

	nominator := total
	if max > 0 {
		nominator -= cdf[0]
	}
	if nominator == 0 {
		for n := uint(0); n < max; n++ {
			lookup[n] = n
		}
		return lookup, true
	}

	for n := uint(0); n < max; n++ {
		ratio := float64(cdf[n]-cdf[0]) / float64(nominator)
		lookup[n] = uint(math.Round(ratio * float64(max-1)))
	}
	return lookup, false
}

// Equalize writes the equalized escape time of every pixel of f. Raw escape times
// are left untouched. It reports whether the identity fallback was used.
func Equalize(f *frame.Frame) bool {
	lookup, degenerate := Lookup(Counts(f), f.MaxIterations)
	f.ApplyEqualized(lookup)
	return degenerate
}
