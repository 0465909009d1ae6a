// Package histmatch remaps the intensity distribution of one 8-bit image
// onto another's via cumulative distribution functions and a 256-entry
// lookup table. It is used when slices from different volumes must be
// displayed or compared with consistent contrast.
package histmatch

import (
	"gonum.org/v1/gonum/floats"
)

// Levels is the number of intensity levels handled by the matcher.
const Levels = 256

// LookupTable maps each source intensity level to a target intensity level.
// Built once per (source, reference) pair, applied element-wise, then
// discarded.
type LookupTable [Levels]uint8

// Histogram counts the occurrences of each intensity level in data.
func Histogram(data []uint8) [Levels]float64 {
	var hist [Levels]float64
	for _, v := range data {
		hist[v]++
	}
	return hist
}

// cdf computes the cumulative distribution function of a histogram,
// normalized by the histogram total so the final bin is 1.0. For an empty
// input the total is zero and the CDF stays all-zero; for any non-empty
// input the total is at least 1, so no division by zero can occur.
func cdf(hist [Levels]float64) [Levels]float64 {
	var out [Levels]float64
	floats.CumSum(out[:], hist[:])

	total := out[Levels-1]
	if total > 0 {
		floats.Scale(1.0/total, out[:])
	}
	return out
}

// BuildLookup constructs the lookup table that maps source intensity levels
// onto reference intensity levels with the closest CDF value. Ties are
// broken by the lowest matching reference level. Constant source or
// reference arrays produce a valid, deterministic (possibly all-equal)
// table.
func BuildLookup(source, reference []uint8) LookupTable {
	srcCDF := cdf(Histogram(source))
	refCDF := cdf(Histogram(reference))

	var lut LookupTable
	for i := 0; i < Levels; i++ {
		best := 0
		bestDiff := diff(refCDF[0], srcCDF[i])
		for j := 1; j < Levels; j++ {
			if d := diff(refCDF[j], srcCDF[i]); d < bestDiff {
				best = j
				bestDiff = d
			}
		}
		lut[i] = uint8(best)
	}
	return lut
}

// Apply remaps every element of source through the lookup table.
func Apply(source []uint8, lut LookupTable) []uint8 {
	out := make([]uint8, len(source))
	for i, v := range source {
		out[i] = lut[v]
	}
	return out
}

// Match is the one-shot form: build the lookup table for (source, reference)
// and apply it to source.
func Match(source, reference []uint8) []uint8 {
	return Apply(source, BuildLookup(source, reference))
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
