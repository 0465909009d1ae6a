// Package heatmap decodes per-landmark probability grids into sub-pixel
// coordinates. Decoding is a pure function of one grid; every
// (sample, landmark) pair is independent, which the batched entry points
// exploit by decoding in parallel.
package heatmap

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"spinemark/internal/models"
)

// DefaultThreshold is the mask threshold fraction used by weighted decoding.
const DefaultThreshold = 0.5

// Method selects how a heatmap is reduced to a coordinate.
type Method string

const (
	// MethodArgmax returns the location of the single maximum value.
	MethodArgmax Method = "argmax"

	// MethodWeighted returns the intensity-weighted centroid of the cells
	// above a fraction of the maximum, falling back to argmax on
	// degenerate grids.
	MethodWeighted Method = "weighted"
)

// ParseMethod validates a decoding method name.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodArgmax, MethodWeighted:
		return Method(s), nil
	}
	return "", fmt.Errorf("unknown decode method %q (must be argmax or weighted)", s)
}

// Grid is a single 2D heatmap with values in [0, 1], row-major.
type Grid struct {
	Data   []float64
	Width  int
	Height int
}

// At returns the value at grid cell (x, y).
func (g Grid) At(x, y int) float64 {
	return g.Data[y*g.Width+x]
}

// DecodeArgmax returns the grid coordinate of the maximum value, in heatmap
// frame. Ties break to the lowest flattened row-major index.
func DecodeArgmax(g Grid) models.Point {
	if len(g.Data) == 0 {
		return models.Point{Frame: models.FrameHeatmap}
	}
	idx := floats.MaxIdx(g.Data)
	return models.Point{
		X:     float64(idx % g.Width),
		Y:     float64(idx / g.Width),
		Frame: models.FrameHeatmap,
	}
}

// DecodeWeighted returns the intensity-weighted centroid of the cells whose
// value exceeds threshold times the grid maximum. An all-zero grid, or a
// threshold that empties the mask, falls back to DecodeArgmax; degenerate
// inputs are recovered locally, never surfaced as errors.
func DecodeWeighted(g Grid, threshold float64) models.Point {
	if len(g.Data) == 0 {
		return models.Point{Frame: models.FrameHeatmap}
	}

	maxVal := floats.Max(g.Data)
	if maxVal <= 0 {
		return DecodeArgmax(g)
	}

	cutoff := threshold * maxVal
	var sumW, sumX, sumY float64
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := g.At(x, y)
			if v > cutoff {
				sumW += v
				sumX += float64(x) * v
				sumY += float64(y) * v
			}
		}
	}

	if sumW <= 0 {
		return DecodeArgmax(g)
	}

	return models.Point{
		X:     sumX / sumW,
		Y:     sumY / sumW,
		Frame: models.FrameHeatmap,
	}
}

// Decode dispatches on the decoding method.
func Decode(g Grid, method Method, threshold float64) models.Point {
	if method == MethodArgmax {
		return DecodeArgmax(g)
	}
	return DecodeWeighted(g, threshold)
}
