package heatmap

import (
	"math"
	"testing"

	"spinemark/internal/models"
)

func gridFromRows(rows [][]float64) Grid {
	h := len(rows)
	w := len(rows[0])
	data := make([]float64, 0, w*h)
	for _, row := range rows {
		data = append(data, row...)
	}
	return Grid{Data: data, Width: w, Height: h}
}

// TestDecodeSingleSaturatedPixel verifies that both methods return exactly
// the peak location for a heatmap with one saturated pixel.
func TestDecodeSingleSaturatedPixel(t *testing.T) {
	g := Grid{Data: make([]float64, 8*6), Width: 8, Height: 6}
	px, py := 5, 2
	g.Data[py*g.Width+px] = 1.0

	for _, method := range []Method{MethodArgmax, MethodWeighted} {
		p := Decode(g, method, DefaultThreshold)
		if p.X != float64(px) || p.Y != float64(py) {
			t.Errorf("Expected %s decode (%d, %d), got (%v, %v)", method, px, py, p.X, p.Y)
		}
		if p.Frame != models.FrameHeatmap {
			t.Errorf("Expected heatmap frame, got %s", p.Frame)
		}
	}
}

// TestDecodeAllZeroFallsBack verifies that weighted decoding of an all-zero
// heatmap falls back to argmax and returns the tied lowest-index maximum.
func TestDecodeAllZeroFallsBack(t *testing.T) {
	g := Grid{Data: make([]float64, 4*4), Width: 4, Height: 4}

	p := DecodeWeighted(g, DefaultThreshold)
	if p.X != 0 || p.Y != 0 {
		t.Errorf("Expected fallback to (0, 0), got (%v, %v)", p.X, p.Y)
	}
}

// TestDecodeArgmaxTieBreak verifies that ties break to the lowest flattened
// row-major index.
func TestDecodeArgmaxTieBreak(t *testing.T) {
	g := gridFromRows([][]float64{
		{0, 0, 0},
		{0, 0.8, 0.8},
		{0.8, 0, 0},
	})

	p := DecodeArgmax(g)
	if p.X != 1 || p.Y != 1 {
		t.Errorf("Expected tie to break to (1, 1), got (%v, %v)", p.X, p.Y)
	}
}

// TestDecodeWeightedScenario is the 4x4 end-to-end scenario: value 1.0 at
// (2, 1), zeros elsewhere, threshold 0.5.
func TestDecodeWeightedScenario(t *testing.T) {
	g := Grid{Data: make([]float64, 4*4), Width: 4, Height: 4}
	g.Data[1*4+2] = 1.0

	p := DecodeWeighted(g, 0.5)
	if p.X != 2.0 || p.Y != 1.0 {
		t.Errorf("Expected (2.0, 1.0), got (%v, %v)", p.X, p.Y)
	}
}

// TestDecodeWeightedCentroid verifies the intensity-weighted centroid over
// the thresholded mask.
func TestDecodeWeightedCentroid(t *testing.T) {
	g := gridFromRows([][]float64{
		{0, 0, 0, 0},
		{0, 1.0, 1.0, 0},
		{0, 0, 0, 0},
	})

	p := DecodeWeighted(g, 0.5)
	if math.Abs(p.X-1.5) > 1e-12 || math.Abs(p.Y-1.0) > 1e-12 {
		t.Errorf("Expected centroid (1.5, 1.0), got (%v, %v)", p.X, p.Y)
	}

	// Unequal weights shift the centroid toward the heavier cell.
	g = gridFromRows([][]float64{
		{0, 0, 0, 0},
		{0, 3.0, 1.0, 0},
		{0, 0, 0, 0},
	})
	p = DecodeWeighted(g, 0.1)
	if math.Abs(p.X-1.25) > 1e-12 {
		t.Errorf("Expected weighted x 1.25, got %v", p.X)
	}
}

// TestDecodeWeightedMaskBelowThreshold verifies the argmax fallback when the
// mask excludes every cell. A strict threshold of 1.0 masks out even the
// maximum itself, since the comparison is strictly greater-than.
func TestDecodeWeightedMaskBelowThreshold(t *testing.T) {
	g := gridFromRows([][]float64{
		{0, 0.4},
		{0.2, 0},
	})

	p := DecodeWeighted(g, 1.0)
	if p.X != 1 || p.Y != 0 {
		t.Errorf("Expected argmax fallback (1, 0), got (%v, %v)", p.X, p.Y)
	}
}

// TestParseMethod verifies method name validation.
func TestParseMethod(t *testing.T) {
	for _, valid := range []string{"argmax", "weighted"} {
		if _, err := ParseMethod(valid); err != nil {
			t.Errorf("Expected %q to parse, got error: %v", valid, err)
		}
	}
	if _, err := ParseMethod("centroid"); err == nil {
		t.Error("Expected error for unknown method, got nil")
	}
}
