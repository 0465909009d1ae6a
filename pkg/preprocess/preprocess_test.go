package preprocess

import (
	"math"
	"testing"

	"spinemark/internal/models"
)

// TestNormalize verifies the min-max rule and the constant-input guard.
func TestNormalize(t *testing.T) {
	out := Normalize([]float64{0, 5, 10})
	expected := []float64{0.0, 0.5, 1.0}
	for i := range expected {
		if math.Abs(out[i]-expected[i]) > 1e-12 {
			t.Errorf("Expected normalized[%d] = %v, got %v", i, expected[i], out[i])
		}
	}

	// Constant input must yield zeros of the same shape, not NaN.
	out = Normalize([]float64{7, 7, 7, 7})
	if len(out) != 4 {
		t.Fatalf("Expected length 4, got %d", len(out))
	}
	for i, v := range out {
		if v != 0 {
			t.Errorf("Expected constant slice to normalize to 0 at %d, got %v", i, v)
		}
	}
}

// TestToDisplayRange verifies the 8-bit mapping.
func TestToDisplayRange(t *testing.T) {
	out := ToDisplayRange([]float64{-2, 0, 2})
	if out[0] != 0 || out[1] != 127 || out[2] != 255 {
		t.Errorf("Expected [0 127 255], got %v", out)
	}

	out = ToDisplayRange([]float64{3, 3})
	if out[0] != 0 || out[1] != 0 {
		t.Errorf("Expected constant input to map to zeros, got %v", out)
	}
}

// TestResampleScaleFactors verifies the recorded original/target ratios.
func TestResampleScaleFactors(t *testing.T) {
	data := make([]float64, 40*50)
	_, factors := Resample(data, 40, 50, models.Size{Width: 320, Height: 320})

	if math.Abs(factors.X-40.0/320.0) > 1e-12 {
		t.Errorf("Expected scale x %v, got %v", 40.0/320.0, factors.X)
	}
	if math.Abs(factors.Y-50.0/320.0) > 1e-12 {
		t.Errorf("Expected scale y %v, got %v", 50.0/320.0, factors.Y)
	}
}

// TestResampleDeterministicAndBounded verifies that resampling is
// deterministic for identical input and never leaves the normalized range.
func TestResampleDeterministicAndBounded(t *testing.T) {
	data := make([]float64, 40*40)
	for i := range data {
		data[i] = float64(i%17) / 16.0
	}

	target := models.Size{Width: 320, Height: 320}
	a, _ := Resample(data, 40, 40, target)
	b, _ := Resample(data, 40, 40, target)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Resample not deterministic at %d: %v vs %v", i, a[i], b[i])
		}
		if a[i] < 0 || a[i] > 1 {
			t.Fatalf("Resampled value out of range at %d: %v", i, a[i])
		}
	}
}

// TestResamplePeakLocalization verifies the round-trip property: a sharp
// peak survives the resample at a position that maps back to the original
// pixel within the interpolation tolerance of one pixel.
func TestResamplePeakLocalization(t *testing.T) {
	const w, h = 40, 40
	data := make([]float64, w*h)
	px, py := 12, 9
	data[py*w+px] = 1.0

	target := models.Size{Width: 320, Height: 320}
	resampled, factors := Resample(data, w, h, target)

	// Locate the peak in the resampled grid.
	best := 0
	for i, v := range resampled {
		if v > resampled[best] {
			best = i
		}
	}
	bx := float64(best%target.Width) * factors.X
	by := float64(best/target.Width) * factors.Y

	if math.Abs(bx-float64(px)) > 1.0 || math.Abs(by-float64(py)) > 1.0 {
		t.Errorf("Peak mapped back to (%v, %v), expected within 1 pixel of (%d, %d)", bx, by, px, py)
	}
}

// TestPrepare verifies the pipeline records the original slice extent.
func TestPrepare(t *testing.T) {
	slice := &models.Slice{
		Data:   make([]float64, 30*20),
		Width:  30,
		Height: 20,
		Axis:   models.Axial,
		Index:  5,
	}
	for i := range slice.Data {
		slice.Data[i] = float64(i)
	}

	input := Prepare(slice, models.Size{Width: 64, Height: 64})
	if input.Size.Width != 64 || input.Size.Height != 64 {
		t.Errorf("Expected input size 64x64, got %dx%d", input.Size.Width, input.Size.Height)
	}
	if input.Original.Width != 30 || input.Original.Height != 20 {
		t.Errorf("Expected original size 30x20, got %dx%d", input.Original.Width, input.Original.Height)
	}
	if len(input.Data) != 64*64 {
		t.Errorf("Expected %d values, got %d", 64*64, len(input.Data))
	}
	if math.Abs(input.Scale.X-30.0/64.0) > 1e-12 || math.Abs(input.Scale.Y-20.0/64.0) > 1e-12 {
		t.Errorf("Unexpected scale factors: %+v", input.Scale)
	}
}
