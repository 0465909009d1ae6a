// Package preprocess turns an extracted slice into the fixed-resolution
// model input: min-max intensity normalization followed by an anti-aliased
// resample that records the scale factors needed to invert it. It also
// provides the 8-bit display mapping used by the annotation frontend and by
// histogram matching.
package preprocess

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"spinemark/internal/models"
)

// Normalize maps intensities to [0, 1] via (v - min) / (max - min). A
// constant input (max == min) yields an all-zero array of the same shape,
// guarding the divide by zero.
func Normalize(data []float64) []float64 {
	out := make([]float64, len(data))
	if len(data) == 0 {
		return out
	}

	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	if maxVal <= minVal {
		return out
	}

	scale := 1.0 / (maxVal - minVal)
	for i, v := range data {
		out[i] = (v - minVal) * scale
	}
	return out
}

// ToDisplayRange maps intensities to integer 0-255 with the same min-max
// rule as Normalize, for display and histogram matching. A constant input
// yields all zeros.
func ToDisplayRange(data []float64) []uint8 {
	out := make([]uint8, len(data))
	if len(data) == 0 {
		return out
	}

	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	if maxVal <= minVal {
		return out
	}

	scale := 255.0 / (maxVal - minVal)
	for i, v := range data {
		out[i] = uint8((v - minVal) * scale)
	}
	return out
}

// Resample resizes a normalized slice (values in [0, 1]) to the target
// resolution using Catmull-Rom interpolation, which is smooth and
// deterministic. It returns the resampled data together with the scale
// factors (original_dim / target_dim) needed to map coordinates back.
//
// The data travels through a 16-bit grayscale carrier, so values stay
// clamped to the normalized range; the quantization step of 1/65535 is
// far below the interpolation tolerance of the pipeline.
func Resample(data []float64, width, height int, target models.Size) ([]float64, models.ScaleFactors) {
	factors := models.ScaleFactors{
		X: float64(width) / float64(target.Width),
		Y: float64(height) / float64(target.Height),
	}

	src := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := data[y*width+x]
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			src.SetGray16(x, y, color.Gray16{Y: uint16(v*65535.0 + 0.5)})
		}
	}

	dst := image.NewGray16(image.Rect(0, 0, target.Width, target.Height))
	draw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), draw.Src, nil)

	out := make([]float64, target.Width*target.Height)
	for y := 0; y < target.Height; y++ {
		for x := 0; x < target.Width; x++ {
			out[y*target.Width+x] = float64(dst.Gray16At(x, y).Y) / 65535.0
		}
	}
	return out, factors
}

// Input is a fully preprocessed slice ready for model inference, paired
// with the bookkeeping needed to map decoded coordinates back.
type Input struct {
	// Data is the normalized, resampled image, row-major at Size.
	Data []float64

	// Size is the model input resolution.
	Size models.Size

	// Original is the pre-resize slice extent (post-rotation).
	Original models.Size

	// Scale holds the per-axis original/target ratios of the resample.
	Scale models.ScaleFactors
}

// Prepare runs the full preprocessing pipeline on an extracted slice:
// normalize, then resample to the target model input resolution.
func Prepare(slice *models.Slice, target models.Size) Input {
	norm := Normalize(slice.Data)
	resampled, factors := Resample(norm, slice.Width, slice.Height, target)
	return Input{
		Data:     resampled,
		Size:     target,
		Original: models.Size{Width: slice.Width, Height: slice.Height},
		Scale:    factors,
	}
}

// GrayImage wraps 8-bit slice data in an image for encoding by the display
// path.
func GrayImage(data []uint8, width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	copy(img.Pix, data)
	return img
}
