// Package coordmap converts landmark coordinates between the frames of the
// inference pipeline: the model's heatmap grid, the resized model input, the
// rotated display canvas and the slice's native voxel frame. Every
// conversion validates the frame tag of its input and returns a freshly
// tagged point, so a frame mismatch surfaces at the boundary where it
// happens instead of as a silently wrong coordinate.
package coordmap

import (
	"spinemark/internal/models"
)

// HeatmapToInput rescales a heatmap-frame coordinate to the resized model
// input. The heatmap and the input derive from the same resample, so the
// per-axis ratios are tracked independently even though the shipped model
// uses square grids for both.
func HeatmapToInput(p models.Point, heatmapSize, inputSize models.Size) (models.Point, error) {
	if err := p.In(models.FrameHeatmap); err != nil {
		return models.Point{}, err
	}
	return models.Point{
		X:     p.X * float64(inputSize.Width) / float64(heatmapSize.Width),
		Y:     p.Y * float64(inputSize.Height) / float64(heatmapSize.Height),
		Frame: models.FrameInput,
	}, nil
}

// InputToCanvas applies the recorded resample scale factors, mapping a
// resized-input coordinate back to the pre-resize canvas.
func InputToCanvas(p models.Point, scale models.ScaleFactors) (models.Point, error) {
	if err := p.In(models.FrameInput); err != nil {
		return models.Point{}, err
	}
	return models.Point{
		X:     p.X * scale.X,
		Y:     p.Y * scale.Y,
		Frame: models.FrameCanvas,
	}, nil
}

// CanvasToVoxel inverts the display rotation: x passes through, y flips
// against the original (post-rotation, pre-resize) slice height.
func CanvasToVoxel(p models.Point, originalHeight int) (models.Point, error) {
	if err := p.In(models.FrameCanvas); err != nil {
		return models.Point{}, err
	}
	return models.Point{
		X:     p.X,
		Y:     float64(originalHeight-1) - p.Y,
		Frame: models.FrameVoxel,
	}, nil
}

// Mapper composes the full inverse chain heatmap -> resized-input ->
// canvas -> voxel for one preprocessed slice.
type Mapper struct {
	// HeatmapSize is the model output grid resolution.
	HeatmapSize models.Size

	// InputSize is the model input resolution.
	InputSize models.Size

	// Scale holds the resample's original/target ratios.
	Scale models.ScaleFactors

	// OriginalHeight is the pre-resize slice height (post-rotation).
	OriginalHeight int
}

// ToVoxel maps a heatmap-frame point into the slice's native voxel frame.
func (m Mapper) ToVoxel(p models.Point) (models.Point, error) {
	input, err := HeatmapToInput(p, m.HeatmapSize, m.InputSize)
	if err != nil {
		return models.Point{}, err
	}
	canvas, err := InputToCanvas(input, m.Scale)
	if err != nil {
		return models.Point{}, err
	}
	return CanvasToVoxel(canvas, m.OriginalHeight)
}

// Landmarks re-expresses a decoded landmark set in the voxel frame. The
// input landmarks are not mutated.
func (m Mapper) Landmarks(decoded []models.Landmark) ([]models.Landmark, error) {
	out := make([]models.Landmark, len(decoded))
	for i, lm := range decoded {
		vox, err := m.ToVoxel(lm.Point)
		if err != nil {
			return nil, err
		}
		out[i] = models.Landmark{Name: lm.Name, Point: vox}
	}
	return out, nil
}

// VoxelOnSlice lifts a 2D voxel-frame point into the volume's 3D index
// space for the slice taken at index along axis. The point's x runs along
// the slice's first raw in-plane axis, y along the second.
func VoxelOnSlice(p models.Point, axis models.Axis, index int) (models.Voxel, error) {
	if err := p.In(models.FrameVoxel); err != nil {
		return models.Voxel{}, err
	}

	var vox models.Voxel
	switch axis {
	case models.Sagittal:
		vox = models.Voxel{X: float64(index), Y: p.X, Z: p.Y}
	case models.Coronal:
		vox = models.Voxel{X: p.X, Y: float64(index), Z: p.Y}
	case models.Axial:
		vox = models.Voxel{X: p.X, Y: p.Y, Z: float64(index)}
	}
	return vox, nil
}
