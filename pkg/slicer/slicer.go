// Package slicer extracts 2D cross-sections from a 3D volume and applies the
// canonical 90 degree rotation that puts them in canvas orientation for
// display, annotation and model input.
//
// For every axis the rotation obeys one formula, parameterized by the
// in-plane axis assignment of models.Axis.InPlane:
//
//	canvas_x = a
//	canvas_y = (H - 1) - b
//
// where a and b are the cross-section's first and second raw in-plane
// coordinates and H is the cross-section's extent along b.
package slicer

import (
	"spinemark/internal/models"
)

// ClampIndex clamps a slice index into [0, extent-1]. An out-of-range index
// is a silent clamp, never an error.
func ClampIndex(index, extent int) int {
	if index < 0 {
		return 0
	}
	if index > extent-1 {
		return extent - 1
	}
	return index
}

// MiddleIndex returns the most central slice index along the given axis.
func MiddleIndex(vol *models.Volume, axis models.Axis) int {
	return vol.Extent(axis) / 2
}

// Extract selects the 2D cross-section of vol at the given index along axis
// and returns it rotated into canvas orientation. The index is clamped into
// the valid range; the clamped value is recorded on the returned slice.
func Extract(vol *models.Volume, axis models.Axis, index int) *models.Slice {
	index = ClampIndex(index, vol.Extent(axis))

	a, b := axis.InPlane()
	width := vol.Extent(a)
	height := vol.Extent(b)

	s := &models.Slice{
		Data:   make([]float64, width*height),
		Width:  width,
		Height: height,
		Axis:   axis,
		Index:  index,
	}

	for cy := 0; cy < height; cy++ {
		bCoord := height - 1 - cy
		for cx := 0; cx < width; cx++ {
			x, y, z := voxelCoords(axis, index, cx, bCoord)
			s.Data[cy*width+cx] = vol.At(x, y, z)
		}
	}

	return s
}

// CanvasPos maps a voxel known to lie on the slice with the given axis and
// rotated height to its canvas position. This is the forward path used to
// paint stored annotations onto a slice image.
func CanvasPos(vox models.Voxel, axis models.Axis, rotatedHeight int) models.Point {
	a, b := axis.InPlane()
	return models.Point{
		X:     axisCoord(vox, a),
		Y:     float64(rotatedHeight-1) - axisCoord(vox, b),
		Frame: models.FrameCanvas,
	}
}

// VoxelFromCanvas inverts CanvasPos: it lifts a canvas-frame point on the
// slice (axis, index, rotatedHeight) back into the volume's 3D index space.
func VoxelFromCanvas(p models.Point, axis models.Axis, index int, rotatedHeight int) (models.Voxel, error) {
	if err := p.In(models.FrameCanvas); err != nil {
		return models.Voxel{}, err
	}
	aCoord := p.X
	bCoord := float64(rotatedHeight-1) - p.Y

	var vox models.Voxel
	a, b := axis.InPlane()
	setAxisCoord(&vox, axis, float64(index))
	setAxisCoord(&vox, a, aCoord)
	setAxisCoord(&vox, b, bCoord)
	return vox, nil
}

// voxelCoords resolves the 3D voxel behind the raw in-plane position
// (aCoord, bCoord) of the cross-section fixed at index along axis.
func voxelCoords(axis models.Axis, index, aCoord, bCoord int) (x, y, z int) {
	switch axis {
	case models.Sagittal:
		return index, aCoord, bCoord
	case models.Coronal:
		return aCoord, index, bCoord
	case models.Axial:
		return aCoord, bCoord, index
	}
	return 0, 0, 0
}

func axisCoord(vox models.Voxel, axis models.Axis) float64 {
	switch axis {
	case models.Sagittal:
		return vox.X
	case models.Coronal:
		return vox.Y
	case models.Axial:
		return vox.Z
	}
	return 0
}

func setAxisCoord(vox *models.Voxel, axis models.Axis, value float64) {
	switch axis {
	case models.Sagittal:
		vox.X = value
	case models.Coronal:
		vox.Y = value
	case models.Axial:
		vox.Z = value
	}
}
