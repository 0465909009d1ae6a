package models

// Volume is a dense 3D array of scalar intensities. The data is stored as a
// 1D array with the sagittal (X) index varying fastest:
// idx = z*Width*Height + y*Width + x. A loaded volume is read-only for the
// duration of a request.
type Volume struct {
	// Data is the 3D volume data as a 1D array.
	Data []float64

	// Width is the sagittal (X) extent in voxels.
	Width int

	// Height is the coronal (Y) extent in voxels.
	Height int

	// Depth is the axial (Z) extent in voxels.
	Depth int
}

// NewVolume allocates a zeroed volume with the given extents.
func NewVolume(width, height, depth int) *Volume {
	return &Volume{
		Data:   make([]float64, width*height*depth),
		Width:  width,
		Height: height,
		Depth:  depth,
	}
}

// At returns the intensity at voxel (x, y, z). Callers are responsible for
// staying inside the extents.
func (v *Volume) At(x, y, z int) float64 {
	return v.Data[z*v.Width*v.Height+y*v.Width+x]
}

// Set writes the intensity at voxel (x, y, z).
func (v *Volume) Set(x, y, z int, value float64) {
	v.Data[z*v.Width*v.Height+y*v.Width+x] = value
}

// Extent returns the number of voxels along the given axis.
func (v *Volume) Extent(axis Axis) int {
	switch axis {
	case Sagittal:
		return v.Width
	case Coronal:
		return v.Height
	case Axial:
		return v.Depth
	}
	return 0
}

// Slice is a 2D cross-section of a volume, already rotated into canvas
// orientation. Data is row-major: idx = y*Width + x.
type Slice struct {
	Data   []float64
	Width  int
	Height int

	// Axis is the volume axis that was fixed to produce this slice.
	Axis Axis

	// Index is the position along Axis the slice was taken at,
	// after clamping.
	Index int
}

// At returns the intensity at canvas position (x, y).
func (s *Slice) At(x, y int) float64 {
	return s.Data[y*s.Width+x]
}
