// Package models holds the shared domain types used throughout spinemark:
// anatomical axes, coordinate frames, frame-tagged points and landmark
// annotations. Keeping them in one place prevents the per-package drift
// that bare (x, y) pairs invite.
package models

import (
	"errors"
	"fmt"
)

// ErrInvalidAxis is returned when an axis value is outside the fixed
// enumerated set {sagittal, coronal, axial}.
var ErrInvalidAxis = errors.New("invalid axis")

// ErrFrameMismatch is returned when a coordinate tagged with one frame is
// passed to a conversion that expects another.
var ErrFrameMismatch = errors.New("coordinate frame mismatch")

// Axis identifies one of the three anatomical axes of a volume.
type Axis string

const (
	// Sagittal is the left-right axis (volume X).
	Sagittal Axis = "sagittal"

	// Coronal is the front-back axis (volume Y).
	Coronal Axis = "coronal"

	// Axial is the head-foot axis (volume Z).
	Axial Axis = "axial"
)

// ParseAxis validates an axis name. Any value outside the fixed set is
// rejected with ErrInvalidAxis.
func ParseAxis(s string) (Axis, error) {
	switch Axis(s) {
	case Sagittal, Coronal, Axial:
		return Axis(s), nil
	}
	return "", fmt.Errorf("%w: %q (must be sagittal, coronal or axial)", ErrInvalidAxis, s)
}

// InPlane returns the two in-plane axes (a, b) of a cross-section taken with
// the receiver axis fixed. Axis a is the raw dimension that becomes the
// canvas horizontal after the display rotation; axis b becomes the inverted
// canvas vertical. This single table replaces the three axis-specific
// formulas the annotation frontend and the inference path both rely on.
func (ax Axis) InPlane() (a, b Axis) {
	switch ax {
	case Sagittal:
		return Coronal, Axial
	case Coronal:
		return Sagittal, Axial
	case Axial:
		return Sagittal, Coronal
	}
	panic(fmt.Sprintf("models: unknown axis %q", ax))
}

// Frame tags the coordinate system a 2D point is expressed in. Every point
// carries its frame; conversions between frames are explicit.
type Frame int

const (
	// FrameHeatmap is the model output grid (e.g. 160x160).
	FrameHeatmap Frame = iota

	// FrameInput is the resized model input (e.g. 320x320).
	FrameInput

	// FrameCanvas is the rotated display/annotation canvas of a slice.
	FrameCanvas

	// FrameVoxel is the slice's native in-plane voxel frame, pre-rotation
	// and pre-resize. Voxel-frame x runs along the slice's first raw
	// in-plane axis, y along the second.
	FrameVoxel
)

// String returns the frame name used in errors and logs.
func (f Frame) String() string {
	switch f {
	case FrameHeatmap:
		return "heatmap"
	case FrameInput:
		return "resized-input"
	case FrameCanvas:
		return "canvas"
	case FrameVoxel:
		return "voxel"
	}
	return fmt.Sprintf("Frame(%d)", int(f))
}

// Point is a 2D coordinate tagged with the frame it is expressed in.
type Point struct {
	X, Y  float64
	Frame Frame
}

// In checks the point's frame tag and returns ErrFrameMismatch when it does
// not match. Conversions call this at every boundary crossing.
func (p Point) In(f Frame) error {
	if p.Frame != f {
		return fmt.Errorf("%w: have %s, want %s", ErrFrameMismatch, p.Frame, f)
	}
	return nil
}

// Landmark is a named point produced by one inference call. It is never
// mutated, only re-expressed in another frame via a conversion.
type Landmark struct {
	Name  string
	Point Point
}

// Voxel is a position in the volume's native 3D index space.
type Voxel struct {
	X, Y, Z float64
}

// Size is a 2D extent in (width, height) order.
type Size struct {
	Width  int
	Height int
}

// ScaleFactors records the per-axis ratio original_dim / target_dim of a
// resample. Computed once per slice at resample time and immutable
// afterward; it is what makes the resize invertible.
type ScaleFactors struct {
	X float64
	Y float64
}
