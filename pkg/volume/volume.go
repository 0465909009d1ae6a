// Package volume loads 3D medical-image volumes into the dense in-memory
// representation the pipeline operates on. Two sources are supported:
// single-file NIfTI-1 images (.nii / .nii.gz) and directories holding a
// DICOM series, one slice per file.
package volume

import (
	"fmt"
	"os"

	"spinemark/internal/models"
)

// Info describes a volume's extents in the shape the annotation frontend
// consumes.
type Info struct {
	Shape         []int `json:"shape"`
	SagittalRange int   `json:"sagittal_range"`
	CoronalRange  int   `json:"coronal_range"`
	AxialRange    int   `json:"axial_range"`
}

// GetInfo returns the per-axis extents of a loaded volume.
func GetInfo(vol *models.Volume) Info {
	return Info{
		Shape:         []int{vol.Width, vol.Height, vol.Depth},
		SagittalRange: vol.Width,
		CoronalRange:  vol.Height,
		AxialRange:    vol.Depth,
	}
}

// Load reads a volume from path. A directory is treated as a DICOM series;
// a file is parsed as NIfTI-1. A missing path is surfaced as a descriptive
// error, never retried.
func Load(path string) (*models.Volume, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open volume %s: %w", path, err)
	}
	if info.IsDir() {
		return LoadDICOMSeries(path)
	}
	return LoadNIfTI(path)
}
