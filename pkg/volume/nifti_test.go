package volume

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"spinemark/internal/models"
)

func fixtureVolume(w, h, d int) *models.Volume {
	vol := models.NewVolume(w, h, d)
	for i := range vol.Data {
		vol.Data[i] = float64(i % 251)
	}
	return vol
}

// TestNIfTIRoundTrip verifies save/load preserves extents and voxel values
// for both plain and gzipped files.
func TestNIfTIRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	vol := fixtureVolume(6, 5, 4)

	for _, name := range []string{"plain.nii", "packed.nii.gz"} {
		path := filepath.Join(tempDir, name)
		if err := SaveNIfTI(vol, path); err != nil {
			t.Fatalf("Failed to save %s: %v", name, err)
		}

		loaded, err := LoadNIfTI(path)
		if err != nil {
			t.Fatalf("Failed to load %s: %v", name, err)
		}

		if loaded.Width != 6 || loaded.Height != 5 || loaded.Depth != 4 {
			t.Fatalf("%s: expected extents 6x5x4, got %dx%dx%d",
				name, loaded.Width, loaded.Height, loaded.Depth)
		}
		for i := range vol.Data {
			if math.Abs(loaded.Data[i]-vol.Data[i]) > 1e-6 {
				t.Fatalf("%s: voxel %d mismatch: expected %v, got %v",
					name, i, vol.Data[i], loaded.Data[i])
			}
		}
	}
}

// TestLoadNIfTIRejectsGarbage verifies format errors are surfaced as
// descriptive errors rather than bad volumes.
func TestLoadNIfTIRejectsGarbage(t *testing.T) {
	tempDir := t.TempDir()

	path := filepath.Join(tempDir, "short.nii")
	if err := os.WriteFile(path, []byte("not a nifti"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	if _, err := LoadNIfTI(path); err == nil {
		t.Error("Expected error for truncated file, got nil")
	}

	// A correctly sized header with a bad magic must also be rejected.
	raw := make([]byte, 400)
	raw[0] = 348 & 0xff
	raw[1] = 348 >> 8
	path = filepath.Join(tempDir, "badmagic.nii")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	if _, err := LoadNIfTI(path); err == nil {
		t.Error("Expected error for bad magic, got nil")
	}
}

// TestLoadMissingFile verifies a missing path is a surfaced error.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.nii.gz")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

// TestGetInfo verifies the per-axis extents record.
func TestGetInfo(t *testing.T) {
	info := GetInfo(fixtureVolume(8, 9, 10))
	if info.SagittalRange != 8 || info.CoronalRange != 9 || info.AxialRange != 10 {
		t.Errorf("Unexpected ranges: %+v", info)
	}
	if len(info.Shape) != 3 || info.Shape[0] != 8 || info.Shape[1] != 9 || info.Shape[2] != 10 {
		t.Errorf("Unexpected shape: %v", info.Shape)
	}
}
