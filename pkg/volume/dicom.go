package volume

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"spinemark/internal/models"
)

type dicomSlice struct {
	instance int
	img      image.Image
}

// LoadDICOMSeries loads a directory of single-frame DICOM files as one
// volume. Files are ordered by InstanceNumber (falling back to filename
// order when the tag is absent); each file contributes one axial slice,
// with columns mapped to the sagittal axis and rows to the coronal axis.
// All slices must share one resolution.
func LoadDICOMSeries(dir string) (*models.Volume, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read DICOM directory %s: %w", dir, err)
	}

	var slices []dicomSlice
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".dcm" && ext != "" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		ds, err := dicom.ParseFile(path, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DICOM file %s: %w", path, err)
		}

		img, err := firstFrameImage(&ds)
		if err != nil {
			return nil, fmt.Errorf("failed to read pixel data from %s: %w", path, err)
		}
		slices = append(slices, dicomSlice{
			instance: instanceNumber(&ds, len(slices)),
			img:      img,
		})
	}

	if len(slices) == 0 {
		return nil, fmt.Errorf("no DICOM files found in %s", dir)
	}

	sort.Slice(slices, func(i, j int) bool {
		return slices[i].instance < slices[j].instance
	})

	bounds := slices[0].img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	vol := models.NewVolume(width, height, len(slices))

	for z, s := range slices {
		b := s.img.Bounds()
		if b.Dx() != width || b.Dy() != height {
			return nil, fmt.Errorf("inconsistent slice resolution in series: %dx%d vs %dx%d",
				b.Dx(), b.Dy(), width, height)
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				vol.Set(x, y, z, grayValue(s.img, b.Min.X+x, b.Min.Y+y))
			}
		}
	}
	return vol, nil
}

// firstFrameImage extracts the first pixel-data frame of a dataset as an
// image.
func firstFrameImage(ds *dicom.Dataset) (image.Image, error) {
	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("no PixelData element: %w", err)
	}
	info := dicom.MustGetPixelDataInfo(el.Value)
	if len(info.Frames) == 0 {
		return nil, fmt.Errorf("PixelData has no frames")
	}
	return info.Frames[0].GetImage()
}

// instanceNumber reads the InstanceNumber tag, falling back to the
// encounter order when it is missing or malformed.
func instanceNumber(ds *dicom.Dataset, fallback int) int {
	el, err := ds.FindElementByTag(tag.InstanceNumber)
	if err != nil {
		return fallback
	}
	vals, ok := el.Value.GetValue().([]string)
	if !ok || len(vals) == 0 {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(vals[0]))
	if err != nil {
		return fallback
	}
	return n
}

// grayValue reads one pixel as a scalar intensity. DICOM grayscale frames
// decode to Gray16 or Gray images; anything else falls back to the red
// channel.
func grayValue(img image.Image, x, y int) float64 {
	switch im := img.(type) {
	case *image.Gray16:
		return float64(im.Gray16At(x, y).Y)
	case *image.Gray:
		return float64(im.GrayAt(x, y).Y)
	default:
		r, _, _, _ := img.At(x, y).RGBA()
		return float64(r)
	}
}
