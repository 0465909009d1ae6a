package volume

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"spinemark/internal/models"
)

// NIfTI-1 header layout constants. The header is a fixed 348-byte record;
// voxel data starts at vox_offset (352 for single-file images).
const (
	niftiHeaderSize = 348
	niftiMagicN1    = "n+1\x00"
	niftiMagicNI1   = "ni1\x00"
)

// NIfTI-1 datatype codes for the types the pipeline accepts.
const (
	dtUint8   = 2
	dtInt16   = 4
	dtInt32   = 8
	dtFloat32 = 16
	dtFloat64 = 64
	dtInt8    = 256
	dtUint16  = 512
	dtUint32  = 768
)

// LoadNIfTI reads a NIfTI-1 volume from a .nii or .nii.gz file. The first
// three dimensions are interpreted as (sagittal, coronal, axial); for 4D
// files only the first volume is read. Intensities are scaled by
// scl_slope/scl_inter when the file carries a non-zero slope.
func LoadNIfTI(path string) (*models.Volume, error) {
	raw, err := readMaybeGzipped(path)
	if err != nil {
		return nil, err
	}
	vol, err := decodeNIfTI(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse NIfTI file %s: %w", path, err)
	}
	return vol, nil
}

func readMaybeGzipped(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open NIfTI file: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream in %s: %w", path, err)
		}
		defer gz.Close()
		return io.ReadAll(gz)
	}
	return io.ReadAll(f)
}

func decodeNIfTI(raw []byte) (*models.Volume, error) {
	if len(raw) < niftiHeaderSize {
		return nil, fmt.Errorf("file too short for NIfTI header: %d bytes", len(raw))
	}

	// sizeof_hdr doubles as the endianness probe.
	var order binary.ByteOrder = binary.LittleEndian
	if order.Uint32(raw[0:4]) != niftiHeaderSize {
		order = binary.BigEndian
		if order.Uint32(raw[0:4]) != niftiHeaderSize {
			return nil, fmt.Errorf("bad sizeof_hdr, not a NIfTI-1 file")
		}
	}

	magic := string(raw[344:348])
	if magic != niftiMagicN1 && magic != niftiMagicNI1 {
		return nil, fmt.Errorf("bad magic %q", magic)
	}
	if magic == niftiMagicNI1 {
		return nil, fmt.Errorf("detached-header NIfTI pairs are not supported")
	}

	ndim := int(int16(order.Uint16(raw[40:42])))
	if ndim < 3 {
		return nil, fmt.Errorf("volume must have at least 3 dimensions, got %d", ndim)
	}
	nx := int(int16(order.Uint16(raw[42:44])))
	ny := int(int16(order.Uint16(raw[44:46])))
	nz := int(int16(order.Uint16(raw[46:48])))
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%dx%d", nx, ny, nz)
	}

	datatype := int(int16(order.Uint16(raw[70:72])))
	voxOffset := int(math.Float32frombits(order.Uint32(raw[108:112])))
	if voxOffset < niftiHeaderSize {
		voxOffset = niftiHeaderSize + 4
	}
	slope := float64(math.Float32frombits(order.Uint32(raw[112:116])))
	inter := float64(math.Float32frombits(order.Uint32(raw[116:120])))
	if slope == 0 {
		slope, inter = 1, 0
	}

	count := nx * ny * nz
	if voxOffset > len(raw) {
		return nil, fmt.Errorf("vox_offset %d past end of file (%d bytes)", voxOffset, len(raw))
	}
	data := raw[voxOffset:]

	vol := models.NewVolume(nx, ny, nz)
	if err := readVoxels(vol.Data, data, count, datatype, order); err != nil {
		return nil, err
	}

	if slope != 1 || inter != 0 {
		for i, v := range vol.Data {
			vol.Data[i] = v*slope + inter
		}
	}
	return vol, nil
}

// readVoxels decodes count voxels of the given NIfTI datatype into dst.
// NIfTI stores voxels in Fortran order with the first dimension fastest,
// which matches the volume's own layout, so the copy is sequential.
func readVoxels(dst []float64, data []byte, count, datatype int, order binary.ByteOrder) error {
	var width int
	switch datatype {
	case dtUint8, dtInt8:
		width = 1
	case dtInt16, dtUint16:
		width = 2
	case dtInt32, dtUint32, dtFloat32:
		width = 4
	case dtFloat64:
		width = 8
	default:
		return fmt.Errorf("unsupported NIfTI datatype %d", datatype)
	}
	if len(data) < count*width {
		return fmt.Errorf("truncated voxel data: have %d bytes, need %d", len(data), count*width)
	}

	for i := 0; i < count; i++ {
		off := i * width
		switch datatype {
		case dtUint8:
			dst[i] = float64(data[off])
		case dtInt8:
			dst[i] = float64(int8(data[off]))
		case dtInt16:
			dst[i] = float64(int16(order.Uint16(data[off:])))
		case dtUint16:
			dst[i] = float64(order.Uint16(data[off:]))
		case dtInt32:
			dst[i] = float64(int32(order.Uint32(data[off:])))
		case dtUint32:
			dst[i] = float64(order.Uint32(data[off:]))
		case dtFloat32:
			dst[i] = float64(math.Float32frombits(order.Uint32(data[off:])))
		case dtFloat64:
			dst[i] = math.Float64frombits(order.Uint64(data[off:]))
		}
	}
	return nil
}

// SaveNIfTI writes a volume as a single-file NIfTI-1 image with float32
// voxels, gzipped when the path ends in .gz. Used for synthetic fixtures
// and for exporting derived volumes.
func SaveNIfTI(vol *models.Volume, path string) error {
	var buf bytes.Buffer
	order := binary.LittleEndian

	header := make([]byte, niftiHeaderSize+4)
	order.PutUint32(header[0:4], niftiHeaderSize)
	order.PutUint16(header[40:42], 3)
	order.PutUint16(header[42:44], uint16(vol.Width))
	order.PutUint16(header[44:46], uint16(vol.Height))
	order.PutUint16(header[46:48], uint16(vol.Depth))
	for i := 4; i < 8; i++ {
		order.PutUint16(header[40+2*i:42+2*i], 1)
	}
	order.PutUint16(header[70:72], dtFloat32)
	order.PutUint16(header[72:74], 32) // bitpix
	order.PutUint32(header[108:112], math.Float32bits(float32(niftiHeaderSize+4)))
	order.PutUint32(header[112:116], math.Float32bits(1)) // scl_slope
	// pixdim[0..3]: orientation flag plus unit voxel spacing
	for i := 0; i < 4; i++ {
		order.PutUint32(header[76+4*i:80+4*i], math.Float32bits(1))
	}
	copy(header[344:348], niftiMagicN1)
	buf.Write(header)

	voxels := make([]byte, 4*len(vol.Data))
	for i, v := range vol.Data {
		order.PutUint32(voxels[4*i:], math.Float32bits(float32(v)))
	}
	buf.Write(voxels)

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create NIfTI file %s: %w", path, err)
	}
	defer out.Close()

	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(out)
		if _, err := gz.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write NIfTI data: %w", err)
		}
		return gz.Close()
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write NIfTI data: %w", err)
	}
	return nil
}
