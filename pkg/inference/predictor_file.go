package inference

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"spinemark/internal/models"
	"spinemark/pkg/heatmap"
)

// Heatmap stack files hold precomputed model output for offline evaluation:
// a 4-byte magic, three uint32 values (landmark count, height, width) and
// count*height*width little-endian float32 grid values, row-major per grid.
const stackMagic = "SMHM"

// FilePredictor serves a precomputed heatmap stack from disk instead of
// running a network. It lets the CLI and the evaluation tooling exercise
// the full coordinate pipeline without an inference runtime.
type FilePredictor struct {
	path string
}

// NewFilePredictor returns a predictor backed by the given stack file.
func NewFilePredictor(path string) *FilePredictor {
	return &FilePredictor{path: path}
}

// Predict reads the stack file. The preprocessed input is ignored; the file
// is assumed to correspond to the volume being processed.
func (p *FilePredictor) Predict(_ []float64, _ models.Size) ([]heatmap.Grid, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read heatmap stack: %w", err)
	}
	return decodeStackFile(raw)
}

func decodeStackFile(raw []byte) ([]heatmap.Grid, error) {
	if len(raw) < 16 || string(raw[:4]) != stackMagic {
		return nil, fmt.Errorf("not a heatmap stack file")
	}
	order := binary.LittleEndian
	count := int(order.Uint32(raw[4:8]))
	height := int(order.Uint32(raw[8:12]))
	width := int(order.Uint32(raw[12:16]))
	if count <= 0 || height <= 0 || width <= 0 {
		return nil, fmt.Errorf("invalid heatmap stack dimensions %dx%dx%d", count, height, width)
	}

	need := 16 + 4*count*height*width
	if len(raw) < need {
		return nil, fmt.Errorf("truncated heatmap stack: have %d bytes, need %d", len(raw), need)
	}

	grids := make([]heatmap.Grid, count)
	off := 16
	for i := 0; i < count; i++ {
		data := make([]float64, height*width)
		for j := range data {
			bits := order.Uint32(raw[off:])
			data[j] = float64(math.Float32frombits(bits))
			off += 4
		}
		grids[i] = heatmap.Grid{Data: data, Width: width, Height: height}
	}
	return grids, nil
}

// WriteStackFile serializes grids in the stack file format. All grids must
// share one resolution.
func WriteStackFile(path string, grids []heatmap.Grid) error {
	if len(grids) == 0 {
		return fmt.Errorf("empty heatmap stack")
	}
	width, height := grids[0].Width, grids[0].Height

	order := binary.LittleEndian
	buf := make([]byte, 16, 16+4*len(grids)*width*height)
	copy(buf[:4], stackMagic)
	order.PutUint32(buf[4:8], uint32(len(grids)))
	order.PutUint32(buf[8:12], uint32(height))
	order.PutUint32(buf[12:16], uint32(width))

	for _, g := range grids {
		if g.Width != width || g.Height != height {
			return fmt.Errorf("inconsistent grid resolution in stack: %dx%d vs %dx%d",
				g.Width, g.Height, width, height)
		}
		var word [4]byte
		for _, v := range g.Data {
			order.PutUint32(word[:], math.Float32bits(float32(v)))
			buf = append(buf, word[:]...)
		}
	}
	return os.WriteFile(path, buf, 0644)
}
