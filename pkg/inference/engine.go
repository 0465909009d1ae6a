// Package inference runs the end-to-end landmark location pipeline: slice
// extraction, preprocessing, model prediction, heatmap decoding and the
// mapping of decoded coordinates back into the volume's native frame. The
// network itself is a black box behind the Predictor interface; only its
// input/output tensor contract matters here.
package inference

import (
	"fmt"
	"math"

	"spinemark/internal/models"
	"spinemark/pkg/config"
	"spinemark/pkg/coordmap"
	"spinemark/pkg/heatmap"
	"spinemark/pkg/preprocess"
	"spinemark/pkg/slicer"
)

// Predictor produces one heatmap grid per landmark for a preprocessed
// model input. Implementations must be safe for concurrent use.
type Predictor interface {
	Predict(input []float64, size models.Size) ([]heatmap.Grid, error)
}

// Options carries the model's tensor contract and decoding parameters.
type Options struct {
	InputSize   models.Size
	HeatmapSize models.Size
	Landmarks   []string
	Method      heatmap.Method
	Threshold   float64
}

// OptionsFromConfig validates the configured decode method and assembles
// engine options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	method, err := heatmap.ParseMethod(cfg.Model.DecodeMethod)
	if err != nil {
		return Options{}, err
	}
	threshold := cfg.Model.DecodeThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = heatmap.DefaultThreshold
	}
	return Options{
		InputSize:   models.Size{Width: cfg.Model.InputWidth, Height: cfg.Model.InputHeight},
		HeatmapSize: models.Size{Width: cfg.Model.HeatmapWidth, Height: cfg.Model.HeatmapHeight},
		Landmarks:   cfg.Model.Landmarks,
		Method:      method,
		Threshold:   threshold,
	}, nil
}

// Coordinate is one landmark position in the output record, in the slice's
// native voxel frame.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Result is the record emitted for one inference call, consumed by the CLI
// JSON emitter.
type Result struct {
	File      string                `json:"file"`
	ZIndex    int                   `json:"z_index"`
	Landmarks map[string]Coordinate `json:"landmarks"`
}

// Engine wires a predictor to the coordinate pipeline.
type Engine struct {
	predictor Predictor
	opts      Options
}

// NewEngine creates an inference engine.
func NewEngine(p Predictor, opts Options) *Engine {
	return &Engine{predictor: p, opts: opts}
}

// Run locates the landmarks on one axial slice of vol. A nil zIndex selects
// the most central axial slice; an explicit index is clamped into range.
// Output coordinates are in the voxel frame, rounded to 2 decimal places.
func (e *Engine) Run(vol *models.Volume, fileName string, zIndex *int) (*Result, error) {
	z := slicer.MiddleIndex(vol, models.Axial)
	if zIndex != nil {
		z = slicer.ClampIndex(*zIndex, vol.Extent(models.Axial))
	}

	slice := slicer.Extract(vol, models.Axial, z)
	input := preprocess.Prepare(slice, e.opts.InputSize)

	grids, err := e.predictor.Predict(input.Data, input.Size)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}

	stack := heatmap.Stack{Grids: grids, Names: e.opts.Landmarks}
	if err := stack.Validate(); err != nil {
		return nil, err
	}
	decoded := stack.Decode(e.opts.Method, e.opts.Threshold)

	mapper := coordmap.Mapper{
		HeatmapSize:    e.opts.HeatmapSize,
		InputSize:      e.opts.InputSize,
		Scale:          input.Scale,
		OriginalHeight: input.Original.Height,
	}
	voxels, err := mapper.Landmarks(decoded)
	if err != nil {
		return nil, err
	}

	landmarks := make(map[string]Coordinate, len(voxels))
	for _, lm := range voxels {
		landmarks[lm.Name] = Coordinate{
			X: round2(lm.Point.X),
			Y: round2(lm.Point.Y),
		}
	}

	return &Result{
		File:      fileName,
		ZIndex:    z,
		Landmarks: landmarks,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
