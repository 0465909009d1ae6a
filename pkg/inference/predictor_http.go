package inference

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"spinemark/internal/models"
	"spinemark/pkg/heatmap"
)

// HTTPPredictor delegates prediction to a remote model-serving endpoint.
// The preprocessed input is posted as JSON; the service answers with one
// row-major grid per landmark.
type HTTPPredictor struct {
	client *resty.Client
	url    string
}

// NewHTTPPredictor returns a predictor that posts to url.
func NewHTTPPredictor(url string) *HTTPPredictor {
	client := resty.New().
		SetTimeout(60*time.Second).
		SetHeader("Content-Type", "application/json")
	return &HTTPPredictor{client: client, url: url}
}

type predictRequest struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Image  []float64 `json:"image"`
}

type predictResponse struct {
	HeatmapWidth  int         `json:"heatmap_width"`
	HeatmapHeight int         `json:"heatmap_height"`
	Heatmaps      [][]float64 `json:"heatmaps"`
}

// Predict posts the input image and converts the response into heatmap
// grids.
func (p *HTTPPredictor) Predict(input []float64, size models.Size) ([]heatmap.Grid, error) {
	var out predictResponse
	resp, err := p.client.R().
		SetBody(predictRequest{Width: size.Width, Height: size.Height, Image: input}).
		SetResult(&out).
		Post(p.url)
	if err != nil {
		return nil, fmt.Errorf("model service request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("model service returned %s: %s", resp.Status(), resp.String())
	}
	if out.HeatmapWidth <= 0 || out.HeatmapHeight <= 0 {
		return nil, fmt.Errorf("model service returned invalid heatmap size %dx%d",
			out.HeatmapWidth, out.HeatmapHeight)
	}

	grids := make([]heatmap.Grid, len(out.Heatmaps))
	for i, data := range out.Heatmaps {
		if len(data) != out.HeatmapWidth*out.HeatmapHeight {
			return nil, fmt.Errorf("heatmap %d has %d values for %dx%d grid",
				i, len(data), out.HeatmapWidth, out.HeatmapHeight)
		}
		grids[i] = heatmap.Grid{
			Data:   data,
			Width:  out.HeatmapWidth,
			Height: out.HeatmapHeight,
		}
	}
	return grids, nil
}
