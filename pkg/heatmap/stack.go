package heatmap

import (
	"fmt"

	"spinemark/internal/models"
)

// Stack is a set of heatmaps for one sample, aligned index-for-index with
// the ordered landmark name list.
type Stack struct {
	Grids []Grid
	Names []string
}

// Validate checks that the stack's grids and names line up and that every
// grid carries a consistent shape.
func (s Stack) Validate() error {
	if len(s.Grids) != len(s.Names) {
		return fmt.Errorf("heatmap stack has %d grids but %d landmark names", len(s.Grids), len(s.Names))
	}
	for i, g := range s.Grids {
		if len(g.Data) != g.Width*g.Height {
			return fmt.Errorf("heatmap %q: %d values for %dx%d grid", s.Names[i], len(g.Data), g.Width, g.Height)
		}
	}
	return nil
}

// Decode decodes every grid in the stack into a heatmap-frame landmark.
// The per-landmark decodes have no data dependency on one another, so they
// run concurrently, one goroutine per landmark.
func (s Stack) Decode(method Method, threshold float64) []models.Landmark {
	type decoded struct {
		index int
		point models.Point
	}
	results := make(chan decoded)

	for i := range s.Grids {
		go func(idx int, g Grid) {
			results <- decoded{index: idx, point: Decode(g, method, threshold)}
		}(i, s.Grids[i])
	}

	landmarks := make([]models.Landmark, len(s.Grids))
	for range s.Grids {
		res := <-results
		landmarks[res.index] = models.Landmark{
			Name:  s.Names[res.index],
			Point: res.point,
		}
	}
	return landmarks
}

// DecodeBatch decodes several samples' stacks at once, fanning out over the
// independent (sample, landmark) pairs.
func DecodeBatch(stacks []Stack, method Method, threshold float64) [][]models.Landmark {
	type decoded struct {
		sample   int
		landmark int
		point    models.Point
	}
	results := make(chan decoded)

	total := 0
	for si := range stacks {
		for li := range stacks[si].Grids {
			total++
			go func(sampleIdx, landmarkIdx int, g Grid) {
				results <- decoded{
					sample:   sampleIdx,
					landmark: landmarkIdx,
					point:    Decode(g, method, threshold),
				}
			}(si, li, stacks[si].Grids[li])
		}
	}

	out := make([][]models.Landmark, len(stacks))
	for si := range stacks {
		out[si] = make([]models.Landmark, len(stacks[si].Grids))
	}
	for i := 0; i < total; i++ {
		res := <-results
		out[res.sample][res.landmark] = models.Landmark{
			Name:  stacks[res.sample].Names[res.landmark],
			Point: res.point,
		}
	}
	return out
}
