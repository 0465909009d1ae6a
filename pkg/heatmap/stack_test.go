package heatmap

import (
	"testing"
)

func peakGrid(w, h, px, py int) Grid {
	g := Grid{Data: make([]float64, w*h), Width: w, Height: h}
	g.Data[py*w+px] = 1.0
	return g
}

// TestStackDecodeOrder verifies that concurrent decoding preserves the
// landmark order of the stack.
func TestStackDecodeOrder(t *testing.T) {
	stack := Stack{
		Grids: []Grid{
			peakGrid(8, 8, 1, 2),
			peakGrid(8, 8, 3, 4),
			peakGrid(8, 8, 5, 6),
		},
		Names: []string{"L1", "L2", "L3"},
	}
	if err := stack.Validate(); err != nil {
		t.Fatalf("Unexpected validation error: %v", err)
	}

	landmarks := stack.Decode(MethodWeighted, DefaultThreshold)
	if len(landmarks) != 3 {
		t.Fatalf("Expected 3 landmarks, got %d", len(landmarks))
	}

	expected := [][2]float64{{1, 2}, {3, 4}, {5, 6}}
	names := []string{"L1", "L2", "L3"}
	for i, lm := range landmarks {
		if lm.Name != names[i] {
			t.Errorf("Expected landmark %d to be %s, got %s", i, names[i], lm.Name)
		}
		if lm.Point.X != expected[i][0] || lm.Point.Y != expected[i][1] {
			t.Errorf("Landmark %s: expected (%v, %v), got (%v, %v)",
				lm.Name, expected[i][0], expected[i][1], lm.Point.X, lm.Point.Y)
		}
	}
}

// TestStackValidate verifies shape and alignment checks.
func TestStackValidate(t *testing.T) {
	stack := Stack{
		Grids: []Grid{peakGrid(4, 4, 0, 0)},
		Names: []string{"L1", "L2"},
	}
	if err := stack.Validate(); err == nil {
		t.Error("Expected error for misaligned names, got nil")
	}

	stack = Stack{
		Grids: []Grid{{Data: make([]float64, 5), Width: 4, Height: 4}},
		Names: []string{"L1"},
	}
	if err := stack.Validate(); err == nil {
		t.Error("Expected error for malformed grid, got nil")
	}
}

// TestDecodeBatch verifies the (sample, landmark) fan-out keeps results
// addressed to the right sample.
func TestDecodeBatch(t *testing.T) {
	stacks := []Stack{
		{Grids: []Grid{peakGrid(8, 8, 0, 1), peakGrid(8, 8, 2, 3)}, Names: []string{"L1", "L2"}},
		{Grids: []Grid{peakGrid(8, 8, 4, 5), peakGrid(8, 8, 6, 7)}, Names: []string{"L1", "L2"}},
	}

	out := DecodeBatch(stacks, MethodArgmax, DefaultThreshold)
	if len(out) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(out))
	}

	expected := [][][2]float64{
		{{0, 1}, {2, 3}},
		{{4, 5}, {6, 7}},
	}
	for si := range expected {
		for li := range expected[si] {
			got := out[si][li].Point
			want := expected[si][li]
			if got.X != want[0] || got.Y != want[1] {
				t.Errorf("Sample %d landmark %d: expected (%v, %v), got (%v, %v)",
					si, li, want[0], want[1], got.X, got.Y)
			}
		}
	}
}
