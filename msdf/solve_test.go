package msdf

import (
	"math"
	"sort"
	"testing"
)

func TestSolveQuadratic(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c float64
		want    []float64
	}{
		{"two roots", 1, -1, 0.1875, []float64{0.25, 0.75}},
		{"double root", 1, -1, 0.25, []float64{0.5}},
		{"no real roots", 1, 0, 1, nil},
		{"outside unit interval", 1, -5, 6, nil},
		{"linear", 0, 2, -1, []float64{0.5}},
		{"constant", 0, 0, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := solveQuadratic(tt.a, tt.b, tt.c)
			assertRoots(t, got, tt.want)
		})
	}
}

func TestSolveCubic(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c, d float64
		want       []float64
	}{
		// (x-0.2)(x-0.5)(x-0.8)
		{"three roots", 1, -1.5, 0.66, -0.08, []float64{0.2, 0.5, 0.8}},
		// (x-0.5)(x^2+1)
		{"one real root", 1, -0.5, 1, -0.5, []float64{0.5}},
		{"degenerate to quadratic", 0, 1, -1, 0.1875, []float64{0.25, 0.75}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := solveCubic(tt.a, tt.b, tt.c, tt.d)
			assertRoots(t, got, tt.want)
		})
	}
}

func assertRoots(t *testing.T, got, want []float64) {
	t.Helper()
	sort.Float64s(got)
	if len(got) != len(want) {
		t.Fatalf("roots = %v, want %v", got, want)
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Errorf("roots[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
