package msdf

import (
	"math"
	"testing"

	"github.com/gogpu/fontfusion/outline"
)

func line(x0, y0, x1, y1 float64) outline.Segment {
	return outline.Segment{
		Kind:  outline.Linear,
		Color: outline.White,
		P:     [3]outline.Vec2{{X: x0, Y: y0}, {X: x1, Y: y1}},
	}
}

func TestLinearDistance(t *testing.T) {
	s := line(0, 0, 100, 0)

	tests := []struct {
		name string
		p    outline.Vec2
		want float64
	}{
		{"on edge", outline.Vec2{X: 50, Y: 0}, 0},
		{"left is positive", outline.Vec2{X: 50, Y: 10}, 10},
		{"right is negative", outline.Vec2{X: 50, Y: -10}, -10},
		{"past the end", outline.Vec2{X: 103, Y: 4}, 5},
		{"before the start", outline.Vec2{X: -3, Y: -4}, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(s, tt.p)
			if math.Abs(got.Distance-tt.want) > 1e-9 {
				t.Errorf("Distance = %v, want %v", got.Distance, tt.want)
			}
		})
	}
}

func TestLinearDistanceDegenerate(t *testing.T) {
	got := Distance(line(1, 1, 1, 1), outline.Vec2{X: 4, Y: 5})
	if got.Distance != 5 {
		t.Errorf("Distance = %v, want 5", got.Distance)
	}
}

func TestQuadraticDistance(t *testing.T) {
	s := outline.Segment{
		Kind: outline.Quadratic,
		P:    [3]outline.Vec2{{X: 0, Y: 0}, {X: 50, Y: 100}, {X: 100, Y: 0}},
	}

	// The apex of the curve is at (50, 50).
	above := Distance(s, outline.Vec2{X: 50, Y: 60})
	if math.Abs(math.Abs(above.Distance)-10) > 1e-6 {
		t.Errorf("|Distance| above apex = %v, want 10", above.Distance)
	}
	below := Distance(s, outline.Vec2{X: 50, Y: 40})
	if math.Signbit(above.Distance) == math.Signbit(below.Distance) {
		t.Errorf("points on opposite sides share a sign: %v, %v", above.Distance, below.Distance)
	}

	end := Distance(s, outline.Vec2{X: 0, Y: 0})
	if math.Abs(end.Distance) > 1e-9 {
		t.Errorf("Distance at endpoint = %v, want 0", end.Distance)
	}
}

func TestSignedDistanceTieBreak(t *testing.T) {
	a := SignedDistance{Distance: 2, Dot: 0.1}
	b := SignedDistance{Distance: -2, Dot: 0.9}
	if !a.IsCloserThan(b) {
		t.Error("lower dot should win a tie")
	}
	if got := b.Combine(a); got != a {
		t.Errorf("Combine = %v, want %v", got, a)
	}
	if Infinite().IsCloserThan(a) {
		t.Error("Infinite beats a finite distance")
	}
}
