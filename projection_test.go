package fontfusion

import (
	"math"
	"testing"
)

func TestOrthoProjection(t *testing.T) {
	tests := []struct {
		name         string
		m            Mat4
		x, y         float32
		wantX, wantY float32
	}{
		{"y down origin", OrthoProjection(0, 640, 480, 0, -1, 1), 0, 0, -1, 1},
		{"y down corner", OrthoProjection(0, 640, 480, 0, -1, 1), 640, 480, 1, -1},
		{"y down center", OrthoProjection(0, 640, 480, 0, -1, 1), 320, 240, 0, 0},
		{"y up origin", OrthoProjection(0, 1024, 0, 512, -1, 1), 0, 0, -1, -1},
		{"y up corner", OrthoProjection(0, 1024, 0, 512, -1, 1), 1024, 512, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.m.Apply(tt.x, tt.y)
			if math.Abs(float64(x-tt.wantX)) > 1e-6 || math.Abs(float64(y-tt.wantY)) > 1e-6 {
				t.Errorf("Apply(%v, %v) = (%v, %v), want (%v, %v)", tt.x, tt.y, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestOrthoProjectionDepth(t *testing.T) {
	m := OrthoProjection(0, 2, 2, 0, -1, 1)
	if m[10] != -1 || m[14] != 0 || m[15] != 1 {
		t.Errorf("depth terms = %v %v %v", m[10], m[14], m[15])
	}
}
