package fontfusion

import "github.com/gogpu/fontfusion/gpu"

// Mat4 is a column-major 4x4 matrix.
type Mat4 = gpu.Mat4

// OrthoProjection returns the orthographic projection of the box
// [l, r] x [b, t] x [n, f], laid out like glOrtho.
//
// For a pixel space with y down:
//
//	proj := fontfusion.OrthoProjection(0, width, height, 0, -1, 1)
func OrthoProjection(l, r, b, t, n, f float32) Mat4 {
	var m Mat4
	m[0] = 2 / (r - l)
	m[5] = 2 / (t - b)
	m[10] = -2 / (f - n)
	m[12] = -(r + l) / (r - l)
	m[13] = -(t + b) / (t - b)
	m[14] = -(f + n) / (f - n)
	m[15] = 1
	return m
}
