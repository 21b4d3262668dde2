package outline

import "math"

// Vec2 is a 2D vector in outline space.
type Vec2 struct {
	X, Y float64
}

// Add returns a + b.
func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

// Sub returns a - b.
func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

// Scale returns a * s.
func (a Vec2) Scale(s float64) Vec2 {
	return Vec2{a.X * s, a.Y * s}
}

// Mix linearly interpolates between a and b.
func (a Vec2) Mix(b Vec2, t float64) Vec2 {
	return Vec2{a.X + t*(b.X-a.X), a.Y + t*(b.Y-a.Y)}
}

// Dot returns the dot product of a and b.
func (a Vec2) Dot(b Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Cross returns the z component of the 3D cross product of a and b.
func (a Vec2) Cross(b Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Length returns the Euclidean length of a.
func (a Vec2) Length() float64 {
	return math.Hypot(a.X, a.Y)
}

// Normalize returns a scaled to unit length. The zero vector normalizes to
// (0, 1).
func (a Vec2) Normalize() Vec2 {
	l := a.Length()
	if l == 0 {
		return Vec2{0, 1}
	}
	return Vec2{a.X / l, a.Y / l}
}

// Shoelace returns the signed area term (b.x-a.x)*(a.y+b.y) of the edge a->b.
// Summed over a closed polygon it is positive for clockwise order in a y-up
// coordinate system.
func Shoelace(a, b Vec2) float64 {
	return (b.X - a.X) * (a.Y + b.Y)
}
