package msdf

import (
	"math"

	"github.com/gogpu/fontfusion/outline"
)

// SignedDistance is a distance to an edge together with a tie breaker.
type SignedDistance struct {
	// Distance is negative on the right of the edge direction.
	Distance float64

	// Dot is |cos| of the angle between the edge tangent and the vector to
	// the query point at an endpoint, zero elsewhere. Of two equally distant
	// edges the one met more orthogonally wins.
	Dot float64
}

// Infinite returns a distance farther than any real one.
func Infinite() SignedDistance {
	return SignedDistance{Distance: math.MaxFloat64}
}

// IsCloserThan reports whether d beats other.
func (d SignedDistance) IsCloserThan(other SignedDistance) bool {
	a, b := math.Abs(d.Distance), math.Abs(other.Distance)
	if a != b {
		return a < b
	}
	return d.Dot < other.Dot
}

// Combine returns the closer of d and other.
func (d SignedDistance) Combine(other SignedDistance) SignedDistance {
	if d.IsCloserThan(other) {
		return d
	}
	return other
}

// Distance returns the signed distance from p to s.
func Distance(s outline.Segment, p outline.Vec2) SignedDistance {
	if s.Kind == outline.Linear {
		return linearDistance(s.P[0], s.P[1], p)
	}
	return quadraticDistance(s, p)
}

func linearDistance(a, b, p outline.Vec2) SignedDistance {
	ab := b.Sub(a)
	ap := p.Sub(a)

	l2 := ab.Dot(ab)
	if l2 == 0 {
		return SignedDistance{Distance: ap.Length()}
	}

	t := clamp(ap.Dot(ab)/l2, 0, 1)
	diff := p.Sub(a.Add(ab.Scale(t)))
	dist := diff.Length()
	if ab.Cross(ap) < 0 {
		dist = -dist
	}

	var dot float64
	if t == 0 || t == 1 {
		dot = math.Abs(ab.Normalize().Dot(diff.Normalize()))
	}
	return SignedDistance{Distance: dist, Dot: dot}
}

// quadraticDistance finds the closest point by solving the cubic
// d|B(t)-p|^2/dt = 0 and checking both endpoints.
func quadraticDistance(s outline.Segment, p outline.Vec2) SignedDistance {
	qa := s.P[0].Sub(p)
	qb := s.P[1].Sub(p)
	qc := s.P[2].Sub(p)

	a := qa.Sub(qb.Scale(2)).Add(qc)
	b := qb.Sub(qa).Scale(2)
	c := qa

	best := Infinite()
	check := func(t float64) {
		diff := p.Sub(s.Point(t))
		dist := diff.Length()
		tangent := s.Direction(t)
		if tangent.Cross(diff) < 0 {
			dist = -dist
		}
		var dot float64
		if t == 0 || t == 1 {
			dot = math.Abs(tangent.Normalize().Dot(diff.Normalize()))
		}
		best = best.Combine(SignedDistance{Distance: dist, Dot: dot})
	}

	check(0)
	check(1)
	for _, t := range solveCubic(2*a.Dot(a), 3*a.Dot(b), 2*a.Dot(c)+b.Dot(b), b.Dot(c)) {
		check(t)
	}
	return best
}
