package msdf

import "math"

// solveCubic solves a*x^3 + b*x^2 + c*x + d = 0.
// Returns real roots in [0, 1].
func solveCubic(a, b, c, d float64) []float64 {
	if math.Abs(a) < 1e-14 {
		return solveQuadratic(b, c, d)
	}
	return solveCubicCardano(a, b, c, d)
}

// solveCubicCardano uses Cardano's method on the normalized cubic.
func solveCubicCardano(a, b, c, d float64) []float64 {
	b /= a
	c /= a
	d /= a

	p := c - b*b/3
	q := d - b*c/3 + 2*b*b*b/27
	disc := q*q/4 + p*p*p/27

	switch {
	case disc > 1e-14:
		return oneRoot(q, disc, b)
	case disc < -1e-14:
		return threeRoots(p, q, b)
	default:
		return repeatedRoots(q, b)
	}
}

func oneRoot(q, disc, b float64) []float64 {
	s := math.Sqrt(disc)
	root := math.Cbrt(-q/2+s) + math.Cbrt(-q/2-s) - b/3
	return appendUnit(nil, root)
}

func threeRoots(p, q, b float64) []float64 {
	r := math.Sqrt(-p * p * p / 27)
	phi := math.Acos(clamp(-q/(2*r), -1, 1))
	m := 2 * math.Cbrt(r)

	roots := make([]float64, 0, 3)
	for k := 0; k < 3; k++ {
		roots = appendUnit(roots, m*math.Cos((phi+float64(2*k)*math.Pi)/3)-b/3)
	}
	return roots
}

func repeatedRoots(q, b float64) []float64 {
	u := math.Cbrt(-q / 2)
	r1 := 2*u - b/3
	r2 := -u - b/3

	roots := appendUnit(nil, r1)
	if math.Abs(r1-r2) > 1e-10 {
		roots = appendUnit(roots, r2)
	}
	return roots
}

// solveQuadratic solves a*x^2 + b*x + c = 0.
// Returns real roots in [0, 1].
func solveQuadratic(a, b, c float64) []float64 {
	if math.Abs(a) < 1e-14 {
		if math.Abs(b) < 1e-14 {
			return nil
		}
		return appendUnit(nil, -c/b)
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}
	s := math.Sqrt(disc)
	r1 := (-b + s) / (2 * a)
	r2 := (-b - s) / (2 * a)

	roots := appendUnit(nil, r1)
	if math.Abs(r1-r2) > 1e-10 {
		roots = appendUnit(roots, r2)
	}
	return roots
}

func appendUnit(roots []float64, r float64) []float64 {
	if r >= 0 && r <= 1 {
		return append(roots, r)
	}
	return roots
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
