package outline

import "fmt"

// SerializerScale converts font design units to curve evaluation space.
// Every emitted point is divided by it.
const SerializerScale = 64

// Winding flags stored per contour.
const (
	WindingNonPositive uint8 = 0
	WindingPositive    uint8 = 2
)

// MaxCount is the largest contour or segment count the byte layout can hold.
const MaxCount = 255

// SegmentKind distinguishes straight lines from quadratic curves.
type SegmentKind uint8

const (
	// Linear is a line segment with two points.
	Linear SegmentKind = iota

	// Quadratic is a quadratic Bezier with start, control and end points.
	Quadratic
)

// String returns the kind name.
func (k SegmentKind) String() string {
	switch k {
	case Linear:
		return "Linear"
	case Quadratic:
		return "Quadratic"
	default:
		return fmt.Sprintf("SegmentKind(%d)", uint8(k))
	}
}

// Segment is one piece of a contour.
type Segment struct {
	Kind  SegmentKind
	Color Color

	// P holds the start point, then the control point for quadratics, then
	// the end point. Unused trailing entries are zero.
	P [3]Vec2
}

// NumPoints returns 2 for lines and 3 for quadratics.
func (s Segment) NumPoints() int {
	if s.Kind == Quadratic {
		return 3
	}
	return 2
}

// Start returns the first point.
func (s Segment) Start() Vec2 { return s.P[0] }

// End returns the last point.
func (s Segment) End() Vec2 { return s.P[s.NumPoints()-1] }

// Point evaluates the segment at t in [0, 1].
func (s Segment) Point(t float64) Vec2 {
	if s.Kind == Linear {
		return s.P[0].Mix(s.P[1], t)
	}
	return s.P[0].Mix(s.P[1], t).Mix(s.P[1].Mix(s.P[2], t), t)
}

// Direction returns the tangent at t. For a quadratic whose control point
// coincides with an endpoint the chord direction is returned instead.
func (s Segment) Direction(t float64) Vec2 {
	if s.Kind == Linear {
		return s.P[1].Sub(s.P[0])
	}
	d := s.P[1].Sub(s.P[0]).Mix(s.P[2].Sub(s.P[1]), t)
	if d.X == 0 && d.Y == 0 {
		return s.P[2].Sub(s.P[0])
	}
	return d
}

// Contour is a closed loop of segments.
type Contour struct {
	Winding  uint8
	Segments []Segment
}

// windingSum samples the contour and sums shoelace terms. One- and
// two-segment contours are sampled inside their curves since their start
// points alone cannot enclose an area.
func windingSum(segs []Segment) float64 {
	var total float64
	switch len(segs) {
	case 0:
		return 0
	case 1:
		a, b, c := segs[0].Point(0), segs[0].Point(1.0/3), segs[0].Point(2.0/3)
		total = Shoelace(a, b) + Shoelace(b, c) + Shoelace(c, a)
	case 2:
		a, b := segs[0].Point(0), segs[0].Point(.5)
		c, d := segs[1].Point(0), segs[1].Point(.5)
		total = Shoelace(a, b) + Shoelace(b, c) + Shoelace(c, d) + Shoelace(d, a)
	default:
		prev := segs[len(segs)-1].Point(0)
		for _, s := range segs {
			cur := s.Point(0)
			total += Shoelace(prev, cur)
			prev = cur
		}
	}
	return total
}

// ContourWinding returns WindingPositive when the shoelace sum of segs is
// positive and WindingNonPositive otherwise.
func ContourWinding(segs []Segment) uint8 {
	if windingSum(segs) > 0 {
		return WindingPositive
	}
	return WindingNonPositive
}

// Glyph is a serialized outline.
type Glyph struct {
	Contours []Contour

	// Warnings collects recoverable problems found while serializing.
	Warnings []error
}

// Empty reports whether the glyph has no contours.
func (g *Glyph) Empty() bool {
	return len(g.Contours) == 0
}

// Layout returns the counts describing g.
func (g *Glyph) Layout() Layout {
	l := Layout{Segments: make([]int, len(g.Contours))}
	l.Contours = len(g.Contours)
	for i, c := range g.Contours {
		l.Segments[i] = len(c.Segments)
		for _, s := range c.Segments {
			l.Points += s.NumPoints()
		}
	}
	return l
}

// Orientation returns the factor that makes distances inside the glyph
// positive for rasterizers that sign distances by the side of the edge
// direction (negative on the right). It follows the winding flag of the
// contour enclosing the largest area: positive winding (clockwise, y-up)
// yields -1.
func (g *Glyph) Orientation() float64 {
	best, bestArea := -1, 0.0
	for i, c := range g.Contours {
		a := windingSum(c.Segments)
		if a < 0 {
			a = -a
		}
		if best < 0 || a > bestArea {
			best, bestArea = i, a
		}
	}
	if best >= 0 && g.Contours[best].Winding == WindingPositive {
		return -1
	}
	return 1
}

// Layout describes the sizes of a serialized glyph. It is produced by the
// first pass and used to allocate the second pass's output.
type Layout struct {
	Contours int
	Segments []int // per contour
	Points   int
}

// SegmentCount returns the total number of segments.
func (l Layout) SegmentCount() int {
	n := 0
	for _, s := range l.Segments {
		n += s
	}
	return n
}

// MetadataSize returns the metadata buffer size in bytes.
func (l Layout) MetadataSize() int {
	return 1 + 2*l.Contours + 2*l.SegmentCount()
}

// PointBufferSize returns the point buffer size in bytes.
func (l Layout) PointBufferSize() int {
	return 8 * l.Points
}
