package outline

import (
	"fmt"
	"math"
)

// CornerAngle is the angle, in radians, whose sine is the cross product
// threshold above which two adjacent segment directions form a corner.
const CornerAngle = 3.0

var cornerThreshold = math.Sin(CornerAngle)

// Visitor receives outline events in font design units. A contour starts
// with MoveTo and is closed implicitly.
type Visitor interface {
	MoveTo(p Vec2) error
	LineTo(p Vec2) error
	ConicTo(c, p Vec2) error
	CubicTo(c1, c2, p Vec2) error
}

// Source produces outline events for one glyph.
type Source interface {
	Decompose(v Visitor) error
}

// SourceFunc adapts a function to Source.
type SourceFunc func(v Visitor) error

// Decompose calls f(v).
func (f SourceFunc) Decompose(v Visitor) error { return f(v) }

// sink receives segments that survived degenerate elision.
type sink interface {
	beginContour()
	segment(kind SegmentKind, p [3]Vec2)
	endContour() error
}

// walker turns visitor events into segments. Both passes share it so that
// elision is applied identically.
type walker struct {
	out   sink
	start Vec2
	cur   Vec2
	open  bool
}

func (w *walker) MoveTo(p Vec2) error {
	if err := w.finish(); err != nil {
		return err
	}
	w.start, w.cur, w.open = p, p, true
	w.out.beginContour()
	return nil
}

func (w *walker) LineTo(p Vec2) error {
	w.ensureOpen()
	if p == w.cur {
		return nil
	}
	w.out.segment(Linear, [3]Vec2{w.cur, p})
	w.cur = p
	return nil
}

func (w *walker) ConicTo(c, p Vec2) error {
	w.ensureOpen()
	if c == w.cur || c == p {
		return w.LineTo(p)
	}
	w.out.segment(Quadratic, [3]Vec2{w.cur, c, p})
	w.cur = p
	return nil
}

func (w *walker) CubicTo(_, _, _ Vec2) error {
	return ErrCubicSegment
}

func (w *walker) ensureOpen() {
	if !w.open {
		w.start, w.open = w.cur, true
		w.out.beginContour()
	}
}

// finish closes the open contour with a line back to its start.
func (w *walker) finish() error {
	if !w.open {
		return nil
	}
	if err := w.LineTo(w.start); err != nil {
		return err
	}
	w.open = false
	return w.out.endContour()
}

func walk(src Source, out sink) error {
	w := &walker{out: out}
	if err := src.Decompose(w); err != nil {
		return err
	}
	return w.finish()
}

// counter is the first-pass sink.
type counter struct {
	layout Layout
	nseg   int
	npts   int
}

func (c *counter) beginContour() {
	c.nseg, c.npts = 0, 0
}

func (c *counter) segment(kind SegmentKind, _ [3]Vec2) {
	c.nseg++
	if kind == Quadratic {
		c.npts += 3
	} else {
		c.npts += 2
	}
}

func (c *counter) endContour() error {
	if c.nseg == 0 {
		return nil
	}
	if c.nseg > MaxCount || c.layout.Contours == MaxCount {
		return ErrOutlineTooComplex
	}
	c.layout.Contours++
	c.layout.Segments = append(c.layout.Segments, c.nseg)
	c.layout.Points += c.npts
	return nil
}

// Measure walks src once and returns the sizes of its serialized form.
// Nothing is emitted.
func Measure(src Source) (Layout, error) {
	c := &counter{}
	if err := walk(src, c); err != nil {
		return Layout{}, err
	}
	return c.layout, nil
}

// emitter is the second-pass sink. Its arrays are sized from the layout.
type emitter struct {
	layout Layout
	glyph  *Glyph
	seed   uint64
	cur    []Segment
	err    error
}

func (e *emitter) beginContour() {
	i := len(e.glyph.Contours)
	n := 0
	if i < len(e.layout.Segments) {
		n = e.layout.Segments[i]
	}
	e.cur = make([]Segment, 0, n)
}

func (e *emitter) segment(kind SegmentKind, p [3]Vec2) {
	s := Segment{Kind: kind, Color: White}
	for i := range p {
		s.P[i] = p[i].Scale(1.0 / SerializerScale)
	}
	e.cur = append(e.cur, s)
}

func (e *emitter) endContour() error {
	if len(e.cur) == 0 {
		return nil
	}
	i := len(e.glyph.Contours)
	if i >= e.layout.Contours || len(e.cur) != e.layout.Segments[i] {
		return ErrLayoutMismatch
	}
	c := Contour{Winding: ContourWinding(e.cur), Segments: e.cur}
	if err := colorEdges(c.Segments, &e.seed); err != nil {
		e.glyph.Warnings = append(e.glyph.Warnings, fmt.Errorf("contour %d: %w", i, err))
	}
	e.glyph.Contours = append(e.glyph.Contours, c)
	e.cur = nil
	return nil
}

// Serialize walks src a second time and emits typed contours sized by
// layout. seed initializes the edge coloring state; the same source, layout
// and seed always produce the same glyph.
func Serialize(src Source, layout Layout, seed uint64) (*Glyph, error) {
	e := &emitter{
		layout: layout,
		glyph:  &Glyph{Contours: make([]Contour, 0, layout.Contours)},
		seed:   seed,
	}
	if err := walk(src, e); err != nil {
		return nil, err
	}
	if len(e.glyph.Contours) != layout.Contours {
		return nil, ErrLayoutMismatch
	}
	if got := e.glyph.Layout(); got.Points != layout.Points {
		return nil, ErrLayoutMismatch
	}
	return e.glyph, nil
}

// Build runs both passes over src.
func Build(src Source, seed uint64) (*Glyph, Layout, error) {
	layout, err := Measure(src)
	if err != nil {
		return nil, Layout{}, err
	}
	g, err := Serialize(src, layout, seed)
	if err != nil {
		return nil, Layout{}, err
	}
	return g, layout, nil
}

func isCorner(a, b Vec2) bool {
	return a.Dot(b) <= 0 || math.Abs(a.Cross(b)) > cornerThreshold
}

// colorEdges assigns channel sets to the segments of one contour so that
// segments meeting at a corner never share a channel.
func colorEdges(segs []Segment, seed *uint64) error {
	m := len(segs)
	if m == 0 {
		return nil
	}
	var corners []int
	prev := segs[m-1].Direction(1)
	for i, s := range segs {
		if isCorner(prev.Normalize(), s.Direction(0).Normalize()) {
			corners = append(corners, i)
		}
		prev = s.Direction(1)
	}

	switch len(corners) {
	case 0:
		for i := range segs {
			segs[i].Color = White
		}
	case 1:
		if m < 3 {
			for i := range segs {
				segs[i].Color = White
			}
			return ErrUnsupportedShape
		}
		// Teardrop: split the contour into three splines.
		colors := [3]Color{White, White, Black}
		SwitchColor(&colors[0], seed, Black)
		colors[2] = colors[0]
		SwitchColor(&colors[2], seed, Black)
		corner := corners[0]
		for i := 0; i < m; i++ {
			k := int(3+2.875*float64(i)/float64(m-1)-1.4375+.5) - 2
			segs[(corner+i)%m].Color = colors[k]
		}
	default:
		spline := 0
		start := corners[0]
		color := White
		SwitchColor(&color, seed, Black)
		initial := color
		for i := 0; i < m; i++ {
			index := (start + i) % m
			if spline+1 < len(corners) && corners[spline+1] == index {
				spline++
				banned := Black
				if spline == len(corners)-1 {
					banned = initial
				}
				SwitchColor(&color, seed, banned)
			}
			segs[index].Color = color
		}
	}
	return nil
}
