package msdf

import (
	"fmt"
	"image"
	"math"
	"runtime"
	"sync"

	"github.com/gogpu/fontfusion/outline"
)

// Params places a glyph inside its atlas box.
type Params struct {
	// Width and Height of the box in pixels.
	Width, Height int

	// Translate moves outline coordinates so the glyph, padded by half the
	// range on each side, starts at the origin.
	Translate outline.Vec2

	// Scale converts outline units to pixels.
	Scale float64

	// Range is the width of the distance ramp in pixels.
	Range float64

	// Orientation is +1 or -1; see [outline.Glyph.Orientation].
	Orientation float64
}

func (p Params) validate() error {
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("%w: box %dx%d", ErrBadParams, p.Width, p.Height)
	case !(p.Scale > 0):
		return fmt.Errorf("%w: scale %v", ErrBadParams, p.Scale)
	case !(p.Range > 0):
		return fmt.Errorf("%w: range %v", ErrBadParams, p.Range)
	case p.Orientation != 1 && p.Orientation != -1:
		return fmt.Errorf("%w: orientation %v", ErrBadParams, p.Orientation)
	}
	return nil
}

// ShapePoint maps the center of pixel (x, y) of the box, y down, to outline
// space, y up.
func (p Params) ShapePoint(x, y int) outline.Vec2 {
	return outline.Vec2{
		X: (float64(x)+.5)/p.Scale - p.Translate.X,
		Y: (float64(p.Height-y)-.5)/p.Scale - p.Translate.Y,
	}
}

// Generator renders distance fields with a fixed number of row workers.
// It is safe for concurrent use.
type Generator struct {
	workers int
}

// NewGenerator returns a generator using workers goroutines per glyph.
// Zero or negative means GOMAXPROCS.
func NewGenerator(workers int) *Generator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Generator{workers: workers}
}

// Workers returns the number of row workers.
func (g *Generator) Workers() int { return g.workers }

// Generate writes the field of glyph into the box of dst at origin. Alpha
// is set to 255. An empty glyph yields a box that is entirely outside.
func (g *Generator) Generate(dst *image.RGBA, origin image.Point, glyph *outline.Glyph, p Params) error {
	if err := p.validate(); err != nil {
		return err
	}
	box := image.Rect(origin.X, origin.Y, origin.X+p.Width, origin.Y+p.Height)
	if !box.In(dst.Rect) {
		return fmt.Errorf("%w: %v not in %v", ErrOutOfBounds, box, dst.Rect)
	}

	if glyph == nil || glyph.Empty() {
		for y := box.Min.Y; y < box.Max.Y; y++ {
			for x := box.Min.X; x < box.Max.X; x++ {
				i := dst.PixOffset(x, y)
				copy(dst.Pix[i:i+4], []byte{0, 0, 0, 255})
			}
		}
		return nil
	}

	rows := (p.Height + g.workers - 1) / g.workers
	var wg sync.WaitGroup
	for start := 0; start < p.Height; start += rows {
		end := min(start+rows, p.Height)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			processRows(dst, origin, glyph, p, start, end)
		}(start, end)
	}
	wg.Wait()
	return nil
}

func processRows(dst *image.RGBA, origin image.Point, glyph *outline.Glyph, p Params, start, end int) {
	for y := start; y < end; y++ {
		for x := 0; x < p.Width; x++ {
			r, g, b := Sample(glyph, p.ShapePoint(x, y))
			i := dst.PixOffset(origin.X+x, origin.Y+y)
			dst.Pix[i+0] = p.encode(r)
			dst.Pix[i+1] = p.encode(g)
			dst.Pix[i+2] = p.encode(b)
			dst.Pix[i+3] = 255
		}
	}
}

func (p Params) encode(d SignedDistance) byte {
	v := clamp(.5+d.Distance*p.Scale*p.Orientation/p.Range, 0, 1)
	return byte(math.Round(v * 255))
}

// Sample returns the per-channel distances from pt to glyph in outline
// units, signed by edge direction. A channel no edge contributes to falls
// back to the nearest edge of any color.
func Sample(glyph *outline.Glyph, pt outline.Vec2) (r, g, b SignedDistance) {
	r, g, b = Infinite(), Infinite(), Infinite()
	all := Infinite()
	for _, c := range glyph.Contours {
		for _, s := range c.Segments {
			d := Distance(s, pt)
			all = all.Combine(d)
			if s.Color.Has(outline.Red) {
				r = r.Combine(d)
			}
			if s.Color.Has(outline.Green) {
				g = g.Combine(d)
			}
			if s.Color.Has(outline.Blue) {
				b = b.Combine(d)
			}
		}
	}
	if r.Distance == math.MaxFloat64 {
		r = all
	}
	if g.Distance == math.MaxFloat64 {
		g = all
	}
	if b.Distance == math.MaxFloat64 {
		b = all
	}
	return r, g, b
}

// Median returns the median of three channel values.
func Median(a, b, c byte) byte {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		b = a
	}
	return b
}
