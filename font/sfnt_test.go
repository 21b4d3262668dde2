package font

import (
	"errors"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/fontfusion/outline"
)

func goRegular(t *testing.T) *SFNT {
	t.Helper()
	f, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return f
}

// counter counts visitor events.
type counter struct {
	moves, lines, conics, cubics int
	minY, maxY                   float64
}

func (c *counter) track(p outline.Vec2) {
	c.minY = min(c.minY, p.Y)
	c.maxY = max(c.maxY, p.Y)
}

func (c *counter) MoveTo(p outline.Vec2) error { c.moves++; c.track(p); return nil }
func (c *counter) LineTo(p outline.Vec2) error { c.lines++; c.track(p); return nil }
func (c *counter) ConicTo(_, p outline.Vec2) error {
	c.conics++
	c.track(p)
	return nil
}
func (c *counter) CubicTo(_, _, p outline.Vec2) error {
	c.cubics++
	c.track(p)
	return nil
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte("not a font")); err == nil {
		t.Error("Parse accepted garbage")
	}
	if _, err := Open("testdata/does-not-exist.ttf"); err == nil {
		t.Error("Open accepted a missing file")
	}
}

func TestFaceMetrics(t *testing.T) {
	f := goRegular(t)
	if got := f.UnitsPerEm(); got != 2048 {
		t.Errorf("UnitsPerEm = %d, want 2048", got)
	}
	if f.Name() == "" {
		t.Error("Name is empty")
	}
	m := f.Metrics()
	if m.Ascender <= 0 || m.Descender >= 0 || m.Height < m.Ascender-m.Descender {
		t.Errorf("Metrics = %+v", m)
	}
}

func TestGlyphMetrics(t *testing.T) {
	f := goRegular(t)
	a, err := f.GlyphMetrics('A')
	if err != nil {
		t.Fatalf("GlyphMetrics: %v", err)
	}
	if a.Width <= 0 || a.Height <= 0 || a.Advance <= 0 {
		t.Errorf("A = %+v, want positive size and advance", a)
	}
	// A sits on the baseline.
	if a.BearingY != a.Height {
		t.Errorf("A bearingY = %v, height = %v", a.BearingY, a.Height)
	}
	if a.VerticalAdvance != f.Metrics().Height {
		t.Errorf("VerticalAdvance = %v, want line height %v", a.VerticalAdvance, f.Metrics().Height)
	}

	space, err := f.GlyphMetrics(' ')
	if err != nil {
		t.Fatalf("GlyphMetrics(' '): %v", err)
	}
	if space.Width != 0 || space.Advance <= 0 {
		t.Errorf("space = %+v, want no ink and a positive advance", space)
	}
}

func TestDecompose(t *testing.T) {
	f := goRegular(t)
	m, _ := f.GlyphMetrics('A')

	var c counter
	if err := f.Decompose('A', &c); err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if c.moves != 2 {
		t.Errorf("A has %d contours, want 2", c.moves)
	}
	if c.cubics != 0 {
		t.Errorf("TrueType outline produced %d cubics", c.cubics)
	}
	// y up: the apex is at the top bearing.
	if c.maxY != m.BearingY || c.minY != m.BearingY-m.Height {
		t.Errorf("y range [%v, %v], want [%v, %v]", c.minY, c.maxY, m.BearingY-m.Height, m.BearingY)
	}

	g, _, err := outline.Build(outline.SourceFunc(func(v outline.Visitor) error {
		return f.Decompose('O', v)
	}), 0)
	if err != nil {
		t.Fatalf("Build(O): %v", err)
	}
	if len(g.Contours) != 2 {
		t.Errorf("O has %d contours, want 2", len(g.Contours))
	}
	if g.Contours[0].Winding == g.Contours[1].Winding {
		t.Error("outer and inner contour of O share a winding")
	}
}

func TestDecomposeSpace(t *testing.T) {
	f := goRegular(t)
	var c counter
	if err := f.Decompose(' ', &c); err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if c.moves+c.lines+c.conics != 0 {
		t.Errorf("space produced events: %+v", c)
	}
}

func TestDecomposeVisitorError(t *testing.T) {
	f := goRegular(t)
	stop := errors.New("stop")
	err := f.Decompose('A', failing{stop})
	if !errors.Is(err, stop) {
		t.Errorf("err = %v, want visitor error", err)
	}
}

type failing struct{ err error }

func (f failing) MoveTo(outline.Vec2) error          { return f.err }
func (f failing) LineTo(outline.Vec2) error          { return f.err }
func (f failing) ConicTo(_, _ outline.Vec2) error    { return f.err }
func (f failing) CubicTo(_, _, _ outline.Vec2) error { return f.err }

func TestMissingRuneUsesNotdef(t *testing.T) {
	f := goRegular(t)
	got, err := f.GlyphMetrics('\U0010FFFD')
	if err != nil {
		t.Fatalf("GlyphMetrics: %v", err)
	}
	if got.Advance <= 0 {
		t.Errorf("notdef advance = %v", got.Advance)
	}
}

func TestKerning(t *testing.T) {
	f := goRegular(t)
	av := f.Kerning('A', 'V')
	if av > 0 {
		t.Errorf("Kerning(A, V) = %v, want tightening", av)
	}
	if again := f.Kerning('A', 'V'); again != av {
		t.Errorf("Kerning not stable: %v then %v", av, again)
	}
	if got := f.Kerning('a', ' '); got != 0 {
		t.Errorf("Kerning(a, space) = %v, want 0", got)
	}
}

func TestKerningCacheBounded(t *testing.T) {
	f := goRegular(t)
	for a := rune('a'); a <= 'z'; a++ {
		for b := rune('a'); b <= 'z'; b++ {
			f.Kerning(a, b)
		}
	}
	if n := f.kerns.Len(); n > kernCacheSize {
		t.Errorf("%d cached pairs, limit %d", n, kernCacheSize)
	}
	if f.kerns.Capacity() != kernCacheSize {
		t.Errorf("Capacity = %d, want %d", f.kerns.Capacity(), kernCacheSize)
	}
}
