package fontfusion

import (
	"fmt"
	"testing"

	"github.com/gogpu/fontfusion/font"
	"github.com/gogpu/fontfusion/gpu/soft"
	"github.com/gogpu/fontfusion/outline"
)

// Special runes of boxFace.
const (
	cubicRune = 'Ç' // outline with a cubic segment
	wideRune  = 'W' // wider than any test atlas
	spaceRune = ' ' // no outline
	badRune   = '!' // metrics fail
)

// boxFace is a synthetic face: every rune is a square of size font units
// sitting on the baseline.
type boxFace struct {
	size    float64
	advance float64
	kerns   map[[2]rune]float64
}

func newBoxFace() *boxFace {
	return &boxFace{size: 640, advance: 700, kerns: map[[2]rune]float64{{'A', 'V'}: -100}}
}

var _ font.Face = (*boxFace)(nil)

func (f *boxFace) UnitsPerEm() int { return 1000 }
func (f *boxFace) Name() string    { return "box" }

func (f *boxFace) Metrics() font.FaceMetrics {
	return font.FaceMetrics{Ascender: 800, Descender: -200, Height: 1200}
}

func (f *boxFace) side(r rune) float64 {
	if r == wideRune {
		return 64 * 1000
	}
	return f.size
}

func (f *boxFace) GlyphMetrics(r rune) (font.GlyphMetrics, error) {
	if r == badRune {
		return font.GlyphMetrics{}, fmt.Errorf("no metrics for %q", r)
	}
	s := f.side(r)
	if r == spaceRune {
		s = 0
	}
	return font.GlyphMetrics{
		Width: s, Height: s, BearingY: s,
		Advance: f.advance, VerticalAdvance: 1200,
	}, nil
}

func (f *boxFace) Decompose(r rune, v outline.Visitor) error {
	if r == spaceRune {
		return nil
	}
	s := f.side(r)
	if err := v.MoveTo(outline.Vec2{}); err != nil {
		return err
	}
	if r == cubicRune {
		return v.CubicTo(outline.Vec2{X: s}, outline.Vec2{X: s, Y: s}, outline.Vec2{Y: s})
	}
	for _, p := range []outline.Vec2{{X: s}, {X: s, Y: s}, {Y: s}} {
		if err := v.LineTo(p); err != nil {
			return err
		}
	}
	return nil
}

func (f *boxFace) Kerning(a, b rune) float64 { return f.kerns[[2]rune{a, b}] }

// newTestSystem creates a system on a fresh soft device and registers face
// without preloading.
func newTestSystem(t *testing.T, face font.Face, opts ...Option) (*FontSystem, Handle) {
	t.Helper()
	fs, err := New(soft.New(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = fs.Destroy() })
	h, err := fs.Register(face, WithPreload(false))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return fs, h
}

func softDevice(t *testing.T, fs *FontSystem) *soft.Device {
	t.Helper()
	d, ok := fs.Device().(*soft.Device)
	if !ok {
		t.Fatalf("device is %T, want *soft.Device", fs.Device())
	}
	return d
}

func mustFont(t *testing.T, fs *FontSystem, h Handle) *Font {
	t.Helper()
	f, ok := fs.Get(h)
	if !ok {
		t.Fatalf("Get(%d) failed", h)
	}
	return f
}
