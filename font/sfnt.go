package font

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/fontfusion/internal/lru"
	"github.com/gogpu/fontfusion/outline"
)

// kernCacheSize bounds the shaped kerning pairs kept per face.
const kernCacheSize = 4096

// SFNT is a Face backed by a TrueType or OpenType font. It is safe for
// concurrent use.
type SFNT struct {
	data []byte
	font *opentype.Font
	upem int
	// ppem is one pixel per font unit, so 26.6 values divided by 64 are
	// font units.
	ppem fixed.Int26_6

	mu  sync.Mutex
	buf sfnt.Buffer

	shapeOnce sync.Once
	shapeFace *gtfont.Face
	shaper    shaping.HarfbuzzShaper
	kerns     *lru.Cache[[2]rune, float64]
}

var _ Face = (*SFNT)(nil)

// Parse parses a font file.
func Parse(data []byte) (*SFNT, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("font: parse: %w", err)
	}
	upem := int(f.UnitsPerEm())
	if upem <= 0 {
		return nil, errors.New("font: parse: invalid units per em")
	}
	return &SFNT{
		data:  data,
		font:  f,
		upem:  upem,
		ppem:  fixed.I(upem),
		kerns: lru.New[[2]rune, float64](kernCacheSize),
	}, nil
}

// Open reads and parses the font file at path.
func Open(path string) (*SFNT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("font: %w", err)
	}
	return Parse(data)
}

func toUnits(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// glyph resolves r under s.mu. Unmapped runes yield glyph 0.
func (s *SFNT) glyph(r rune) sfnt.GlyphIndex {
	idx, err := s.font.GlyphIndex(&s.buf, r)
	if err != nil {
		return 0
	}
	return idx
}

// UnitsPerEm implements Face.
func (s *SFNT) UnitsPerEm() int { return s.upem }

// Name implements Face.
func (s *SFNT) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, err := s.font.Name(&s.buf, sfnt.NameIDFamily)
	if err != nil {
		return ""
	}
	return name
}

// NumGlyphs returns the number of glyphs in the font.
func (s *SFNT) NumGlyphs() int { return s.font.NumGlyphs() }

// Metrics implements Face.
func (s *SFNT) Metrics() FaceMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.font.Metrics(&s.buf, s.ppem, xfont.HintingNone)
	if err != nil {
		return FaceMetrics{}
	}
	return FaceMetrics{
		Ascender:  toUnits(m.Ascent),
		Descender: -toUnits(m.Descent),
		Height:    toUnits(m.Height),
	}
}

// GlyphMetrics implements Face.
func (s *SFNT) GlyphMetrics(r rune) (GlyphMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.glyph(r)
	bounds, adv, err := s.font.GlyphBounds(&s.buf, idx, s.ppem, xfont.HintingNone)
	if err != nil {
		return GlyphMetrics{}, fmt.Errorf("font: glyph %U bounds: %w", r, err)
	}
	m, err := s.font.Metrics(&s.buf, s.ppem, xfont.HintingNone)
	if err != nil {
		return GlyphMetrics{}, fmt.Errorf("font: metrics: %w", err)
	}
	// sfnt bounds are y down.
	return GlyphMetrics{
		Width:           toUnits(bounds.Max.X - bounds.Min.X),
		Height:          toUnits(bounds.Max.Y - bounds.Min.Y),
		BearingX:        toUnits(bounds.Min.X),
		BearingY:        -toUnits(bounds.Min.Y),
		Advance:         toUnits(adv),
		VerticalAdvance: toUnits(m.Height),
	}, nil
}

// Decompose implements Face. Points are flipped to y up.
func (s *SFNT) Decompose(r rune, v outline.Visitor) error {
	s.mu.Lock()
	idx := s.glyph(r)
	segs, err := s.font.LoadGlyph(&s.buf, idx, s.ppem, nil)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("font: load glyph %U: %w", r, err)
	}
	// segs aliases s.buf; copy before releasing the lock.
	segs = append(sfnt.Segments(nil), segs...)
	s.mu.Unlock()

	pt := func(p fixed.Point26_6) outline.Vec2 {
		return outline.Vec2{X: toUnits(p.X), Y: -toUnits(p.Y)}
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			err = v.MoveTo(pt(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			err = v.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			err = v.ConicTo(pt(seg.Args[0]), pt(seg.Args[1]))
		case sfnt.SegmentOpCubeTo:
			err = v.CubicTo(pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2]))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Kerning implements Face. The kern table is consulted first; fonts that
// kern through GPOS instead are shaped pairwise with HarfBuzz and the
// difference to the plain advance is returned. Shaped results are cached.
func (s *SFNT) Kerning(a, b rune) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ga, gb := s.glyph(a), s.glyph(b)
	k, err := s.font.Kern(&s.buf, ga, gb, s.ppem, xfont.HintingNone)
	if err == nil && k != 0 {
		return toUnits(k)
	}
	if v, ok := s.kerns.Get([2]rune{a, b}); ok {
		return v
	}
	v := s.shapedKerning(a, b, ga)
	s.kerns.Put([2]rune{a, b}, v)
	return v
}

// shapedKerning runs under s.mu.
func (s *SFNT) shapedKerning(a, b rune, ga sfnt.GlyphIndex) float64 {
	s.shapeOnce.Do(func() {
		f, err := gtfont.ParseTTF(bytes.NewReader(s.data))
		if err == nil {
			s.shapeFace = f
		}
	})
	if s.shapeFace == nil {
		return 0
	}

	out := s.shaper.Shape(shaping.Input{
		Text:      []rune{a, b},
		RunStart:  0,
		RunEnd:    2,
		Direction: di.DirectionLTR,
		Face:      s.shapeFace,
		Size:      s.ppem,
		Script:    language.LookupScript(a),
		Language:  language.NewLanguage("en"),
	})
	if len(out.Glyphs) != 2 {
		// Ligature or unshapeable pair.
		return 0
	}
	adv, err := s.font.GlyphAdvance(&s.buf, ga, s.ppem, xfont.HintingNone)
	if err != nil {
		return 0
	}
	return toUnits(out.Glyphs[0].Advance - adv)
}
