// Package font supplies glyph outlines and metrics to the atlas builder.
//
// All quantities are unscaled font units with y up. Outlines are handed to
// an [outline.Visitor] as move, line, conic and cubic events.
package font

import "github.com/gogpu/fontfusion/outline"

// FaceMetrics are per-face vertical metrics. Descender is negative below
// the baseline.
type FaceMetrics struct {
	Ascender  float64
	Descender float64
	Height    float64
}

// GlyphMetrics describe one glyph. BearingX is the left edge of the ink and
// BearingY its top, both relative to the pen on the baseline.
type GlyphMetrics struct {
	Width, Height   float64
	BearingX        float64
	BearingY        float64
	Advance         float64
	VerticalAdvance float64
}

// Face is an outline source. Runes the face does not map resolve to its
// missing glyph.
type Face interface {
	UnitsPerEm() int
	Metrics() FaceMetrics
	GlyphMetrics(r rune) (GlyphMetrics, error)
	Decompose(r rune, v outline.Visitor) error
	// Kerning returns the pair adjustment between a and b, zero if none.
	Kerning(a, b rune) float64
	Name() string
}
