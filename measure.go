package fontfusion

import (
	"golang.org/x/text/unicode/norm"
)

// Extent is the size of a measured run in pixels.
type Extent struct {
	Width, Height float64
}

// pixelsPerUnit converts font units to pixels at size points.
func (p *pack) pixelsPerUnit(size float64) float64 {
	return size * p.cfg.DPI / 72 / p.upem
}

// advance returns the advances of r in font units, generating it first if
// needed. Skipped codepoints fall back to the face metrics.
func (p *pack) advance(r rune) [2]float64 {
	if e, ok := p.glyphs.Get(uint32(r)); ok {
		return e.Advance
	}
	m, err := p.face.GlyphMetrics(r)
	if err != nil {
		return [2]float64{}
	}
	return [2]float64{m.Advance, m.VerticalAdvance}
}

// Measure returns the extent of codepoints set at size points: the sum of
// the horizontal advances, plus pair kerning when kerning is set, by the
// largest vertical advance. Missing glyphs are generated first.
func (s *FontSystem) Measure(h Handle, codepoints []rune, size float64, kerning bool) (Extent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.pack(h)
	if err != nil {
		return Extent{}, err
	}
	if _, err := p.request(s.dev, s.logger(), codepoints); err != nil {
		return Extent{}, err
	}

	var w, hgt float64
	for i, r := range codepoints {
		adv := p.advance(r)
		w += adv[0]
		hgt = max(hgt, adv[1])
		if kerning && i > 0 {
			w += p.face.Kerning(codepoints[i-1], r)
		}
	}
	k := p.pixelsPerUnit(size)
	return Extent{Width: w * k, Height: hgt * k}, nil
}

// MeasureString measures s after NFC normalization.
func (s *FontSystem) MeasureString(h Handle, str string, size float64, kerning bool) (Extent, error) {
	return s.Measure(h, []rune(norm.NFC.String(str)), size, kerning)
}
