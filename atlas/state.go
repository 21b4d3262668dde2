package atlas

import "fmt"

// Size is a glyph box in atlas pixels.
type Size struct {
	W, H int
}

// Rect is a placed glyph box.
type Rect struct {
	X, Y, W, H int
}

// State is the packing and capacity state of one atlas.
type State struct {
	Packer Packer

	Height    int // texture height
	Glyphs    int // nglyphs
	Allocated int // index capacity, nallocated
}

// NewState returns the state of an empty atlas.
func NewState(width, height, padding, capacity int) State {
	return State{
		Packer:    NewPacker(width, padding),
		Height:    height,
		Allocated: capacity,
	}
}

// Width returns the texture width.
func (s *State) Width() int {
	return s.Packer.Width
}

// Plan is the outcome of packing a batch against a State.
type Plan struct {
	Rects []Rect

	Height    int // texture height after the batch
	Allocated int // index capacity after the batch

	first  int // Glyphs before the batch
	packer Packer
}

// GrowTexture reports whether the texture must be reallocated.
func (p *Plan) GrowTexture(s *State) bool {
	return p.Height != s.Height
}

// GrowIndex reports whether the index buffer must be reallocated.
func (p *Plan) GrowIndex(s *State) bool {
	return p.Allocated != s.Allocated
}

// First returns the index of the batch's first glyph.
func (p *Plan) First() int {
	return p.first
}

// Plan packs sizes on a copy of the state. The texture height doubles while
// a rectangle's bottom edge exceeds it and the index capacity doubles while
// it cannot hold every glyph. maxTexture bounds the height; exceeding it
// returns a *TextureTooLargeError. s is never modified.
func (s *State) Plan(sizes []Size, maxTexture int) (Plan, error) {
	p := Plan{
		Rects:     make([]Rect, 0, len(sizes)),
		Height:    s.Height,
		Allocated: s.Allocated,
		first:     s.Glyphs,
		packer:    s.Packer,
	}
	for _, sz := range sizes {
		if sz.W <= 0 || sz.H <= 0 {
			return Plan{}, fmt.Errorf("%w: %dx%d", ErrBadSize, sz.W, sz.H)
		}
		if !p.packer.Fits(sz.W) {
			return Plan{}, fmt.Errorf("%w: %d > %d", ErrGlyphTooWide, sz.W, s.Width()-1)
		}
		x, y := p.packer.Place(sz.W, sz.H)
		for y+sz.H > p.Height {
			p.Height *= 2
		}
		if maxTexture > 0 && p.Height > maxTexture {
			return Plan{}, &TextureTooLargeError{Height: p.Height, Max: maxTexture}
		}
		p.Rects = append(p.Rects, Rect{X: x, Y: y, W: sz.W, H: sz.H})
	}
	for s.Glyphs+len(sizes) > p.Allocated {
		p.Allocated *= 2
	}
	return p, nil
}

// Commit applies a plan produced by s.Plan.
func (s *State) Commit(p Plan) {
	s.Packer = p.packer
	s.Height = p.Height
	s.Allocated = p.Allocated
	s.Glyphs = p.first + len(p.Rects)
}
