package atlas

// Packer places rectangles left to right in rows ("shelves").
//
// The order of operations is fixed: first test whether the rectangle
// overflows the row, and if so start a new row below the previous row's
// accumulated height with X reset to 1; then place; then advance X and
// raise the row height. A tall rectangle therefore only affects the rows
// after the one it lands in.
type Packer struct {
	Width   int // texture width
	Padding int // gap between rectangles and rows

	X, Y      int // cursor
	RowHeight int // tallest rectangle in the current row
}

// NewPacker returns a packer with its cursor at the origin.
func NewPacker(width, padding int) Packer {
	return Packer{Width: width, Padding: padding}
}

// Place returns the position of a w x h rectangle and advances the cursor.
func (p *Packer) Place(w, h int) (x, y int) {
	if p.X+w > p.Width {
		p.Y += p.RowHeight + p.Padding
		p.X = 1
		p.RowHeight = 0
	}
	x, y = p.X, p.Y
	p.X += w + p.Padding
	if h > p.RowHeight {
		p.RowHeight = h
	}
	return x, y
}

// Fits reports whether a rectangle of width w can ever be placed.
func (p *Packer) Fits(w int) bool {
	return w > 0 && 1+w <= p.Width
}
