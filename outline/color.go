package outline

// Color is the set of distance field channels an edge contributes to.
// Adjacent edges meeting at a corner never share a channel.
type Color uint8

const (
	// Black contributes to no channel.
	Black Color = 0

	// Red contributes to the red channel.
	Red Color = 1

	// Green contributes to the green channel.
	Green Color = 2

	// Blue contributes to the blue channel.
	Blue Color = 4

	// Yellow combines red and green.
	Yellow = Red | Green

	// Magenta combines red and blue.
	Magenta = Red | Blue

	// Cyan combines green and blue.
	Cyan = Green | Blue

	// White contributes to every channel.
	White = Red | Green | Blue
)

// String returns the color name.
func (c Color) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	case Green:
		return "Green"
	case Yellow:
		return "Yellow"
	case Blue:
		return "Blue"
	case Magenta:
		return "Magenta"
	case Cyan:
		return "Cyan"
	case White:
		return "White"
	default:
		return "Invalid"
	}
}

// Combine returns the union of both channel sets.
func (c Color) Combine(o Color) Color {
	return (c | o) & White
}

// Intersect returns the channels present in both sets.
func (c Color) Intersect(o Color) Color {
	return c & o & White
}

// Complement returns the channels missing from c.
func (c Color) Complement() Color {
	return c ^ White
}

// Has reports whether every channel of ch is present in c.
func (c Color) Has(ch Color) bool {
	return c&ch == ch
}

// isSingleChannel reports whether c is exactly one of red, green or blue.
func (c Color) isSingleChannel() bool {
	return c == Red || c == Green || c == Blue
}

var switchStart = [3]Color{Cyan, Magenta, Yellow}

// SwitchColor advances color to the next edge color, consuming entropy from
// seed. The result never shares a channel with banned when banned and the
// current color overlap in exactly one channel.
//
// The transition is deterministic: the same color, seed and banned set always
// produce the same output.
func SwitchColor(color *Color, seed *uint64, banned Color) {
	combined := color.Intersect(banned)
	if combined.isSingleChannel() {
		*color = combined.Complement()
		return
	}
	if *color == Black || *color == White {
		*color = switchStart[*seed%3]
		*seed /= 3
		return
	}
	shifted := uint(*color) << (1 + (*seed & 1))
	*color = Color(shifted|shifted>>3) & White
	*seed >>= 1
}
