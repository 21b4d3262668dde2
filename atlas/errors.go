package atlas

import (
	"errors"
	"fmt"
)

var (
	// ErrTextureTooLarge matches *TextureTooLargeError.
	ErrTextureTooLarge = errors.New("atlas: texture exceeds maximum size")

	// ErrGlyphTooWide is returned for a glyph box wider than the atlas.
	ErrGlyphTooWide = errors.New("atlas: glyph wider than atlas")

	// ErrBadSize is returned for non-positive glyph boxes.
	ErrBadSize = errors.New("atlas: glyph size must be positive")
)

// TextureTooLargeError is returned when growth would exceed the device's
// maximum texture size.
type TextureTooLargeError struct {
	Height int // height required by the batch
	Max    int
}

func (e *TextureTooLargeError) Error() string {
	return fmt.Sprintf("atlas: texture height %d exceeds maximum %d", e.Height, e.Max)
}

// Is reports whether target is ErrTextureTooLarge.
func (e *TextureTooLargeError) Is(target error) bool {
	return target == ErrTextureTooLarge
}
