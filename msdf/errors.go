package msdf

import "errors"

var (
	// ErrBadParams is returned when generation parameters are invalid.
	ErrBadParams = errors.New("msdf: invalid parameters")

	// ErrOutOfBounds is returned when the target box does not fit the image.
	ErrOutOfBounds = errors.New("msdf: box outside destination image")
)
