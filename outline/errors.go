package outline

import "errors"

var (
	// ErrCubicSegment is returned when a source emits a cubic Bezier segment.
	ErrCubicSegment = errors.New("outline: cubic segments are not supported")

	// ErrOutlineTooComplex is returned when a glyph has more contours, or a
	// contour more segments, than the metadata byte layout can address.
	ErrOutlineTooComplex = errors.New("outline: too many contours or segments")

	// ErrUnsupportedShape is reported as a warning for single-corner contours
	// with fewer than three segments. Such contours are colored white.
	ErrUnsupportedShape = errors.New("outline: unsupported single-corner contour")

	// ErrLayoutMismatch is returned when the second pass emits a different
	// outline than the first pass measured.
	ErrLayoutMismatch = errors.New("outline: emitted outline does not match layout")

	// ErrBufferSize is returned when an encode or decode buffer is too small.
	ErrBufferSize = errors.New("outline: buffer too small")

	// ErrMalformed is returned by Decode for inconsistent metadata.
	ErrMalformed = errors.New("outline: malformed metadata")
)
