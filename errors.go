package fontfusion

import (
	"errors"

	"github.com/gogpu/fontfusion/atlas"
)

var (
	// ErrUnknownHandle is returned for handles that were never issued or
	// were unloaded.
	ErrUnknownHandle = errors.New("fontfusion: unknown font handle")

	// ErrUnknownGlyph is returned when an instance references an index slot
	// that holds no glyph.
	ErrUnknownGlyph = errors.New("fontfusion: glyph not generated")

	// ErrClosed is returned after Destroy.
	ErrClosed = errors.New("fontfusion: font system closed")

	// ErrNilDevice is returned by New without a device.
	ErrNilDevice = errors.New("fontfusion: nil device")

	// ErrNilFace is returned by Register without a face.
	ErrNilFace = errors.New("fontfusion: nil face")

	// ErrTextureTooLarge is returned when an atlas would outgrow the
	// device. The atlas is left as it was.
	ErrTextureTooLarge = atlas.ErrTextureTooLarge
)

// ConfigError describes an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "fontfusion: invalid config." + e.Field + ": " + e.Reason
}
