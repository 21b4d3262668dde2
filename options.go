package fontfusion

import "log/slog"

// Config holds per-font generation parameters.
type Config struct {
	// Scale converts serialized outline units (font units / 64) to atlas
	// pixels.
	Scale float64

	// Range is the width of the distance ramp in atlas pixels. Glyph boxes
	// carry half of it as margin on each side.
	Range float64

	// DPI converts point sizes to pixels when measuring and drawing.
	DPI float64

	// Padding is the gap between glyph boxes in atlas pixels.
	Padding int

	// AtlasWidth is fixed for the life of the font. AtlasHeight is the
	// initial height and doubles as glyphs are added.
	AtlasWidth  int
	AtlasHeight int

	// IndexCapacity is the initial number of index entries. It doubles as
	// glyphs are added.
	IndexCapacity int

	// Seed starts edge coloring for every glyph.
	Seed uint64

	// MaxTextureSize bounds the atlas height. Zero uses the device limit.
	MaxTextureSize int

	// Preload generates codepoints 0 to 254 at registration.
	Preload bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Scale:         2,
		Range:         4,
		DPI:           96,
		Padding:       2,
		AtlasWidth:    1024,
		AtlasHeight:   512,
		IndexCapacity: 256,
		Preload:       true,
	}
}

// Validate checks c and returns a *ConfigError for the first bad field.
func (c *Config) Validate() error {
	switch {
	case !(c.Scale > 0):
		return &ConfigError{Field: "Scale", Reason: "must be positive"}
	case !(c.Range > 0):
		return &ConfigError{Field: "Range", Reason: "must be positive"}
	case !(c.DPI > 0):
		return &ConfigError{Field: "DPI", Reason: "must be positive"}
	case c.Padding < 0:
		return &ConfigError{Field: "Padding", Reason: "must not be negative"}
	case c.AtlasWidth < 2:
		return &ConfigError{Field: "AtlasWidth", Reason: "must be at least 2"}
	case c.AtlasHeight < 1:
		return &ConfigError{Field: "AtlasHeight", Reason: "must be positive"}
	case c.IndexCapacity < 1:
		return &ConfigError{Field: "IndexCapacity", Reason: "must be positive"}
	case c.MaxTextureSize < 0:
		return &ConfigError{Field: "MaxTextureSize", Reason: "must not be negative"}
	case c.MaxTextureSize > 0 && (c.AtlasWidth > c.MaxTextureSize || c.AtlasHeight > c.MaxTextureSize):
		return &ConfigError{Field: "AtlasWidth", Reason: "atlas exceeds MaxTextureSize"}
	}
	return nil
}

// FontOption adjusts the configuration of one font.
//
// Example:
//
//	h, err := fs.RegisterFile("Inter.ttf", fontfusion.WithScale(1.5), fontfusion.WithRange(6))
type FontOption func(*Config)

// WithScale sets Config.Scale.
func WithScale(s float64) FontOption {
	return func(c *Config) { c.Scale = s }
}

// WithRange sets Config.Range.
func WithRange(r float64) FontOption {
	return func(c *Config) { c.Range = r }
}

// WithDPI sets Config.DPI.
func WithDPI(dpi float64) FontOption {
	return func(c *Config) { c.DPI = dpi }
}

// WithPadding sets Config.Padding.
func WithPadding(p int) FontOption {
	return func(c *Config) { c.Padding = p }
}

// WithAtlasSize sets the atlas width and initial height.
func WithAtlasSize(w, h int) FontOption {
	return func(c *Config) {
		c.AtlasWidth = w
		c.AtlasHeight = h
	}
}

// WithIndexCapacity sets Config.IndexCapacity.
func WithIndexCapacity(n int) FontOption {
	return func(c *Config) { c.IndexCapacity = n }
}

// WithSeed sets Config.Seed.
func WithSeed(seed uint64) FontOption {
	return func(c *Config) { c.Seed = seed }
}

// WithMaxTextureSize sets Config.MaxTextureSize.
func WithMaxTextureSize(n int) FontOption {
	return func(c *Config) { c.MaxTextureSize = n }
}

// WithPreload sets Config.Preload.
func WithPreload(on bool) FontOption {
	return func(c *Config) { c.Preload = on }
}

// Option configures a FontSystem during creation.
type Option func(*systemOptions)

type systemOptions struct {
	config Config
	logger *slog.Logger
}

func defaultOptions() systemOptions {
	return systemOptions{config: DefaultConfig()}
}

// WithConfig sets the base configuration fonts start from.
func WithConfig(c Config) Option {
	return func(o *systemOptions) { o.config = c }
}

// WithLogger gives the system its own logger instead of [Logger].
func WithLogger(l *slog.Logger) Option {
	return func(o *systemOptions) { o.logger = l }
}
