package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/fontfusion"
)

// settings are the command options. A config file supplies them first and
// flags given on the command line override it.
type settings struct {
	Out       string `yaml:"out"`
	Meta      string `yaml:"meta"`
	RenderOut string `yaml:"render_out"`

	Scale   float64 `yaml:"scale"`
	Range   float64 `yaml:"range"`
	Padding int     `yaml:"padding"`
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	DPI     float64 `yaml:"dpi"`
	Seed    uint64  `yaml:"seed"`
	Preload bool    `yaml:"preload"`

	Chars   string  `yaml:"chars"`
	Render  string  `yaml:"render"`
	Size    float64 `yaml:"size"`
	Kerning bool    `yaml:"kerning"`

	Verbose bool `yaml:"verbose"`
}

func defaultSettings() settings {
	c := fontfusion.DefaultConfig()
	return settings{
		Out:       "atlas.png",
		RenderOut: "render.png",
		Scale:     c.Scale,
		Range:     c.Range,
		Padding:   c.Padding,
		Width:     c.AtlasWidth,
		Height:    c.AtlasHeight,
		DPI:       c.DPI,
		Seed:      c.Seed,
		Preload:   c.Preload,
		Size:      32,
		Kerning:   true,
	}
}

// fontOptions converts s to per-font options.
func (s *settings) fontOptions() []fontfusion.FontOption {
	return []fontfusion.FontOption{
		fontfusion.WithScale(s.Scale),
		fontfusion.WithRange(s.Range),
		fontfusion.WithPadding(s.Padding),
		fontfusion.WithAtlasSize(s.Width, s.Height),
		fontfusion.WithDPI(s.DPI),
		fontfusion.WithSeed(s.Seed),
		fontfusion.WithPreload(s.Preload),
	}
}

// newFlagSet binds the command flags to s.
func newFlagSet(s *settings, config *string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("ffatlas", pflag.ContinueOnError)
	fs.StringVarP(config, "config", "c", "", "YAML config file; flags override its values")
	fs.StringVarP(&s.Out, "out", "o", s.Out, "Atlas PNG path (empty to skip)")
	fs.StringVarP(&s.Meta, "meta", "m", s.Meta, "Glyph metadata JSON path (empty to skip)")
	fs.Float64Var(&s.Scale, "scale", s.Scale, "Atlas pixels per outline unit (font units / 64)")
	fs.Float64Var(&s.Range, "range", s.Range, "Distance range in atlas pixels")
	fs.IntVar(&s.Padding, "padding", s.Padding, "Gap between glyph boxes in atlas pixels")
	fs.IntVar(&s.Width, "width", s.Width, "Atlas width in pixels")
	fs.IntVar(&s.Height, "height", s.Height, "Initial atlas height in pixels")
	fs.Float64Var(&s.DPI, "dpi", s.DPI, "Resolution used for --size")
	fs.Uint64Var(&s.Seed, "seed", s.Seed, "Edge coloring seed")
	fs.BoolVar(&s.Preload, "preload", s.Preload, "Generate codepoints 0 to 254 up front")
	fs.StringVar(&s.Chars, "chars", s.Chars, "Extra characters to generate")
	fs.StringVar(&s.Render, "render", s.Render, "Text to render with the atlas")
	fs.StringVar(&s.RenderOut, "render-out", s.RenderOut, "PNG path for --render")
	fs.Float64Var(&s.Size, "size", s.Size, "Point size for --render")
	fs.BoolVar(&s.Kerning, "kerning", s.Kerning, "Apply pair kerning in --render")
	fs.BoolVarP(&s.Verbose, "verbose", "v", s.Verbose, "Log progress to stderr")
	return fs
}

// parseArgs reads the command line and the optional config file. It
// returns the settings and the font path.
func parseArgs(args []string) (settings, string, error) {
	s := defaultSettings()
	var config string
	fs := newFlagSet(&s, &config)
	if err := fs.Parse(args); err != nil {
		return s, "", err
	}
	if fs.NArg() != 1 {
		return s, "", fmt.Errorf("expected one font file, got %d arguments", fs.NArg())
	}
	if config == "" {
		return s, fs.Arg(0), nil
	}

	// The file is read over the defaults, so flags set on the command line
	// are saved and replayed on top of it.
	set := map[string]string{}
	fs.Visit(func(f *pflag.Flag) {
		set[f.Name] = f.Value.String()
	})
	if err := loadConfig(config, &s); err != nil {
		return s, "", err
	}
	for name, v := range set {
		if err := fs.Set(name, v); err != nil {
			return s, "", err
		}
	}
	return s, fs.Arg(0), nil
}

func loadConfig(path string, s *settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
