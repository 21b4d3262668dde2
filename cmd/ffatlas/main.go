// Command ffatlas builds a multi-channel signed distance field atlas for a
// font file and writes it as a PNG with JSON glyph metadata.
//
// Usage:
//
//	ffatlas [flags] FONT
//
// The atlas holds codepoints 0 to 254 unless --preload=false, plus any
// --chars. With --render the text is drawn from the atlas into a second
// PNG.
package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/gogpu/fontfusion"
	"github.com/gogpu/fontfusion/gpu"
	"github.com/gogpu/fontfusion/gpu/soft"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	s, path, err := parseArgs(args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "Usage: ffatlas [flags] FONT")
		return 2
	}

	log := slog.New(slog.DiscardHandler)
	if s.Verbose {
		log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if err := build(s, path, log); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func build(s settings, path string, log *slog.Logger) error {
	sys, err := fontfusion.New(soft.New(), fontfusion.WithLogger(log))
	if err != nil {
		return err
	}
	defer sys.Destroy()

	h, err := sys.RegisterFile(path, s.fontOptions()...)
	if err != nil {
		return err
	}
	if s.Chars != "" {
		res, err := sys.RequestGlyphs(h, []rune(s.Chars))
		if err != nil {
			return err
		}
		log.Info("ffatlas: extra glyphs", "generated", res.Generated, "skipped", res.Skipped)
	}

	f, _ := sys.Get(h)
	if s.Render != "" {
		// Rendering may add glyphs, so it runs before the atlas is exported.
		img, err := render(sys, h, f, s)
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
		if err := writePNG(s.RenderOut, img); err != nil {
			return err
		}
		log.Info("ffatlas: wrote render", "path", s.RenderOut, "width", img.Rect.Dx(), "height", img.Rect.Dy())
	}

	if s.Out != "" {
		img, err := sys.Device().ReadTexture(f.Texture())
		if err != nil {
			return fmt.Errorf("read atlas: %w", err)
		}
		if err := writePNG(s.Out, img); err != nil {
			return err
		}
		log.Info("ffatlas: wrote atlas", "path", s.Out, "glyphs", f.GlyphCount())
	}
	if s.Meta != "" {
		if err := writeJSON(s.Meta, describe(f)); err != nil {
			return err
		}
		log.Info("ffatlas: wrote metadata", "path", s.Meta)
	}
	return nil
}

// render draws s.Render in black on a transparent canvas sized to fit it.
func render(sys *fontfusion.FontSystem, h fontfusion.Handle, f *fontfusion.Font, s settings) (*image.RGBA, error) {
	const margin = 8

	face := f.Face()
	fm := face.Metrics()
	k := s.Size * s.DPI / 72 / float64(face.UnitsPerEm())

	lines := strings.Split(s.Render, "\n")
	var width float64
	for _, line := range lines {
		ext, err := sys.MeasureString(h, line, s.Size, s.Kerning)
		if err != nil {
			return nil, err
		}
		width = max(width, ext.Width)
	}
	w := int(math.Ceil(width)) + 2*margin
	ht := int(math.Ceil(float64(len(lines))*fm.Height*k)) + 2*margin

	dev := sys.Device()
	target, err := dev.CreateTexture(gpu.TextureDescriptor{
		Label:  "ffatlas render",
		Width:  uint32(w),
		Height: uint32(ht),
		Usage:  gpu.TextureTarget | gpu.TextureCopySrc,
	})
	if err != nil {
		return nil, err
	}
	defer dev.DestroyTexture(target)

	origin := [2]float32{margin, float32(margin + fm.Ascender*k)}
	instances, err := sys.LayoutString(h, s.Render, origin, s.Size, [4]float32{0, 0, 0, 1}, s.Kerning)
	if err != nil {
		return nil, err
	}
	proj := fontfusion.OrthoProjection(0, float32(w), float32(ht), 0, -1, 1)
	if err := sys.Draw(h, target, instances, proj); err != nil {
		return nil, err
	}
	return dev.ReadTexture(target)
}
