// Package fontfusion builds multi-channel signed distance field (MSDF)
// glyph atlases on a GPU device and draws text from them.
//
// # Overview
//
// A [FontSystem] owns a set of registered fonts. Each font gets its own
// atlas texture, an index buffer of per-glyph records and a codepoint map.
// Glyphs are generated on demand: outlines are serialized in two passes
// (package outline), packed into shelves (package atlas), uploaded, and
// rasterized by the device's generation program.
//
// # Quick Start
//
//	dev := soft.New()
//	fs, err := fontfusion.New(dev)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer fs.Destroy()
//
//	h, err := fs.RegisterBytes(goregular.TTF)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := fs.RequestGlyphs(h, []rune("héllo")); err != nil {
//	    log.Fatal(err)
//	}
//	ext, _ := fs.MeasureString(h, "héllo", 12, true)
//
// # Drawing
//
// [FontSystem.LayoutString] turns a string into [GlyphInstance] records,
// and [FontSystem.Draw] renders them into a target texture with a
// projection built by [OrthoProjection].
//
// # Devices
//
// Any [gpu.Device] works. gpu/soft rasterizes on the CPU; gpu/halgpu runs
// the generation and draw programs on a wgpu hal device.
//
// # Logging
//
// The package is silent by default. Use [SetLogger] or [WithLogger] to
// receive structured logs; skipped glyphs are reported at Warn level.
package fontfusion
