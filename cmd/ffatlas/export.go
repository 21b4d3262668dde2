package main

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"sort"

	"github.com/gogpu/fontfusion"
)

type atlasInfo struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	DistanceRange float64 `json:"distanceRange"`
	Scale         float64 `json:"scale"`
}

type metricsInfo struct {
	UnitsPerEm int     `json:"unitsPerEm"`
	Ascender   float64 `json:"ascender"`
	Descender  float64 `json:"descender"`
	LineHeight float64 `json:"lineHeight"`
}

type bounds struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// glyphInfo describes one glyph. Advance, Bearing and Size are in font
// units; AtlasBounds in atlas pixels with y down.
type glyphInfo struct {
	Unicode     rune       `json:"unicode"`
	Index       int        `json:"index"`
	Advance     float64    `json:"advance"`
	AtlasBounds bounds     `json:"atlasBounds"`
	Bearing     [2]float64 `json:"bearing"`
	Size        [2]float64 `json:"size"`
}

type metadata struct {
	Atlas   atlasInfo   `json:"atlas"`
	Metrics metricsInfo `json:"metrics"`
	Glyphs  []glyphInfo `json:"glyphs"`
}

// describe collects the metadata of f, with glyphs in codepoint order.
func describe(f *fontfusion.Font) metadata {
	cfg := f.Config()
	face := f.Face()
	fm := face.Metrics()
	w, h := f.AtlasSize()
	md := metadata{
		Atlas: atlasInfo{Width: w, Height: h, DistanceRange: cfg.Range, Scale: cfg.Scale},
		Metrics: metricsInfo{
			UnitsPerEm: face.UnitsPerEm(),
			Ascender:   fm.Ascender,
			Descender:  fm.Descender,
			LineHeight: fm.Height,
		},
	}
	entries := f.Entries()
	f.Range(func(r rune, g fontfusion.Glyph) bool {
		if g.Index >= len(entries) {
			return true
		}
		e := entries[g.Index]
		md.Glyphs = append(md.Glyphs, glyphInfo{
			Unicode: r,
			Index:   g.Index,
			Advance: g.Advance[0],
			AtlasBounds: bounds{
				X: int(e.OffsetX), Y: int(e.OffsetY),
				W: int(e.SizeX), H: int(e.SizeY),
			},
			Bearing: [2]float64{float64(e.BearingX), float64(e.BearingY)},
			Size:    [2]float64{float64(e.GlyphWidth), float64(e.GlyphHeight)},
		})
		return true
	})
	sort.Slice(md.Glyphs, func(i, j int) bool { return md.Glyphs[i].Unicode < md.Glyphs[j].Unicode })
	return md
}

func writeMetadata(w io.Writer, md metadata) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(md)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func writeJSON(path string, md metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeMetadata(f, md); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
