// Package msdf rasterizes serialized glyph outlines into multi-channel
// signed distance fields.
//
// Each RGB channel holds the distance to the nearest edge whose color
// contains that channel. The median of the three channels recovers the
// true signed distance while corners, where the channels disagree, stay
// sharp at any magnification.
//
// Distances are measured in outline units, converted to pixels with
// [Params].Scale and mapped to [0, 1] as 0.5 + d/Range, so 0.5 lies on the
// edge and values above it are inside the glyph.
//
// # Usage
//
//	g := msdf.NewGenerator(0)
//	err := g.Generate(img, image.Pt(x, y), glyph, msdf.Params{
//	    Width: w, Height: h,
//	    Translate: outline.Vec2{X: tx, Y: ty},
//	    Scale: 2, Range: 4,
//	    Orientation: glyph.Orientation(),
//	})
//
// The same math runs in the compute shader of the hardware backend; this
// package is the reference used by the software device and by tests.
//
// # Shader Side
//
//	fn median3(v: vec3<f32>) -> f32 {
//	    return max(min(v.r, v.g), min(max(v.r, v.g), v.b));
//	}
package msdf
