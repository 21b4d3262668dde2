// Package outline turns glyph outlines into the flat buffers consumed by the
// MSDF generation pass.
//
// An outline source is walked twice. The first walk (Measure) only counts
// contours, segments and points so that destination buffers can be sized
// up front. The second walk (Serialize) emits typed contours, computes each
// contour's winding flag and assigns edge colors. Encode then writes the
// byte layout shared with the generation shader:
//
//	metadata: [ncontours, (winding, nsegments, (color, npoints)*nsegments)*ncontours]
//	points:   little-endian float32 (x, y) pairs, divided by SerializerScale
//
// Lines whose endpoints coincide are dropped, and conics whose control point
// coincides with an endpoint are emitted as lines. Cubic segments are not
// supported; a source that produces one fails with ErrCubicSegment.
package outline
