package outline

import (
	"encoding/binary"
	"math"
)

// Encode writes g into the metadata and point buffers. Both must be at least
// as large as g.Layout() requires.
func Encode(g *Glyph, meta, points []byte) error {
	l := g.Layout()
	if len(meta) < l.MetadataSize() || len(points) < l.PointBufferSize() {
		return ErrBufferSize
	}
	if l.Contours > MaxCount {
		return ErrOutlineTooComplex
	}
	meta[0] = byte(l.Contours)
	mi, pi := 1, 0
	for _, c := range g.Contours {
		if len(c.Segments) > MaxCount {
			return ErrOutlineTooComplex
		}
		meta[mi] = c.Winding
		meta[mi+1] = byte(len(c.Segments))
		mi += 2
		for _, s := range c.Segments {
			n := s.NumPoints()
			meta[mi] = byte(s.Color)
			meta[mi+1] = byte(n)
			mi += 2
			for k := 0; k < n; k++ {
				binary.LittleEndian.PutUint32(points[pi:], math.Float32bits(float32(s.P[k].X)))
				binary.LittleEndian.PutUint32(points[pi+4:], math.Float32bits(float32(s.P[k].Y)))
				pi += 8
			}
		}
	}
	return nil
}

// Decode parses buffers written by Encode. Points are widened from float32.
func Decode(meta, points []byte) (*Glyph, error) {
	if len(meta) < 1 {
		return nil, ErrBufferSize
	}
	nc := int(meta[0])
	g := &Glyph{Contours: make([]Contour, 0, nc)}
	mi, pi := 1, 0
	for c := 0; c < nc; c++ {
		if mi+2 > len(meta) {
			return nil, ErrBufferSize
		}
		winding, nseg := meta[mi], int(meta[mi+1])
		mi += 2
		contour := Contour{Winding: winding, Segments: make([]Segment, 0, nseg)}
		for s := 0; s < nseg; s++ {
			if mi+2 > len(meta) {
				return nil, ErrBufferSize
			}
			seg := Segment{Color: Color(meta[mi])}
			switch meta[mi+1] {
			case 2:
				seg.Kind = Linear
			case 3:
				seg.Kind = Quadratic
			default:
				return nil, ErrMalformed
			}
			if seg.Color > White {
				return nil, ErrMalformed
			}
			mi += 2
			n := seg.NumPoints()
			if pi+8*n > len(points) {
				return nil, ErrBufferSize
			}
			for k := 0; k < n; k++ {
				seg.P[k] = Vec2{
					X: float64(math.Float32frombits(binary.LittleEndian.Uint32(points[pi:]))),
					Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(points[pi+4:]))),
				}
				pi += 8
			}
			contour.Segments = append(contour.Segments, seg)
		}
		g.Contours = append(g.Contours, contour)
	}
	return g, nil
}
