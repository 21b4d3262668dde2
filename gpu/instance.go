package gpu

import (
	"encoding/binary"
	"math"
)

// InstanceSize is the encoded size of an Instance in bytes.
const InstanceSize = 48

// Instance is one glyph to draw.
type Instance struct {
	// Position is the pen position on the baseline in world units.
	Position [2]float32
	// Offset is added to Position.
	Offset [2]float32
	// Color is a straight-alpha RGBA multiplier.
	Color [4]float32
	// Index selects the atlas.Entry.
	Index uint32
	// Size is the font size in points.
	Size float32
	// Skew shears the glyph horizontally, in x per unit of y.
	Skew float32
	// Strength moves the edge threshold; positive values embolden.
	Strength float32
}

// Put writes i into b, which must hold InstanceSize bytes.
func (i Instance) Put(b []byte) {
	f := [...]float32{
		i.Position[0], i.Position[1], i.Offset[0], i.Offset[1],
		i.Color[0], i.Color[1], i.Color[2], i.Color[3],
	}
	for k, v := range f {
		binary.LittleEndian.PutUint32(b[4*k:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(b[32:], i.Index)
	binary.LittleEndian.PutUint32(b[36:], math.Float32bits(i.Size))
	binary.LittleEndian.PutUint32(b[40:], math.Float32bits(i.Skew))
	binary.LittleEndian.PutUint32(b[44:], math.Float32bits(i.Strength))
}

// DecodeInstance reads an instance written by Put.
func DecodeInstance(b []byte) Instance {
	f := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
	}
	return Instance{
		Position: [2]float32{f(0), f(4)},
		Offset:   [2]float32{f(8), f(12)},
		Color:    [4]float32{f(16), f(20), f(24), f(28)},
		Index:    binary.LittleEndian.Uint32(b[32:]),
		Size:     f(36),
		Skew:     f(40),
		Strength: f(44),
	}
}

// EncodeInstances encodes instances back to back.
func EncodeInstances(in []Instance) []byte {
	b := make([]byte, len(in)*InstanceSize)
	for k, i := range in {
		i.Put(b[k*InstanceSize:])
	}
	return b
}
