package atlas

import (
	"encoding/binary"
	"math"
)

// EntrySize is the encoded size of an Entry in bytes.
const EntrySize = 8 * 4

// Entry is one record of the atlas index buffer. Offsets and sizes are in
// atlas pixels; bearings and glyph dimensions are in font units.
type Entry struct {
	OffsetX, OffsetY float32
	SizeX, SizeY     float32
	BearingX         float32
	BearingY         float32
	GlyphWidth       float32
	GlyphHeight      float32
}

func (e Entry) fields() [8]float32 {
	return [8]float32{
		e.OffsetX, e.OffsetY, e.SizeX, e.SizeY,
		e.BearingX, e.BearingY, e.GlyphWidth, e.GlyphHeight,
	}
}

// Put writes e into b as little-endian float32 values. b must hold at least
// EntrySize bytes.
func (e Entry) Put(b []byte) {
	for i, f := range e.fields() {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
}

// EncodeEntries encodes entries back to back.
func EncodeEntries(entries []Entry) []byte {
	b := make([]byte, len(entries)*EntrySize)
	for i, e := range entries {
		e.Put(b[i*EntrySize:])
	}
	return b
}

// DecodeEntry reads an entry written by Put.
func DecodeEntry(b []byte) Entry {
	var f [8]float32
	for i := range f {
		f[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return Entry{
		OffsetX: f[0], OffsetY: f[1], SizeX: f[2], SizeY: f[3],
		BearingX: f[4], BearingY: f[5], GlyphWidth: f[6], GlyphHeight: f[7],
	}
}
