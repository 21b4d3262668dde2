// Package gpu defines the raster backend a font system drives.
//
// A [Device] owns buffers and textures addressed by opaque IDs, and runs
// two programs: Generate, which writes one glyph's distance field into the
// atlas, and Draw, which renders glyph instances from the atlas into a
// target texture. Commands may be deferred until [Device.Submit].
//
// Two implementations ship with the module:
//
//   - gpu/soft rasterizes on the CPU and keeps everything in memory;
//   - gpu/halgpu runs compute and render pipelines on a wgpu hal device.
package gpu

import (
	"errors"
	"image"
)

// BufferID names a device buffer. Zero is never a valid ID.
type BufferID uint64

// TextureID names a device texture. Zero is never a valid ID.
type TextureID uint64

// BufferUsage describes how a buffer is bound.
type BufferUsage uint32

const (
	// BufferStorage marks a buffer read by the programs.
	BufferStorage BufferUsage = 1 << iota

	// BufferCopySrc allows the buffer as a copy source.
	BufferCopySrc

	// BufferCopyDst allows writes and copies into the buffer.
	BufferCopyDst
)

// TextureUsage describes how a texture is bound.
type TextureUsage uint32

const (
	// TextureAtlas marks a texture written by Generate and sampled by Draw.
	TextureAtlas TextureUsage = 1 << iota

	// TextureTarget marks a texture Draw renders into.
	TextureTarget

	// TextureCopySrc allows the texture as a copy source or readback.
	TextureCopySrc

	// TextureCopyDst allows copies into the texture.
	TextureCopyDst
)

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

// TextureDescriptor describes an RGBA8 texture to create.
type TextureDescriptor struct {
	Label         string
	Width, Height uint32
	Usage         TextureUsage
}

// Mat4 is a column-major 4x4 matrix.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{0: 1, 5: 1, 10: 1, 15: 1}
}

// Apply transforms (x, y, 0, 1) and returns the x and y of the result.
func (m Mat4) Apply(x, y float32) (float32, float32) {
	return m[0]*x + m[4]*y + m[12], m[1]*x + m[5]*y + m[13]
}

// GenerateParams are the inputs of one glyph generation.
type GenerateParams struct {
	// Atlas is the texture written.
	Atlas TextureID

	// Metadata and Points hold serialized outlines. MetaOffset is a byte
	// offset into Metadata, PointOffset counts points into Points.
	Metadata, Points        BufferID
	MetaOffset, PointOffset uint32

	// Projection maps atlas pixels to clip space.
	Projection Mat4

	// Offset is the top-left corner of the glyph box in atlas pixels and
	// Size its extent.
	Offset [2]float32
	Size   [2]uint32

	// Translate, Scale and Range place the outline inside the box; see
	// msdf.Params.
	Translate   [2]float32
	Scale       float32
	Range       float32
	Orientation float32
}

// DrawParams are the inputs of one instanced glyph draw.
type DrawParams struct {
	Target TextureID
	Atlas  TextureID

	// Index holds atlas.Entry records, Instances holds Instance records.
	Index     BufferID
	Instances BufferID
	Count     uint32

	// Projection maps world coordinates to clip space; FontProjection maps
	// atlas pixels to [-1, 1].
	Projection     Mat4
	FontProjection Mat4

	// Padding is the glyph box margin in font units.
	Padding    float32
	DPI        float32
	UnitsPerEm float32
}

// Device is a raster backend. Implementations are safe for concurrent use.
type Device interface {
	CreateBuffer(desc BufferDescriptor) (BufferID, error)
	WriteBuffer(id BufferID, offset uint64, data []byte) error
	// CopyBuffer copies the first size bytes of src to the start of dst.
	CopyBuffer(src, dst BufferID, size uint64) error
	ReadBuffer(id BufferID) ([]byte, error)
	DestroyBuffer(id BufferID)

	CreateTexture(desc TextureDescriptor) (TextureID, error)
	// CopyTexture copies all of src into dst at the origin. dst must be at
	// least as large as src.
	CopyTexture(src, dst TextureID) error
	ReadTexture(id TextureID) (*image.RGBA, error)
	DestroyTexture(id TextureID)

	Generate(p GenerateParams) error
	Draw(p DrawParams) error

	// Submit flushes deferred work and waits for it to finish.
	Submit() error

	// MaxTextureSize is the largest texture dimension the device accepts.
	MaxTextureSize() uint32
}

// Errors returned by devices.
var (
	ErrUnknownBuffer  = errors.New("gpu: unknown buffer")
	ErrUnknownTexture = errors.New("gpu: unknown texture")
	ErrOutOfRange     = errors.New("gpu: access out of range")
	ErrBadSize        = errors.New("gpu: invalid size")
)
