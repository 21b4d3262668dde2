// Package soft is an in-memory gpu.Device that rasterizes on the CPU.
//
// Generate runs the msdf rasterizer directly into the atlas image and Draw
// composites glyph quads into the target with source-over blending, so the
// device is usable for offline atlas dumps and as a test double. It
// records copy, generate, draw and submit calls for inspection.
package soft

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/draw"

	"github.com/gogpu/fontfusion/gpu"
	"github.com/gogpu/fontfusion/msdf"
	"github.com/gogpu/fontfusion/outline"
)

// DefaultMaxTextureSize is the texture limit when none is configured.
const DefaultMaxTextureSize = 8192

// Op names a recorded call.
type Op string

// Recorded operations.
const (
	OpCopyBuffer  Op = "CopyBuffer"
	OpCopyTexture Op = "CopyTexture"
	OpGenerate    Op = "Generate"
	OpDraw        Op = "Draw"
	OpSubmit      Op = "Submit"
)

// Call is one recorded device call. Src and Dst hold buffer or texture IDs.
type Call struct {
	Op       Op
	Src, Dst uint64
	Size     uint64
}

// Option configures a Device.
type Option func(*Device)

// WithMaxTextureSize sets the largest texture dimension.
func WithMaxTextureSize(n uint32) Option {
	return func(d *Device) { d.maxTexture = n }
}

// WithWorkers sets the number of rows rasterized in parallel per glyph.
func WithWorkers(n int) Option {
	return func(d *Device) { d.gen = msdf.NewGenerator(n) }
}

// Device is a CPU gpu.Device.
type Device struct {
	mu         sync.Mutex
	next       uint64
	buffers    map[gpu.BufferID][]byte
	textures   map[gpu.TextureID]*image.RGBA
	calls      []Call
	maxTexture uint32
	gen        *msdf.Generator
}

var _ gpu.Device = (*Device)(nil)

// New returns an empty device. Glyphs are rasterized with 4 row workers
// unless WithWorkers says otherwise.
func New(opts ...Option) *Device {
	d := &Device{
		buffers:    make(map[gpu.BufferID][]byte),
		textures:   make(map[gpu.TextureID]*image.RGBA),
		maxTexture: DefaultMaxTextureSize,
		gen:        msdf.NewGenerator(4),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Device) id() uint64 {
	d.next++
	return d.next
}

func (d *Device) record(c Call) {
	d.calls = append(d.calls, c)
}

// Calls returns a copy of the recorded calls.
func (d *Device) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// ResetCalls clears the call record.
func (d *Device) ResetCalls() {
	d.mu.Lock()
	d.calls = nil
	d.mu.Unlock()
}

// Live returns the number of buffers and textures not yet destroyed.
func (d *Device) Live() (buffers, textures int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buffers), len(d.textures)
}

// Texture returns the image backing id. The image is shared with the
// device and must not be modified.
func (d *Device) Texture(id gpu.TextureID) (*image.RGBA, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	img, ok := d.textures[id]
	return img, ok
}

// CreateBuffer implements gpu.Device.
func (d *Device) CreateBuffer(desc gpu.BufferDescriptor) (gpu.BufferID, error) {
	if desc.Size == 0 {
		return 0, fmt.Errorf("%w: buffer %q of 0 bytes", gpu.ErrBadSize, desc.Label)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpu.BufferID(d.id())
	d.buffers[id] = make([]byte, desc.Size)
	return id, nil
}

// WriteBuffer implements gpu.Device.
func (d *Device) WriteBuffer(id gpu.BufferID, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("%w: %d", gpu.ErrUnknownBuffer, id)
	}
	if offset+uint64(len(data)) > uint64(len(b)) {
		return fmt.Errorf("%w: write %d bytes at %d into %d", gpu.ErrOutOfRange, len(data), offset, len(b))
	}
	copy(b[offset:], data)
	return nil
}

// CopyBuffer implements gpu.Device.
func (d *Device) CopyBuffer(src, dst gpu.BufferID, size uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.buffers[src]
	if !ok {
		return fmt.Errorf("%w: %d", gpu.ErrUnknownBuffer, src)
	}
	t, ok := d.buffers[dst]
	if !ok {
		return fmt.Errorf("%w: %d", gpu.ErrUnknownBuffer, dst)
	}
	if size > uint64(len(s)) || size > uint64(len(t)) {
		return fmt.Errorf("%w: copy %d bytes from %d into %d", gpu.ErrOutOfRange, size, len(s), len(t))
	}
	copy(t[:size], s[:size])
	d.record(Call{Op: OpCopyBuffer, Src: uint64(src), Dst: uint64(dst), Size: size})
	return nil
}

// ReadBuffer implements gpu.Device.
func (d *Device) ReadBuffer(id gpu.BufferID) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", gpu.ErrUnknownBuffer, id)
	}
	return append([]byte(nil), b...), nil
}

// DestroyBuffer implements gpu.Device.
func (d *Device) DestroyBuffer(id gpu.BufferID) {
	d.mu.Lock()
	delete(d.buffers, id)
	d.mu.Unlock()
}

// CreateTexture implements gpu.Device.
func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.TextureID, error) {
	if desc.Width == 0 || desc.Height == 0 || desc.Width > d.maxTexture || desc.Height > d.maxTexture {
		return 0, fmt.Errorf("%w: texture %q %dx%d (max %d)", gpu.ErrBadSize, desc.Label, desc.Width, desc.Height, d.maxTexture)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpu.TextureID(d.id())
	d.textures[id] = image.NewRGBA(image.Rect(0, 0, int(desc.Width), int(desc.Height)))
	return id, nil
}

// CopyTexture implements gpu.Device.
func (d *Device) CopyTexture(src, dst gpu.TextureID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.textures[src]
	if !ok {
		return fmt.Errorf("%w: %d", gpu.ErrUnknownTexture, src)
	}
	t, ok := d.textures[dst]
	if !ok {
		return fmt.Errorf("%w: %d", gpu.ErrUnknownTexture, dst)
	}
	if !s.Rect.In(t.Rect) {
		return fmt.Errorf("%w: copy %v into %v", gpu.ErrOutOfRange, s.Rect, t.Rect)
	}
	draw.Draw(t, s.Rect, s, image.Point{}, draw.Src)
	d.record(Call{Op: OpCopyTexture, Src: uint64(src), Dst: uint64(dst)})
	return nil
}

// ReadTexture implements gpu.Device.
func (d *Device) ReadTexture(id gpu.TextureID) (*image.RGBA, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.textures[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", gpu.ErrUnknownTexture, id)
	}
	out := image.NewRGBA(s.Rect)
	copy(out.Pix, s.Pix)
	return out, nil
}

// DestroyTexture implements gpu.Device.
func (d *Device) DestroyTexture(id gpu.TextureID) {
	d.mu.Lock()
	delete(d.textures, id)
	d.mu.Unlock()
}

// Generate implements gpu.Device. The projection is not needed on the CPU
// and is ignored.
func (d *Device) Generate(p gpu.GenerateParams) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	atlasImg, ok := d.textures[p.Atlas]
	if !ok {
		return fmt.Errorf("%w: %d", gpu.ErrUnknownTexture, p.Atlas)
	}
	meta, ok := d.buffers[p.Metadata]
	if !ok {
		return fmt.Errorf("%w: %d", gpu.ErrUnknownBuffer, p.Metadata)
	}
	points, ok := d.buffers[p.Points]
	if !ok {
		return fmt.Errorf("%w: %d", gpu.ErrUnknownBuffer, p.Points)
	}
	if uint64(p.MetaOffset) >= uint64(len(meta)) || 8*uint64(p.PointOffset) > uint64(len(points)) {
		return fmt.Errorf("%w: outline offsets %d/%d", gpu.ErrOutOfRange, p.MetaOffset, p.PointOffset)
	}
	g, err := outline.Decode(meta[p.MetaOffset:], points[8*p.PointOffset:])
	if err != nil {
		return fmt.Errorf("soft: decode outline: %w", err)
	}
	err = d.gen.Generate(atlasImg, image.Pt(int(p.Offset[0]), int(p.Offset[1])), g, msdf.Params{
		Width:       int(p.Size[0]),
		Height:      int(p.Size[1]),
		Translate:   outline.Vec2{X: float64(p.Translate[0]), Y: float64(p.Translate[1])},
		Scale:       float64(p.Scale),
		Range:       float64(p.Range),
		Orientation: float64(p.Orientation),
	})
	if err != nil {
		return fmt.Errorf("soft: generate: %w", err)
	}
	d.record(Call{Op: OpGenerate, Dst: uint64(p.Atlas)})
	return nil
}

// Submit implements gpu.Device. All work is already done.
func (d *Device) Submit() error {
	d.mu.Lock()
	d.record(Call{Op: OpSubmit})
	d.mu.Unlock()
	return nil
}

// MaxTextureSize implements gpu.Device.
func (d *Device) MaxTextureSize() uint32 { return d.maxTexture }
