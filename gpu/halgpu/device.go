package halgpu

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import the Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/fontfusion/gpu"
)

const (
	// maxTexelBytes bounds an atlas buffer by the default storage binding
	// limit.
	maxTexelBytes = 128 << 20

	// copyPitchAlignment is the row alignment of texture to buffer copies.
	copyPitchAlignment = 256

	fenceTimeout = 5 * time.Second
)

// ErrClosed is returned by a device after Close.
var ErrClosed = errors.New("halgpu: device closed")

type buffer struct {
	raw hal.Buffer
	// size is the requested size, alloc the 4 byte aligned allocation.
	size, alloc uint64
}

type texture struct {
	w, h  uint32
	usage gpu.TextureUsage

	// texels backs atlas textures.
	texels *buffer

	// tex and view back render targets.
	tex  hal.Texture
	view hal.TextureView
}

func (t *texture) target() bool { return t.texels == nil }

// Option configures a Device.
type Option func(*options)

type options struct {
	spirv  bool
	logger *slog.Logger
}

// WithSPIRV translates the shaders to SPIR-V with naga instead of passing
// WGSL to the driver.
func WithSPIRV() Option {
	return func(o *options) { o.spirv = true }
}

// WithLogger sets the device logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Device is a gpu.Device on a hal device and queue.
type Device struct {
	mu  sync.Mutex
	log atomic.Pointer[slog.Logger]

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	external bool

	maxTexture uint32
	pipes      *pipelines

	next     uint64
	buffers  map[gpu.BufferID]*buffer
	textures map[gpu.TextureID]*texture

	// enc records commands until Submit; transient holds resources the
	// recorded commands use.
	enc       hal.CommandEncoder
	commands  int
	transient []func()
	closed    bool
}

var _ gpu.Device = (*Device)(nil)

// New opens the first discrete or integrated Vulkan adapter.
func New(opts ...Option) (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("halgpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("halgpu: no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	limits := gputypes.DefaultLimits()
	open, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("halgpu: open device: %w", err)
	}
	d, err := newDevice(open.Device, open.Queue, false, opts)
	if err != nil {
		open.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.instance = instance
	d.logger().Info("halgpu: device opened", "adapter", selected.Info.Name)
	return d, nil
}

// NewWithHAL wraps a device and queue owned by the caller. Close leaves
// them alive.
func NewWithHAL(device hal.Device, queue hal.Queue, opts ...Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("halgpu: nil device or queue")
	}
	return newDevice(device, queue, true, opts)
}

// NewFromProvider shares the device of a host framework. The provider must
// also implement HalDevice() any and HalQueue() any returning hal.Device
// and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("halgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("halgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("halgpu: provider HalQueue is not hal.Queue")
	}
	return newDevice(device, queue, true, opts)
}

func newDevice(device hal.Device, queue hal.Queue, external bool, opts []Option) (*Device, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	pipes, err := createPipelines(device, o.spirv)
	if err != nil {
		return nil, fmt.Errorf("halgpu: %w", err)
	}
	d := &Device{
		device:     device,
		queue:      queue,
		external:   external,
		maxTexture: gputypes.DefaultLimits().MaxTextureDimension2D,
		pipes:      pipes,
		buffers:    make(map[gpu.BufferID]*buffer),
		textures:   make(map[gpu.TextureID]*texture),
	}
	d.SetLogger(o.logger)
	return d, nil
}

// Close releases every resource of d and, unless the device is shared,
// the device itself. Pending commands are discarded.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	if d.enc != nil {
		d.enc.DiscardEncoding()
		d.enc = nil
	}
	d.releaseTransient()
	for id, b := range d.buffers {
		d.device.DestroyBuffer(b.raw)
		delete(d.buffers, id)
	}
	for id, t := range d.textures {
		d.destroyTexture(t)
		delete(d.textures, id)
	}
	d.pipes.destroy(d.device)
	if !d.external {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
}

func (d *Device) id() uint64 {
	d.next++
	return d.next
}

func align4(n uint64) uint64 { return (n + 3) &^ 3 }

// createBuffer allocates a storage buffer usable on both sides of a copy.
func (d *Device) createBuffer(label string, size uint64) (*buffer, error) {
	alloc := max(align4(size), 4)
	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label, Size: alloc,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create buffer %q: %w", label, err)
	}
	return &buffer{raw: raw, size: size, alloc: alloc}, nil
}

// CreateBuffer implements gpu.Device. The usage flags are not needed: every
// buffer is bindable as storage and usable on both sides of a copy.
func (d *Device) CreateBuffer(desc gpu.BufferDescriptor) (gpu.BufferID, error) {
	if desc.Size == 0 {
		return 0, fmt.Errorf("%w: empty buffer %q", gpu.ErrBadSize, desc.Label)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, ErrClosed
	}
	b, err := d.createBuffer(desc.Label, desc.Size)
	if err != nil {
		return 0, err
	}
	id := gpu.BufferID(d.id())
	d.buffers[id] = b
	return id, nil
}

func (d *Device) buffer(id gpu.BufferID) (*buffer, error) {
	if d.closed {
		return nil, ErrClosed
	}
	b, ok := d.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", gpu.ErrUnknownBuffer, id)
	}
	return b, nil
}

// WriteBuffer implements gpu.Device. Offsets must be 4 byte aligned.
func (d *Device) WriteBuffer(id gpu.BufferID, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := d.buffer(id)
	if err != nil {
		return err
	}
	if offset%4 != 0 || offset+uint64(len(data)) > b.size {
		return fmt.Errorf("%w: write %d bytes at %d into %d", gpu.ErrOutOfRange, len(data), offset, b.size)
	}
	if len(data) == 0 {
		return nil
	}
	if n := align4(uint64(len(data))); n != uint64(len(data)) {
		padded := make([]byte, n)
		copy(padded, data)
		data = padded
	}
	d.queue.WriteBuffer(b.raw, offset, data)
	return nil
}

// CopyBuffer implements gpu.Device.
func (d *Device) CopyBuffer(src, dst gpu.BufferID, size uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, err := d.buffer(src)
	if err != nil {
		return err
	}
	t, err := d.buffer(dst)
	if err != nil {
		return err
	}
	if size > s.size || size > t.size {
		return fmt.Errorf("%w: copy %d bytes from %d into %d", gpu.ErrOutOfRange, size, s.size, t.size)
	}
	if size == 0 {
		return nil
	}
	enc, err := d.encoder()
	if err != nil {
		return err
	}
	enc.CopyBufferToBuffer(s.raw, t.raw, []hal.BufferCopy{{SrcOffset: 0, DstOffset: 0, Size: align4(size)}})
	d.commands++
	return nil
}

// ReadBuffer implements gpu.Device. Pending commands are submitted first.
func (d *Device) ReadBuffer(id gpu.BufferID) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := d.buffer(id)
	if err != nil {
		return nil, err
	}
	out, err := d.readback(b.raw, b.alloc)
	if err != nil {
		return nil, err
	}
	return out[:b.size], nil
}

// readback submits pending work plus a copy of size bytes of src into a
// staging buffer and returns its contents.
func (d *Device) readback(src hal.Buffer, size uint64) ([]byte, error) {
	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "fontfusion_staging", Size: size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	enc, err := d.encoder()
	if err != nil {
		return nil, err
	}
	enc.CopyBufferToBuffer(src, staging, []hal.BufferCopy{{SrcOffset: 0, DstOffset: 0, Size: size}})
	d.commands++
	if err := d.submit(); err != nil {
		return nil, err
	}
	out := make([]byte, size)
	if err := d.queue.ReadBuffer(staging, 0, out); err != nil {
		return nil, fmt.Errorf("halgpu: readback: %w", err)
	}
	return out, nil
}

// DestroyBuffer implements gpu.Device. Pending commands keep their own
// reference until Submit.
func (d *Device) DestroyBuffer(id gpu.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return
	}
	delete(d.buffers, id)
	d.deferDestroy(func() { d.device.DestroyBuffer(b.raw) })
}

// CreateTexture implements gpu.Device. Textures with TextureTarget are
// render attachments; all others are atlas texel buffers.
func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.TextureID, error) {
	if desc.Width == 0 || desc.Height == 0 || desc.Width > d.maxTexture || desc.Height > d.maxTexture {
		return 0, fmt.Errorf("%w: texture %dx%d, limit %d", gpu.ErrBadSize, desc.Width, desc.Height, d.maxTexture)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, ErrClosed
	}
	t := &texture{w: desc.Width, h: desc.Height, usage: desc.Usage}
	if desc.Usage&gpu.TextureTarget != 0 {
		if err := d.createTarget(t, desc.Label); err != nil {
			return 0, err
		}
	} else {
		size := uint64(desc.Width) * uint64(desc.Height) * 4
		if size > maxTexelBytes {
			return 0, fmt.Errorf("%w: atlas %dx%d exceeds %d bytes", gpu.ErrBadSize, desc.Width, desc.Height, maxTexelBytes)
		}
		b, err := d.createBuffer(desc.Label, size)
		if err != nil {
			return 0, err
		}
		t.texels = b
	}
	id := gpu.TextureID(d.id())
	d.textures[id] = t
	return id, nil
}

func (d *Device) createTarget(t *texture, label string) error {
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: t.w, Height: t.h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("halgpu: create target %q: %w", label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        targetFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return fmt.Errorf("halgpu: create target view %q: %w", label, err)
	}
	t.tex, t.view = tex, view
	return nil
}

func (d *Device) texture(id gpu.TextureID) (*texture, error) {
	if d.closed {
		return nil, ErrClosed
	}
	t, ok := d.textures[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", gpu.ErrUnknownTexture, id)
	}
	return t, nil
}

func (d *Device) atlasTexture(id gpu.TextureID) (*texture, error) {
	t, err := d.texture(id)
	if err != nil {
		return nil, err
	}
	if t.target() {
		return nil, fmt.Errorf("%w: texture %d is a render target", gpu.ErrBadSize, id)
	}
	return t, nil
}

// CopyTexture implements gpu.Device for atlas textures. Rows are copied
// one by one when the widths differ.
func (d *Device) CopyTexture(src, dst gpu.TextureID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, err := d.atlasTexture(src)
	if err != nil {
		return err
	}
	t, err := d.atlasTexture(dst)
	if err != nil {
		return err
	}
	if s.w > t.w || s.h > t.h {
		return fmt.Errorf("%w: copy %dx%d into %dx%d", gpu.ErrOutOfRange, s.w, s.h, t.w, t.h)
	}
	enc, err := d.encoder()
	if err != nil {
		return err
	}
	enc.CopyBufferToBuffer(s.texels.raw, t.texels.raw, rowCopies(s.w, s.h, t.w))
	d.commands++
	return nil
}

// rowCopies returns the regions copying an srcW by h texel block into a
// buffer of rows dstW texels wide.
func rowCopies(srcW, h, dstW uint32) []hal.BufferCopy {
	if srcW == dstW {
		return []hal.BufferCopy{{SrcOffset: 0, DstOffset: 0, Size: uint64(srcW) * uint64(h) * 4}}
	}
	regions := make([]hal.BufferCopy, h)
	for y := range regions {
		regions[y] = hal.BufferCopy{
			SrcOffset: uint64(y) * uint64(srcW) * 4,
			DstOffset: uint64(y) * uint64(dstW) * 4,
			Size:      uint64(srcW) * 4,
		}
	}
	return regions
}

// ReadTexture implements gpu.Device. Pending commands are submitted first.
func (d *Device) ReadTexture(id gpu.TextureID) (*image.RGBA, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := d.texture(id)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, int(t.w), int(t.h)))
	if !t.target() {
		// Packed little endian texels are RGBA bytes.
		data, err := d.readback(t.texels.raw, t.texels.alloc)
		if err != nil {
			return nil, err
		}
		copy(img.Pix, data)
		return img, nil
	}

	rowBytes := t.w * 4
	pitch := (rowBytes + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(pitch) * uint64(t.h)
	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "fontfusion_target_staging", Size: size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	enc, err := d.encoder()
	if err != nil {
		return nil, err
	}
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	enc.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: t.h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: t.w, Height: t.h, DepthOrArrayLayers: 1},
	}})
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	d.commands++
	if err := d.submit(); err != nil {
		return nil, err
	}
	data := make([]byte, size)
	if err := d.queue.ReadBuffer(staging, 0, data); err != nil {
		return nil, fmt.Errorf("halgpu: readback: %w", err)
	}
	for y := 0; y < int(t.h); y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+int(rowBytes)], data[y*int(pitch):])
	}
	return img, nil
}

// DestroyTexture implements gpu.Device.
func (d *Device) DestroyTexture(id gpu.TextureID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.textures[id]
	if !ok {
		return
	}
	delete(d.textures, id)
	d.deferDestroy(func() { d.destroyTexture(t) })
}

func (d *Device) destroyTexture(t *texture) {
	if t.texels != nil {
		d.device.DestroyBuffer(t.texels.raw)
	}
	if t.view != nil {
		d.device.DestroyTextureView(t.view)
	}
	if t.tex != nil {
		d.device.DestroyTexture(t.tex)
	}
}

// MaxTextureSize implements gpu.Device.
func (d *Device) MaxTextureSize() uint32 { return d.maxTexture }

// Live returns the number of live buffers and textures.
func (d *Device) Live() (buffers, textures int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buffers), len(d.textures)
}
