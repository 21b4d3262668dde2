package halgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fontfusion/gpu"
)

// encoder returns the open command encoder, starting one if needed.
func (d *Device) encoder() (hal.CommandEncoder, error) {
	if d.enc != nil {
		return d.enc, nil
	}
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "fontfusion_encoder"})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("fontfusion"); err != nil {
		return nil, fmt.Errorf("halgpu: begin encoding: %w", err)
	}
	d.enc = enc
	return enc, nil
}

// deferDestroy runs fn now, or after Submit when commands are pending.
func (d *Device) deferDestroy(fn func()) {
	if d.enc == nil {
		fn()
		return
	}
	d.transient = append(d.transient, fn)
}

func (d *Device) releaseTransient() {
	for _, fn := range d.transient {
		fn()
	}
	d.transient = d.transient[:0]
}

// Submit implements gpu.Device.
func (d *Device) Submit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	return d.submit()
}

func (d *Device) submit() error {
	if d.enc == nil {
		return nil
	}
	enc := d.enc
	d.enc = nil
	defer d.releaseTransient()

	cmdBuf, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("halgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("halgpu: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)
	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("halgpu: submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !ok {
		return fmt.Errorf("halgpu: wait for GPU: ok=%v err=%w", ok, err)
	}
	d.logger().Debug("halgpu: submitted", "commands", d.commands)
	d.commands = 0
	return nil
}

// uniformGroup creates a uniform buffer holding data and a bind group of
// layout with it at binding 0 followed by bufs. Both are released after
// the next Submit.
func (d *Device) uniformGroup(label string, layout hal.BindGroupLayout, data []byte, bufs ...*buffer) (hal.BindGroup, error) {
	ub, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_uniforms", Size: uint64(len(data)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create uniform buffer: %w", err)
	}
	d.queue.WriteBuffer(ub, 0, data)

	entries := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: uint64(len(data))}},
	}
	for i, b := range bufs {
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  uint32(i + 1),
			Resource: gputypes.BufferBinding{Buffer: b.raw.NativeHandle(), Offset: 0, Size: b.alloc},
		})
	}
	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{Label: label, Layout: layout, Entries: entries})
	if err != nil {
		d.device.DestroyBuffer(ub)
		return nil, fmt.Errorf("halgpu: create bind group: %w", err)
	}
	d.transient = append(d.transient, func() {
		d.device.DestroyBindGroup(bg)
		d.device.DestroyBuffer(ub)
	})
	return bg, nil
}

// Generate implements gpu.Device. The box is addressed in atlas texels;
// Projection is not needed by the compute program.
func (d *Device) Generate(p gpu.GenerateParams) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := d.atlasTexture(p.Atlas)
	if err != nil {
		return err
	}
	meta, err := d.buffer(p.Metadata)
	if err != nil {
		return err
	}
	points, err := d.buffer(p.Points)
	if err != nil {
		return err
	}
	if p.Size[0] == 0 || p.Size[1] == 0 || p.Offset[0] < 0 || p.Offset[1] < 0 ||
		uint32(p.Offset[0])+p.Size[0] > t.w || uint32(p.Offset[1])+p.Size[1] > t.h {
		return fmt.Errorf("%w: box %v+%v in %dx%d", gpu.ErrOutOfRange, p.Offset, p.Size, t.w, t.h)
	}
	if uint64(p.MetaOffset) >= meta.size || uint64(p.PointOffset)*8 >= points.size {
		return fmt.Errorf("%w: outline offsets %d, %d", gpu.ErrOutOfRange, p.MetaOffset, p.PointOffset)
	}

	enc, err := d.encoder()
	if err != nil {
		return err
	}
	bg, err := d.uniformGroup("fontfusion_generate", d.pipes.genLayout, generateUniforms(p, t.w), meta, points, t.texels)
	if err != nil {
		return err
	}
	pass := enc.BeginComputePass(&hal.ComputePassDescriptor{Label: "fontfusion_generate"})
	pass.SetPipeline(d.pipes.generate)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch((p.Size[0]+7)/8, (p.Size[1]+7)/8, 1)
	pass.End()
	d.commands++
	return nil
}

// Draw implements gpu.Device.
func (d *Device) Draw(p gpu.DrawParams) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	target, err := d.texture(p.Target)
	if err != nil {
		return err
	}
	if !target.target() {
		return fmt.Errorf("%w: texture %d is not a render target", gpu.ErrBadSize, p.Target)
	}
	atlasTex, err := d.atlasTexture(p.Atlas)
	if err != nil {
		return err
	}
	index, err := d.buffer(p.Index)
	if err != nil {
		return err
	}
	instances, err := d.buffer(p.Instances)
	if err != nil {
		return err
	}
	if uint64(p.Count)*gpu.InstanceSize > instances.size {
		return fmt.Errorf("%w: %d instances in %d bytes", gpu.ErrOutOfRange, p.Count, instances.size)
	}
	if p.Count == 0 {
		return nil
	}

	enc, err := d.encoder()
	if err != nil {
		return err
	}
	data := drawUniforms(p, atlasTex.w, atlasTex.h, target.w, target.h)
	bg, err := d.uniformGroup("fontfusion_draw", d.pipes.drawLayout, data, index, instances, atlasTex.texels)
	if err != nil {
		return err
	}
	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "fontfusion_draw",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    target.view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	rp.SetPipeline(d.pipes.draw)
	rp.SetBindGroup(0, bg, nil)
	rp.Draw(6, p.Count, 0, 0)
	rp.End()
	d.commands++
	return nil
}
