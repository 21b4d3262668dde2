// Package halgpu implements gpu.Device on a wgpu hal device.
//
// Atlas textures are kept as storage buffers of packed RGBA8 texels: the
// generation program is a compute pass writing one glyph box, and atlas
// growth is a row-wise buffer copy. Render targets are real textures;
// Draw records an instanced render pass that reads the atlas buffer in the
// fragment stage.
//
// Commands are recorded into one encoder and executed by Submit, which
// waits on a fence. Buffer writes go through the queue and are ordered
// before the next submission.
//
// A device either opens its own adapter:
//
//	dev, err := halgpu.New()
//
// or shares one with a host framework:
//
//	dev, err := halgpu.NewFromProvider(provider)
package halgpu
