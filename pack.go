package fontfusion

import (
	"fmt"

	"github.com/gogpu/fontfusion/atlas"
	"github.com/gogpu/fontfusion/font"
	"github.com/gogpu/fontfusion/gpu"
	"github.com/gogpu/fontfusion/internal/cpmap"
)

// pack is the per-font state. It is guarded by FontSystem.mu.
type pack struct {
	face font.Face
	cfg  Config
	upem float64

	glyphs  cpmap.Map
	skipped map[rune]error
	state   atlas.State
	entries []atlas.Entry

	texture gpu.TextureID
	index   gpu.BufferID

	// Batch upload buffers, recreated when too small.
	meta, points         gpu.BufferID
	metaSize, pointsSize uint64

	// Draw instances, grown by doubling.
	instances   gpu.BufferID
	instanceCap int

	released bool
}

func newPack(dev gpu.Device, face font.Face, cfg Config) (*pack, error) {
	upem := face.UnitsPerEm()
	if upem <= 0 {
		return nil, fmt.Errorf("fontfusion: face %q has %d units per em", face.Name(), upem)
	}
	p := &pack{
		face:    face,
		cfg:     cfg,
		upem:    float64(upem),
		skipped: make(map[rune]error),
		state:   atlas.NewState(cfg.AtlasWidth, cfg.AtlasHeight, cfg.Padding, cfg.IndexCapacity),
	}

	var err error
	p.texture, err = dev.CreateTexture(atlasDescriptor(cfg.AtlasWidth, cfg.AtlasHeight))
	if err != nil {
		return nil, fmt.Errorf("fontfusion: create atlas: %w", err)
	}
	p.index, err = dev.CreateBuffer(indexDescriptor(cfg.IndexCapacity))
	if err != nil {
		dev.DestroyTexture(p.texture)
		return nil, fmt.Errorf("fontfusion: create index: %w", err)
	}
	return p, nil
}

func atlasDescriptor(w, h int) gpu.TextureDescriptor {
	return gpu.TextureDescriptor{
		Label:  "fontfusion atlas",
		Width:  uint32(w),
		Height: uint32(h),
		Usage:  gpu.TextureAtlas | gpu.TextureCopySrc | gpu.TextureCopyDst,
	}
}

func indexDescriptor(capacity int) gpu.BufferDescriptor {
	return gpu.BufferDescriptor{
		Label: "fontfusion index",
		Size:  uint64(capacity) * atlas.EntrySize,
		Usage: gpu.BufferStorage | gpu.BufferCopySrc | gpu.BufferCopyDst,
	}
}

// release destroys every device resource of p. It is idempotent.
func (p *pack) release(dev gpu.Device) {
	if p.released {
		return
	}
	p.released = true
	dev.DestroyTexture(p.texture)
	dev.DestroyBuffer(p.index)
	if p.meta != 0 {
		dev.DestroyBuffer(p.meta)
	}
	if p.points != 0 {
		dev.DestroyBuffer(p.points)
	}
	if p.instances != 0 {
		dev.DestroyBuffer(p.instances)
	}
}

// ensureBuffer makes *id hold at least need bytes, replacing it with a
// buffer of max(need, 2*size) when it does not.
func ensureBuffer(dev gpu.Device, id *gpu.BufferID, size *uint64, need uint64, label string) error {
	if *id != 0 && *size >= need {
		return nil
	}
	n := max(need, 2**size)
	nb, err := dev.CreateBuffer(gpu.BufferDescriptor{
		Label: label,
		Size:  n,
		Usage: gpu.BufferStorage | gpu.BufferCopyDst,
	})
	if err != nil {
		return fmt.Errorf("fontfusion: create %s buffer: %w", label, err)
	}
	if *id != 0 {
		dev.DestroyBuffer(*id)
	}
	*id, *size = nb, n
	return nil
}
