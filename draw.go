package fontfusion

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/fontfusion/gpu"
)

// GlyphInstance is one glyph to draw. Index comes from [Font.Lookup];
// Position is the pen on the baseline in the space of the projection
// passed to Draw.
type GlyphInstance = gpu.Instance

// Draw renders instances of font h into target.
func (s *FontSystem) Draw(h Handle, target gpu.TextureID, instances []GlyphInstance, projection Mat4) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.pack(h)
	if err != nil {
		return err
	}
	if len(instances) == 0 {
		return nil
	}
	for i, in := range instances {
		if int(in.Index) >= p.state.Glyphs {
			return fmt.Errorf("%w: instance %d uses index %d of %d", ErrUnknownGlyph, i, in.Index, p.state.Glyphs)
		}
	}

	if len(instances) > p.instanceCap {
		n := max(p.instanceCap, 64)
		for n < len(instances) {
			n *= 2
		}
		id, err := s.dev.CreateBuffer(gpu.BufferDescriptor{
			Label: "fontfusion instances",
			Size:  uint64(n) * gpu.InstanceSize,
			Usage: gpu.BufferStorage | gpu.BufferCopyDst,
		})
		if err != nil {
			return fmt.Errorf("fontfusion: create instance buffer: %w", err)
		}
		if p.instances != 0 {
			s.dev.DestroyBuffer(p.instances)
		}
		p.instances, p.instanceCap = id, n
	}
	if err := s.dev.WriteBuffer(p.instances, 0, gpu.EncodeInstances(instances)); err != nil {
		return fmt.Errorf("fontfusion: upload instances: %w", err)
	}

	err = s.dev.Draw(gpu.DrawParams{
		Target:         target,
		Atlas:          p.texture,
		Index:          p.index,
		Instances:      p.instances,
		Count:          uint32(len(instances)),
		Projection:     projection,
		FontProjection: OrthoProjection(0, float32(p.state.Width()), 0, float32(p.state.Height), -1, 1),
		Padding:        float32(p.cfg.Range * 32),
		DPI:            float32(p.cfg.DPI),
		UnitsPerEm:     float32(p.upem),
	})
	if err != nil {
		return fmt.Errorf("fontfusion: draw: %w", err)
	}
	return s.dev.Submit()
}

// LayoutString places the NFC-normalized str on one baseline per line,
// starting at origin, generating missing glyphs. Codepoints without a
// glyph advance the pen but produce no instance. A newline returns the pen
// to origin[0] and moves it down by the face's line height.
func (s *FontSystem) LayoutString(h Handle, str string, origin [2]float32, size float64, color [4]float32, kerning bool) ([]GlyphInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.pack(h)
	if err != nil {
		return nil, err
	}
	runes := []rune(norm.NFC.String(str))
	if _, err := p.request(s.dev, s.logger(), runes); err != nil {
		return nil, err
	}

	k := p.pixelsPerUnit(size)
	line := p.face.Metrics().Height * k
	x, y := float64(origin[0]), float64(origin[1])
	out := make([]GlyphInstance, 0, len(runes))
	for i, r := range runes {
		if r == '\n' {
			x = float64(origin[0])
			y += line
			continue
		}
		if kerning && i > 0 && runes[i-1] != '\n' {
			x += p.face.Kerning(runes[i-1], r) * k
		}
		if e, ok := p.glyphs.Get(uint32(r)); ok {
			out = append(out, GlyphInstance{
				Position: [2]float32{float32(x), float32(y)},
				Color:    color,
				Index:    uint32(e.Index),
				Size:     float32(size),
			})
		}
		x += p.advance(r)[0] * k
	}
	return out, nil
}
