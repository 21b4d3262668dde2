package fontfusion

import (
	"fmt"
	"log/slog"
	"maps"
	"math"

	"github.com/gogpu/fontfusion/atlas"
	"github.com/gogpu/fontfusion/font"
	"github.com/gogpu/fontfusion/gpu"
	"github.com/gogpu/fontfusion/outline"
)

// Result summarizes a RequestGlyphs call.
type Result struct {
	// Requested counts distinct codepoints that were neither indexed nor
	// previously skipped.
	Requested int
	// Generated counts codepoints added to the atlas.
	Generated int
	// Skipped counts codepoints whose outline could not be used.
	Skipped int
}

// NothingToDo reports whether every requested codepoint was already known.
func (r Result) NothingToDo() bool { return r.Requested == 0 }

// RequestGlyphs generates the codepoints of h that are not in the atlas
// yet. Glyphs with unusable outlines are skipped and logged; errors that
// leave the atlas unable to grow abort the whole call with the atlas
// unchanged. The Result of an aborted call still counts the skipped
// codepoints, but they are not remembered.
func (s *FontSystem) RequestGlyphs(h Handle, codepoints []rune) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.pack(h)
	if err != nil {
		return Result{}, err
	}
	return p.request(s.dev, s.logger(), codepoints)
}

// pending is a glyph that passed both outline passes.
type pending struct {
	r       rune
	metrics font.GlyphMetrics
	glyph   *outline.Glyph
	layout  outline.Layout
	size    atlas.Size
}

// boxSize returns the atlas box of a glyph of w by h font units.
func (p *pack) boxSize(w, h float64) atlas.Size {
	return atlas.Size{
		W: int(math.Ceil((w/outline.SerializerScale + p.cfg.Range) * p.cfg.Scale)),
		H: int(math.Ceil((h/outline.SerializerScale + p.cfg.Range) * p.cfg.Scale)),
	}
}

// translate places the outline of m inside its box, half the range from
// the bottom-left corner.
func (p *pack) translate(m font.GlyphMetrics) [2]float32 {
	half := p.cfg.Range / 2
	return [2]float32{
		float32(-m.BearingX/outline.SerializerScale + half),
		float32(-(m.BearingY-m.Height)/outline.SerializerScale + half),
	}
}

func (p *pack) prepare(r rune) (pending, error) {
	m, err := p.face.GlyphMetrics(r)
	if err != nil {
		return pending{}, err
	}
	src := outline.SourceFunc(func(v outline.Visitor) error {
		return p.face.Decompose(r, v)
	})
	layout, err := outline.Measure(src)
	if err != nil {
		return pending{}, err
	}
	g, err := outline.Serialize(src, layout, p.cfg.Seed)
	if err != nil {
		return pending{}, err
	}
	size := p.boxSize(m.Width, m.Height)
	if !p.state.Packer.Fits(size.W) {
		return pending{}, fmt.Errorf("%w: box %d wide, atlas %d", atlas.ErrGlyphTooWide, size.W, p.state.Width())
	}
	return pending{r: r, metrics: m, glyph: g, layout: layout, size: size}, nil
}

// request runs the generation pipeline for p. The caller holds the
// system lock.
func (p *pack) request(dev gpu.Device, log *slog.Logger, codepoints []rune) (Result, error) {
	var res Result
	skipped := make(map[rune]error)
	seen := make(map[rune]struct{}, len(codepoints))
	batch := make([]pending, 0, len(codepoints))
	for _, r := range codepoints {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		if _, ok := p.glyphs.Get(uint32(r)); ok {
			continue
		}
		if _, ok := p.skipped[r]; ok {
			continue
		}
		res.Requested++

		g, err := p.prepare(r)
		if err != nil {
			skipped[r] = err
			res.Skipped++
			log.Warn("fontfusion: skip glyph", "codepoint", r, "err", err)
			continue
		}
		for _, w := range g.glyph.Warnings {
			log.Warn("fontfusion: glyph warning", "codepoint", r, "err", w)
		}
		batch = append(batch, g)
	}
	if len(batch) > 0 {
		if err := p.commitBatch(dev, log, batch); err != nil {
			return res, err
		}
	}
	maps.Copy(p.skipped, skipped)
	res.Generated = len(batch)
	return res, nil
}

// commitBatch packs, uploads and generates batch. On error every resource
// created here is released and p is unchanged.
func (p *pack) commitBatch(dev gpu.Device, log *slog.Logger, batch []pending) (err error) {
	sizes := make([]atlas.Size, len(batch))
	for i, g := range batch {
		sizes[i] = g.size
	}
	plan, err := p.state.Plan(sizes, p.cfg.MaxTextureSize)
	if err != nil {
		return fmt.Errorf("fontfusion: pack %d glyphs: %w", len(batch), err)
	}

	texture, index := p.texture, p.index
	defer func() {
		if err != nil {
			if texture != p.texture {
				dev.DestroyTexture(texture)
			}
			if index != p.index {
				dev.DestroyBuffer(index)
			}
		}
	}()

	if plan.GrowTexture(&p.state) {
		texture, err = dev.CreateTexture(atlasDescriptor(p.state.Width(), plan.Height))
		if err != nil {
			texture = p.texture
			return fmt.Errorf("fontfusion: grow atlas: %w", err)
		}
		if err = dev.CopyTexture(p.texture, texture); err != nil {
			return fmt.Errorf("fontfusion: copy atlas: %w", err)
		}
		log.Debug("fontfusion: atlas grown", "from", p.state.Height, "to", plan.Height)
	}
	if plan.GrowIndex(&p.state) {
		index, err = dev.CreateBuffer(indexDescriptor(plan.Allocated))
		if err != nil {
			index = p.index
			return fmt.Errorf("fontfusion: grow index: %w", err)
		}
		if p.state.Glyphs > 0 {
			if err = dev.CopyBuffer(p.index, index, uint64(p.state.Glyphs)*atlas.EntrySize); err != nil {
				return fmt.Errorf("fontfusion: copy index: %w", err)
			}
		}
		log.Debug("fontfusion: index grown", "from", p.state.Allocated, "to", plan.Allocated)
	}

	entries := make([]atlas.Entry, len(batch))
	for i, g := range batch {
		rect := plan.Rects[i]
		entries[i] = atlas.Entry{
			OffsetX:     float32(rect.X),
			OffsetY:     float32(rect.Y),
			SizeX:       float32(rect.W),
			SizeY:       float32(rect.H),
			BearingX:    float32(g.metrics.BearingX),
			BearingY:    float32(g.metrics.BearingY),
			GlyphWidth:  float32(g.metrics.Width),
			GlyphHeight: float32(g.metrics.Height),
		}
	}
	if err = dev.WriteBuffer(index, uint64(plan.First())*atlas.EntrySize, atlas.EncodeEntries(entries)); err != nil {
		return fmt.Errorf("fontfusion: write index: %w", err)
	}

	if err = p.generate(dev, texture, plan, batch); err != nil {
		return err
	}
	if err = dev.Submit(); err != nil {
		return fmt.Errorf("fontfusion: submit: %w", err)
	}

	if texture != p.texture {
		dev.DestroyTexture(p.texture)
		p.texture = texture
	}
	if index != p.index {
		dev.DestroyBuffer(p.index)
		p.index = index
	}
	for i, g := range batch {
		e := p.glyphs.Insert(uint32(g.r))
		e.Index = plan.First() + i
		e.Advance = [2]float64{g.metrics.Advance, g.metrics.VerticalAdvance}
	}
	p.entries = append(p.entries, entries...)
	p.state.Commit(plan)
	log.Debug("fontfusion: glyphs generated", "count", len(batch), "total", p.state.Glyphs)
	return nil
}

// generate uploads the serialized outlines of batch and issues one
// Generate per glyph with contours.
func (p *pack) generate(dev gpu.Device, texture gpu.TextureID, plan atlas.Plan, batch []pending) error {
	var metaLen, pointLen int
	for _, g := range batch {
		if g.glyph.Empty() {
			continue
		}
		metaLen += g.layout.MetadataSize()
		pointLen += g.layout.PointBufferSize()
	}
	if metaLen == 0 {
		return nil
	}

	// Devices address metadata as 32-bit words.
	meta := make([]byte, (metaLen+3)&^3)
	points := make([]byte, pointLen)
	type placement struct{ meta, point int }
	offsets := make([]placement, len(batch))
	mo, po := 0, 0
	for i, g := range batch {
		if g.glyph.Empty() {
			continue
		}
		ms, ps := g.layout.MetadataSize(), g.layout.PointBufferSize()
		if err := outline.Encode(g.glyph, meta[mo:mo+ms], points[po:po+ps]); err != nil {
			return fmt.Errorf("fontfusion: encode %U: %w", g.r, err)
		}
		offsets[i] = placement{mo, po / 8}
		mo += ms
		po += ps
	}

	if err := ensureBuffer(dev, &p.meta, &p.metaSize, uint64(len(meta)), "fontfusion metadata"); err != nil {
		return err
	}
	if err := ensureBuffer(dev, &p.points, &p.pointsSize, uint64(len(points)), "fontfusion points"); err != nil {
		return err
	}
	if err := dev.WriteBuffer(p.meta, 0, meta); err != nil {
		return fmt.Errorf("fontfusion: upload metadata: %w", err)
	}
	if err := dev.WriteBuffer(p.points, 0, points); err != nil {
		return fmt.Errorf("fontfusion: upload points: %w", err)
	}

	projection := OrthoProjection(0, float32(p.state.Width()), float32(plan.Height), 0, -1, 1)
	for i, g := range batch {
		if g.glyph.Empty() {
			continue
		}
		rect := plan.Rects[i]
		err := dev.Generate(gpu.GenerateParams{
			Atlas:       texture,
			Metadata:    p.meta,
			Points:      p.points,
			MetaOffset:  uint32(offsets[i].meta),
			PointOffset: uint32(offsets[i].point),
			Projection:  projection,
			Offset:      [2]float32{float32(rect.X), float32(rect.Y)},
			Size:        [2]uint32{uint32(rect.W), uint32(rect.H)},
			Translate:   p.translate(g.metrics),
			Scale:       float32(p.cfg.Scale),
			Range:       float32(p.cfg.Range),
			Orientation: float32(g.glyph.Orientation()),
		})
		if err != nil {
			return fmt.Errorf("fontfusion: generate %U: %w", g.r, err)
		}
	}
	return nil
}
