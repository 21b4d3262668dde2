package soft

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/gogpu/fontfusion/atlas"
	"github.com/gogpu/fontfusion/gpu"
	"github.com/gogpu/fontfusion/msdf"
)

// affine is a 2D transform: x' = a*x + c*y + e, y' = b*x + d*y + f.
type affine struct{ a, b, c, d, e, f float64 }

func (m affine) apply(x, y float64) (float64, float64) {
	return m.a*x + m.c*y + m.e, m.b*x + m.d*y + m.f
}

// then returns m followed by n.
func (m affine) then(n affine) affine {
	return affine{
		a: n.a*m.a + n.c*m.b,
		b: n.b*m.a + n.d*m.b,
		c: n.a*m.c + n.c*m.d,
		d: n.b*m.c + n.d*m.d,
		e: n.a*m.e + n.c*m.f + n.e,
		f: n.b*m.e + n.d*m.f + n.f,
	}
}

func (m affine) det() float64 { return m.a*m.d - m.b*m.c }

func (m affine) invert() (affine, bool) {
	det := m.det()
	if det == 0 || math.IsNaN(det) {
		return affine{}, false
	}
	return affine{
		a: m.d / det,
		b: -m.b / det,
		c: -m.c / det,
		d: m.a / det,
		e: (m.c*m.f - m.d*m.e) / det,
		f: (m.b*m.e - m.a*m.f) / det,
	}, true
}

// viewport maps clip space of a projection to pixels of a w by h image,
// y down.
func viewport(p gpu.Mat4, w, h int) affine {
	clip := affine{
		a: float64(p[0]), b: float64(p[1]),
		c: float64(p[4]), d: float64(p[5]),
		e: float64(p[12]), f: float64(p[13]),
	}
	return clip.then(affine{
		a: float64(w) / 2, d: -float64(h) / 2,
		e: float64(w) / 2, f: float64(h) / 2,
	})
}

// Draw implements gpu.Device. Each instance is rendered as a quad covering
// the glyph box: the three channels are sampled bilinearly, their median
// is turned into coverage over the screen-space distance range and the
// instance color is blended over the target.
func (d *Device) Draw(p gpu.DrawParams) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	target, ok := d.textures[p.Target]
	if !ok {
		return fmt.Errorf("%w: %d", gpu.ErrUnknownTexture, p.Target)
	}
	atlasImg, ok := d.textures[p.Atlas]
	if !ok {
		return fmt.Errorf("%w: %d", gpu.ErrUnknownTexture, p.Atlas)
	}
	index, ok := d.buffers[p.Index]
	if !ok {
		return fmt.Errorf("%w: %d", gpu.ErrUnknownBuffer, p.Index)
	}
	instances, ok := d.buffers[p.Instances]
	if !ok {
		return fmt.Errorf("%w: %d", gpu.ErrUnknownBuffer, p.Instances)
	}
	if uint64(p.Count)*gpu.InstanceSize > uint64(len(instances)) {
		return fmt.Errorf("%w: %d instances in %d bytes", gpu.ErrOutOfRange, p.Count, len(instances))
	}

	screen := viewport(p.Projection, target.Rect.Dx(), target.Rect.Dy())
	texels := viewport(p.FontProjection, atlasImg.Rect.Dx(), atlasImg.Rect.Dy())
	// Undo the y flip: atlas rows grow downward like the pixel coordinates
	// FontProjection is built over.
	texels = texels.then(affine{a: 1, d: -1, f: float64(atlasImg.Rect.Dy())})

	for k := uint32(0); k < p.Count; k++ {
		in := gpu.DecodeInstance(instances[k*gpu.InstanceSize:])
		if uint64(in.Index+1)*atlas.EntrySize > uint64(len(index)) {
			return fmt.Errorf("%w: glyph index %d", gpu.ErrOutOfRange, in.Index)
		}
		e := atlas.DecodeEntry(index[in.Index*atlas.EntrySize:])
		drawGlyph(target, atlasImg, screen, texels, p, in, e)
	}
	d.record(Call{Op: OpDraw, Src: uint64(p.Atlas), Dst: uint64(p.Target), Size: uint64(p.Count)})
	return nil
}

func drawGlyph(target, atlasImg *image.RGBA, screen, texels affine, p gpu.DrawParams, in gpu.Instance, e atlas.Entry) {
	if e.SizeX <= 0 || e.SizeY <= 0 || p.UnitsPerEm <= 0 {
		return
	}
	px := float64(in.Size) * float64(p.DPI) / 72 / float64(p.UnitsPerEm)
	pad := float64(p.Padding)
	left := float64(e.BearingX) - pad
	bottom := float64(e.BearingY-e.GlyphHeight) - pad
	qw := float64(e.GlyphWidth) + 2*pad
	qh := float64(e.GlyphHeight) + 2*pad

	// Font units, y up, to world coordinates, y down from the baseline.
	font := affine{
		a: px,
		c: float64(in.Skew) * px,
		d: -px,
		e: float64(in.Position[0] + in.Offset[0]),
		f: float64(in.Position[1] + in.Offset[1]),
	}
	toScreen := font.then(screen)
	inv, ok := toScreen.invert()
	if !ok {
		return
	}

	bounds := image.Rectangle{}
	for i, c := range [4][2]float64{{left, bottom}, {left + qw, bottom}, {left, bottom + qh}, {left + qw, bottom + qh}} {
		x, y := toScreen.apply(c[0], c[1])
		r := image.Rect(int(math.Floor(x)), int(math.Floor(y)), int(math.Ceil(x))+1, int(math.Ceil(y))+1)
		if i == 0 {
			bounds = r
		} else {
			bounds = bounds.Union(r)
		}
	}
	bounds = bounds.Intersect(target.Rect)
	if bounds.Empty() {
		return
	}

	// Screen pixels per atlas pixel, times the range in atlas pixels.
	screenRange := math.Sqrt(math.Abs(toScreen.det())) * qw / float64(e.SizeX) * pad / 32

	mask := image.NewAlpha(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			fx, fy := inv.apply(float64(x)+.5, float64(y)+.5)
			u := (fx - left) / qw
			v := 1 - (fy-bottom)/qh
			if u < 0 || u > 1 || v < 0 || v > 1 {
				continue
			}
			ax, ay := texels.apply(float64(e.OffsetX)+u*float64(e.SizeX), float64(e.OffsetY)+v*float64(e.SizeY))
			m := sampleMedian(atlasImg, ax, ay, e)
			a := (m-.5+float64(in.Strength))*screenRange + .5
			a = math.Max(0, math.Min(1, a)) * float64(in.Color[3])
			mask.SetAlpha(x, y, color.Alpha{A: uint8(math.Round(a * 255))})
		}
	}
	src := image.NewUniform(color.NRGBA{
		R: unit8(in.Color[0]), G: unit8(in.Color[1]), B: unit8(in.Color[2]), A: 255,
	})
	draw.DrawMask(target, bounds, src, image.Point{}, mask, bounds.Min, draw.Over)
}

// sampleMedian bilinearly samples the atlas at texel coordinates (x, y),
// clamped to the glyph box, and returns the channel median in [0, 1].
func sampleMedian(img *image.RGBA, x, y float64, e atlas.Entry) float64 {
	x0, y0 := float64(e.OffsetX), float64(e.OffsetY)
	x1, y1 := x0+float64(e.SizeX)-1, y0+float64(e.SizeY)-1
	x = math.Max(x0, math.Min(x1, x-.5))
	y = math.Max(y0, math.Min(y1, y-.5))
	ix, iy := math.Floor(x), math.Floor(y)
	tx, ty := x-ix, y-iy

	var ch [3]float64
	for c := 0; c < 3; c++ {
		p00 := texel(img, int(ix), int(iy), c)
		p10 := texel(img, int(math.Min(ix+1, x1)), int(iy), c)
		p01 := texel(img, int(ix), int(math.Min(iy+1, y1)), c)
		p11 := texel(img, int(math.Min(ix+1, x1)), int(math.Min(iy+1, y1)), c)
		top := p00 + (p10-p00)*tx
		bot := p01 + (p11-p01)*tx
		ch[c] = top + (bot-top)*ty
	}
	m := msdf.Median(byte(math.Round(ch[0])), byte(math.Round(ch[1])), byte(math.Round(ch[2])))
	return float64(m) / 255
}

func texel(img *image.RGBA, x, y, c int) float64 {
	if !(image.Point{X: x, Y: y}.In(img.Rect)) {
		return 0
	}
	return float64(img.Pix[img.PixOffset(x, y)+c])
}

func unit8(v float32) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, float64(v))) * 255))
}
