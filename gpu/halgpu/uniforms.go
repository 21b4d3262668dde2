package halgpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/fontfusion/gpu"
)

// Uniform block sizes; both are multiples of 16 as WGSL requires.
const (
	generateUniformSize = 48
	drawUniformSize     = 160
)

type writer struct {
	b   []byte
	off int
}

func (w *writer) f32(v float32) {
	binary.LittleEndian.PutUint32(w.b[w.off:], math.Float32bits(v))
	w.off += 4
}

func (w *writer) u32(v uint32) {
	binary.LittleEndian.PutUint32(w.b[w.off:], v)
	w.off += 4
}

func (w *writer) mat(m gpu.Mat4) {
	for _, v := range m {
		w.f32(v)
	}
}

// generateUniforms packs the Params block of generate.wgsl.
func generateUniforms(p gpu.GenerateParams, atlasWidth uint32) []byte {
	w := writer{b: make([]byte, generateUniformSize)}
	w.f32(p.Offset[0])
	w.f32(p.Offset[1])
	w.u32(p.Size[0])
	w.u32(p.Size[1])
	w.f32(p.Translate[0])
	w.f32(p.Translate[1])
	w.f32(p.Scale)
	w.f32(p.Range)
	w.f32(p.Orientation)
	w.u32(p.MetaOffset)
	w.u32(p.PointOffset)
	w.u32(atlasWidth)
	return w.b
}

// drawUniforms packs the Uniforms block of draw.wgsl.
func drawUniforms(p gpu.DrawParams, atlasW, atlasH, targetW, targetH uint32) []byte {
	w := writer{b: make([]byte, drawUniformSize)}
	w.mat(p.Projection)
	w.mat(p.FontProjection)
	w.f32(p.Padding)
	w.f32(p.DPI)
	w.f32(p.UnitsPerEm)
	w.u32(atlasW)
	w.u32(atlasH)
	w.u32(targetW)
	w.u32(targetH)
	return w.b
}
