package halgpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/generate.wgsl
var generateShaderSource string

//go:embed shaders/draw.wgsl
var drawShaderSource string

// targetFormat is the format of render targets.
const targetFormat = gputypes.TextureFormatRGBA8Unorm

// pipelines holds the compiled programs of a device.
type pipelines struct {
	genShader hal.ShaderModule
	genLayout hal.BindGroupLayout
	genPipe   hal.PipelineLayout
	generate  hal.ComputePipeline

	drawShader hal.ShaderModule
	drawLayout hal.BindGroupLayout
	drawPipe   hal.PipelineLayout
	draw       hal.RenderPipeline
}

// shaderSource returns the module source of wgsl, translated to SPIR-V
// when spirv is set.
func shaderSource(wgsl string, spirv bool) (hal.ShaderSource, error) {
	if !spirv {
		return hal.ShaderSource{WGSL: wgsl}, nil
	}
	b, err := naga.Compile(wgsl)
	if err != nil {
		return hal.ShaderSource{}, err
	}
	if len(b)%4 != 0 {
		return hal.ShaderSource{}, fmt.Errorf("spir-v length %d is not a multiple of 4", len(b))
	}
	code := make([]uint32, len(b)/4)
	for i := range code {
		code[i] = uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
	}
	return hal.ShaderSource{SPIRV: code}, nil
}

func createPipelines(dev hal.Device, spirv bool) (_ *pipelines, err error) {
	p := &pipelines{}
	defer func() {
		if err != nil {
			p.destroy(dev)
		}
	}()

	src, err := shaderSource(generateShaderSource, spirv)
	if err != nil {
		return nil, fmt.Errorf("translate generate shader: %w", err)
	}
	if p.genShader, err = dev.CreateShaderModule(&hal.ShaderModuleDescriptor{Label: "fontfusion_generate", Source: src}); err != nil {
		return nil, fmt.Errorf("compile generate shader: %w", err)
	}
	p.genLayout, err = dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "fontfusion_generate_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create generate bind group layout: %w", err)
	}
	p.genPipe, err = dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "fontfusion_generate_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{p.genLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("create generate pipeline layout: %w", err)
	}
	p.generate, err = dev.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "fontfusion_generate", Layout: p.genPipe,
		Compute: hal.ComputeState{Module: p.genShader, EntryPoint: "main"},
	})
	if err != nil {
		return nil, fmt.Errorf("create generate pipeline: %w", err)
	}

	src, err = shaderSource(drawShaderSource, spirv)
	if err != nil {
		return nil, fmt.Errorf("translate draw shader: %w", err)
	}
	if p.drawShader, err = dev.CreateShaderModule(&hal.ShaderModuleDescriptor{Label: "fontfusion_draw", Source: src}); err != nil {
		return nil, fmt.Errorf("compile draw shader: %w", err)
	}
	both := gputypes.ShaderStageVertex | gputypes.ShaderStageFragment
	p.drawLayout, err = dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "fontfusion_draw_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: both, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: both, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageVertex, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 3, Visibility: gputypes.ShaderStageFragment, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create draw bind group layout: %w", err)
	}
	p.drawPipe, err = dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "fontfusion_draw_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{p.drawLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("create draw pipeline layout: %w", err)
	}
	blend := gputypes.BlendStatePremultiplied()
	p.draw, err = dev.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "fontfusion_draw",
		Layout: p.drawPipe,
		Vertex: hal.VertexState{Module: p.drawShader, EntryPoint: "vs_main"},
		Fragment: &hal.FragmentState{
			Module:     p.drawShader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    targetFormat,
				Blend:     &blend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return nil, fmt.Errorf("create draw pipeline: %w", err)
	}
	return p, nil
}

// destroy releases the pipelines in reverse creation order.
func (p *pipelines) destroy(dev hal.Device) {
	if p.draw != nil {
		dev.DestroyRenderPipeline(p.draw)
	}
	if p.drawPipe != nil {
		dev.DestroyPipelineLayout(p.drawPipe)
	}
	if p.drawLayout != nil {
		dev.DestroyBindGroupLayout(p.drawLayout)
	}
	if p.drawShader != nil {
		dev.DestroyShaderModule(p.drawShader)
	}
	if p.generate != nil {
		dev.DestroyComputePipeline(p.generate)
	}
	if p.genPipe != nil {
		dev.DestroyPipelineLayout(p.genPipe)
	}
	if p.genLayout != nil {
		dev.DestroyBindGroupLayout(p.genLayout)
	}
	if p.genShader != nil {
		dev.DestroyShaderModule(p.genShader)
	}
}
