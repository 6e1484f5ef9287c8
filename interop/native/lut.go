// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fieldview/interop"
)

//go:embed shaders/colormap.wgsl
var colormapShaderWGSL string

// lutWorkgroupSize must match @workgroup_size in colormap.wgsl.
const lutWorkgroupSize = 256

// lutPipeline holds the compute pipeline that applies a 256-entry colormap
// on the device, writing RGB triples straight into a shared buffer.
type lutPipeline struct {
	shaderModule hal.ShaderModule
	bindLayout   hal.BindGroupLayout
	pipeLayout   hal.PipelineLayout
	pipeline     hal.ComputePipeline
}

func newLUTPipeline(device hal.Device) (*lutPipeline, error) {
	spirvBytes, err := naga.Compile(colormapShaderWGSL)
	if err != nil {
		return nil, fmt.Errorf("native: compile colormap shader: %w", err)
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	p := &lutPipeline{}
	p.shaderModule, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "colormap_shader",
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create colormap shader module: %w", err)
	}

	p.bindLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "colormap_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("native: create colormap bind group layout: %w", err)
	}

	p.pipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "colormap_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("native: create colormap pipeline layout: %w", err)
	}

	p.pipeline, err = device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "colormap_pipeline",
		Layout: p.pipeLayout,
		Compute: hal.ComputeState{
			Module:     p.shaderModule,
			EntryPoint: "cs_colormap",
		},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("native: create colormap pipeline: %w", err)
	}

	return p, nil
}

func (p *lutPipeline) destroy(device hal.Device) {
	if p.pipeline != nil {
		device.DestroyComputePipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shaderModule != nil {
		device.DestroyShaderModule(p.shaderModule)
		p.shaderModule = nil
	}
}

// lutBytes packs 256 RGB entries as vec4<f32> (std430 padding).
func lutBytes(lut *[256][3]float32) []byte {
	out := make([]byte, 256*16)
	for i, c := range lut {
		off := i * 16
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(c[0]))
		binary.LittleEndian.PutUint32(out[off+4:], math.Float32bits(c[1]))
		binary.LittleEndian.PutUint32(out[off+8:], math.Float32bits(c[2]))
		binary.LittleEndian.PutUint32(out[off+12:], math.Float32bits(1))
	}
	return out
}

// TransformLUT colormaps field through lut directly on the device, writing
// RGB triples into the registered shared buffer. The buffer must not be
// mapped. The caller falls back to the CPU transform when this fails.
func (b *Backend) TransformLUT(reg interop.RegistrationID, field []float32, lut *[256][3]float32) error {
	nb, err := b.lookup(reg)
	if err != nil {
		return err
	}
	if nb.staging != nil {
		return interop.ErrAlreadyMapped
	}
	if len(field)*3 != nb.elems {
		return fmt.Errorf("%w: %d elements into capacity %d",
			interop.ErrCapacityMismatch, len(field), nb.elems)
	}

	if b.lut == nil {
		p, err := newLUTPipeline(b.device)
		if err != nil {
			return err
		}
		b.lut = p
	}

	n := uint32(len(field))
	config := make([]byte, 16)
	binary.LittleEndian.PutUint32(config, n)

	configBuf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "colormap_config", Size: 16,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("native: create config buffer: %w", err)
	}
	defer b.device.DestroyBuffer(configBuf)

	fieldBuf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "colormap_field", Size: uint64(len(field)) * 4,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("native: create field buffer: %w", err)
	}
	defer b.device.DestroyBuffer(fieldBuf)

	lutBuf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "colormap_lut", Size: 256 * 16,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("native: create lut buffer: %w", err)
	}
	defer b.device.DestroyBuffer(lutBuf)

	b.queue.WriteBuffer(configBuf, 0, config)
	b.queue.WriteBuffer(fieldBuf, 0, floatsToBytes(field))
	b.queue.WriteBuffer(lutBuf, 0, lutBytes(lut))

	bg, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "colormap_bind",
		Layout: b.lut.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: configBuf.NativeHandle(), Offset: 0, Size: 16}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: fieldBuf.NativeHandle(), Offset: 0, Size: uint64(len(field)) * 4}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: lutBuf.NativeHandle(), Offset: 0, Size: 256 * 16}},
			{Binding: 3, Resource: gputypes.BufferBinding{Buffer: nb.buf.NativeHandle(), Offset: 0, Size: uint64(nb.elems) * 4}},
		},
	})
	if err != nil {
		return fmt.Errorf("native: create bind group: %w", err)
	}
	defer b.device.DestroyBindGroup(bg)

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "colormap_dispatch",
	})
	if err != nil {
		return fmt.Errorf("native: create encoder: %w", err)
	}
	if err := encoder.BeginEncoding("colormap_dispatch"); err != nil {
		return fmt.Errorf("native: begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "colormap_pass"})
	pass.SetPipeline(b.lut.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch((n+lutWorkgroupSize-1)/lutWorkgroupSize, 1, 1)
	pass.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("native: create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)
	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	ok, err := b.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !ok {
		return fmt.Errorf("native: wait for colormap dispatch: ok=%v err=%w", ok, err)
	}

	// Presentation reads the host shadow; refresh it from the device.
	id := b.regs[reg]
	shadow, err := b.ReadBuffer(id)
	if err != nil {
		return fmt.Errorf("native: refresh shadow: %w", err)
	}
	nb.shadow = shadow
	return nil
}
