//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// computePipeline bundles the HAL objects behind one compute shader with the
// uniform / read-only storage / read-write storage binding layout shared by
// the warp and blend shaders.
type computePipeline struct {
	label      string
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
}

func newComputePipeline(device hal.Device, label, wgsl string) (*computePipeline, error) {
	code, err := compileSPIRV(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", label, err)
	}

	p := &computePipeline{label: label}
	p.shader, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s shader module: %w", label, err)
	}

	p.bindLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: label + "_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("create %s bind group layout: %w", label, err)
	}

	p.pipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: label + "_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("create %s pipeline layout: %w", label, err)
	}

	p.pipeline, err = device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: label + "_pipeline", Layout: p.pipeLayout,
		Compute: hal.ComputeState{Module: p.shader, EntryPoint: "main"},
	})
	if err != nil {
		p.destroy(device)
		return nil, fmt.Errorf("create %s compute pipeline: %w", label, err)
	}
	return p, nil
}

func (p *computePipeline) destroy(device hal.Device) {
	if p == nil || device == nil {
		return
	}
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
	if p.shader != nil {
		device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
