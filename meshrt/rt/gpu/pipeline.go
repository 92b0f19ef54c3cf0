package gpu

import (
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// PipelineBuilder is a value builder for raster pipelines. Every With*
// call returns a modified copy; nothing happens until Compile or
// RenderContext.CreateRasterPipeline.
type PipelineBuilder struct {
	library          string
	vertex           string
	fragment         string
	colorAttachments []wgpu.TextureFormat
}

func NewPipelineBuilder() PipelineBuilder {
	return PipelineBuilder{}
}

func (b PipelineBuilder) WithShaderLibrary(path string) PipelineBuilder {
	b.library = path
	return b
}

func (b PipelineBuilder) WithVertexFunction(name string) PipelineBuilder {
	b.vertex = name
	return b
}

func (b PipelineBuilder) WithFragmentFunction(name string) PipelineBuilder {
	b.fragment = name
	return b
}

// WithColorAttachment appends a color target. The n-th call fills slot n.
func (b PipelineBuilder) WithColorAttachment(format wgpu.TextureFormat) PipelineBuilder {
	// Clip so copies of b never share a backing array.
	b.colorAttachments = append(slices.Clip(b.colorAttachments), format)
	return b
}

// PipelineDesc is a compiled pipeline description. ColorAttachments[i] is
// the format bound to color slot i.
type PipelineDesc struct {
	Library          *ShaderLibrary
	VertexEntry      string
	FragmentEntry    string
	ColorAttachments []wgpu.TextureFormat
}

// Compile loads the shader library and resolves both entry points. It
// compiles again on every call.
func (b PipelineBuilder) Compile() (PipelineDesc, error) {
	lib, err := LoadShaderLibrary(b.library)
	if err != nil {
		return PipelineDesc{}, err
	}
	if err := lib.Function(b.vertex, StageVertex); err != nil {
		return PipelineDesc{}, err
	}
	if err := lib.Function(b.fragment, StageFragment); err != nil {
		return PipelineDesc{}, err
	}
	return PipelineDesc{
		Library:          lib,
		VertexEntry:      b.vertex,
		FragmentEntry:    b.fragment,
		ColorAttachments: slices.Clone(b.colorAttachments),
	}, nil
}

// PipelineState is an immutable compiled pipeline.
type PipelineState struct {
	Desc     PipelineDesc
	pipeline *wgpu.RenderPipeline
}

func (p *PipelineState) Release() {
	if p == nil || p.pipeline == nil {
		return
	}
	p.pipeline.Release()
	p.pipeline = nil
}

const vec3Stride = uint64(len(mgl32.Vec3{}) * 4)

// geometryLayouts is the packed geometry layout: positions in slot 0 and
// normals in slot 1, both float32x3.
func geometryLayouts() []wgpu.VertexBufferLayout {
	return []wgpu.VertexBufferLayout{
		{
			ArrayStride: vec3Stride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			},
		},
		{
			ArrayStride: vec3Stride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 1},
			},
		},
	}
}

func (rc *RenderContext) createShaderModule(lib *ShaderLibrary) (*wgpu.ShaderModule, error) {
	desc := &wgpu.ShaderModuleDescriptor{Label: lib.Path}
	if lib.Binary != nil {
		desc.SPIRVDescriptor = &wgpu.ShaderModuleSPIRVDescriptor{Code: lib.Binary}
	} else {
		desc.WGSLDescriptor = &wgpu.ShaderModuleWGSLDescriptor{Code: lib.Source}
	}
	module, err := rc.device.CreateShaderModule(desc)
	if err != nil {
		return nil, &ShaderLoadError{Path: lib.Path, Err: err}
	}
	return module, nil
}

// CreateRasterPipeline compiles b into a pipeline. depth may be nil for a
// pipeline without depth testing.
func (rc *RenderContext) CreateRasterPipeline(b PipelineBuilder, depth *DepthStencilState) (*PipelineState, error) {
	desc, err := b.Compile()
	if err != nil {
		return nil, err
	}
	if len(desc.ColorAttachments) == 0 {
		return nil, errors.Errorf("pipeline %s: no color attachments", desc.Library.Path)
	}

	module, err := rc.createShaderModule(desc.Library)
	if err != nil {
		return nil, err
	}
	defer module.Release()

	targets := make([]wgpu.ColorTargetState, len(desc.ColorAttachments))
	for i, format := range desc.ColorAttachments {
		targets[i] = wgpu.ColorTargetState{
			Format:    format,
			WriteMask: wgpu.ColorWriteMaskAll,
		}
	}

	var depthState *wgpu.DepthStencilState
	if depth != nil {
		state := depth.state
		depthState = &state
	}

	pipeline, err := rc.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: desc.Library.Path,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: desc.VertexEntry,
			Buffers:    geometryLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: desc.FragmentEntry,
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: depthState,
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create pipeline %s", desc.Library.Path)
	}
	rc.log.Debugf("pipeline %s: %s/%s, %d color attachments", desc.Library.Path, desc.VertexEntry, desc.FragmentEntry, len(targets))

	return &PipelineState{Desc: desc, pipeline: pipeline}, nil
}
