package vkcube

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//CorePipeline owns the descriptor set layout, pipeline layout and the single graphics
//pipeline. None of them depend on the swapchain extent.
type CorePipeline struct {
	device            vk.Device
	descriptor_layout vk.DescriptorSetLayout
	layout            vk.PipelineLayout
	pipeline          vk.Pipeline
}

//descriptorBindings is binding 0 = uniform buffer for the vertex stage, binding 1 =
//combined image sampler for the fragment stage.
func descriptorBindings() []vk.DescriptorSetLayoutBinding {
	return []vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
		{
			Binding:         1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}
}

//PipelineBuilder collects the fixed function state of the cuboid pipeline.
type PipelineBuilder struct {
	_shaderStages         []vk.PipelineShaderStageCreateInfo
	_vertexBindings       []vk.VertexInputBindingDescription
	_vertexAttributes     []vk.VertexInputAttributeDescription
	_inputAssembly        vk.PipelineInputAssemblyStateCreateInfo
	_rasterizer           vk.PipelineRasterizationStateCreateInfo
	_multisampling        vk.PipelineMultisampleStateCreateInfo
	_depthStencil         vk.PipelineDepthStencilStateCreateInfo
	_colorBlendAttachment vk.PipelineColorBlendAttachmentState
	_dynamicStates        []vk.DynamicState
}

func NewPipelineBuilder(vert, frag vk.ShaderModule, frontFaceCCW bool) *PipelineBuilder {
	pb := &PipelineBuilder{}

	pb._shaderStages = []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vert,
			PName:  safeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: frag,
			PName:  safeString("main"),
		},
	}

	pb._vertexBindings = []vk.VertexInputBindingDescription{vertexBindingDescription()}
	pb._vertexAttributes = vertexAttributeDescriptions()

	pb._inputAssembly = vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}

	//a Y-flipping projection reverses the apparent winding
	frontFace := vk.FrontFaceClockwise
	if frontFaceCCW {
		frontFace = vk.FrontFaceCounterClockwise
	}
	pb._rasterizer = vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:               frontFace,
		DepthBiasEnable:         vk.False,
		LineWidth:               1.0,
	}

	pb._multisampling = vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		SampleShadingEnable:  vk.False,
		MinSampleShading:     1.0,
	}

	pb._depthStencil = vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       vk.True,
		DepthWriteEnable:      vk.True,
		DepthCompareOp:        vk.CompareOpLess,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
	}

	pb._colorBlendAttachment = vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
			vk.ColorComponentBBit | vk.ColorComponentABit),
		BlendEnable: vk.False,
	}

	pb._dynamicStates = []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	return pb
}

func (p *PipelineBuilder) build(device vk.Device, renderPass vk.RenderPass, layout vk.PipelineLayout) (vk.Pipeline, error) {
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(p._vertexBindings)),
		PVertexBindingDescriptions:      p._vertexBindings,
		VertexAttributeDescriptionCount: uint32(len(p._vertexAttributes)),
		PVertexAttributeDescriptions:    p._vertexAttributes,
	}
	//counts only, the actual rectangles are set while recording
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	blendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{p._colorBlendAttachment},
	}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(p._dynamicStates)),
		PDynamicStates:    p._dynamicStates,
	}

	pipelines := []vk.Pipeline{vk.NullPipeline}
	ret := vk.CreateGraphicsPipelines(device, nil, 1, []vk.GraphicsPipelineCreateInfo{{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(p._shaderStages)),
		PStages:             p._shaderStages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &p._inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &p._rasterizer,
		PMultisampleState:   &p._multisampling,
		PDepthStencilState:  &p._depthStencil,
		PColorBlendState:    &blendState,
		PDynamicState:       &dynamicState,
		Layout:              layout,
		RenderPass:          renderPass,
		Subpass:             0,
	}}, nil, pipelines)
	if isError(ret) {
		return vk.NullPipeline, errors.Wrap(NewError(ret), "create graphics pipeline")
	}
	return pipelines[0], nil
}

//NewCorePipeline builds the layouts and pipeline for renderPass from SPIR-V byte code.
//The shader modules only live for the duration of the call.
func NewCorePipeline(device vk.Device, renderPass vk.RenderPass, vertCode, fragCode []byte, frontFaceCCW bool) (core *CorePipeline, err error) {
	core = &CorePipeline{device: device}
	defer func() {
		if err != nil {
			core.Destroy()
			core = nil
		}
	}()

	bindings := descriptorBindings()
	ret := vk.CreateDescriptorSetLayout(device, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}, nil, &core.descriptor_layout)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create descriptor set layout")
	}

	ret = vk.CreatePipelineLayout(device, &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{core.descriptor_layout},
	}, nil, &core.layout)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create pipeline layout")
	}

	vert, err := NewShaderModule(device, vertCode)
	if err != nil {
		return nil, errors.Wrap(err, "vertex shader")
	}
	defer vk.DestroyShaderModule(device, vert, nil)
	frag, err := NewShaderModule(device, fragCode)
	if err != nil {
		return nil, errors.Wrap(err, "fragment shader")
	}
	defer vk.DestroyShaderModule(device, frag, nil)

	core.pipeline, err = NewPipelineBuilder(vert, frag, frontFaceCCW).build(device, renderPass, core.layout)
	if err != nil {
		return nil, err
	}
	return core, nil
}

func (c *CorePipeline) Handle() vk.Pipeline { return c.pipeline }

func (c *CorePipeline) Layout() vk.PipelineLayout { return c.layout }

func (c *CorePipeline) DescriptorLayout() vk.DescriptorSetLayout { return c.descriptor_layout }

//Destroy releases the pipeline before its layout and the set layout last.
func (c *CorePipeline) Destroy() {
	if c == nil || c.device == nil {
		return
	}
	if c.pipeline != vk.NullPipeline {
		vk.DestroyPipeline(c.device, c.pipeline, nil)
	}
	if c.layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(c.device, c.layout, nil)
	}
	vk.DestroyDescriptorSetLayout(c.device, c.descriptor_layout, nil)
	c.device = nil
}
