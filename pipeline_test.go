package vkcube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestRenderPassLayout(t *testing.T) {
	desc := renderPassLayout(vk.FormatB8g8r8a8Srgb, vk.FormatD32Sfloat)
	require.Len(t, desc.attachments, 2)

	color, depth := desc.attachments[0], desc.attachments[1]
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, color.Format)
	assert.Equal(t, vk.AttachmentLoadOpClear, color.LoadOp)
	assert.Equal(t, vk.AttachmentStoreOpStore, color.StoreOp)
	assert.Equal(t, vk.ImageLayoutPresentSrc, color.FinalLayout)

	assert.Equal(t, vk.FormatD32Sfloat, depth.Format)
	assert.Equal(t, vk.AttachmentLoadOpClear, depth.LoadOp)
	assert.Equal(t, vk.AttachmentStoreOpDontCare, depth.StoreOp)
	assert.Equal(t, vk.ImageLayoutDepthStencilAttachmentOptimal, depth.FinalLayout)

	assert.Equal(t, uint32(1), desc.depthRef.Attachment)
	require.Len(t, desc.dependencies, 1)
	dep := desc.dependencies[0]
	assert.Equal(t, uint32(vk.MaxUint32), dep.SrcSubpass)
	assert.Equal(t, uint32(0), dep.DstSubpass)
	assert.NotZero(t, dep.SrcStageMask&vk.PipelineStageFlags(vk.PipelineStageLateFragmentTestsBit))
	assert.NotZero(t, dep.SrcStageMask&vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit))
	assert.NotZero(t, dep.DstAccessMask&vk.AccessFlags(vk.AccessColorAttachmentWriteBit))
	assert.NotZero(t, dep.DstAccessMask&vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit))
}

func TestDescriptorBindings(t *testing.T) {
	b := descriptorBindings()
	require.Len(t, b, 2)
	assert.Equal(t, vk.DescriptorTypeUniformBuffer, b[0].DescriptorType)
	assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageVertexBit), b[0].StageFlags)
	assert.Equal(t, uint32(1), b[1].Binding)
	assert.Equal(t, vk.DescriptorTypeCombinedImageSampler, b[1].DescriptorType)
	assert.Equal(t, vk.ShaderStageFlags(vk.ShaderStageFragmentBit), b[1].StageFlags)
}

func TestPipelineBuilderState(t *testing.T) {
	pb := NewPipelineBuilder(vk.NullShaderModule, vk.NullShaderModule, true)
	assert.Len(t, pb._shaderStages, 2)
	assert.Equal(t, vk.PrimitiveTopologyTriangleList, pb._inputAssembly.Topology)
	assert.Equal(t, vk.CullModeFlags(vk.CullModeBackBit), pb._rasterizer.CullMode)
	assert.Equal(t, vk.FrontFaceCounterClockwise, pb._rasterizer.FrontFace)
	assert.Equal(t, vk.Bool32(vk.True), pb._depthStencil.DepthTestEnable)
	assert.Equal(t, vk.Bool32(vk.True), pb._depthStencil.DepthWriteEnable)
	assert.Equal(t, vk.CompareOpLess, pb._depthStencil.DepthCompareOp)
	assert.Equal(t, vk.Bool32(vk.False), pb._depthStencil.StencilTestEnable)
	assert.Equal(t, vk.Bool32(vk.False), pb._colorBlendAttachment.BlendEnable)
	assert.Equal(t, []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}, pb._dynamicStates)
	assert.Equal(t, vertexStride, pb._vertexBindings[0].Stride)

	cw := NewPipelineBuilder(vk.NullShaderModule, vk.NullShaderModule, false)
	assert.Equal(t, vk.FrontFaceClockwise, cw._rasterizer.FrontFace)
}
