package vkcube

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type CoreRenderPass struct {
	device      vk.Device
	render_pass vk.RenderPass
}

type renderPassDescription struct {
	attachments  []vk.AttachmentDescription
	colorRefs    []vk.AttachmentReference
	depthRef     vk.AttachmentReference
	dependencies []vk.SubpassDependency
}

//renderPassLayout describes the single pass: a presented color attachment and a depth
//attachment that is cleared each frame and never stored.
func renderPassLayout(colorFormat, depthFormat vk.Format) renderPassDescription {
	attachments := []vk.AttachmentDescription{
		{
			Format:         colorFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		},
		{
			Format:         depthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}

	//Writes of this subpass wait for the previous frame's color output and late depth tests
	dependencies := []vk.SubpassDependency{{
		SrcSubpass: vk.MaxUint32,
		DstSubpass: 0,
		SrcStageMask: vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit |
			vk.PipelineStageLateFragmentTestsBit),
		DstStageMask: vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit |
			vk.PipelineStageEarlyFragmentTestsBit),
		SrcAccessMask: vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit |
			vk.AccessDepthStencilAttachmentWriteBit),
	}}

	return renderPassDescription{
		attachments: attachments,
		colorRefs: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
		depthRef: vk.AttachmentReference{
			Attachment: 1,
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
		dependencies: dependencies,
	}
}

func NewCoreRenderPass(device vk.Device, colorFormat, depthFormat vk.Format) (*CoreRenderPass, error) {
	desc := renderPassLayout(colorFormat, depthFormat)
	subpasses := []vk.SubpassDescription{{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    uint32(len(desc.colorRefs)),
		PColorAttachments:       desc.colorRefs,
		PDepthStencilAttachment: &desc.depthRef,
	}}

	core := &CoreRenderPass{device: device}
	ret := vk.CreateRenderPass(device, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(desc.attachments)),
		PAttachments:    desc.attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(desc.dependencies)),
		PDependencies:   desc.dependencies,
	}, nil, &core.render_pass)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create render pass")
	}
	return core, nil
}

func (c *CoreRenderPass) Handle() vk.RenderPass { return c.render_pass }

func (c *CoreRenderPass) Destroy() {
	if c == nil || c.device == nil {
		return
	}
	vk.DestroyRenderPass(c.device, c.render_pass, nil)
	c.render_pass = vk.NullRenderPass
	c.device = nil
}
