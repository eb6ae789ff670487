package vkcube

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type layoutPair struct {
	from, to vk.ImageLayout
}

//layoutBarrier is the access and stage masks guarding one layout transition.
type layoutBarrier struct {
	srcAccess vk.AccessFlags
	dstAccess vk.AccessFlags
	srcStage  vk.PipelineStageFlags
	dstStage  vk.PipelineStageFlags
}

var layoutTransitions = map[layoutPair]layoutBarrier{
	{vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal}: {
		srcAccess: 0,
		dstAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
		srcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		dstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
	},
	{vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal}: {
		srcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
		dstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
		srcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		dstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
	},
	{vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal}: {
		srcAccess: 0,
		dstAccess: vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
		srcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		dstStage:  vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
	},
}

func transitionBarrier(from, to vk.ImageLayout) (layoutBarrier, error) {
	barrier, ok := layoutTransitions[layoutPair{from, to}]
	if !ok {
		return layoutBarrier{}, errors.Wrapf(ErrUnsupportedTransition, "%d -> %d", from, to)
	}
	return barrier, nil
}

//cmdTransitionImage records the barrier for from -> to on cmd.
func cmdTransitionImage(cmd vk.CommandBuffer, image vk.Image, aspect vk.ImageAspectFlags, from, to vk.ImageLayout) error {
	b, err := transitionBarrier(from, to)
	if err != nil {
		return err
	}
	vk.CmdPipelineBarrier(cmd, b.srcStage, b.dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       b.srcAccess,
		DstAccessMask:       b.dstAccess,
		OldLayout:           from,
		NewLayout:           to,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: 1,
			LayerCount: 1,
		},
	}})
	return nil
}
