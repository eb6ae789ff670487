package vkcube

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestTransitionBarrierKnownPairs(t *testing.T) {
	b, err := transitionBarrier(vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	require.NoError(t, err)
	assert.Equal(t, vk.AccessFlags(0), b.srcAccess)
	assert.Equal(t, vk.AccessFlags(vk.AccessTransferWriteBit), b.dstAccess)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageTransferBit), b.dstStage)

	b, err = transitionBarrier(vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	require.NoError(t, err)
	assert.Equal(t, vk.AccessFlags(vk.AccessShaderReadBit), b.dstAccess)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit), b.dstStage)

	b, err = transitionBarrier(vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal)
	require.NoError(t, err)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit), b.dstStage)
	assert.NotZero(t, b.dstAccess&vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit))
}

func TestTransitionBarrierUnsupported(t *testing.T) {
	pairs := [][2]vk.ImageLayout{
		{vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutUndefined},
		{vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutUndefined},
		{vk.ImageLayoutUndefined, vk.ImageLayoutShaderReadOnlyOptimal},
		{vk.ImageLayoutPresentSrc, vk.ImageLayoutTransferDstOptimal},
	}
	for _, p := range pairs {
		_, err := transitionBarrier(p[0], p[1])
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupportedTransition))
	}
}

func TestCmdTransitionImageRejectsBeforeRecording(t *testing.T) {
	//no command buffer is touched when the pair is unknown
	err := cmdTransitionImage(nil, vk.NullImage, vk.ImageAspectFlags(vk.ImageAspectColorBit),
		vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutUndefined)
	assert.True(t, errors.Is(err, ErrUnsupportedTransition))
}

func TestDepthAspect(t *testing.T) {
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectDepthBit), depthAspect(vk.FormatD32Sfloat))
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectDepthBit|vk.ImageAspectStencilBit), depthAspect(vk.FormatD24UnormS8Uint))
}
