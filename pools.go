package vkcube

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//CorePool is a command pool bound to one queue family together with the queue it submits to.
type CorePool struct {
	device vk.Device
	pool   vk.CommandPool
	queue  vk.Queue
	family uint32
}

//NewCorePool creates a pool whose command buffers can be reset individually.
func NewCorePool(device vk.Device, family uint32, queue vk.Queue) (*CorePool, error) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if isError(ret) {
		return nil, errors.Wrapf(NewError(ret), "create command pool for family %d", family)
	}
	return &CorePool{device: device, pool: pool, queue: queue, family: family}, nil
}

//Allocate returns count primary command buffers from the pool.
func (c *CorePool) Allocate(count int) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, count)
	ret := vk.AllocateCommandBuffers(c.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}, buffers)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "allocate command buffers")
	}
	return buffers, nil
}

//SubmitOnce records fn into a throwaway command buffer, submits it to the pool's queue and
//blocks on a fence until the GPU has executed it.
func (c *CorePool) SubmitOnce(fn func(cmd vk.CommandBuffer) error) error {
	buffers, err := c.Allocate(1)
	if err != nil {
		return err
	}
	defer vk.FreeCommandBuffers(c.device, c.pool, 1, buffers)
	cmd := buffers[0]

	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if isError(ret) {
		return errors.Wrap(NewError(ret), "begin one-time commands")
	}
	if err := fn(cmd); err != nil {
		vk.EndCommandBuffer(cmd)
		return err
	}
	if ret := vk.EndCommandBuffer(cmd); isError(ret) {
		return errors.Wrap(NewError(ret), "end one-time commands")
	}

	var fence vk.Fence
	ret = vk.CreateFence(c.device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}, nil, &fence)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "create upload fence")
	}
	defer vk.DestroyFence(c.device, fence, nil)

	ret = vk.QueueSubmit(c.queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    buffers,
	}}, fence)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "submit one-time commands")
	}
	ret = vk.WaitForFences(c.device, 1, []vk.Fence{fence}, vk.True, vk.MaxUint64)
	return errors.Wrap(NewError(ret), "wait one-time commands")
}

func (c *CorePool) Destroy() {
	if c == nil || c.device == nil {
		return
	}
	vk.DestroyCommandPool(c.device, c.pool, nil)
	c.pool = vk.NullCommandPool
	c.device = nil
}
