package vkcube

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//FrameSlot is everything one in-flight frame needs. Slots are allocated once; only the
//command buffer contents and the uniform bytes change from frame to frame.
type FrameSlot struct {
	Uniform          *CoreBuffer
	Descriptor       vk.DescriptorSet
	Commands         vk.CommandBuffer
	TransferCommands vk.CommandBuffer
	ImageAvailable   vk.Semaphore
	RenderFinished   vk.Semaphore
	InFlight         vk.Fence
}

//CoreFrames is the fixed arena of MaxFramesInFlight slots addressed by the frame cursor.
type CoreFrames struct {
	device          vk.Device
	graphics_pool   *CorePool
	transfer_pool   *CorePool
	descriptor_pool vk.DescriptorPool
	has_descriptors bool
	slots           [MaxFramesInFlight]FrameSlot
}

func NewCoreFrames(device *CoreDevice, layout vk.DescriptorSetLayout, texture *CoreTexture) (frames *CoreFrames, err error) {
	dev := device.Device()
	families := device.Families()
	frames = &CoreFrames{device: dev}
	defer func() {
		if err != nil {
			frames.Destroy()
			frames = nil
		}
	}()

	frames.graphics_pool, err = NewCorePool(dev, families.Graphics, device.GraphicsQueue())
	if err != nil {
		return nil, err
	}
	commands, err := frames.graphics_pool.Allocate(MaxFramesInFlight)
	if err != nil {
		return nil, err
	}
	var transferCommands []vk.CommandBuffer
	if families.DedicatedTransfer {
		frames.transfer_pool, err = NewCorePool(dev, families.Transfer, device.TransferQueue())
		if err != nil {
			return nil, err
		}
		transferCommands, err = frames.transfer_pool.Allocate(MaxFramesInFlight)
		if err != nil {
			return nil, err
		}
	}

	frames.descriptor_pool, err = newDescriptorPool(dev, MaxFramesInFlight)
	if err != nil {
		return nil, err
	}
	frames.has_descriptors = true

	for i := range frames.slots {
		slot := &frames.slots[i]
		slot.Commands = commands[i]
		if transferCommands != nil {
			slot.TransferCommands = transferCommands[i]
		}

		slot.Uniform, err = NewCoreBuffer(dev, device.MemoryProperties(), bufferSpec{
			size:       vk.DeviceSize(uniformBufferSize),
			usage:      vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
			properties: vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "uniform buffer %d", i)
		}
		//stays mapped for the life of the slot
		if _, err = slot.Uniform.Map(); err != nil {
			return nil, err
		}

		slot.Descriptor, err = allocateDescriptorSet(dev, frames.descriptor_pool, layout)
		if err != nil {
			return nil, err
		}
		writeDescriptorSet(dev, slot.Descriptor, slot.Uniform, texture)

		if err = frames.createSync(slot); err != nil {
			return nil, errors.Wrapf(err, "sync objects %d", i)
		}
	}
	return frames, nil
}

func (f *CoreFrames) createSync(slot *FrameSlot) error {
	semaphoreInfo := &vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	if ret := vk.CreateSemaphore(f.device, semaphoreInfo, nil, &slot.ImageAvailable); isError(ret) {
		return NewError(ret)
	}
	if ret := vk.CreateSemaphore(f.device, semaphoreInfo, nil, &slot.RenderFinished); isError(ret) {
		return NewError(ret)
	}
	//signaled so the very first wait on each slot returns immediately
	ret := vk.CreateFence(f.device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}, nil, &slot.InFlight)
	return NewError(ret)
}

//Slot returns the slot at index i of the arena.
func (f *CoreFrames) Slot(i int) *FrameSlot {
	return &f.slots[i]
}

func (f *CoreFrames) Len() int { return len(f.slots) }

func (f *CoreFrames) GraphicsPool() *CorePool { return f.graphics_pool }

func (f *CoreFrames) releaseSync() {
	for i := range f.slots {
		slot := &f.slots[i]
		if slot.InFlight != vk.NullFence {
			vk.DestroyFence(f.device, slot.InFlight, nil)
			slot.InFlight = vk.NullFence
		}
		if slot.RenderFinished != vk.NullSemaphore {
			vk.DestroySemaphore(f.device, slot.RenderFinished, nil)
			slot.RenderFinished = vk.NullSemaphore
		}
		if slot.ImageAvailable != vk.NullSemaphore {
			vk.DestroySemaphore(f.device, slot.ImageAvailable, nil)
			slot.ImageAvailable = vk.NullSemaphore
		}
	}
}

//releaseCommands destroys the command pools, which frees every slot command buffer.
func (f *CoreFrames) releaseCommands() {
	f.transfer_pool.Destroy()
	f.graphics_pool.Destroy()
	for i := range f.slots {
		f.slots[i].Commands = nil
		f.slots[i].TransferCommands = nil
	}
}

func (f *CoreFrames) releaseUniforms() {
	for i := range f.slots {
		f.slots[i].Uniform.Destroy()
	}
}

func (f *CoreFrames) releaseDescriptors() {
	if !f.has_descriptors {
		return
	}
	vk.DestroyDescriptorPool(f.device, f.descriptor_pool, nil)
	f.has_descriptors = false
}

//Destroy releases sync objects, command pools, uniform buffers and the descriptor pool
//in that order. The device must be idle.
func (f *CoreFrames) Destroy() {
	if f == nil || f.device == nil {
		return
	}
	f.releaseSync()
	f.releaseCommands()
	f.releaseUniforms()
	f.releaseDescriptors()
	f.device = nil
}
