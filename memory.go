package vkcube

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//FindMemoryType returns the first memory type allowed by filter whose property flags
//contain every bit of required.
func FindMemoryType(props vk.PhysicalDeviceMemoryProperties, filter uint32, required vk.MemoryPropertyFlags) (uint32, error) {
	props.Deref()
	count := props.MemoryTypeCount
	if count > vk.MaxMemoryTypes {
		count = vk.MaxMemoryTypes
	}
	for i := uint32(0); i < count; i++ {
		if filter&(1<<i) == 0 {
			continue
		}
		props.MemoryTypes[i].Deref()
		if props.MemoryTypes[i].PropertyFlags&required == required {
			return i, nil
		}
	}
	return 0, errors.Wrapf(ErrNoSuitableMemoryType, "filter %#x, properties %#x", filter, uint32(required))
}

func allocateMemory(device vk.Device, props vk.PhysicalDeviceMemoryProperties,
	reqs vk.MemoryRequirements, required vk.MemoryPropertyFlags) (vk.DeviceMemory, error) {

	reqs.Deref()
	typeIndex, err := FindMemoryType(props, reqs.MemoryTypeBits, required)
	if err != nil {
		return vk.NullDeviceMemory, err
	}
	var memory vk.DeviceMemory
	ret := vk.AllocateMemory(device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: typeIndex,
	}, nil, &memory)
	if isError(ret) {
		return vk.NullDeviceMemory, errors.Wrap(NewError(ret), "allocate memory")
	}
	return memory, nil
}
