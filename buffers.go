package vkcube

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//CoreBuffer owns a buffer handle and its backing allocation. Destroy releases both
//and may be called any number of times.
type CoreBuffer struct {
	device vk.Device
	Buffer vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
	mapped unsafe.Pointer
}

type bufferSpec struct {
	size       vk.DeviceSize
	usage      vk.BufferUsageFlags
	properties vk.MemoryPropertyFlags
	//families > 1 switches the buffer to concurrent sharing
	families []uint32
}

func sharingMode(families []uint32) (vk.SharingMode, uint32, []uint32) {
	if len(families) > 1 {
		return vk.SharingModeConcurrent, uint32(len(families)), families
	}
	return vk.SharingModeExclusive, 0, nil
}

func NewCoreBuffer(device vk.Device, memProps vk.PhysicalDeviceMemoryProperties, spec bufferSpec) (buf *CoreBuffer, err error) {
	mode, familyCount, families := sharingMode(spec.families)
	buf = &CoreBuffer{device: device, Size: spec.size}
	ret := vk.CreateBuffer(device, &vk.BufferCreateInfo{
		SType:                 vk.StructureTypeBufferCreateInfo,
		Size:                  spec.size,
		Usage:                 spec.usage,
		SharingMode:           mode,
		QueueFamilyIndexCount: familyCount,
		PQueueFamilyIndices:   families,
	}, nil, &buf.Buffer)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create buffer")
	}
	defer func() {
		if err != nil {
			buf.Destroy()
			buf = nil
		}
	}()

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, buf.Buffer, &reqs)
	buf.Memory, err = allocateMemory(device, memProps, reqs, spec.properties)
	if err != nil {
		return nil, errors.Wrap(err, "buffer memory")
	}
	if ret := vk.BindBufferMemory(device, buf.Buffer, buf.Memory, 0); isError(ret) {
		return nil, errors.Wrap(NewError(ret), "bind buffer memory")
	}
	return buf, nil
}

//Map persistently maps the whole buffer. Repeated calls return the same pointer.
func (b *CoreBuffer) Map() (unsafe.Pointer, error) {
	if b.mapped != nil {
		return b.mapped, nil
	}
	var ptr unsafe.Pointer
	ret := vk.MapMemory(b.device, b.Memory, 0, b.Size, 0, &ptr)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "map memory")
	}
	b.mapped = ptr
	return ptr, nil
}

func (b *CoreBuffer) Unmap() {
	if b.mapped == nil {
		return
	}
	vk.UnmapMemory(b.device, b.Memory)
	b.mapped = nil
}

//Write copies data to the start of a persistently mapped buffer.
func (b *CoreBuffer) Write(data []byte) error {
	if vk.DeviceSize(len(data)) > b.Size {
		return errors.Errorf("write of %d bytes overflows buffer of %d", len(data), b.Size)
	}
	ptr, err := b.Map()
	if err != nil {
		return err
	}
	if n := vk.Memcopy(ptr, data); n != len(data) {
		return errors.Errorf("short copy into buffer: %d != %d", n, len(data))
	}
	return nil
}

//Read copies size bytes out of the mapped buffer.
func (b *CoreBuffer) Read(size int) ([]byte, error) {
	ptr, err := b.Map()
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(ptr), size))
	return out, nil
}

func (b *CoreBuffer) Destroy() {
	if b == nil || b.device == nil {
		return
	}
	b.Unmap()
	vk.DestroyBuffer(b.device, b.Buffer, nil)
	if b.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(b.device, b.Memory, nil)
	}
	b.Buffer = vk.NullBuffer
	b.Memory = vk.NullDeviceMemory
	b.device = nil
}
