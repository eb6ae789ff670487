package vkcube

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//CoreUploader moves data from host memory into device-local buffers and images through
//short-lived staging buffers.
type CoreUploader struct {
	device   *CoreDevice
	transfer *CorePool
	graphics *CorePool
}

func NewCoreUploader(device *CoreDevice) (*CoreUploader, error) {
	families := device.Families()
	graphics, err := NewCorePool(device.Device(), families.Graphics, device.GraphicsQueue())
	if err != nil {
		return nil, err
	}
	u := &CoreUploader{device: device, graphics: graphics, transfer: graphics}
	if families.DedicatedTransfer {
		u.transfer, err = NewCorePool(device.Device(), families.Transfer, device.TransferQueue())
		if err != nil {
			graphics.Destroy()
			return nil, err
		}
	}
	return u, nil
}

//TransferPool is the pool uploads are recorded from. It equals GraphicsPool when the
//device has no dedicated transfer family.
func (u *CoreUploader) TransferPool() *CorePool { return u.transfer }

func (u *CoreUploader) GraphicsPool() *CorePool { return u.graphics }

func (u *CoreUploader) newStaging(size int, usage vk.BufferUsageFlagBits) (*CoreBuffer, error) {
	return NewCoreBuffer(u.device.Device(), u.device.MemoryProperties(), bufferSpec{
		size:       vk.DeviceSize(size),
		usage:      vk.BufferUsageFlags(usage),
		properties: vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit),
	})
}

func (u *CoreUploader) fillStaging(data []byte) (*CoreBuffer, error) {
	staging, err := u.newStaging(len(data), vk.BufferUsageTransferSrcBit)
	if err != nil {
		return nil, errors.Wrap(err, "staging buffer")
	}
	//coherent memory, no flush needed before unmapping
	if err := staging.Write(data); err != nil {
		staging.Destroy()
		return nil, err
	}
	staging.Unmap()
	return staging, nil
}

//UploadBuffer copies data into a new device-local buffer with the given usage. Transfer
//source usage is added so the contents can be read back.
func (u *CoreUploader) UploadBuffer(data []byte, usage vk.BufferUsageFlagBits) (*CoreBuffer, error) {
	if len(data) == 0 {
		return nil, errors.New("upload of empty buffer")
	}
	staging, err := u.fillStaging(data)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	dst, err := NewCoreBuffer(u.device.Device(), u.device.MemoryProperties(), bufferSpec{
		size:       vk.DeviceSize(len(data)),
		usage:      vk.BufferUsageFlags(usage | vk.BufferUsageTransferDstBit | vk.BufferUsageTransferSrcBit),
		properties: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		families:   u.device.Families().SharedFamilies(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "device buffer")
	}
	if err := u.copyBuffer(staging, dst, len(data)); err != nil {
		dst.Destroy()
		return nil, err
	}
	return dst, nil
}

func (u *CoreUploader) copyBuffer(src, dst *CoreBuffer, size int) error {
	return u.transfer.SubmitOnce(func(cmd vk.CommandBuffer) error {
		vk.CmdCopyBuffer(cmd, src.Buffer, dst.Buffer, 1, []vk.BufferCopy{{
			Size: vk.DeviceSize(size),
		}})
		return nil
	})
}

//Download reads size bytes of a device-local buffer back to the host.
func (u *CoreUploader) Download(src *CoreBuffer, size int) ([]byte, error) {
	readback, err := u.newStaging(size, vk.BufferUsageTransferDstBit)
	if err != nil {
		return nil, errors.Wrap(err, "readback buffer")
	}
	defer readback.Destroy()
	if err := u.copyBuffer(src, readback, size); err != nil {
		return nil, err
	}
	return readback.Read(size)
}

//UploadImage copies tightly packed RGBA8 pixels into a sampled, device-local image left in
//shader-read-only layout.
func (u *CoreUploader) UploadImage(pixels []byte, width, height int) (*CoreImage, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return nil, errors.Errorf("image upload: %d bytes do not describe %dx%d RGBA8", len(pixels), width, height)
	}
	staging, err := u.fillStaging(pixels)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	extent := vk.Extent2D{Width: uint32(width), Height: uint32(height)}
	img, err := NewCoreImage(u.device.Device(), u.device.MemoryProperties(), imageSpec{
		extent:     extent,
		format:     vk.FormatR8g8b8a8Srgb,
		usage:      vk.ImageUsageFlags(vk.ImageUsageTransferDstBit | vk.ImageUsageSampledBit),
		aspect:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
		properties: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		families:   u.device.Families().SharedFamilies(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "texture image")
	}

	err = u.transfer.SubmitOnce(func(cmd vk.CommandBuffer) error {
		if err := cmdTransitionImage(cmd, img.Image, img.Aspect,
			vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
			return err
		}
		vk.CmdCopyBufferToImage(cmd, staging.Buffer, img.Image, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask: img.Aspect,
				LayerCount: 1,
			},
			ImageExtent: vk.Extent3D{Width: extent.Width, Height: extent.Height, Depth: 1},
		}})
		return nil
	})
	if err != nil {
		img.Destroy()
		return nil, errors.Wrap(err, "copy texture")
	}

	//fragment shader stages only exist on the graphics queue
	if err := u.TransitionImage(img, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		img.Destroy()
		return nil, err
	}
	return img, nil
}

//TransitionImage moves img between layouts on the graphics queue and waits for it.
func (u *CoreUploader) TransitionImage(img *CoreImage, from, to vk.ImageLayout) error {
	if _, err := transitionBarrier(from, to); err != nil {
		return err
	}
	return u.graphics.SubmitOnce(func(cmd vk.CommandBuffer) error {
		return cmdTransitionImage(cmd, img.Image, img.Aspect, from, to)
	})
}

//PrepareDepth puts a freshly created depth image into attachment layout.
func (u *CoreUploader) PrepareDepth(img *CoreImage) error {
	return errors.Wrap(u.TransitionImage(img, vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal), "prepare depth")
}

func (u *CoreUploader) Destroy() {
	if u == nil {
		return
	}
	if u.transfer != u.graphics {
		u.transfer.Destroy()
	}
	u.graphics.Destroy()
}
