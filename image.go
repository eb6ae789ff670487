package vkcube

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//CoreImage owns an image, its memory and an optional view. Swapchain images are not
//CoreImages since the presentation engine owns them.
type CoreImage struct {
	device vk.Device
	Image  vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Format vk.Format
	Extent vk.Extent2D
	Aspect vk.ImageAspectFlags
}

type imageSpec struct {
	extent     vk.Extent2D
	format     vk.Format
	usage      vk.ImageUsageFlags
	aspect     vk.ImageAspectFlags
	properties vk.MemoryPropertyFlags
	families   []uint32
}

func NewCoreImage(device vk.Device, memProps vk.PhysicalDeviceMemoryProperties, spec imageSpec) (img *CoreImage, err error) {
	mode, familyCount, families := sharingMode(spec.families)
	img = &CoreImage{device: device, Format: spec.format, Extent: spec.extent, Aspect: spec.aspect}
	ret := vk.CreateImage(device, &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    spec.format,
		Extent: vk.Extent3D{
			Width:  spec.extent.Width,
			Height: spec.extent.Height,
			Depth:  1,
		},
		MipLevels:             1,
		ArrayLayers:           1,
		Samples:               vk.SampleCount1Bit,
		Tiling:                vk.ImageTilingOptimal,
		Usage:                 spec.usage,
		SharingMode:           mode,
		QueueFamilyIndexCount: familyCount,
		PQueueFamilyIndices:   families,
		InitialLayout:         vk.ImageLayoutUndefined,
	}, nil, &img.Image)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create image")
	}
	defer func() {
		if err != nil {
			img.Destroy()
			img = nil
		}
	}()

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device, img.Image, &reqs)
	img.Memory, err = allocateMemory(device, memProps, reqs, spec.properties)
	if err != nil {
		return nil, errors.Wrap(err, "image memory")
	}
	if ret := vk.BindImageMemory(device, img.Image, img.Memory, 0); isError(ret) {
		return nil, errors.Wrap(NewError(ret), "bind image memory")
	}
	img.View, err = newImageView(device, img.Image, spec.format, spec.aspect)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func newImageView(device vk.Device, image vk.Image, format vk.Format, aspect vk.ImageAspectFlags) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	if isError(ret) {
		return vk.NullImageView, errors.Wrap(NewError(ret), "create image view")
	}
	return view, nil
}

func (img *CoreImage) Destroy() {
	if img == nil || img.device == nil {
		return
	}
	if img.View != vk.NullImageView {
		vk.DestroyImageView(img.device, img.View, nil)
	}
	vk.DestroyImage(img.device, img.Image, nil)
	if img.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(img.device, img.Memory, nil)
	}
	img.View = vk.NullImageView
	img.Image = vk.NullImage
	img.Memory = vk.NullDeviceMemory
	img.device = nil
}

var depthCandidates = []vk.Format{
	vk.FormatD32Sfloat,
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
}

//ChooseDepthFormat returns the first candidate usable as an optimally tiled depth attachment.
func ChooseDepthFormat(gpu vk.PhysicalDevice) (vk.Format, error) {
	for _, format := range depthCandidates {
		var props vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(gpu, format, &props)
		props.Deref()
		if props.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit) != 0 {
			return format, nil
		}
	}
	return vk.FormatUndefined, errors.New("no supported depth format")
}

func hasStencil(format vk.Format) bool {
	return format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint
}

func depthAspect(format vk.Format) vk.ImageAspectFlags {
	aspect := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	if hasStencil(format) {
		aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	}
	return aspect
}
