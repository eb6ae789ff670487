package vkcube

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type surfaceSupport struct {
	caps         vk.SurfaceCapabilities
	formats      []vk.SurfaceFormat
	presentModes []vk.PresentMode
}

func querySurfaceSupport(gpu vk.PhysicalDevice, surface vk.Surface) surfaceSupport {
	var support surfaceSupport
	vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &support.caps)
	support.caps.Deref()
	support.caps.CurrentExtent.Deref()
	support.caps.MinImageExtent.Deref()
	support.caps.MaxImageExtent.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, nil)
	support.formats = make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, support.formats)
	for i := range support.formats {
		support.formats[i].Deref()
	}

	var modeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &modeCount, nil)
	support.presentModes = make([]vk.PresentMode, modeCount)
	vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &modeCount, support.presentModes)
	return support
}

//ChooseSurfaceFormat prefers 32-bit BGRA sRGB with a nonlinear sRGB color space and
//otherwise takes the first advertised format. formats must not be empty.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	return formats[0]
}

//ChoosePresentMode prefers mailbox; FIFO is always available.
func ChoosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

//ChooseExtent returns the surface's fixed extent, or the framebuffer pixel size clamped
//to the allowed range when the surface leaves the choice to the application.
func ChooseExtent(caps vk.SurfaceCapabilities, fbWidth, fbHeight int) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clamp(uint32(fbWidth), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(uint32(fbHeight), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

//ChooseImageCount asks for one more image than the minimum; a zero maximum means unbounded.
func ChooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

//CoreSwapchain owns the swapchain and everything sized by it: image views, the shared
//depth attachment and one framebuffer per image.
type CoreSwapchain struct {
	device   *CoreDevice
	surface  vk.Surface
	provider SurfaceProvider
	uploader *CoreUploader

	swapchain    vk.Swapchain
	format       vk.SurfaceFormat
	present_mode vk.PresentMode
	depth_format vk.Format
	extent       vk.Extent2D
	images       []vk.Image
	image_views  []vk.ImageView
	framebuffers []vk.Framebuffer
	depth        *CoreImage
	render_pass  vk.RenderPass

	generation int
}

//NewCoreSwapchain negotiates the swapchain and its image views. Framebuffers come later
//through AttachRenderPass since the render pass depends on the chosen formats.
func NewCoreSwapchain(device *CoreDevice, surface vk.Surface, provider SurfaceProvider, uploader *CoreUploader) (*CoreSwapchain, error) {
	depthFormat, err := ChooseDepthFormat(device.PhysicalDevice())
	if err != nil {
		return nil, err
	}
	sc := &CoreSwapchain{
		device:       device,
		surface:      surface,
		provider:     provider,
		uploader:     uploader,
		depth_format: depthFormat,
	}
	if err := sc.create(); err != nil {
		sc.Destroy()
		return nil, err
	}
	return sc, nil
}

func (sc *CoreSwapchain) create() error {
	dev := sc.device.Device()
	support := querySurfaceSupport(sc.device.PhysicalDevice(), sc.surface)
	if len(support.formats) == 0 {
		return errors.New("surface reports no formats")
	}
	sc.format = ChooseSurfaceFormat(support.formats)
	sc.present_mode = ChoosePresentMode(support.presentModes)
	width, height := sc.provider.FramebufferSize()
	sc.extent = ChooseExtent(support.caps, width, height)
	imageCount := ChooseImageCount(support.caps)

	families := sc.device.Families()
	mode := vk.SharingModeExclusive
	var indices []uint32
	if families.Graphics != families.Present {
		mode = vk.SharingModeConcurrent
		indices = []uint32{families.Graphics, families.Present}
	}

	ret := vk.CreateSwapchain(dev, &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               sc.surface,
		MinImageCount:         imageCount,
		ImageFormat:           sc.format.Format,
		ImageColorSpace:       sc.format.ColorSpace,
		ImageExtent:           sc.extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      mode,
		QueueFamilyIndexCount: uint32(len(indices)),
		PQueueFamilyIndices:   indices,
		PreTransform:          support.caps.CurrentTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           sc.present_mode,
		Clipped:               vk.True,
		OldSwapchain:          vk.NullSwapchain,
	}, nil, &sc.swapchain)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "create swapchain")
	}

	var count uint32
	ret = vk.GetSwapchainImages(dev, sc.swapchain, &count, nil)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "get swapchain images")
	}
	if count < MaxFramesInFlight {
		return errors.Wrapf(ErrTooFewImages, "%d images for %d frames", count, MaxFramesInFlight)
	}
	sc.images = make([]vk.Image, count)
	vk.GetSwapchainImages(dev, sc.swapchain, &count, sc.images)

	sc.image_views = make([]vk.ImageView, 0, count)
	for _, img := range sc.images {
		view, err := newImageView(dev, img, sc.format.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return err
		}
		sc.image_views = append(sc.image_views, view)
	}
	sc.generation++
	return nil
}

//AttachRenderPass creates the depth attachment and framebuffers for renderPass. The render
//pass is remembered for every later Recreate.
func (sc *CoreSwapchain) AttachRenderPass(renderPass vk.RenderPass) error {
	sc.render_pass = renderPass
	return sc.createFramebuffers()
}

func (sc *CoreSwapchain) createFramebuffers() error {
	dev := sc.device.Device()
	depth, err := NewCoreImage(dev, sc.device.MemoryProperties(), imageSpec{
		extent:     sc.extent,
		format:     sc.depth_format,
		usage:      vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		aspect:     depthAspect(sc.depth_format),
		properties: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
	})
	if err != nil {
		return errors.Wrap(err, "depth image")
	}
	sc.depth = depth
	if err := sc.uploader.PrepareDepth(depth); err != nil {
		return err
	}

	sc.framebuffers = make([]vk.Framebuffer, 0, len(sc.image_views))
	for _, view := range sc.image_views {
		var fb vk.Framebuffer
		ret := vk.CreateFramebuffer(dev, &vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      sc.render_pass,
			AttachmentCount: 2,
			PAttachments:    []vk.ImageView{view, depth.View},
			Width:           sc.extent.Width,
			Height:          sc.extent.Height,
			Layers:          1,
		}, nil, &fb)
		if isError(ret) {
			return errors.Wrap(NewError(ret), "create framebuffer")
		}
		sc.framebuffers = append(sc.framebuffers, fb)
	}
	return nil
}

//Recreate rebuilds the swapchain and its dependents after the surface changed. It blocks
//while the window is minimized or zero sized. The render pass is kept.
func (sc *CoreSwapchain) Recreate() error {
	width, height := sc.provider.FramebufferSize()
	for sc.provider.Minimized() || width == 0 || height == 0 {
		if sc.provider.ShouldClose() {
			return nil
		}
		sc.provider.WaitEvents()
		width, height = sc.provider.FramebufferSize()
	}
	if err := sc.device.WaitIdle(); err != nil {
		return errors.Wrap(err, "wait idle before recreate")
	}

	sc.teardown()
	if err := sc.create(); err != nil {
		return errors.Wrap(err, "recreate swapchain")
	}
	if sc.render_pass != vk.NullRenderPass {
		if err := sc.createFramebuffers(); err != nil {
			return errors.Wrap(err, "recreate framebuffers")
		}
	}
	return nil
}

//teardown destroys framebuffers, depth, views and the swapchain, leaving the render pass.
func (sc *CoreSwapchain) teardown() {
	dev := sc.device.Device()
	for _, fb := range sc.framebuffers {
		vk.DestroyFramebuffer(dev, fb, nil)
	}
	sc.framebuffers = nil
	sc.depth.Destroy()
	sc.depth = nil
	for _, view := range sc.image_views {
		vk.DestroyImageView(dev, view, nil)
	}
	sc.image_views = nil
	sc.images = nil
	if sc.swapchain != vk.NullSwapchain {
		vk.DestroySwapchain(dev, sc.swapchain, nil)
		sc.swapchain = vk.NullSwapchain
	}
}

func (sc *CoreSwapchain) Destroy() {
	if sc == nil || sc.device == nil {
		return
	}
	sc.teardown()
	sc.device = nil
}

func (sc *CoreSwapchain) Handle() vk.Swapchain { return sc.swapchain }

func (sc *CoreSwapchain) Extent() vk.Extent2D { return sc.extent }

func (sc *CoreSwapchain) Format() vk.Format { return sc.format.Format }

func (sc *CoreSwapchain) DepthFormat() vk.Format { return sc.depth_format }

func (sc *CoreSwapchain) ImageCount() int { return len(sc.images) }

func (sc *CoreSwapchain) Framebuffer(image uint32) vk.Framebuffer { return sc.framebuffers[image] }

//Generation counts successful swapchain creations.
func (sc *CoreSwapchain) Generation() int { return sc.generation }
