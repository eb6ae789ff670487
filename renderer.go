package vkcube

import (
	"time"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const cuboidHalfExtent = 0.5

//Renderer ties every component together and implements FrameBackend for the Scheduler.
type Renderer struct {
	logs     *Loggers
	provider SurfaceProvider

	instance    *CoreInstance
	device      *CoreDevice
	uploader    *CoreUploader
	swapchain   *CoreSwapchain
	render_pass *CoreRenderPass
	pipeline    *CorePipeline
	vertices    *CoreBuffer
	indices     *CoreBuffer
	index_count uint32
	texture     *CoreTexture
	frames      *CoreFrames
	scheduler   *Scheduler

	start time.Time
}

//NewRenderer builds the whole Vulkan stack against provider and uploads the static cuboid
//and the texture from assets. Anything already created is destroyed on failure.
func NewRenderer(cfg Config, provider SurfaceProvider, assets *Assets, logs *Loggers) (r *Renderer, err error) {
	if logs == nil {
		logs = DiscardLoggers()
	}
	r = &Renderer{logs: logs, provider: provider}
	defer func() {
		if err != nil {
			r.Destroy()
			r = nil
		}
	}()

	r.instance, err = NewCoreInstance(cfg.Title, provider.RequiredInstanceExtensions(), cfg.Validation, logs)
	if err != nil {
		return nil, err
	}
	if err = r.instance.AttachSurface(provider); err != nil {
		return nil, err
	}
	r.device, err = NewCoreDevice(r.instance.Instance(), r.instance.Surface(), logs)
	if err != nil {
		return nil, err
	}
	logs.Info.Printf("using %s, queue families %+v", r.device.DeviceName, r.device.Families())

	r.uploader, err = NewCoreUploader(r.device)
	if err != nil {
		return nil, err
	}
	r.swapchain, err = NewCoreSwapchain(r.device, r.instance.Surface(), provider, r.uploader)
	if err != nil {
		return nil, err
	}
	dev := r.device.Device()
	r.render_pass, err = NewCoreRenderPass(dev, r.swapchain.Format(), r.swapchain.DepthFormat())
	if err != nil {
		return nil, err
	}
	if err = r.swapchain.AttachRenderPass(r.render_pass.Handle()); err != nil {
		return nil, err
	}
	logs.Info.Printf("swapchain %dx%d with %d images", r.swapchain.Extent().Width,
		r.swapchain.Extent().Height, r.swapchain.ImageCount())

	r.pipeline, err = NewCorePipeline(dev, r.render_pass.Handle(), assets.VertexShader, assets.FragmentShader, cfg.FrontFaceCCW)
	if err != nil {
		return nil, err
	}

	mesh := NewCuboid(cuboidHalfExtent, cuboidHalfExtent, cuboidHalfExtent)
	r.vertices, err = r.uploader.UploadBuffer(mesh.VertexBytes(), vk.BufferUsageVertexBufferBit)
	if err != nil {
		return nil, errors.Wrap(err, "vertex buffer")
	}
	r.indices, err = r.uploader.UploadBuffer(mesh.IndexBytes(), vk.BufferUsageIndexBufferBit)
	if err != nil {
		return nil, errors.Wrap(err, "index buffer")
	}
	r.index_count = uint32(len(mesh.Indices))

	r.texture, err = NewCoreTexture(r.device, r.uploader, assets.Pixels, assets.Width, assets.Height)
	if err != nil {
		return nil, errors.Wrap(err, "texture")
	}

	r.frames, err = NewCoreFrames(r.device, r.pipeline.DescriptorLayout(), r.texture)
	if err != nil {
		return nil, err
	}
	r.scheduler = NewScheduler(r, provider.Events(), logs)
	r.start = time.Now()
	return r, nil
}

func (r *Renderer) Scheduler() *Scheduler { return r.scheduler }

func (r *Renderer) Swapchain() *CoreSwapchain { return r.swapchain }

func (r *Renderer) Frames() *CoreFrames { return r.frames }

//Loop renders until the surface asks to close, then drains the device.
func (r *Renderer) Loop() error {
	for !r.provider.ShouldClose() {
		r.provider.PollEvents()
		if err := r.scheduler.Step(); err != nil {
			return err
		}
	}
	return r.device.WaitIdle()
}

func (r *Renderer) WaitForFrame(slot int) error {
	fence := r.frames.Slot(slot).InFlight
	ret := vk.WaitForFences(r.device.Device(), 1, []vk.Fence{fence}, vk.True, vk.MaxUint64)
	return NewError(ret)
}

func (r *Renderer) AcquireImage(slot int) (uint32, vk.Result) {
	var image uint32
	ret := vk.AcquireNextImage(r.device.Device(), r.swapchain.Handle(), vk.MaxUint64,
		r.frames.Slot(slot).ImageAvailable, vk.NullFence, &image)
	return image, ret
}

func (r *Renderer) ResetFrame(slot int) error {
	fence := r.frames.Slot(slot).InFlight
	return NewError(vk.ResetFences(r.device.Device(), 1, []vk.Fence{fence}))
}

//UpdateUniforms writes this frame's matrices into the slot's mapped uniform buffer. The
//fence wait guarantees the GPU is done reading the previous contents.
func (r *Renderer) UpdateUniforms(slot int) error {
	extent := r.swapchain.Extent()
	ubo := ComputeUniforms(time.Since(r.start), extent.Width, extent.Height)
	return r.frames.Slot(slot).Uniform.Write(ubo.Bytes())
}

func (r *Renderer) RecordFrame(slot int, image uint32) error {
	frame := r.frames.Slot(slot)
	cmd := frame.Commands
	extent := r.swapchain.Extent()

	if ret := vk.ResetCommandBuffer(cmd, 0); isError(ret) {
		return errors.Wrap(NewError(ret), "reset command buffer")
	}
	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	})
	if isError(ret) {
		return errors.Wrap(NewError(ret), "begin command buffer")
	}

	clearValues := make([]vk.ClearValue, 2)
	clearValues[0].SetColor([]float32{0, 0, 0, 1})
	clearValues[1].SetDepthStencil(1, 0)
	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  r.render_pass.Handle(),
		Framebuffer: r.swapchain.Framebuffer(image),
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)

	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, r.pipeline.Handle())
	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}})
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}})
	vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{r.vertices.Buffer}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(cmd, r.indices.Buffer, 0, vk.IndexTypeUint16)
	vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, r.pipeline.Layout(),
		0, 1, []vk.DescriptorSet{frame.Descriptor}, 0, nil)
	vk.CmdDrawIndexed(cmd, r.index_count, 1, 0, 0, 0)
	vk.CmdEndRenderPass(cmd)

	if ret := vk.EndCommandBuffer(cmd); isError(ret) {
		return errors.Wrap(NewError(ret), "end command buffer")
	}
	return nil
}

func (r *Renderer) SubmitFrame(slot int) error {
	frame := r.frames.Slot(slot)
	ret := vk.QueueSubmit(r.device.GraphicsQueue(), 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{frame.ImageAvailable},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{frame.Commands},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{frame.RenderFinished},
	}}, frame.InFlight)
	return NewError(ret)
}

func (r *Renderer) PresentFrame(slot int, image uint32) vk.Result {
	return vk.QueuePresent(r.device.PresentQueue(), &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{r.frames.Slot(slot).RenderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{r.swapchain.Handle()},
		PImageIndices:      []uint32{image},
	})
}

func (r *Renderer) RebuildSwapchain() error {
	if err := r.swapchain.Recreate(); err != nil {
		return err
	}
	extent := r.swapchain.Extent()
	r.logs.Info.Printf("swapchain generation %d at %dx%d", r.swapchain.Generation(), extent.Width, extent.Height)
	return nil
}

//Destroy waits for the device to drain and releases everything in reverse dependency
//order. Calling it again is a no-op.
func (r *Renderer) Destroy() {
	if r == nil || r.instance == nil {
		return
	}
	if err := r.device.WaitIdle(); err != nil {
		r.logs.Error.Println(errors.Wrap(err, "wait idle before shutdown"))
	}

	if r.frames != nil {
		r.frames.releaseSync()
		r.frames.releaseCommands()
	}
	r.uploader.Destroy()
	if r.frames != nil {
		r.frames.releaseUniforms()
	}
	r.vertices.Destroy()
	r.indices.Destroy()
	r.texture.Destroy()
	r.frames.Destroy()
	r.pipeline.Destroy()
	r.render_pass.Destroy()
	r.swapchain.Destroy()
	r.device.Destroy()
	r.instance.Destroy()

	r.frames, r.uploader, r.vertices, r.indices, r.texture = nil, nil, nil, nil, nil
	r.pipeline, r.render_pass, r.swapchain, r.device = nil, nil, nil, nil
	r.instance = nil
}
