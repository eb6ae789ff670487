package vkcube

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

type SurfaceEventKind int

const (
	SurfaceResized SurfaceEventKind = iota
	SurfaceIconified
	SurfaceRestored
)

//SurfaceEvent is emitted by a surface provider whenever the drawable changes.
type SurfaceEvent struct {
	Kind   SurfaceEventKind
	Width  int
	Height int
}

//SurfaceProvider is the windowing collaborator the renderer presents into.
type SurfaceProvider interface {
	RequiredInstanceExtensions() []string
	CreateSurface(instance vk.Instance) (vk.Surface, error)
	//FramebufferSize reports the drawable size in pixels, not screen coordinates.
	FramebufferSize() (int, int)
	ShouldClose() bool
	PollEvents()
	WaitEvents()
	Minimized() bool
	Events() <-chan SurfaceEvent
}

const surfaceEventBuffer = 16

//GlfwSurface is a SurfaceProvider backed by a GLFW window. It must be created and
//driven from the main OS thread.
type GlfwSurface struct {
	window *glfw.Window
	events chan SurfaceEvent
}

//NewGlfwSurface opens a resizable window with no client API and points the Vulkan
//loader at GLFW's instance proc address.
func NewGlfwSurface(title string, width, height int) (*GlfwSurface, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "glfw init")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("glfw: vulkan is not supported")
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "vulkan loader init")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "create window")
	}

	s := &GlfwSurface{
		window: window,
		events: make(chan SurfaceEvent, surfaceEventBuffer),
	}
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		s.emit(SurfaceEvent{Kind: SurfaceResized, Width: width, Height: height})
	})
	window.SetIconifyCallback(func(w *glfw.Window, iconified bool) {
		kind := SurfaceRestored
		if iconified {
			kind = SurfaceIconified
		}
		width, height := w.GetFramebufferSize()
		s.emit(SurfaceEvent{Kind: kind, Width: width, Height: height})
	})
	return s, nil
}

//emit never blocks the GLFW callback. A full buffer drops ev since the queued events
//already force a rebuild.
func (s *GlfwSurface) emit(ev SurfaceEvent) {
	select {
	case s.events <- ev:
	default:
	}
}

func (s *GlfwSurface) RequiredInstanceExtensions() []string {
	return s.window.GetRequiredInstanceExtensions()
}

func (s *GlfwSurface) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := s.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, err
	}
	return vk.SurfaceFromPointer(ptr), nil
}

func (s *GlfwSurface) FramebufferSize() (int, int) {
	return s.window.GetFramebufferSize()
}

func (s *GlfwSurface) ShouldClose() bool {
	return s.window.ShouldClose()
}

func (s *GlfwSurface) PollEvents() {
	glfw.PollEvents()
}

func (s *GlfwSurface) WaitEvents() {
	glfw.WaitEvents()
}

func (s *GlfwSurface) Minimized() bool {
	return s.window.GetAttrib(glfw.Iconified) == glfw.True
}

func (s *GlfwSurface) Events() <-chan SurfaceEvent {
	return s.events
}

func (s *GlfwSurface) Destroy() {
	if s.window == nil {
		return
	}
	s.window.Destroy()
	s.window = nil
	glfw.Terminate()
}
