package vkcube

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//FrameState is where a frame slot is in its acquire/record/submit/present cycle.
type FrameState int

const (
	FrameIdle FrameState = iota
	FrameAcquiring
	FrameRecording
	FrameSubmitted
	FramePresenting
)

func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "Idle"
	case FrameAcquiring:
		return "Acquiring"
	case FrameRecording:
		return "Recording"
	case FrameSubmitted:
		return "Submitted"
	case FramePresenting:
		return "Presenting"
	}
	return "Unknown"
}

//FrameBackend performs the GPU side of each step the Scheduler sequences. Renderer is the
//Vulkan implementation.
type FrameBackend interface {
	//WaitForFrame blocks until the slot's previous submission has completed.
	WaitForFrame(slot int) error
	//AcquireImage returns the next presentable image index and the raw acquire result.
	AcquireImage(slot int) (uint32, vk.Result)
	//ResetFrame unsignals the slot's fence.
	ResetFrame(slot int) error
	UpdateUniforms(slot int) error
	RecordFrame(slot int, image uint32) error
	SubmitFrame(slot int) error
	PresentFrame(slot int, image uint32) vk.Result
	RebuildSwapchain() error
}

//Scheduler advances the frame cursor through the fixed set of slots, one frame per Step.
type Scheduler struct {
	backend FrameBackend
	events  <-chan SurfaceEvent
	logs    *Loggers

	cursor  int
	resized bool
	states  [MaxFramesInFlight]FrameState
}

//NewScheduler drives backend. Resize and iconify notifications arrive on events, which
//may be nil.
func NewScheduler(backend FrameBackend, events <-chan SurfaceEvent, logs *Loggers) *Scheduler {
	if logs == nil {
		logs = DiscardLoggers()
	}
	return &Scheduler{backend: backend, events: events, logs: logs}
}

//Cursor is the slot the next Step will use.
func (s *Scheduler) Cursor() int { return s.cursor }

//State reports the current state of slot.
func (s *Scheduler) State(slot int) FrameState { return s.states[slot] }

//NotifyResize forces a swapchain rebuild after the next present.
func (s *Scheduler) NotifyResize() { s.resized = true }

func (s *Scheduler) drainEvents() {
	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				s.events = nil
				return
			}
			switch ev.Kind {
			case SurfaceResized, SurfaceIconified, SurfaceRestored:
				s.resized = true
			}
		default:
			return
		}
	}
}

func (s *Scheduler) rebuild() error {
	s.logs.Info.Println("rebuilding swapchain")
	if err := s.backend.RebuildSwapchain(); err != nil {
		return errors.Wrap(err, "rebuild swapchain")
	}
	return nil
}

//Step renders one frame into the current slot. Out-of-date and suboptimal surfaces are
//recovered by rebuilding the swapchain; every returned error is fatal.
func (s *Scheduler) Step() error {
	s.drainEvents()
	slot := s.cursor

	if err := s.backend.WaitForFrame(slot); err != nil {
		return errors.Wrapf(err, "wait for frame %d", slot)
	}

	s.states[slot] = FrameAcquiring
	image, ret := s.backend.AcquireImage(slot)
	switch ret {
	case vk.ErrorOutOfDate:
		//the fence stays signaled since nothing will be submitted this iteration
		s.states[slot] = FrameIdle
		return s.rebuild()
	case vk.Success, vk.Suboptimal:
	default:
		s.states[slot] = FrameIdle
		return errors.Wrap(NewError(ret), "acquire next image")
	}

	if err := s.backend.ResetFrame(slot); err != nil {
		return errors.Wrapf(err, "reset frame %d", slot)
	}

	s.states[slot] = FrameRecording
	if err := s.backend.UpdateUniforms(slot); err != nil {
		return errors.Wrap(err, "update uniforms")
	}
	if err := s.backend.RecordFrame(slot, image); err != nil {
		return errors.Wrapf(err, "record frame %d", slot)
	}

	if err := s.backend.SubmitFrame(slot); err != nil {
		return errors.Wrapf(err, "submit frame %d", slot)
	}
	s.states[slot] = FrameSubmitted

	s.states[slot] = FramePresenting
	ret = s.backend.PresentFrame(slot, image)
	s.states[slot] = FrameIdle
	switch {
	case ret == vk.ErrorOutOfDate || ret == vk.Suboptimal || s.resized:
		s.resized = false
		if err := s.rebuild(); err != nil {
			return err
		}
	case ret != vk.Success:
		return errors.Wrap(NewError(ret), "present")
	}

	s.cursor = (s.cursor + 1) % MaxFramesInFlight
	return nil
}
