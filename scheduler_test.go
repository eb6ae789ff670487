package vkcube

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

//fakeBackend records every call the scheduler makes and hands out synthetic results.
type fakeBackend struct {
	calls      []string
	images     uint32
	next       uint32
	acquire    []vk.Result
	present    []vk.Result
	rebuilds   int
	fences     [MaxFramesInFlight]int
	signaled   [MaxFramesInFlight]bool
	recordedAt []int
}

func newFakeBackend(images uint32) *fakeBackend {
	f := &fakeBackend{images: images}
	for i := range f.fences {
		f.fences[i] = 100 + i
		f.signaled[i] = true
	}
	return f
}

func (f *fakeBackend) log(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeBackend) WaitForFrame(slot int) error {
	f.log("wait %d", slot)
	if !f.signaled[slot] {
		return fmt.Errorf("fence %d never signaled", slot)
	}
	return nil
}

func (f *fakeBackend) AcquireImage(slot int) (uint32, vk.Result) {
	f.log("acquire %d", slot)
	ret := vk.Success
	if len(f.acquire) > 0 {
		ret, f.acquire = f.acquire[0], f.acquire[1:]
	}
	image := f.next
	f.next = (f.next + 1) % f.images
	return image, ret
}

func (f *fakeBackend) ResetFrame(slot int) error {
	f.log("reset %d", slot)
	f.signaled[slot] = false
	return nil
}

func (f *fakeBackend) UpdateUniforms(slot int) error {
	f.log("update %d", slot)
	return nil
}

func (f *fakeBackend) RecordFrame(slot int, image uint32) error {
	f.log("record %d", slot)
	f.recordedAt = append(f.recordedAt, int(image))
	return nil
}

func (f *fakeBackend) SubmitFrame(slot int) error {
	f.log("submit %d", slot)
	//the fake GPU finishes instantly
	f.signaled[slot] = true
	return nil
}

func (f *fakeBackend) PresentFrame(slot int, image uint32) vk.Result {
	f.log("present %d", slot)
	if len(f.present) > 0 {
		ret := f.present[0]
		f.present = f.present[1:]
		return ret
	}
	return vk.Success
}

func (f *fakeBackend) RebuildSwapchain() error {
	f.log("rebuild")
	f.rebuilds++
	return nil
}

func (f *fakeBackend) count(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func TestSchedulerCursorSequence(t *testing.T) {
	backend := newFakeBackend(3)
	s := NewScheduler(backend, nil, DiscardLoggers())

	var cursors []int
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Step())
		cursors = append(cursors, s.Cursor())
	}
	assert.Equal(t, []int{1, 0, 1, 0, 1, 0, 1, 0, 1, 0}, cursors)
	assert.Equal(t, 0, backend.rebuilds)
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0, 1, 2, 0}, backend.recordedAt)

	//every submit is preceded, for the same slot, by a wait and then a reset
	lastWait := map[string]int{}
	lastReset := map[string]int{}
	submits := 0
	for i, c := range backend.calls {
		var verb string
		var slot int
		fmt.Sscanf(c, "%s %d", &verb, &slot)
		key := fmt.Sprint(slot)
		switch verb {
		case "wait":
			lastWait[key] = i
			delete(lastReset, key)
		case "reset":
			w, ok := lastWait[key]
			require.True(t, ok, "reset of slot %d without a wait", slot)
			require.Less(t, w, i)
			lastReset[key] = i
		case "submit":
			_, ok := lastReset[key]
			require.True(t, ok, "submit of slot %d without wait-then-reset", slot)
			submits++
		}
	}
	assert.Equal(t, 10, submits)
	for i := 0; i < MaxFramesInFlight; i++ {
		assert.Equal(t, FrameIdle, s.State(i))
	}
}

func TestSchedulerAcquireOutOfDate(t *testing.T) {
	backend := newFakeBackend(3)
	backend.acquire = []vk.Result{vk.ErrorOutOfDate}
	s := NewScheduler(backend, nil, DiscardLoggers())

	require.NoError(t, s.Step())
	assert.Equal(t, []string{"wait 0", "acquire 0", "rebuild"}, backend.calls)
	assert.Equal(t, 0, s.Cursor())
	assert.Equal(t, 0, backend.count("submit 0"))
	assert.True(t, backend.signaled[0], "fence must stay signaled when nothing is submitted")

	//the next iteration proceeds normally on the same slot
	require.NoError(t, s.Step())
	assert.Equal(t, 1, s.Cursor())
	assert.Equal(t, 1, backend.count("submit 0"))
}

func TestSchedulerAcquireSuboptimalProceeds(t *testing.T) {
	backend := newFakeBackend(3)
	backend.acquire = []vk.Result{vk.Suboptimal}
	s := NewScheduler(backend, nil, DiscardLoggers())

	require.NoError(t, s.Step())
	assert.Equal(t, 1, backend.count("submit 0"))
	assert.Equal(t, 0, backend.rebuilds)
	assert.Equal(t, 1, s.Cursor())
}

func TestSchedulerAcquireFatal(t *testing.T) {
	backend := newFakeBackend(3)
	backend.acquire = []vk.Result{vk.ErrorDeviceLost}
	s := NewScheduler(backend, nil, DiscardLoggers())

	err := s.Step()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire next image")
	assert.Equal(t, 0, backend.count("reset 0"))
	assert.Equal(t, 0, s.Cursor())
}

func TestSchedulerPresentRebuilds(t *testing.T) {
	for _, ret := range []vk.Result{vk.ErrorOutOfDate, vk.Suboptimal} {
		backend := newFakeBackend(3)
		backend.present = []vk.Result{ret}
		s := NewScheduler(backend, nil, DiscardLoggers())

		require.NoError(t, s.Step())
		assert.Equal(t, 1, backend.rebuilds, "present result %d", ret)
		assert.Equal(t, 1, s.Cursor())
	}
}

func TestSchedulerPresentFatal(t *testing.T) {
	backend := newFakeBackend(3)
	backend.present = []vk.Result{vk.ErrorSurfaceLost}
	s := NewScheduler(backend, nil, DiscardLoggers())

	err := s.Step()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "present")
	assert.Equal(t, 0, backend.rebuilds)
}

func TestSchedulerResizeEvent(t *testing.T) {
	backend := newFakeBackend(3)
	events := make(chan SurfaceEvent, 4)
	s := NewScheduler(backend, events, DiscardLoggers())

	require.NoError(t, s.Step())
	assert.Equal(t, 0, backend.rebuilds)

	events <- SurfaceEvent{Kind: SurfaceResized, Width: 1024, Height: 768}
	events <- SurfaceEvent{Kind: SurfaceResized, Width: 1280, Height: 720}
	require.NoError(t, s.Step())
	assert.Equal(t, 1, backend.rebuilds, "coalesced events trigger a single rebuild")

	require.NoError(t, s.Step())
	assert.Equal(t, 1, backend.rebuilds, "resize flag is cleared after the rebuild")

	s.NotifyResize()
	require.NoError(t, s.Step())
	assert.Equal(t, 2, backend.rebuilds)

	close(events)
	require.NoError(t, s.Step())
	assert.Equal(t, 2, backend.rebuilds)
}

func TestSchedulerSyncIdentityAcrossRebuild(t *testing.T) {
	backend := newFakeBackend(3)
	before := backend.fences
	backend.acquire = []vk.Result{vk.Success, vk.ErrorOutOfDate, vk.Success, vk.ErrorOutOfDate}
	backend.present = []vk.Result{vk.Suboptimal}
	s := NewScheduler(backend, nil, DiscardLoggers())

	for i := 0; i < 6; i++ {
		require.NoError(t, s.Step())
	}
	assert.Equal(t, 3, backend.rebuilds)
	assert.Equal(t, before, backend.fences)
}

func TestFrameStateString(t *testing.T) {
	assert.Equal(t, "Idle", FrameIdle.String())
	assert.Equal(t, "Acquiring", FrameAcquiring.String())
	assert.Equal(t, "Recording", FrameRecording.String())
	assert.Equal(t, "Submitted", FrameSubmitted.String())
	assert.Equal(t, "Presenting", FramePresenting.String())
	assert.Equal(t, "Unknown", FrameState(42).String())
}
