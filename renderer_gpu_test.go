package vkcube

import (
	"context"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

type slotSync struct {
	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
	inFlight       vk.Fence
}

func snapshotSync(frames *CoreFrames) []slotSync {
	out := make([]slotSync, frames.Len())
	for i := range out {
		slot := frames.Slot(i)
		out[i] = slotSync{slot.ImageAvailable, slot.RenderFinished, slot.InFlight}
	}
	return out
}

//windowedRenderer needs a display, a Vulkan driver and the compiled shaders from go generate.
func windowedRenderer(t *testing.T) *Renderer {
	t.Helper()
	if runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		t.Skip("no display")
	}
	cfg := DefaultConfig()
	cfg.Validation = false
	for _, path := range []string{cfg.VertexShader, cfg.FragmentShader, cfg.Texture} {
		if _, err := os.Stat(path); err != nil {
			t.Skipf("missing asset %s, run go generate", path)
		}
	}
	assets, err := LoadAssets(context.Background(), cfg)
	require.NoError(t, err)

	runtime.LockOSThread()
	surface, err := NewGlfwSurface(cfg.Title, 320, 240)
	if err != nil {
		t.Skipf("no window: %v", err)
	}
	renderer, err := NewRenderer(cfg, surface, assets, DiscardLoggers())
	if err != nil {
		surface.Destroy()
		t.Skipf("renderer unavailable: %v", err)
	}
	t.Cleanup(func() {
		renderer.Destroy()
		surface.Destroy()
		runtime.UnlockOSThread()
	})
	return renderer
}

func TestRendererSyncSurvivesRecreate(t *testing.T) {
	r := windowedRenderer(t)
	before := snapshotSync(r.Frames())
	generation := r.Swapchain().Generation()

	for i := 0; i < 4; i++ {
		require.NoError(t, r.Scheduler().Step())
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, r.RebuildSwapchain())
	}
	assert.Equal(t, generation+3, r.Swapchain().Generation())
	assert.Equal(t, before, snapshotSync(r.Frames()))
	assert.GreaterOrEqual(t, r.Swapchain().ImageCount(), MaxFramesInFlight)

	for i := 0; i < 4; i++ {
		require.NoError(t, r.Scheduler().Step())
	}
	assert.Equal(t, before, snapshotSync(r.Frames()))
	require.NoError(t, r.device.WaitIdle())
}

func TestRendererDestroyTwice(t *testing.T) {
	r := windowedRenderer(t)
	require.NoError(t, r.Scheduler().Step())
	r.Destroy()
	r.Destroy()
	assert.Nil(t, r.Frames())
}
