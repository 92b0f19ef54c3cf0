package gpu

import (
	"testing"

	"github.com/gekko3d/meshloop"

	"github.com/stretchr/testify/assert"
)

func fakeContext(p presenter, w, h uint32) *RenderContext {
	log := meshloop.NewNopLogger()
	rc := &RenderContext{swapchain: newSwapChain(p, w, h, log), log: log}
	rc.width, rc.height = rc.swapchain.Size()
	return rc
}

func TestRenderContext_ResizeKeepsSizeWhenMinimized(t *testing.T) {
	p := &fakePresenter{}
	rc := fakeContext(p, 800, 600)

	rc.Resize(0, 0)
	assert.True(t, rc.SwapChain().Suspended())
	w, h := rc.DisplaySize()
	assert.Equal(t, [2]uint32{800, 600}, [2]uint32{w, h})
	w, h = rc.DrawableSize()
	assert.Equal(t, [2]uint32{800, 600}, [2]uint32{w, h})
	_, ok := rc.NextDrawable()
	assert.False(t, ok)

	rc.Resize(1024, 0)
	w, h = rc.DisplaySize()
	assert.Equal(t, [2]uint32{800, 600}, [2]uint32{w, h})

	rc.Resize(1024, 768)
	assert.False(t, rc.SwapChain().Suspended())
	w, h = rc.DisplaySize()
	assert.Equal(t, [2]uint32{1024, 768}, [2]uint32{w, h})
	w, h = rc.DrawableSize()
	assert.Equal(t, [2]uint32{1024, 768}, [2]uint32{w, h})
	assert.Equal(t, [][2]uint32{{800, 600}, {1024, 768}}, p.configured)

	assert.NotPanics(t, rc.Release)
}
