package gpu

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDrawable struct {
	w, h     uint32
	released bool
}

func (d *fakeDrawable) Size() (uint32, uint32) { return d.w, d.h }
func (d *fakeDrawable) Release()               { d.released = true }

type fakePresenter struct {
	configured [][2]uint32
	presented  int
	acquireErr error
	w, h       uint32
}

func (p *fakePresenter) configure(w, h uint32) {
	p.configured = append(p.configured, [2]uint32{w, h})
	p.w, p.h = w, h
}

func (p *fakePresenter) acquire() (Drawable, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return &fakeDrawable{w: p.w, h: p.h}, nil
}

func (p *fakePresenter) present() { p.presented++ }

type fakeCommandBuffer struct {
	submitted int
	err       error
}

func (c *fakeCommandBuffer) BeginRenderPass(Drawable, *DepthTexture, ClearValues) (RenderPass, error) {
	return nil, errors.New("not recorded")
}
func (c *fakeCommandBuffer) Submit() error {
	if c.err != nil {
		return c.err
	}
	c.submitted++
	return nil
}
func (c *fakeCommandBuffer) Release() {}

func TestSwapChain_ResizeThroughZero(t *testing.T) {
	p := &fakePresenter{}
	s := newSwapChain(p, 800, 600, nil)

	d, ok := s.NextDrawable()
	require.True(t, ok)
	w, h := d.Size()
	assert.Equal(t, [2]uint32{800, 600}, [2]uint32{w, h})

	s.Resize(0, 0)
	assert.True(t, s.Suspended())
	w, h = s.Size()
	assert.Equal(t, [2]uint32{800, 600}, [2]uint32{w, h})
	_, ok = s.NextDrawable()
	assert.False(t, ok)

	s.Resize(800, 600)
	assert.False(t, s.Suspended())
	w, h = s.Size()
	assert.Equal(t, [2]uint32{800, 600}, [2]uint32{w, h})
	_, ok = s.NextDrawable()
	assert.True(t, ok)

	// Coming back from suspension reconfigures the surface.
	assert.Equal(t, [][2]uint32{{800, 600}, {800, 600}}, p.configured)
}

func TestSwapChain_SameSizeIsNotReconfigured(t *testing.T) {
	p := &fakePresenter{}
	s := newSwapChain(p, 640, 480, nil)
	s.Resize(640, 480)
	s.Resize(1024, 768)

	assert.Equal(t, [][2]uint32{{640, 480}, {1024, 768}}, p.configured)
}

func TestSwapChain_StartsSuspendedAtZero(t *testing.T) {
	p := &fakePresenter{}
	s := newSwapChain(p, 0, 600, nil)

	assert.True(t, s.Suspended())
	assert.Empty(t, p.configured)
	_, ok := s.NextDrawable()
	assert.False(t, ok)
}

func TestSwapChain_AcquireFailureSkipsFrame(t *testing.T) {
	p := &fakePresenter{acquireErr: errors.New("outdated")}
	s := newSwapChain(p, 800, 600, nil)

	d, ok := s.NextDrawable()
	assert.False(t, ok)
	assert.Nil(t, d)
}

func TestSwapChain_Present(t *testing.T) {
	p := &fakePresenter{}
	s := newSwapChain(p, 800, 600, nil)
	d, ok := s.NextDrawable()
	require.True(t, ok)

	cb := &fakeCommandBuffer{}
	require.NoError(t, s.Present(d, cb))
	assert.Equal(t, 1, cb.submitted)
	assert.Equal(t, 1, p.presented)

	assert.Error(t, s.Present(nil, cb))

	failing := &fakeCommandBuffer{err: errors.New("lost device")}
	assert.Error(t, s.Present(d, failing))
	assert.Equal(t, 1, p.presented)
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "vertex", StageVertex.String())
	assert.Equal(t, "fragment", StageFragment.String())
	assert.Equal(t, "compute", StageCompute.String())
	assert.Equal(t, "stage(9)", Stage(9).String())
}
