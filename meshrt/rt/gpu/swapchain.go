package gpu

import (
	"github.com/gekko3d/meshloop"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// presenter is the platform side of a swapchain.
type presenter interface {
	configure(width, height uint32)
	acquire() (Drawable, error)
	present()
}

// SwapChain hands out one drawable per frame and schedules presentation.
// A zero-area size suspends it: NextDrawable yields nothing and the last
// valid size is kept until a valid size arrives.
type SwapChain struct {
	p         presenter
	width     uint32
	height    uint32
	suspended bool
	log       meshloop.Logger
}

func newSwapChain(p presenter, width, height uint32, log meshloop.Logger) *SwapChain {
	s := &SwapChain{p: p, log: meshloop.OrNop(log)}
	s.Resize(width, height)
	return s
}

func (s *SwapChain) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		if !s.suspended {
			s.log.Debugf("swapchain suspended at %dx%d", width, height)
		}
		s.suspended = true
		return
	}
	if !s.suspended && width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	s.suspended = false
	s.p.configure(width, height)
}

// Size is the drawable size of the last valid configuration.
func (s *SwapChain) Size() (uint32, uint32) { return s.width, s.height }

func (s *SwapChain) Suspended() bool { return s.suspended }

// NextDrawable never blocks waiting for a surface. It reports false when
// no image is available; the caller skips the frame.
func (s *SwapChain) NextDrawable() (Drawable, bool) {
	if s.suspended {
		return nil, false
	}
	d, err := s.p.acquire()
	if err != nil {
		s.log.Debugf("no drawable: %v", err)
		return nil, false
	}
	return d, true
}

// Present submits cb and schedules d for display after that work.
func (s *SwapChain) Present(d Drawable, cb CommandBuffer) error {
	if d == nil {
		return errors.New("present without a drawable")
	}
	if err := cb.Submit(); err != nil {
		return err
	}
	s.p.present()
	return nil
}

type surfacePresenter struct {
	surface *wgpu.Surface
	adapter *wgpu.Adapter
	device  *wgpu.Device
	config  *wgpu.SurfaceConfiguration
}

func (p *surfacePresenter) configure(width, height uint32) {
	p.config.Width = width
	p.config.Height = height
	p.surface.Configure(p.adapter, p.device, p.config)
}

func (p *surfacePresenter) acquire() (Drawable, error) {
	texture, err := p.surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, err
	}
	return &surfaceDrawable{
		texture: texture,
		view:    view,
		width:   p.config.Width,
		height:  p.config.Height,
	}, nil
}

func (p *surfacePresenter) present() {
	p.surface.Present()
}
