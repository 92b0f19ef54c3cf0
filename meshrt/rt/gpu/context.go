package gpu

import (
	"github.com/gekko3d/meshloop"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"
)

// RenderContext owns the device, its queue and the swapchain. Every GPU
// resource of the process is created through it.
type RenderContext struct {
	instance  *wgpu.Instance
	adapter   *wgpu.Adapter
	device    *wgpu.Device
	queue     *wgpu.Queue
	surface   *wgpu.Surface
	swapchain *SwapChain
	format    wgpu.TextureFormat

	width  uint32
	height uint32
	log    meshloop.Logger
}

// NewRenderContext acquires the default adapter and device and binds a
// swapchain to the native surface described by desc.
func NewRenderContext(desc *wgpu.SurfaceDescriptor, width, height uint32, log meshloop.Logger) (*RenderContext, error) {
	log = meshloop.OrNop(log)
	rc := &RenderContext{log: log}

	rc.instance = wgpu.CreateInstance(nil)
	// wraps the native window into a wgpu surface.
	rc.surface = rc.instance.CreateSurface(desc)
	if rc.surface == nil {
		rc.Release()
		return nil, errors.New("create surface: no surface for window")
	}

	adapter, err := rc.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: rc.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		rc.Release()
		return nil, errors.Wrap(err, "no GPU adapter")
	}
	rc.adapter = adapter

	// allocates the device and command queue
	rc.device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		rc.Release()
		return nil, errors.Wrap(err, "request device")
	}
	rc.queue = rc.device.GetQueue()

	caps := rc.surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		rc.Release()
		return nil, errors.New("surface is not compatible with the adapter")
	}
	rc.format = caps.Formats[0]

	p := &surfacePresenter{
		surface: rc.surface,
		adapter: adapter,
		device:  rc.device,
		config: &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      rc.format,
			PresentMode: wgpu.PresentModeFifo,
			AlphaMode:   caps.AlphaModes[0],
		},
	}
	rc.swapchain = newSwapChain(p, width, height, log)
	rc.width, rc.height = rc.swapchain.Size()

	log.Infof("render context ready: %dx%d, surface format %v", width, height, rc.format)
	return rc, nil
}

// Resize updates the swapchain and the display size. A zero dimension only
// suspends the swapchain.
func (rc *RenderContext) Resize(width, height uint32) {
	rc.swapchain.Resize(width, height)
	if width == 0 || height == 0 {
		return
	}
	rc.width, rc.height = width, height
}

func (rc *RenderContext) DisplaySize() (uint32, uint32) { return rc.width, rc.height }

func (rc *RenderContext) DrawableSize() (uint32, uint32) { return rc.swapchain.Size() }

func (rc *RenderContext) SurfaceFormat() wgpu.TextureFormat { return rc.format }

func (rc *RenderContext) SwapChain() *SwapChain { return rc.swapchain }

func (rc *RenderContext) NextDrawable() (Drawable, bool) { return rc.swapchain.NextDrawable() }

func (rc *RenderContext) Present(d Drawable, cb CommandBuffer) error {
	return rc.swapchain.Present(d, cb)
}

func (rc *RenderContext) Release() {
	if rc.queue != nil {
		rc.queue.Release()
		rc.queue = nil
	}
	if rc.device != nil {
		rc.device.Release()
		rc.device = nil
	}
	if rc.adapter != nil {
		rc.adapter.Release()
		rc.adapter = nil
	}
	if rc.surface != nil {
		rc.surface.Release()
		rc.surface = nil
	}
	if rc.instance != nil {
		rc.instance.Release()
		rc.instance = nil
	}
}
