package render

import (
	"sync/atomic"
	"time"

	mgl32 "github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Options configures a Context.
type Options struct {
	// ClearColor is the RGBA color the render pass clears to.
	ClearColor mgl32.Vec4
	// Clock returns monotonic time for frame statistics. Defaults to hrtime.
	Clock func() time.Duration
}

// Context owns every long-lived GPU resource of the process: the device, the
// fixed pipeline, the swapchain and the frame slots. There is one per process
// and it is driven from a single goroutine, except for RequestRebuild.
type Context struct {
	dev  Device
	win  Window
	opts Options

	pipeline  *Pipeline
	swapchain *Swapchain
	frames    [MaxFramesInFlight]frame

	currentFrame int
	needsRebuild atomic.Bool

	stats   *frameStats
	release releaser
}

// New builds the pipeline, swapchain and frame slots on dev. The Context
// takes ownership of dev: it is destroyed by Context.Destroy, or before New
// returns an error.
func New(dev Device, win Window, opts Options) (*Context, error) {
	c := &Context{
		dev:   dev,
		win:   win,
		opts:  opts,
		stats: newFrameStats(opts.Clock),
	}
	c.release.push(dev.Destroy)

	if err := c.init(); err != nil {
		c.release.run()
		return nil, err
	}
	return c, nil
}

func (c *Context) init() error {
	support, err := querySupport(c.dev)
	if err != nil {
		return err
	}

	pipeline, err := c.dev.CreatePipeline(chooseSurfaceFormat(support.Formats).Format)
	if err != nil {
		return errors.Wrap(err, "create pipeline")
	}
	c.pipeline = pipeline
	c.release.push(func() { c.dev.DestroyPipeline(pipeline) })

	swapchain, err := NewSwapchain(c.dev, c.win, pipeline.RenderPass)
	if err != nil {
		return err
	}
	c.swapchain = swapchain
	c.release.push(swapchain.Destroy)

	return c.createFrames()
}

// RequestRebuild marks the swapchain stale. It is safe to call from the
// window's resize callback.
func (c *Context) RequestRebuild() {
	c.needsRebuild.Store(true)
}

// Run draws frames until the window is asked to close.
func (c *Context) Run() error {
	for !c.win.ShouldClose() {
		c.win.PollEvents()
		if err := c.DrawFrame(); err != nil {
			if errors.Is(err, ErrWindowClosed) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Destroy waits for the device to finish all submitted work, then releases
// everything in reverse creation order.
func (c *Context) Destroy() {
	if c.release.empty() {
		return
	}
	if err := c.dev.WaitIdle(); err != nil {
		Logger().Warn("wait idle before destroy", "err", err)
	}
	c.release.run()
}

// CurrentFrame returns the index of the frame slot the next DrawFrame uses.
func (c *Context) CurrentFrame() int {
	return c.currentFrame
}

// Swapchain returns the current swapchain.
func (c *Context) Swapchain() *Swapchain {
	return c.swapchain
}

// SlotState returns the state of frame slot i.
func (c *Context) SlotState(i int) SlotState {
	return c.frames[i].state
}

// InFlight returns the number of slots whose submission has not yet been
// observed complete.
func (c *Context) InFlight() int {
	n := 0
	for i := range c.frames {
		if c.frames[i].state == SlotSubmitted {
			n++
		}
	}
	return n
}

// releaser runs cleanup functions in reverse order of registration.
type releaser []func()

func (r *releaser) push(fn func()) {
	*r = append(*r, fn)
}

func (r *releaser) empty() bool {
	return len(*r) == 0
}

func (r *releaser) run() {
	for i := len(*r) - 1; i >= 0; i-- {
		(*r)[i]()
	}
	*r = nil
}
