package render

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

type fakeFence struct {
	signaled bool
	pending  bool
}

// fakeDevice simulates the GPU side of the frame loop. A submission completes
// when its fence is waited on or the device is idled. Misuse that would be
// undefined behaviour on a real device is recorded in violations.
type fakeDevice struct {
	support  SwapchainSupport
	families QueueFamilyIndices

	// Scripted results keyed by 1-based call number. Missing calls succeed.
	acquireResults map[int]vulkan.Result
	presentResults map[int]vulkan.Result
	acquireCalls   int
	presentCalls   int
	nextImage      uint32

	failBegin error
	failEnd   error

	live           map[unsafe.Pointer]string
	fences         map[vulkan.Fence]*fakeFence
	pendingBuffers map[vulkan.CommandBuffer]vulkan.Fence
	images         map[vulkan.Swapchain][]vulkan.Image

	swapchainInfos  []vulkan.SwapchainCreateInfo
	submits         []vulkan.SubmitInfo
	presents        []vulkan.PresentInfo
	renderPasses    []vulkan.RenderPassBeginInfo
	commands        []string
	events          []string
	violations      []string
	outstanding     int
	maxOutstanding  int
	waitIdleCalls   int
	destroyed       bool
	liveAtDestroy   int
	pipelineFormats []vulkan.Format
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		support: SwapchainSupport{
			Capabilities: trackingCaps(2, 8),
			Formats: []vulkan.SurfaceFormat{
				{Format: vulkan.FormatB8g8r8a8Unorm, ColorSpace: vulkan.ColorSpaceSrgbNonlinear},
				{Format: vulkan.FormatB8g8r8a8Srgb, ColorSpace: vulkan.ColorSpaceSrgbNonlinear},
			},
			PresentModes: []vulkan.PresentMode{vulkan.PresentModeFifo, vulkan.PresentModeMailbox},
		},
		families:       QueueFamilyIndices{Graphics: 0, Present: 0, HasGraphics: true, HasPresent: true},
		acquireResults: map[int]vulkan.Result{},
		presentResults: map[int]vulkan.Result{},
		live:           map[unsafe.Pointer]string{},
		fences:         map[vulkan.Fence]*fakeFence{},
		pendingBuffers: map[vulkan.CommandBuffer]vulkan.Fence{},
		images:         map[vulkan.Swapchain][]vulkan.Image{},
	}
}

// trackingCaps reports an extent that follows the window, bounded to
// [1,1]..[4096,4096].
func trackingCaps(minImages, maxImages uint32) vulkan.SurfaceCapabilities {
	return vulkan.SurfaceCapabilities{
		MinImageCount:  minImages,
		MaxImageCount:  maxImages,
		CurrentExtent:  vulkan.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
		MinImageExtent: vulkan.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vulkan.Extent2D{Width: 4096, Height: 4096},
	}
}

func (d *fakeDevice) handle(kind string) unsafe.Pointer {
	p := unsafe.Pointer(new(uint64))
	d.live[p] = kind
	return p
}

func (d *fakeDevice) release(p unsafe.Pointer, kind string) {
	if got, ok := d.live[p]; !ok || got != kind {
		d.violations = append(d.violations, fmt.Sprintf("destroy of unknown %s", kind))
		return
	}
	delete(d.live, p)
}

func (d *fakeDevice) liveCount(kind string) int {
	n := 0
	for _, k := range d.live {
		if k == kind {
			n++
		}
	}
	return n
}

// inUse flags destruction of presentation resources while work is pending.
func (d *fakeDevice) inUse(what string) {
	if d.outstanding > 0 {
		d.violations = append(d.violations, fmt.Sprintf("%s destroyed with %d submissions pending", what, d.outstanding))
	}
}

func (d *fakeDevice) complete(fence vulkan.Fence) {
	f := d.fences[fence]
	if f == nil || !f.pending {
		return
	}
	f.pending = false
	f.signaled = true
	d.outstanding--
	for cb, owner := range d.pendingBuffers {
		if owner == fence {
			delete(d.pendingBuffers, cb)
		}
	}
}

func (d *fakeDevice) QueueFamilies() QueueFamilyIndices { return d.families }

func (d *fakeDevice) SwapchainSupport() (SwapchainSupport, error) { return d.support, nil }

func (d *fakeDevice) CreatePipeline(format vulkan.Format) (*Pipeline, error) {
	d.pipelineFormats = append(d.pipelineFormats, format)
	return &Pipeline{
		Format:     format,
		RenderPass: vulkan.RenderPass(d.handle("renderPass")),
		Layout:     vulkan.PipelineLayout(d.handle("pipelineLayout")),
		Handle:     vulkan.Pipeline(d.handle("pipeline")),
	}, nil
}

func (d *fakeDevice) DestroyPipeline(p *Pipeline) {
	d.release(unsafe.Pointer(p.Handle), "pipeline")
	d.release(unsafe.Pointer(p.Layout), "pipelineLayout")
	d.release(unsafe.Pointer(p.RenderPass), "renderPass")
}

func (d *fakeDevice) CreateSwapchain(info *vulkan.SwapchainCreateInfo) (vulkan.Swapchain, error) {
	d.swapchainInfos = append(d.swapchainInfos, *info)
	d.events = append(d.events, "create swapchain")
	sc := vulkan.Swapchain(d.handle("swapchain"))
	images := make([]vulkan.Image, info.MinImageCount)
	for i := range images {
		// Images belong to the swapchain and are not tracked as live.
		images[i] = vulkan.Image(unsafe.Pointer(new(uint64)))
	}
	d.images[sc] = images
	d.nextImage = 0
	return sc, nil
}

func (d *fakeDevice) SwapchainImages(sc vulkan.Swapchain) ([]vulkan.Image, error) {
	images, ok := d.images[sc]
	if !ok {
		return nil, errors.New("unknown swapchain")
	}
	return images, nil
}

func (d *fakeDevice) DestroySwapchain(sc vulkan.Swapchain) {
	d.inUse("swapchain")
	d.events = append(d.events, "destroy swapchain")
	delete(d.images, sc)
	d.release(unsafe.Pointer(sc), "swapchain")
}

func (d *fakeDevice) CreateImageView(image vulkan.Image, format vulkan.Format) (vulkan.ImageView, error) {
	return vulkan.ImageView(d.handle("imageView")), nil
}

func (d *fakeDevice) DestroyImageView(view vulkan.ImageView) {
	d.inUse("image view")
	d.release(unsafe.Pointer(view), "imageView")
}

func (d *fakeDevice) CreateFramebuffer(renderPass vulkan.RenderPass, view vulkan.ImageView, extent vulkan.Extent2D) (vulkan.Framebuffer, error) {
	return vulkan.Framebuffer(d.handle("framebuffer")), nil
}

func (d *fakeDevice) DestroyFramebuffer(fb vulkan.Framebuffer) {
	d.inUse("framebuffer")
	d.release(unsafe.Pointer(fb), "framebuffer")
}

func (d *fakeDevice) CreateSemaphore() (vulkan.Semaphore, error) {
	return vulkan.Semaphore(d.handle("semaphore")), nil
}

func (d *fakeDevice) DestroySemaphore(sem vulkan.Semaphore) {
	d.release(unsafe.Pointer(sem), "semaphore")
}

func (d *fakeDevice) CreateFence(signaled bool) (vulkan.Fence, error) {
	fence := vulkan.Fence(d.handle("fence"))
	d.fences[fence] = &fakeFence{signaled: signaled}
	return fence, nil
}

func (d *fakeDevice) DestroyFence(fence vulkan.Fence) {
	if f := d.fences[fence]; f != nil && f.pending {
		d.violations = append(d.violations, "fence destroyed while pending")
	}
	delete(d.fences, fence)
	d.release(unsafe.Pointer(fence), "fence")
}

func (d *fakeDevice) WaitForFence(fence vulkan.Fence, timeout uint64) error {
	f := d.fences[fence]
	if f == nil {
		return errors.New("wait on unknown fence")
	}
	if timeout != vulkan.MaxUint64 {
		d.violations = append(d.violations, "bounded fence wait")
	}
	d.events = append(d.events, "wait fence")
	if f.pending {
		d.complete(fence)
	}
	if !f.signaled {
		return errors.New("deadlock: wait on unsignaled fence with no pending submission")
	}
	return nil
}

func (d *fakeDevice) ResetFence(fence vulkan.Fence) error {
	f := d.fences[fence]
	if f == nil {
		return errors.New("reset of unknown fence")
	}
	if f.pending {
		return errors.New("reset of fence with pending submission")
	}
	d.events = append(d.events, "reset fence")
	f.signaled = false
	return nil
}

func (d *fakeDevice) AllocateCommandBuffers(count int) ([]vulkan.CommandBuffer, error) {
	bufs := make([]vulkan.CommandBuffer, count)
	for i := range bufs {
		bufs[i] = vulkan.CommandBuffer(d.handle("commandBuffer"))
	}
	return bufs, nil
}

func (d *fakeDevice) FreeCommandBuffers(bufs []vulkan.CommandBuffer) {
	for _, cb := range bufs {
		d.release(unsafe.Pointer(cb), "commandBuffer")
	}
}

func (d *fakeDevice) AcquireNextImage(sc vulkan.Swapchain, timeout uint64, signal vulkan.Semaphore) (uint32, vulkan.Result) {
	d.acquireCalls++
	d.events = append(d.events, "acquire")
	if res, ok := d.acquireResults[d.acquireCalls]; ok && res != vulkan.Success && res != vulkan.Suboptimal {
		return 0, res
	}
	images := d.images[sc]
	index := d.nextImage % uint32(len(images))
	d.nextImage++
	if res, ok := d.acquireResults[d.acquireCalls]; ok {
		return index, res
	}
	return index, vulkan.Success
}

func (d *fakeDevice) SubmitGraphics(info *vulkan.SubmitInfo, fence vulkan.Fence) error {
	f := d.fences[fence]
	if f == nil {
		return errors.New("submit with unknown fence")
	}
	if f.signaled || f.pending {
		return errors.New("submit with fence that is not reset")
	}
	for _, cb := range info.PCommandBuffers {
		if _, busy := d.pendingBuffers[cb]; busy {
			return errors.New("submit of command buffer still in flight")
		}
		d.pendingBuffers[cb] = fence
	}
	d.events = append(d.events, "submit")
	d.submits = append(d.submits, *info)
	f.pending = true
	d.outstanding++
	if d.outstanding > d.maxOutstanding {
		d.maxOutstanding = d.outstanding
	}
	return nil
}

func (d *fakeDevice) Present(info *vulkan.PresentInfo) vulkan.Result {
	d.presentCalls++
	d.events = append(d.events, "present")
	d.presents = append(d.presents, *info)
	if res, ok := d.presentResults[d.presentCalls]; ok {
		return res
	}
	return vulkan.Success
}

func (d *fakeDevice) WaitIdle() error {
	d.waitIdleCalls++
	d.events = append(d.events, "wait idle")
	for fence := range d.fences {
		d.complete(fence)
	}
	return nil
}

func (d *fakeDevice) Destroy() {
	d.destroyed = true
	d.liveAtDestroy = len(d.live)
}

func (d *fakeDevice) ResetCommandBuffer(cb vulkan.CommandBuffer) error {
	if _, busy := d.pendingBuffers[cb]; busy {
		return errors.New("reset of command buffer still in flight")
	}
	d.commands = nil
	return nil
}

func (d *fakeDevice) BeginCommandBuffer(cb vulkan.CommandBuffer) error {
	if d.failBegin != nil {
		return d.failBegin
	}
	d.commands = append(d.commands, "begin")
	return nil
}

func (d *fakeDevice) EndCommandBuffer(cb vulkan.CommandBuffer) error {
	if d.failEnd != nil {
		return d.failEnd
	}
	d.commands = append(d.commands, "end")
	return nil
}

func (d *fakeDevice) CmdBeginRenderPass(cb vulkan.CommandBuffer, info *vulkan.RenderPassBeginInfo) {
	d.renderPasses = append(d.renderPasses, *info)
	d.commands = append(d.commands, "beginRenderPass")
}

func (d *fakeDevice) CmdEndRenderPass(cb vulkan.CommandBuffer) {
	d.commands = append(d.commands, "endRenderPass")
}

func (d *fakeDevice) CmdBindPipeline(cb vulkan.CommandBuffer, pipeline vulkan.Pipeline) {
	d.commands = append(d.commands, "bindPipeline")
}

func (d *fakeDevice) CmdSetViewport(cb vulkan.CommandBuffer, viewport vulkan.Viewport) {
	d.commands = append(d.commands, fmt.Sprintf("viewport %gx%g", viewport.Width, viewport.Height))
}

func (d *fakeDevice) CmdSetScissor(cb vulkan.CommandBuffer, scissor vulkan.Rect2D) {
	d.commands = append(d.commands, fmt.Sprintf("scissor %dx%d", scissor.Extent.Width, scissor.Extent.Height))
}

func (d *fakeDevice) CmdDraw(cb vulkan.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	d.commands = append(d.commands, fmt.Sprintf("draw %d %d %d %d", vertexCount, instanceCount, firstVertex, firstInstance))
}

// fakeWindow reports a framebuffer size. Each WaitEvents call moves to the
// next queued size, modelling a window being restored.
type fakeWindow struct {
	width, height int
	queued        [][2]int
	waits         int
	polls         int
	closeAfter    int
	closing       bool
	onPoll        func(polls int)
}

func newFakeWindow(width, height int) *fakeWindow {
	return &fakeWindow{width: width, height: height}
}

func (w *fakeWindow) FramebufferSize() (int, int) { return w.width, w.height }

func (w *fakeWindow) ShouldClose() bool {
	return w.closing || (w.closeAfter > 0 && w.polls >= w.closeAfter)
}

func (w *fakeWindow) PollEvents() {
	w.polls++
	if w.onPoll != nil {
		w.onPoll(w.polls)
	}
}

func (w *fakeWindow) WaitEvents() {
	w.waits++
	if len(w.queued) > 0 {
		w.width, w.height = w.queued[0][0], w.queued[0][1]
		w.queued = w.queued[1:]
	}
}
