package render

import (
	"math"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// Swapchain owns the presentable images of the surface together with one
// view and one framebuffer per image. The three slices always have the same
// length and are created and destroyed as a unit.
type Swapchain struct {
	dev        Device
	win        Window
	renderPass vulkan.RenderPass

	handle       vulkan.Swapchain
	Format       vulkan.SurfaceFormat
	Extent       vulkan.Extent2D
	PresentMode  vulkan.PresentMode
	Images       []vulkan.Image
	Views        []vulkan.ImageView
	Framebuffers []vulkan.Framebuffer
}

// NewSwapchain creates the swapchain and its per-image views and
// framebuffers for renderPass.
func NewSwapchain(dev Device, win Window, renderPass vulkan.RenderPass) (*Swapchain, error) {
	s := &Swapchain{
		dev:        dev,
		win:        win,
		renderPass: renderPass,
	}
	if err := s.create(); err != nil {
		return nil, err
	}
	return s, nil
}

// Len returns the number of presentable images.
func (s *Swapchain) Len() int {
	return len(s.Images)
}

// querySupport re-validates what the surface reports before it is used.
func querySupport(dev Device) (SwapchainSupport, error) {
	support, err := dev.SwapchainSupport()
	if err != nil {
		return support, errors.Wrap(err, "query swapchain support")
	}
	if len(support.Formats) == 0 || len(support.PresentModes) == 0 {
		return support, ErrUnsuitableSurface
	}
	return support, nil
}

func (s *Swapchain) create() error {
	support, err := querySupport(s.dev)
	if err != nil {
		return err
	}

	surfaceFormat := chooseSurfaceFormat(support.Formats)
	if s.Format.Format != 0 && surfaceFormat.Format != s.Format.Format {
		return errors.Errorf("surface format changed from %d to %d", s.Format.Format, surfaceFormat.Format)
	}
	presentMode := choosePresentMode(support.PresentModes)
	width, height := s.win.FramebufferSize()
	extent := chooseExtent(support.Capabilities, width, height)
	imageCount := chooseImageCount(support.Capabilities)

	createInfo := swapchainCreateInfo(support.Capabilities, s.dev.QueueFamilies(), surfaceFormat, presentMode, extent, imageCount)
	handle, err := s.dev.CreateSwapchain(createInfo)
	if err != nil {
		return errors.Wrap(err, "create swapchain")
	}
	s.handle = handle
	s.Format = surfaceFormat
	s.PresentMode = presentMode
	s.Extent = extent

	images, err := s.dev.SwapchainImages(handle)
	if err != nil {
		s.destroy()
		return errors.Wrap(err, "get swapchain images")
	}
	s.Images = images

	s.Views = make([]vulkan.ImageView, 0, len(images))
	for i, img := range images {
		view, err := s.dev.CreateImageView(img, surfaceFormat.Format)
		if err != nil {
			s.destroy()
			return errors.Wrapf(err, "create image view %d", i)
		}
		s.Views = append(s.Views, view)
	}

	s.Framebuffers = make([]vulkan.Framebuffer, 0, len(images))
	for i, view := range s.Views {
		fb, err := s.dev.CreateFramebuffer(s.renderPass, view, extent)
		if err != nil {
			s.destroy()
			return errors.Wrapf(err, "create framebuffer %d", i)
		}
		s.Framebuffers = append(s.Framebuffers, fb)
	}

	Logger().Info("swapchain created",
		"width", extent.Width,
		"height", extent.Height,
		"images", len(images),
		"presentMode", presentModeName(presentMode),
		"format", surfaceFormat.Format)
	return nil
}

func (s *Swapchain) destroy() {
	for _, fb := range s.Framebuffers {
		s.dev.DestroyFramebuffer(fb)
	}
	s.Framebuffers = nil
	for _, view := range s.Views {
		s.dev.DestroyImageView(view)
	}
	s.Views = nil
	s.Images = nil
	if s.handle != vulkan.Swapchain(vulkan.NullHandle) {
		s.dev.DestroySwapchain(s.handle)
		s.handle = vulkan.Swapchain(vulkan.NullHandle)
	}
}

// waitForDrawable blocks on window events while the drawable area is zero,
// which is the case while the window is minimized.
func (s *Swapchain) waitForDrawable() error {
	for {
		w, h := s.win.FramebufferSize()
		if w > 0 && h > 0 {
			return nil
		}
		if s.win.ShouldClose() {
			return ErrWindowClosed
		}
		s.win.WaitEvents()
	}
}

// Rebuild replaces the swapchain with one matching the current surface. It
// waits for a non-zero drawable area and for the device to go idle before
// anything is destroyed.
func (s *Swapchain) Rebuild() error {
	if err := s.waitForDrawable(); err != nil {
		return err
	}
	if err := s.dev.WaitIdle(); err != nil {
		return errors.Wrap(err, "wait idle before rebuild")
	}
	s.destroy()
	return s.create()
}

// AcquireNextImage acquires the next presentable image, signalling signal
// once the presentation engine has released it.
func (s *Swapchain) AcquireNextImage(timeout uint64, signal vulkan.Semaphore) (uint32, Status, error) {
	index, res := s.dev.AcquireNextImage(s.handle, timeout, signal)
	status, err := classify(res, "acquire next image")
	if err != nil {
		return 0, status, err
	}
	if status != StatusOutOfDate && int(index) >= len(s.Images) {
		return 0, status, errors.Errorf("acquire next image: index %d out of range (%d images)", index, len(s.Images))
	}
	return index, status, nil
}

// Present queues imageIndex for presentation once wait is signalled.
func (s *Swapchain) Present(imageIndex uint32, wait vulkan.Semaphore) (Status, error) {
	presentInfo := vulkan.PresentInfo{
		SType:              vulkan.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vulkan.Semaphore{wait},
		SwapchainCount:     1,
		PSwapchains:        []vulkan.Swapchain{s.handle},
		PImageIndices:      []uint32{imageIndex},
	}
	return classify(s.dev.Present(&presentInfo), "queue present")
}

// Destroy releases the swapchain, its views and framebuffers. The caller
// must make sure the device no longer uses them.
func (s *Swapchain) Destroy() {
	s.destroy()
}

func swapchainCreateInfo(caps vulkan.SurfaceCapabilities, queues QueueFamilyIndices, format vulkan.SurfaceFormat,
	mode vulkan.PresentMode, extent vulkan.Extent2D, imageCount uint32) *vulkan.SwapchainCreateInfo {

	createInfo := &vulkan.SwapchainCreateInfo{
		SType:            vulkan.StructureTypeSwapchainCreateInfo,
		MinImageCount:    imageCount,
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vulkan.ImageUsageFlags(vulkan.ImageUsageColorAttachmentBit),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vulkan.CompositeAlphaOpaqueBit,
		PresentMode:      mode,
		Clipped:          vulkan.True,
		OldSwapchain:     vulkan.Swapchain(vulkan.NullHandle),
	}
	if !queues.Shared() {
		indices := queues.Unique()
		createInfo.ImageSharingMode = vulkan.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = uint32(len(indices))
		createInfo.PQueueFamilyIndices = indices
	} else {
		createInfo.ImageSharingMode = vulkan.SharingModeExclusive
	}
	return createInfo
}

// chooseSurfaceFormat prefers 8-bit BGRA sRGB. Otherwise the first reported
// format is used, which is acceptable but arbitrary.
func chooseSurfaceFormat(available []vulkan.SurfaceFormat) vulkan.SurfaceFormat {
	for _, f := range available {
		if f.Format == vulkan.FormatB8g8r8a8Srgb && f.ColorSpace == vulkan.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	Logger().Warn("preferred surface format unavailable, using first reported",
		"format", available[0].Format, "colorSpace", available[0].ColorSpace)
	return available[0]
}

// choosePresentMode prefers mailbox and falls back to FIFO, which every
// surface supports.
func choosePresentMode(available []vulkan.PresentMode) vulkan.PresentMode {
	for _, m := range available {
		if m == vulkan.PresentModeMailbox {
			return m
		}
	}
	return vulkan.PresentModeFifo
}

// chooseExtent uses the surface extent unless the surface reports that the
// extent tracks the window, in which case the framebuffer size is clamped
// into the supported range.
func chooseExtent(caps vulkan.SurfaceCapabilities, width, height int) vulkan.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	min := caps.MinImageExtent
	max := caps.MaxImageExtent
	return vulkan.Extent2D{
		Width:  clamp(uint32(width), min.Width, max.Width),
		Height: clamp(uint32(height), min.Height, max.Height),
	}
}

// chooseImageCount asks for one image more than the minimum. A maximum of
// zero means there is no upper bound.
func chooseImageCount(caps vulkan.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func presentModeName(mode vulkan.PresentMode) string {
	switch mode {
	case vulkan.PresentModeImmediate:
		return "immediate"
	case vulkan.PresentModeMailbox:
		return "mailbox"
	case vulkan.PresentModeFifo:
		return "fifo"
	case vulkan.PresentModeFifoRelaxed:
		return "fifo-relaxed"
	default:
		return "unknown"
	}
}

func clamp(val, min, max uint32) uint32 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
