package render

import (
	"github.com/vulkan-go/vulkan"
)

// MaxFramesInFlight is the number of frame slots the CPU may record ahead of
// the GPU.
const MaxFramesInFlight = 2

// SwapchainSupport is what the surface reports for the selected device.
type SwapchainSupport struct {
	Capabilities vulkan.SurfaceCapabilities
	Formats      []vulkan.SurfaceFormat
	PresentModes []vulkan.PresentMode
}

// Pipeline is the fixed render pass and graphics pipeline drawn every frame.
// Viewport and scissor are dynamic, so it survives swapchain rebuilds as long
// as the color format does not change.
type Pipeline struct {
	Format     vulkan.Format
	RenderPass vulkan.RenderPass
	Layout     vulkan.PipelineLayout
	Handle     vulkan.Pipeline
}

// CommandEncoder records commands into a command buffer.
type CommandEncoder interface {
	ResetCommandBuffer(cb vulkan.CommandBuffer) error
	BeginCommandBuffer(cb vulkan.CommandBuffer) error
	EndCommandBuffer(cb vulkan.CommandBuffer) error
	CmdBeginRenderPass(cb vulkan.CommandBuffer, info *vulkan.RenderPassBeginInfo)
	CmdEndRenderPass(cb vulkan.CommandBuffer)
	CmdBindPipeline(cb vulkan.CommandBuffer, pipeline vulkan.Pipeline)
	CmdSetViewport(cb vulkan.CommandBuffer, viewport vulkan.Viewport)
	CmdSetScissor(cb vulkan.CommandBuffer, scissor vulkan.Rect2D)
	CmdDraw(cb vulkan.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

// Device is the logical device, its queues and the surface it presents to.
// It is created once by the GPU backend and is immutable apart from the
// resources created through it.
type Device interface {
	CommandEncoder

	QueueFamilies() QueueFamilyIndices
	SwapchainSupport() (SwapchainSupport, error)

	CreatePipeline(format vulkan.Format) (*Pipeline, error)
	DestroyPipeline(p *Pipeline)

	CreateSwapchain(info *vulkan.SwapchainCreateInfo) (vulkan.Swapchain, error)
	SwapchainImages(sc vulkan.Swapchain) ([]vulkan.Image, error)
	DestroySwapchain(sc vulkan.Swapchain)
	CreateImageView(image vulkan.Image, format vulkan.Format) (vulkan.ImageView, error)
	DestroyImageView(view vulkan.ImageView)
	CreateFramebuffer(renderPass vulkan.RenderPass, view vulkan.ImageView, extent vulkan.Extent2D) (vulkan.Framebuffer, error)
	DestroyFramebuffer(fb vulkan.Framebuffer)

	CreateSemaphore() (vulkan.Semaphore, error)
	DestroySemaphore(sem vulkan.Semaphore)
	CreateFence(signaled bool) (vulkan.Fence, error)
	DestroyFence(fence vulkan.Fence)
	WaitForFence(fence vulkan.Fence, timeout uint64) error
	ResetFence(fence vulkan.Fence) error
	AllocateCommandBuffers(count int) ([]vulkan.CommandBuffer, error)
	FreeCommandBuffers(bufs []vulkan.CommandBuffer)

	AcquireNextImage(sc vulkan.Swapchain, timeout uint64, signal vulkan.Semaphore) (uint32, vulkan.Result)
	SubmitGraphics(info *vulkan.SubmitInfo, fence vulkan.Fence) error
	Present(info *vulkan.PresentInfo) vulkan.Result
	WaitIdle() error

	// Destroy releases the device and everything it was created from.
	Destroy()
}

// Window is the platform window the surface is bound to.
type Window interface {
	FramebufferSize() (width, height int)
	ShouldClose() bool
	PollEvents()
	WaitEvents()
}
