package gpu

import (
	"github.com/vulkan-go/vulkan"

	"Triangle/internal/render"
)

// CreateSwapchain creates a swapchain for the device surface.
func (d *Device) CreateSwapchain(info *vulkan.SwapchainCreateInfo) (vulkan.Swapchain, error) {
	createInfo := *info
	createInfo.Surface = d.surface
	var swapchain vulkan.Swapchain
	if res := vulkan.CreateSwapchain(d.device, &createInfo, nil, &swapchain); res != vulkan.Success {
		return vulkan.Swapchain(vulkan.NullHandle), render.ResultError(res, "create swapchain")
	}
	return swapchain, nil
}

func (d *Device) SwapchainImages(sc vulkan.Swapchain) ([]vulkan.Image, error) {
	var count uint32
	if res := vulkan.GetSwapchainImages(d.device, sc, &count, nil); res != vulkan.Success {
		return nil, render.ResultError(res, "get swapchain image count")
	}
	images := make([]vulkan.Image, count)
	if res := vulkan.GetSwapchainImages(d.device, sc, &count, images); res != vulkan.Success {
		return nil, render.ResultError(res, "get swapchain images")
	}
	return images[:count], nil
}

func (d *Device) DestroySwapchain(sc vulkan.Swapchain) {
	vulkan.DestroySwapchain(d.device, sc, nil)
}

func (d *Device) CreateImageView(image vulkan.Image, format vulkan.Format) (vulkan.ImageView, error) {
	viewInfo := vulkan.ImageViewCreateInfo{
		SType:    vulkan.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vulkan.ImageViewType2d,
		Format:   format,
		Components: vulkan.ComponentMapping{
			R: vulkan.ComponentSwizzleIdentity,
			G: vulkan.ComponentSwizzleIdentity,
			B: vulkan.ComponentSwizzleIdentity,
			A: vulkan.ComponentSwizzleIdentity,
		},
		SubresourceRange: vulkan.ImageSubresourceRange{
			AspectMask:     vulkan.ImageAspectFlags(vulkan.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	var view vulkan.ImageView
	if res := vulkan.CreateImageView(d.device, &viewInfo, nil, &view); res != vulkan.Success {
		return vulkan.ImageView(vulkan.NullHandle), render.ResultError(res, "create image view")
	}
	return view, nil
}

func (d *Device) DestroyImageView(view vulkan.ImageView) {
	vulkan.DestroyImageView(d.device, view, nil)
}

func (d *Device) CreateFramebuffer(renderPass vulkan.RenderPass, view vulkan.ImageView, extent vulkan.Extent2D) (vulkan.Framebuffer, error) {
	createInfo := vulkan.FramebufferCreateInfo{
		SType:           vulkan.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass,
		AttachmentCount: 1,
		PAttachments:    []vulkan.ImageView{view},
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}
	var fb vulkan.Framebuffer
	if res := vulkan.CreateFramebuffer(d.device, &createInfo, nil, &fb); res != vulkan.Success {
		return vulkan.Framebuffer(vulkan.NullHandle), render.ResultError(res, "create framebuffer")
	}
	return fb, nil
}

func (d *Device) DestroyFramebuffer(fb vulkan.Framebuffer) {
	vulkan.DestroyFramebuffer(d.device, fb, nil)
}

func (d *Device) CreateSemaphore() (vulkan.Semaphore, error) {
	semInfo := vulkan.SemaphoreCreateInfo{
		SType: vulkan.StructureTypeSemaphoreCreateInfo,
	}
	var sem vulkan.Semaphore
	if res := vulkan.CreateSemaphore(d.device, &semInfo, nil, &sem); res != vulkan.Success {
		return vulkan.Semaphore(vulkan.NullHandle), render.ResultError(res, "create semaphore")
	}
	return sem, nil
}

func (d *Device) DestroySemaphore(sem vulkan.Semaphore) {
	vulkan.DestroySemaphore(d.device, sem, nil)
}

func (d *Device) CreateFence(signaled bool) (vulkan.Fence, error) {
	fenceInfo := vulkan.FenceCreateInfo{
		SType: vulkan.StructureTypeFenceCreateInfo,
	}
	if signaled {
		fenceInfo.Flags = vulkan.FenceCreateFlags(vulkan.FenceCreateSignaledBit)
	}
	var fence vulkan.Fence
	if res := vulkan.CreateFence(d.device, &fenceInfo, nil, &fence); res != vulkan.Success {
		return vulkan.Fence(vulkan.NullHandle), render.ResultError(res, "create fence")
	}
	return fence, nil
}

func (d *Device) DestroyFence(fence vulkan.Fence) {
	vulkan.DestroyFence(d.device, fence, nil)
}

func (d *Device) AllocateCommandBuffers(count int) ([]vulkan.CommandBuffer, error) {
	allocInfo := vulkan.CommandBufferAllocateInfo{
		SType:              vulkan.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.commandPool,
		Level:              vulkan.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}
	bufs := make([]vulkan.CommandBuffer, count)
	if res := vulkan.AllocateCommandBuffers(d.device, &allocInfo, bufs); res != vulkan.Success {
		return nil, render.ResultError(res, "allocate command buffers")
	}
	return bufs, nil
}

func (d *Device) FreeCommandBuffers(bufs []vulkan.CommandBuffer) {
	if len(bufs) == 0 {
		return
	}
	vulkan.FreeCommandBuffers(d.device, d.commandPool, uint32(len(bufs)), bufs)
}
