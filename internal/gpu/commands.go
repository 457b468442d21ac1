package gpu

import (
	"github.com/vulkan-go/vulkan"

	"Triangle/internal/render"
)

func (d *Device) WaitForFence(fence vulkan.Fence, timeout uint64) error {
	if res := vulkan.WaitForFences(d.device, 1, []vulkan.Fence{fence}, vulkan.True, timeout); res != vulkan.Success {
		return render.ResultError(res, "wait for fence")
	}
	return nil
}

func (d *Device) ResetFence(fence vulkan.Fence) error {
	if res := vulkan.ResetFences(d.device, 1, []vulkan.Fence{fence}); res != vulkan.Success {
		return render.ResultError(res, "reset fence")
	}
	return nil
}

// AcquireNextImage returns the raw result so the caller can tell a stale
// swapchain from a failure.
func (d *Device) AcquireNextImage(sc vulkan.Swapchain, timeout uint64, signal vulkan.Semaphore) (uint32, vulkan.Result) {
	var imageIndex uint32
	res := vulkan.AcquireNextImage(d.device, sc, timeout, signal, vulkan.Fence(vulkan.NullHandle), &imageIndex)
	return imageIndex, res
}

func (d *Device) SubmitGraphics(info *vulkan.SubmitInfo, fence vulkan.Fence) error {
	if res := vulkan.QueueSubmit(d.graphicsQueue, 1, []vulkan.SubmitInfo{*info}, fence); res != vulkan.Success {
		return render.ResultError(res, "queue submit")
	}
	return nil
}

func (d *Device) Present(info *vulkan.PresentInfo) vulkan.Result {
	return vulkan.QueuePresent(d.presentQueue, info)
}

func (d *Device) ResetCommandBuffer(cb vulkan.CommandBuffer) error {
	if res := vulkan.ResetCommandBuffer(cb, 0); res != vulkan.Success {
		return render.ResultError(res, "reset command buffer")
	}
	return nil
}

func (d *Device) BeginCommandBuffer(cb vulkan.CommandBuffer) error {
	beginInfo := vulkan.CommandBufferBeginInfo{
		SType: vulkan.StructureTypeCommandBufferBeginInfo,
		Flags: vulkan.CommandBufferUsageFlags(vulkan.CommandBufferUsageOneTimeSubmitBit),
	}
	if res := vulkan.BeginCommandBuffer(cb, &beginInfo); res != vulkan.Success {
		return render.ResultError(res, "begin command buffer")
	}
	return nil
}

func (d *Device) EndCommandBuffer(cb vulkan.CommandBuffer) error {
	if res := vulkan.EndCommandBuffer(cb); res != vulkan.Success {
		return render.ResultError(res, "end command buffer")
	}
	return nil
}

func (d *Device) CmdBeginRenderPass(cb vulkan.CommandBuffer, info *vulkan.RenderPassBeginInfo) {
	vulkan.CmdBeginRenderPass(cb, info, vulkan.SubpassContentsInline)
}

func (d *Device) CmdEndRenderPass(cb vulkan.CommandBuffer) {
	vulkan.CmdEndRenderPass(cb)
}

func (d *Device) CmdBindPipeline(cb vulkan.CommandBuffer, pipeline vulkan.Pipeline) {
	vulkan.CmdBindPipeline(cb, vulkan.PipelineBindPointGraphics, pipeline)
}

func (d *Device) CmdSetViewport(cb vulkan.CommandBuffer, viewport vulkan.Viewport) {
	vulkan.CmdSetViewport(cb, 0, 1, []vulkan.Viewport{viewport})
}

func (d *Device) CmdSetScissor(cb vulkan.CommandBuffer, scissor vulkan.Rect2D) {
	vulkan.CmdSetScissor(cb, 0, 1, []vulkan.Rect2D{scissor})
}

func (d *Device) CmdDraw(cb vulkan.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vulkan.CmdDraw(cb, vertexCount, instanceCount, firstVertex, firstInstance)
}
