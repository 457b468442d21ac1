package render

import (
	mgl32 "github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// triangleVertexCount is the number of vertices the vertex shader generates
// from gl_VertexIndex.
const triangleVertexCount = 3

// drawTarget is what one recording renders into.
type drawTarget struct {
	renderPass  vulkan.RenderPass
	pipeline    vulkan.Pipeline
	framebuffer vulkan.Framebuffer
	extent      vulkan.Extent2D
	clearColor  mgl32.Vec4
}

// recordTriangle records one complete render pass drawing the triangle into
// target. cb must be in the initial state.
func recordTriangle(enc CommandEncoder, cb vulkan.CommandBuffer, target drawTarget) error {
	if err := enc.BeginCommandBuffer(cb); err != nil {
		return errors.Wrap(err, "begin command buffer")
	}

	clearValues := []vulkan.ClearValue{
		vulkan.NewClearValue(target.clearColor[:]),
	}
	renderPassInfo := vulkan.RenderPassBeginInfo{
		SType:       vulkan.StructureTypeRenderPassBeginInfo,
		RenderPass:  target.renderPass,
		Framebuffer: target.framebuffer,
		RenderArea: vulkan.Rect2D{
			Offset: vulkan.Offset2D{X: 0, Y: 0},
			Extent: target.extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	enc.CmdBeginRenderPass(cb, &renderPassInfo)

	enc.CmdBindPipeline(cb, target.pipeline)
	enc.CmdSetViewport(cb, vulkan.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(target.extent.Width),
		Height:   float32(target.extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	})
	enc.CmdSetScissor(cb, vulkan.Rect2D{
		Offset: vulkan.Offset2D{X: 0, Y: 0},
		Extent: target.extent,
	})
	enc.CmdDraw(cb, triangleVertexCount, 1, 0, 0)

	enc.CmdEndRenderPass(cb)

	if err := enc.EndCommandBuffer(cb); err != nil {
		return errors.Wrap(err, "end command buffer")
	}
	return nil
}
