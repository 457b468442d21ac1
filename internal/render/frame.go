package render

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// SlotState is where a frame slot is in its cycle.
type SlotState int

const (
	// SlotIdle: the slot's previous submission has been observed complete.
	SlotIdle SlotState = iota
	// SlotRecording: the fence is reset and the command buffer is being
	// recorded.
	SlotRecording
	// SlotSubmitted: the command buffer is queued and the fence will signal
	// when the GPU finishes it.
	SlotSubmitted
)

func (s SlotState) String() string {
	switch s {
	case SlotIdle:
		return "idle"
	case SlotRecording:
		return "recording"
	case SlotSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// frame is one of the MaxFramesInFlight slots. Its command buffer is only
// touched by the CPU after inFlight has been observed signaled.
type frame struct {
	commandBuffer  vulkan.CommandBuffer
	imageAvailable vulkan.Semaphore
	renderFinished vulkan.Semaphore
	inFlight       vulkan.Fence
	state          SlotState
}

func (c *Context) createFrames() error {
	bufs, err := c.dev.AllocateCommandBuffers(MaxFramesInFlight)
	if err != nil {
		return errors.Wrap(err, "allocate command buffers")
	}
	c.release.push(func() { c.dev.FreeCommandBuffers(bufs) })

	for i := range c.frames {
		f := &c.frames[i]
		f.commandBuffer = bufs[i]

		available, err := c.dev.CreateSemaphore()
		if err != nil {
			return errors.Wrapf(err, "create image available semaphore %d", i)
		}
		f.imageAvailable = available
		c.release.push(func() { c.dev.DestroySemaphore(available) })

		finished, err := c.dev.CreateSemaphore()
		if err != nil {
			return errors.Wrapf(err, "create render finished semaphore %d", i)
		}
		f.renderFinished = finished
		c.release.push(func() { c.dev.DestroySemaphore(finished) })

		// Created signaled so the first wait on each slot returns at once.
		fence, err := c.dev.CreateFence(true)
		if err != nil {
			return errors.Wrapf(err, "create fence %d", i)
		}
		f.inFlight = fence
		c.release.push(func() { c.dev.DestroyFence(fence) })
	}
	return nil
}

// DrawFrame runs one cycle of the current frame slot: wait, acquire, record,
// submit, present. A stale swapchain is rebuilt in place and never reported
// as an error.
func (c *Context) DrawFrame() error {
	f := &c.frames[c.currentFrame]

	if err := c.dev.WaitForFence(f.inFlight, vulkan.MaxUint64); err != nil {
		return errors.Wrapf(err, "wait for frame %d", c.currentFrame)
	}
	f.state = SlotIdle

	imageIndex, acquired, err := c.swapchain.AcquireNextImage(vulkan.MaxUint64, f.imageAvailable)
	if err != nil {
		return err
	}
	if acquired == StatusOutOfDate {
		// The fence stays signaled: nothing was submitted for this slot.
		return c.rebuild("acquire " + acquired.String())
	}

	if err := c.dev.ResetFence(f.inFlight); err != nil {
		return errors.Wrapf(err, "reset frame %d fence", c.currentFrame)
	}
	f.state = SlotRecording

	if err := c.dev.ResetCommandBuffer(f.commandBuffer); err != nil {
		return errors.Wrap(err, "reset command buffer")
	}
	if err := recordTriangle(c.dev, f.commandBuffer, c.target(imageIndex)); err != nil {
		return err
	}

	waitStages := []vulkan.PipelineStageFlags{
		vulkan.PipelineStageFlags(vulkan.PipelineStageColorAttachmentOutputBit),
	}
	submitInfo := vulkan.SubmitInfo{
		SType:                vulkan.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vulkan.Semaphore{f.imageAvailable},
		PWaitDstStageMask:    waitStages,
		CommandBufferCount:   1,
		PCommandBuffers:      []vulkan.CommandBuffer{f.commandBuffer},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vulkan.Semaphore{f.renderFinished},
	}
	if err := c.dev.SubmitGraphics(&submitInfo, f.inFlight); err != nil {
		return errors.Wrap(err, "queue submit")
	}
	f.state = SlotSubmitted

	presented, err := c.swapchain.Present(imageIndex, f.renderFinished)
	if err != nil {
		return err
	}
	c.stats.presented()

	// Checked after presenting, so one frame may go out at the old size.
	switch {
	case presented.Stale():
		err = c.rebuild("present " + presented.String())
	case acquired.Stale():
		err = c.rebuild("acquire " + acquired.String())
	case c.needsRebuild.Load():
		err = c.rebuild("resize")
	}
	if err != nil {
		return err
	}

	c.currentFrame = (c.currentFrame + 1) % MaxFramesInFlight
	return nil
}

func (c *Context) target(imageIndex uint32) drawTarget {
	return drawTarget{
		renderPass:  c.pipeline.RenderPass,
		pipeline:    c.pipeline.Handle,
		framebuffer: c.swapchain.Framebuffers[imageIndex],
		extent:      c.swapchain.Extent,
		clearColor:  c.opts.ClearColor,
	}
}

// rebuild recreates the swapchain. The resize flag is cleared once the
// drawable is non-zero and before the new surface capabilities are read, so
// a resize arriving later is not lost.
func (c *Context) rebuild(reason string) error {
	if err := c.swapchain.waitForDrawable(); err != nil {
		return err
	}
	c.needsRebuild.Store(false)

	Logger().Info("rebuilding swapchain", "reason", reason, "frame", c.currentFrame)
	for i := range c.frames {
		Logger().Debug("frame slot", "slot", i, "state", c.frames[i].state)
	}
	if err := c.swapchain.Rebuild(); err != nil {
		return errors.Wrap(err, "rebuild swapchain")
	}
	c.stats.rebuilt()
	return nil
}
