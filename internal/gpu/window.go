package gpu

import (
	"github.com/vulkan-go/glfw/v3.3/glfw"

	"Triangle/internal/render"
)

// Window adapts a glfw window to render.Window. Event processing is global
// in glfw, so the methods must be called from the main thread.
type Window struct {
	*glfw.Window
}

var _ render.Window = Window{}

func (w Window) FramebufferSize() (int, int) {
	return w.GetFramebufferSize()
}

func (w Window) PollEvents() {
	glfw.PollEvents()
}

func (w Window) WaitEvents() {
	glfw.WaitEvents()
}
