//go:generate glslc shaders/shader.vert -o shaders/vert.spv
//go:generate glslc shaders/shader.frag -o shaders/frag.spv

package main

import (
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"github.com/vulkan-go/glfw/v3.3/glfw"

	"Triangle/internal/config"
	"Triangle/internal/gpu"
	"Triangle/internal/render"
	"Triangle/internal/shader"
)

func init() {
	// GLFW/Vulkan require the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("triangle: %v", err)
	}
}

func run() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	render.SetLogger(logger)

	vert, err := shader.Load(cfg.VertexShader)
	if err != nil {
		return err
	}
	frag, err := shader.Load(cfg.FragmentShader)
	if err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "init glfw")
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfwBool(cfg.Resizable))
	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return errors.Wrap(err, "create window")
	}
	defer window.Destroy()

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	dev, err := gpu.New(window, gpu.Options{
		AppName:        cfg.Title,
		Validation:     cfg.Validation,
		VertexShader:   vert,
		FragmentShader: frag,
	})
	if err != nil {
		return errors.Wrap(err, "init vulkan")
	}

	ctx, err := render.New(dev, gpu.Window{Window: window}, render.Options{
		ClearColor: cfg.ClearColor,
	})
	if err != nil {
		return errors.Wrap(err, "init renderer")
	}
	defer ctx.Destroy()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width int, height int) {
		ctx.RequestRebuild()
	})

	logger.Info("entering main loop",
		"width", cfg.Width,
		"height", cfg.Height,
		"validation", cfg.Validation)
	return ctx.Run()
}

// configPath returns the first argument, or TRIANGLE_CONFIG when there is
// none. An empty path means defaults only.
func configPath() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return os.Getenv(config.EnvConfig)
}

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}
