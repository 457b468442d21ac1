// Package gpu implements the render device on top of vulkan-go and glfw.
package gpu

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	"github.com/vulkan-go/vulkan"

	"Triangle/internal/render"
	"Triangle/internal/shader"
)

var (
	validationLayers = []string{"VK_LAYER_KHRONOS_validation"}
	deviceExtensions = []string{"VK_KHR_swapchain"}
)

var (
	ErrNoSuitableDevice        = errors.New("no suitable GPU found")
	ErrMissingValidationLayers = errors.New("requested validation layers not available")
)

// Options configures device creation.
type Options struct {
	AppName        string
	Validation     bool
	VertexShader   shader.Code
	FragmentShader shader.Code
}

// Device owns the instance, the window surface, the logical device with its
// queues and the command pool. It implements render.Device.
type Device struct {
	opts   Options
	window *glfw.Window

	instance      vulkan.Instance
	debugCallback vulkan.DebugReportCallback
	surface       vulkan.Surface
	physical      vulkan.PhysicalDevice
	device        vulkan.Device
	graphicsQueue vulkan.Queue
	presentQueue  vulkan.Queue
	queues        render.QueueFamilyIndices
	commandPool   vulkan.CommandPool
}

var _ render.Device = (*Device)(nil)

// New initializes Vulkan for window. On error everything created so far is
// released.
func New(window *glfw.Window, opts Options) (*Device, error) {
	d := &Device{
		opts:   opts,
		window: window,
	}
	if err := d.init(); err != nil {
		d.Destroy()
		return nil, err
	}
	return d, nil
}

func (d *Device) init() error {
	vulkan.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vulkan.Init(); err != nil {
		return errors.Wrap(err, "vulkan init")
	}
	if err := d.createInstance(); err != nil {
		return err
	}
	if err := vulkan.InitInstance(d.instance); err != nil {
		return errors.Wrap(err, "init instance")
	}
	if err := d.setupDebugCallback(); err != nil {
		return err
	}
	if err := d.createSurface(); err != nil {
		return err
	}
	if err := d.pickPhysicalDevice(); err != nil {
		return err
	}
	if err := d.createLogicalDevice(); err != nil {
		return err
	}
	return d.createCommandPool()
}

func (d *Device) createSurface() error {
	surfacePtr, err := d.window.CreateWindowSurface(d.instance, nil)
	if err != nil {
		return errors.Wrap(err, "create window surface")
	}
	d.surface = vulkan.SurfaceFromPointer(surfacePtr)
	return nil
}

func (d *Device) createLogicalDevice() error {
	families := d.queues.Unique()
	queueInfos := make([]vulkan.DeviceQueueCreateInfo, 0, len(families))
	for _, family := range families {
		queueInfos = append(queueInfos, vulkan.DeviceQueueCreateInfo{
			SType:            vulkan.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	createInfo := vulkan.DeviceCreateInfo{
		SType:                   vulkan.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		PEnabledFeatures:        []vulkan.PhysicalDeviceFeatures{{}},
		EnabledExtensionCount:   uint32(len(deviceExtensions)),
		PpEnabledExtensionNames: deviceExtensions,
	}
	if d.opts.Validation {
		createInfo.EnabledLayerCount = uint32(len(validationLayers))
		createInfo.PpEnabledLayerNames = validationLayers
	}

	if res := vulkan.CreateDevice(d.physical, &createInfo, nil, &d.device); res != vulkan.Success {
		return render.ResultError(res, "create logical device")
	}

	vulkan.GetDeviceQueue(d.device, d.queues.Graphics, 0, &d.graphicsQueue)
	vulkan.GetDeviceQueue(d.device, d.queues.Present, 0, &d.presentQueue)
	return nil
}

func (d *Device) createCommandPool() error {
	poolInfo := vulkan.CommandPoolCreateInfo{
		SType:            vulkan.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: d.queues.Graphics,
		Flags:            vulkan.CommandPoolCreateFlags(vulkan.CommandPoolCreateResetCommandBufferBit),
	}
	if res := vulkan.CreateCommandPool(d.device, &poolInfo, nil, &d.commandPool); res != vulkan.Success {
		return render.ResultError(res, "create command pool")
	}
	return nil
}

// QueueFamilies returns the graphics and present families of the device.
func (d *Device) QueueFamilies() render.QueueFamilyIndices {
	return d.queues
}

// SwapchainSupport queries the surface again, since capabilities change with
// the window.
func (d *Device) SwapchainSupport() (render.SwapchainSupport, error) {
	return querySwapchainSupport(d.physical, d.surface)
}

// WaitIdle blocks until the device has finished all submitted work.
func (d *Device) WaitIdle() error {
	if res := vulkan.DeviceWaitIdle(d.device); res != vulkan.Success {
		return render.ResultError(res, "device wait idle")
	}
	return nil
}

// Destroy releases the device, surface and instance in reverse creation
// order. Every resource created through the device must already be released.
func (d *Device) Destroy() {
	if d.commandPool != vulkan.CommandPool(vulkan.NullHandle) {
		vulkan.DestroyCommandPool(d.device, d.commandPool, nil)
		d.commandPool = vulkan.CommandPool(vulkan.NullHandle)
	}
	if d.device != vulkan.Device(vulkan.NullHandle) {
		vulkan.DestroyDevice(d.device, nil)
		d.device = vulkan.Device(vulkan.NullHandle)
	}
	if d.debugCallback != vulkan.DebugReportCallback(vulkan.NullHandle) {
		vulkan.DestroyDebugReportCallback(d.instance, d.debugCallback, nil)
		d.debugCallback = vulkan.DebugReportCallback(vulkan.NullHandle)
	}
	if d.surface != vulkan.Surface(vulkan.NullHandle) {
		vulkan.DestroySurface(d.instance, d.surface, nil)
		d.surface = vulkan.Surface(vulkan.NullHandle)
	}
	if d.instance != vulkan.Instance(vulkan.NullHandle) {
		vulkan.DestroyInstance(d.instance, nil)
		d.instance = vulkan.Instance(vulkan.NullHandle)
	}
}
