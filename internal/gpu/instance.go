package gpu

import (
	"context"
	"log/slog"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	"github.com/vulkan-go/vulkan"

	"Triangle/internal/render"
)

func (d *Device) createInstance() error {
	if d.opts.Validation {
		if missing := missingNames(validationLayers, instanceLayers()); len(missing) > 0 {
			return errors.Wrapf(ErrMissingValidationLayers, "%v", missing)
		}
	}

	if !glfw.VulkanSupported() {
		return errors.New("GLFW Vulkan loader not found")
	}

	appName := d.opts.AppName
	if appName == "" {
		appName = "Triangle"
	}
	appInfo := vulkan.ApplicationInfo{
		SType:              vulkan.StructureTypeApplicationInfo,
		PApplicationName:   appName,
		ApplicationVersion: vulkan.MakeVersion(0, 1, 0),
		PEngineName:        "No Engine",
		EngineVersion:      vulkan.MakeVersion(0, 1, 0),
		ApiVersion:         vulkan.MakeVersion(1, 1, 0),
	}

	extensions := d.window.GetRequiredInstanceExtensions()
	if d.opts.Validation {
		extensions = append(extensions, "VK_EXT_debug_report")
	}

	createInfo := vulkan.InstanceCreateInfo{
		SType:                   vulkan.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}
	if d.opts.Validation {
		createInfo.EnabledLayerCount = uint32(len(validationLayers))
		createInfo.PpEnabledLayerNames = validationLayers
	}

	if res := vulkan.CreateInstance(&createInfo, nil, &d.instance); res != vulkan.Success {
		return render.ResultError(res, "create instance")
	}
	return nil
}

func instanceLayers() []string {
	var count uint32
	if vulkan.EnumerateInstanceLayerProperties(&count, nil) != vulkan.Success {
		return nil
	}
	props := make([]vulkan.LayerProperties, count)
	if vulkan.EnumerateInstanceLayerProperties(&count, props) != vulkan.Success {
		return nil
	}
	names := make([]string, 0, count)
	for i := range props {
		props[i].Deref()
		names = append(names, vulkan.ToString(props[i].LayerName[:]))
	}
	return names
}

// missingNames returns the entries of required that are not in available.
func missingNames(required, available []string) []string {
	supported := make(map[string]bool, len(available))
	for _, name := range available {
		supported[name] = true
	}
	var missing []string
	for _, name := range required {
		if !supported[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

func (d *Device) setupDebugCallback() error {
	if !d.opts.Validation {
		return nil
	}
	createInfo := vulkan.DebugReportCallbackCreateInfo{
		SType: vulkan.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vulkan.DebugReportFlags(
			vulkan.DebugReportErrorBit |
				vulkan.DebugReportWarningBit |
				vulkan.DebugReportPerformanceWarningBit),
		PfnCallback: func(flags vulkan.DebugReportFlags, objectType vulkan.DebugReportObjectType, object uint64, location uint, messageCode int32, layerPrefix string, message string, userData unsafe.Pointer) vulkan.Bool32 {
			render.Logger().Log(context.Background(), debugLevel(flags), message,
				"layer", layerPrefix,
				"code", messageCode)
			return vulkan.False
		},
	}
	if res := vulkan.CreateDebugReportCallback(d.instance, &createInfo, nil, &d.debugCallback); res != vulkan.Success {
		return render.ResultError(res, "create debug callback")
	}
	return nil
}

// debugLevel maps validation report flags to a log level.
func debugLevel(flags vulkan.DebugReportFlags) slog.Level {
	switch {
	case flags&vulkan.DebugReportFlags(vulkan.DebugReportErrorBit) != 0:
		return slog.LevelError
	case flags&vulkan.DebugReportFlags(vulkan.DebugReportWarningBit|vulkan.DebugReportPerformanceWarningBit) != 0:
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}
