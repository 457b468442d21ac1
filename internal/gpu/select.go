package gpu

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"

	"Triangle/internal/render"
)

func (d *Device) pickPhysicalDevice() error {
	var count uint32
	if res := vulkan.EnumeratePhysicalDevices(d.instance, &count, nil); res != vulkan.Success {
		return render.ResultError(res, "enumerate physical devices")
	}
	if count == 0 {
		return errors.Wrap(ErrNoSuitableDevice, "no Vulkan devices")
	}
	devices := make([]vulkan.PhysicalDevice, count)
	if res := vulkan.EnumeratePhysicalDevices(d.instance, &count, devices); res != vulkan.Success {
		return render.ResultError(res, "enumerate physical devices list")
	}

	found := false
	bestScore := int32(-1)
	var bestProps vulkan.PhysicalDeviceProperties
	for _, dev := range devices {
		queues := d.findQueueFamilies(dev)
		if !queues.Complete() {
			continue
		}
		if len(missingNames(deviceExtensions, deviceExtensionNames(dev))) > 0 {
			continue
		}
		support, err := querySwapchainSupport(dev, d.surface)
		if err != nil || len(support.Formats) == 0 || len(support.PresentModes) == 0 {
			continue
		}

		var props vulkan.PhysicalDeviceProperties
		vulkan.GetPhysicalDeviceProperties(dev, &props)
		props.Deref()
		if score := render.DeviceScore(props.DeviceType); score > bestScore {
			found = true
			bestScore = score
			bestProps = props
			d.physical = dev
			d.queues = queues
		}
	}
	if !found {
		return ErrNoSuitableDevice
	}

	render.Logger().Info("device selected",
		"name", vulkan.ToString(bestProps.DeviceName[:]),
		"score", bestScore,
		"graphicsFamily", d.queues.Graphics,
		"presentFamily", d.queues.Present)
	return nil
}

func (d *Device) findQueueFamilies(dev vulkan.PhysicalDevice) render.QueueFamilyIndices {
	var count uint32
	vulkan.GetPhysicalDeviceQueueFamilyProperties(dev, &count, nil)
	props := make([]vulkan.QueueFamilyProperties, count)
	vulkan.GetPhysicalDeviceQueueFamilyProperties(dev, &count, props)
	for i := range props {
		props[i].Deref()
	}

	return render.SelectQueueFamilies(props, func(index uint32) bool {
		var present vulkan.Bool32
		res := vulkan.GetPhysicalDeviceSurfaceSupport(dev, index, d.surface, &present)
		return res == vulkan.Success && present == vulkan.True
	})
}

func deviceExtensionNames(dev vulkan.PhysicalDevice) []string {
	var count uint32
	if res := vulkan.EnumerateDeviceExtensionProperties(dev, "", &count, nil); res != vulkan.Success {
		return nil
	}
	props := make([]vulkan.ExtensionProperties, count)
	if res := vulkan.EnumerateDeviceExtensionProperties(dev, "", &count, props); res != vulkan.Success {
		return nil
	}
	names := make([]string, 0, count)
	for i := range props {
		props[i].Deref()
		names = append(names, vulkan.ToString(props[i].ExtensionName[:]))
	}
	return names
}

func querySwapchainSupport(dev vulkan.PhysicalDevice, surface vulkan.Surface) (render.SwapchainSupport, error) {
	var support render.SwapchainSupport
	if res := vulkan.GetPhysicalDeviceSurfaceCapabilities(dev, surface, &support.Capabilities); res != vulkan.Success {
		return support, render.ResultError(res, "get surface capabilities")
	}
	support.Capabilities.Deref()
	support.Capabilities.CurrentExtent.Deref()
	support.Capabilities.MinImageExtent.Deref()
	support.Capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	if res := vulkan.GetPhysicalDeviceSurfaceFormats(dev, surface, &formatCount, nil); res != vulkan.Success {
		return support, render.ResultError(res, "get surface formats")
	}
	if formatCount > 0 {
		support.Formats = make([]vulkan.SurfaceFormat, formatCount)
		if res := vulkan.GetPhysicalDeviceSurfaceFormats(dev, surface, &formatCount, support.Formats); res != vulkan.Success {
			return support, render.ResultError(res, "get surface formats list")
		}
		support.Formats = support.Formats[:formatCount]
		for i := range support.Formats {
			support.Formats[i].Deref()
		}
	}

	var presentCount uint32
	if res := vulkan.GetPhysicalDeviceSurfacePresentModes(dev, surface, &presentCount, nil); res != vulkan.Success {
		return support, render.ResultError(res, "get surface present modes")
	}
	if presentCount > 0 {
		support.PresentModes = make([]vulkan.PresentMode, presentCount)
		if res := vulkan.GetPhysicalDeviceSurfacePresentModes(dev, surface, &presentCount, support.PresentModes); res != vulkan.Success {
			return support, render.ResultError(res, "get surface present modes list")
		}
		support.PresentModes = support.PresentModes[:presentCount]
	}
	return support, nil
}
