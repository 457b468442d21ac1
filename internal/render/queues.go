package render

import (
	"github.com/vulkan-go/vulkan"
)

// QueueFamilyIndices holds the graphics and presentation queue families of a
// device. Either may be missing.
type QueueFamilyIndices struct {
	Graphics    uint32
	Present     uint32
	HasGraphics bool
	HasPresent  bool
}

// Complete reports whether both families were found.
func (q QueueFamilyIndices) Complete() bool {
	return q.HasGraphics && q.HasPresent
}

// Shared reports whether graphics and presentation use the same family.
func (q QueueFamilyIndices) Shared() bool {
	return q.Graphics == q.Present
}

// Unique returns the distinct family indices, graphics first.
func (q QueueFamilyIndices) Unique() []uint32 {
	if q.Shared() {
		return []uint32{q.Graphics}
	}
	return []uint32{q.Graphics, q.Present}
}

// SelectQueueFamilies picks the first graphics-capable family and the first
// family that can present to the surface, stopping once both are found.
// The properties must already be dereferenced.
func SelectQueueFamilies(families []vulkan.QueueFamilyProperties, supportsPresent func(index uint32) bool) QueueFamilyIndices {
	var indices QueueFamilyIndices
	for i := range families {
		if !indices.HasGraphics && families[i].QueueFlags&vulkan.QueueFlags(vulkan.QueueGraphicsBit) != 0 {
			indices.Graphics = uint32(i)
			indices.HasGraphics = true
		}
		if !indices.HasPresent && supportsPresent(uint32(i)) {
			indices.Present = uint32(i)
			indices.HasPresent = true
		}
		if indices.Complete() {
			break
		}
	}
	return indices
}

// DeviceScore ranks physical device types. Higher is preferred.
func DeviceScore(deviceType vulkan.PhysicalDeviceType) int32 {
	switch deviceType {
	case vulkan.PhysicalDeviceTypeDiscreteGpu:
		return 1000
	case vulkan.PhysicalDeviceTypeIntegratedGpu:
		return 500
	default:
		return 100
	}
}
