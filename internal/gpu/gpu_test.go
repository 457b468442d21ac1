package gpu

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vulkan-go/vulkan"
)

func TestMissingNames(t *testing.T) {
	available := []string{"VK_KHR_swapchain", "VK_KHR_maintenance1"}
	assert.Empty(t, missingNames([]string{"VK_KHR_swapchain"}, available))
	assert.Equal(t, []string{"VK_LAYER_KHRONOS_validation"},
		missingNames([]string{"VK_KHR_swapchain", "VK_LAYER_KHRONOS_validation"}, available))
	assert.Equal(t, deviceExtensions, missingNames(deviceExtensions, nil))
}

func TestDebugLevel(t *testing.T) {
	tests := []struct {
		flags vulkan.DebugReportFlagBits
		want  slog.Level
	}{
		{vulkan.DebugReportErrorBit, slog.LevelError},
		{vulkan.DebugReportErrorBit | vulkan.DebugReportWarningBit, slog.LevelError},
		{vulkan.DebugReportWarningBit, slog.LevelWarn},
		{vulkan.DebugReportPerformanceWarningBit, slog.LevelWarn},
		{vulkan.DebugReportInformationBit, slog.LevelDebug},
		{vulkan.DebugReportDebugBit, slog.LevelDebug},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, debugLevel(vulkan.DebugReportFlags(tt.flags)), "flags %#x", tt.flags)
	}
}
