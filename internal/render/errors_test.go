package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vulkan-go/vulkan"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		res     vulkan.Result
		want    Status
		wantErr bool
	}{
		{vulkan.Success, StatusOptimal, false},
		{vulkan.Suboptimal, StatusSuboptimal, false},
		{vulkan.ErrorOutOfDate, StatusOutOfDate, false},
		{vulkan.ErrorDeviceLost, StatusOptimal, true},
		{vulkan.ErrorSurfaceLost, StatusOptimal, true},
		{vulkan.Timeout, StatusOptimal, true},
		{vulkan.NotReady, StatusOptimal, true},
	}
	for _, tt := range tests {
		status, err := classify(tt.res, "op")
		assert.Equal(t, tt.want, status, "result %d", tt.res)
		if tt.wantErr {
			require.Error(t, err, "result %d", tt.res)
			assert.Contains(t, err.Error(), "op")
		} else {
			assert.NoError(t, err, "result %d", tt.res)
		}
	}
}

func TestStatus(t *testing.T) {
	assert.False(t, StatusOptimal.Stale())
	assert.True(t, StatusSuboptimal.Stale())
	assert.True(t, StatusOutOfDate.Stale())
	assert.Equal(t, "optimal", StatusOptimal.String())
	assert.Equal(t, "suboptimal", StatusSuboptimal.String())
	assert.Equal(t, "out of date", StatusOutOfDate.String())
	assert.Equal(t, "unknown", Status(42).String())
}

func TestResultError(t *testing.T) {
	err := ResultError(vulkan.ErrorDeviceLost, "queue submit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue submit")

	err = ResultError(vulkan.Timeout, "wait for fence")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wait for fence")
}
