package render

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

var (
	// ErrWindowClosed is returned when the window is asked to close while a
	// rebuild waits for a non-zero drawable area. Run treats it as a normal
	// shutdown.
	ErrWindowClosed = errors.New("window closed")

	// ErrUnsuitableSurface is returned when the surface reports no formats or
	// no present modes for the device.
	ErrUnsuitableSurface = errors.New("surface reports no formats or present modes")
)

// Status is the non-fatal outcome of acquiring or presenting a swapchain image.
type Status int

const (
	StatusOptimal Status = iota
	StatusSuboptimal
	StatusOutOfDate
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusOutOfDate:
		return "out of date"
	default:
		return "unknown"
	}
}

// Stale reports whether the swapchain no longer matches the surface and must
// be rebuilt.
func (s Status) Stale() bool {
	return s != StatusOptimal
}

// classify maps an acquire or present result to a status. Results other than
// success, suboptimal and out-of-date are fatal.
func classify(res vulkan.Result, op string) (Status, error) {
	switch res {
	case vulkan.Success:
		return StatusOptimal, nil
	case vulkan.Suboptimal:
		return StatusSuboptimal, nil
	case vulkan.ErrorOutOfDate:
		return StatusOutOfDate, nil
	default:
		return StatusOptimal, ResultError(res, op)
	}
}

// ResultError wraps a failing Vulkan result with the operation that produced
// it. Results vulkan.Error does not treat as errors, such as Timeout, are still
// reported.
func ResultError(res vulkan.Result, op string) error {
	if err := vulkan.Error(res); err != nil {
		return errors.Wrap(err, op)
	}
	return errors.Errorf("%s: unexpected result %d", op, res)
}
