package render

import (
	"time"

	"github.com/loov/hrtime"
)

const statsInterval = time.Second

// frameStats counts presented frames and logs the rate once per interval.
type frameStats struct {
	now      func() time.Duration
	start    time.Duration
	frames   int
	rebuilds int
	total    uint64
	fps      float64
}

func newFrameStats(now func() time.Duration) *frameStats {
	if now == nil {
		now = hrtime.Now
	}
	return &frameStats{now: now, start: now()}
}

// presented records one presented frame and reports whether a new rate was
// computed.
func (s *frameStats) presented() bool {
	s.frames++
	s.total++
	t := s.now()
	elapsed := t - s.start
	if elapsed < statsInterval {
		return false
	}
	s.fps = float64(s.frames) / elapsed.Seconds()
	Logger().Debug("frame stats",
		"fps", s.fps,
		"frames", s.total,
		"rebuilds", s.rebuilds)
	s.frames = 0
	s.start = t
	return true
}

func (s *frameStats) rebuilt() {
	s.rebuilds++
}
