package driver

import (
	"sync"
	"time"
)

// Stats is a snapshot of driver counters and tick timing.
type Stats struct {
	Frames       uint64        // external frames observed
	Ticks        uint64        // frames in which the scheduler ran
	Skipped      uint64        // frames ignored while paused, in the grace period or vetoed by a hook
	Failures     uint64        // frames that ended with a scheduler error
	TotalTime    time.Duration // cumulative time spent in the scheduler
	LastTickTime time.Duration
	MaxTickTime  time.Duration
}

// AvgTickTime returns the mean scheduler time per executed tick.
func (s Stats) AvgTickTime() time.Duration {
	if s.Ticks == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.Ticks)
}

type statsCollector struct {
	mu    sync.Mutex
	stats Stats
}

func (c *statsCollector) frame() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Frames++
	return c.stats.Frames
}

func (c *statsCollector) skip() {
	c.mu.Lock()
	c.stats.Skipped++
	c.mu.Unlock()
}

func (c *statsCollector) tick(d time.Duration, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Ticks++
	if failed {
		c.stats.Failures++
	}
	c.stats.TotalTime += d
	c.stats.LastTickTime = d
	if d > c.stats.MaxTickTime {
		c.stats.MaxTickTime = d
	}
}

func (c *statsCollector) failure() {
	c.mu.Lock()
	c.stats.Failures++
	c.mu.Unlock()
}

func (c *statsCollector) snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
