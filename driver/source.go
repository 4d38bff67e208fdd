package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/stepmesh/core"
)

// Advancer is what a Source drives: one Advance per external frame until
// Finished reports true.
type Advancer interface {
	Advance() error
	Finished() bool
}

// Source produces external frames. Run blocks until the advancer finished,
// Advance failed or ctx is done, and calls Advance from a single goroutine.
type Source interface {
	Run(ctx context.Context, a Advancer) error
}

// TickerSource calls Advance once per interval, like a fixed-rate game loop.
// A slow frame delays the next one; missed ticks are dropped rather than
// queued.
type TickerSource struct {
	interval time.Duration
}

var _ Source = (*TickerSource)(nil)

// NewTickerSource creates a fixed-rate source. A non-positive interval falls
// back to DefaultConfig.FrameInterval.
func NewTickerSource(interval time.Duration) *TickerSource {
	if interval <= 0 {
		interval = DefaultConfig.FrameInterval
	}
	return &TickerSource{interval: interval}
}

// Interval returns the frame period.
func (ts *TickerSource) Interval() time.Duration { return ts.interval }

// Run drives a until it finished. It returns ctx.Err() when cancelled and
// the Advance error when a frame failed.
func (ts *TickerSource) Run(ctx context.Context, a Advancer) error {
	ticker := time.NewTicker(ts.interval)
	defer ticker.Stop()

	for !a.Finished() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.Advance(); err != nil {
				return err
			}
		}
	}

	return nil
}

// LoopSource calls Advance back to back without waiting, for batch runs and
// tests. Frames limits the number of external frames; zero means until the
// advancer finished.
type LoopSource struct {
	Frames int
}

var _ Source = LoopSource{}

// Run drives a for at most Frames frames.
func (ls LoopSource) Run(ctx context.Context, a Advancer) error {
	if ls.Frames < 0 {
		return fmt.Errorf("%w: negative frame count %d", core.ErrInvalidArgument, ls.Frames)
	}

	for n := 0; ls.Frames == 0 || n < ls.Frames; n++ {
		if a.Finished() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.Advance(); err != nil {
			return err
		}
	}

	return nil
}
