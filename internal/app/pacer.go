package app

import (
	"context"
	"time"
)

// DefaultPaceInterval is the delay between iterations in pacing mode.
const DefaultPaceInterval = time.Second

// IntervalPacer implements ports.Pacer with a fixed delay.
type IntervalPacer struct {
	interval time.Duration
}

// NewIntervalPacer creates a pacer that waits interval on every Pause.
// Non-positive intervals fall back to DefaultPaceInterval.
func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	if interval <= 0 {
		interval = DefaultPaceInterval
	}
	return &IntervalPacer{interval: interval}
}

// Pause blocks for the configured interval or until ctx is done.
func (p *IntervalPacer) Pause(ctx context.Context) error {
	t := time.NewTimer(p.interval)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Interval returns the pause duration.
func (p *IntervalPacer) Interval() time.Duration {
	return p.interval
}
