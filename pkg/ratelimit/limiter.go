package ratelimit

import (
	"context"
	"time"
)

// Pacer spaces out consecutive page loads
type Pacer interface {
	// Wait blocks until the next request may start or ctx is done
	Wait(ctx context.Context) error
}

// IntervalPacer pauses for a fixed interval on every Wait
type IntervalPacer struct {
	interval time.Duration
}

// NewIntervalPacer creates a pacer that idles for interval between requests.
// A non-positive interval disables pacing.
func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	return &IntervalPacer{interval: interval}
}

// Wait sleeps for the full interval, counted from the call, so the gap
// between two requests never depends on how long the previous one took
func (p *IntervalPacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Interval returns the configured pause
func (p *IntervalPacer) Interval() time.Duration {
	return p.interval
}

// NoopPacer never waits
type NoopPacer struct{}

// Wait only reports context cancellation
func (NoopPacer) Wait(ctx context.Context) error {
	return ctx.Err()
}
