package core

import (
	"time"
)

// DefaultClockFallback is the step reported when the clock does not advance.
const DefaultClockFallback = time.Second

// FrameClock measures the time between consecutive frames.
// Elapsed time is never negative or zero: a clock that stalls or runs
// backwards yields Fallback instead.
type FrameClock struct {
	Time     time.Time
	Dt       time.Duration
	Fallback time.Duration
}

func NewFrameClock(now time.Time) *FrameClock {
	return &FrameClock{
		Time:     now,
		Fallback: DefaultClockFallback,
	}
}

// Tick records now and returns the elapsed seconds since the previous tick.
func (c *FrameClock) Tick(now time.Time) float32 {
	dt := now.Sub(c.Time)
	if dt <= 0 {
		dt = c.Fallback
		if dt <= 0 {
			dt = DefaultClockFallback
		}
	}
	c.Dt = dt
	c.Time = now
	return float32(dt.Seconds())
}
