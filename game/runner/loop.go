// Package runner drives a simulation in wall-clock time.
//
// A Loop owns two tickers: a fixed-rate frame ticker that feeds elapsed
// seconds to Stepper.Frame, and a coarse tick ticker whose period follows
// the time multiplier (one second divided by the multiplier). Pausing stops
// the coarse ticker entirely; the simulation itself zeroes frame advance.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/wricardo/caravan-wars/game/engine"
)

// DefaultFrameInterval is the frame period used when none is configured.
const DefaultFrameInterval = 100 * time.Millisecond

// Stepper is the simulation side of the loop. Implementations serialise
// access to their state themselves.
type Stepper interface {
	Tick()
	Frame(delta float64)
}

// Loop is the real-time driver for one simulation.
type Loop struct {
	stepper    Stepper
	frame      time.Duration
	multiplier float64
	speed      chan float64
	logger     *slog.Logger
}

// New creates a loop that starts at the given time multiplier.
func New(stepper Stepper, frame time.Duration, multiplier float64) *Loop {
	if frame <= 0 {
		frame = DefaultFrameInterval
	}
	return &Loop{
		stepper:    stepper,
		frame:      frame,
		multiplier: multiplier,
		speed:      make(chan float64, 1),
		logger:     slog.Default().With("component", "runner"),
	}
}

// SetSpeed changes the coarse tick period. It never blocks; only the most
// recent value is kept if the loop has not caught up yet.
func (l *Loop) SetSpeed(m float64) {
	for {
		select {
		case l.speed <- m:
			return
		default:
			select {
			case <-l.speed:
			default:
			}
		}
	}
}

// Run blocks until ctx is cancelled and returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	frames := time.NewTicker(l.frame)
	defer frames.Stop()

	var (
		ticker *time.Ticker
		ticks  <-chan time.Time
	)
	retime := func(m float64) {
		if ticker != nil {
			ticker.Stop()
			ticker, ticks = nil, nil
		}
		if period, ok := engine.TickPeriod(m); ok {
			ticker = time.NewTicker(period)
			ticks = ticker.C
		}
		l.logger.Debug("tick period changed", "multiplier", m, "paused", ticks == nil)
	}
	retime(l.multiplier)
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	l.logger.Info("loop started", "frame", l.frame, "multiplier", l.multiplier)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("loop stopped")
			return ctx.Err()
		case m := <-l.speed:
			retime(m)
		case now := <-frames.C:
			delta := now.Sub(last).Seconds()
			last = now
			l.stepper.Frame(delta)
		case <-ticks:
			l.stepper.Tick()
		}
	}
}
