package engine

import (
	"math"
	"time"
)

// EconomyTickInterval is how many scheduler ticks pass between price
// recomputations. Prices lag trades until then.
const EconomyTickInterval = 3

// Standard time multipliers offered to the player.
const (
	SpeedPaused = 0.0
	SpeedNormal = 1.0
	SpeedFast   = 2.0
)

// Tick advances the coarse scheduler by one step.
func (s *Simulation) Tick() {
	s.ticks++
	if s.ticks%EconomyTickInterval == 0 {
		s.RecomputePrices()
	}
}

// TickCount returns how many scheduler ticks have run.
func (s *Simulation) TickCount() int {
	return s.ticks
}

// RecomputePrices refreshes the cached price table.
func (s *Simulation) RecomputePrices() {
	s.market.RecomputePrices()
}

// AdvanceFrame advances every travelling player, in roster order, by delta
// scaled by the time multiplier.
func (s *Simulation) AdvanceFrame(delta float64) {
	scaled := delta * s.multiplier
	if scaled <= 0 || math.IsNaN(scaled) {
		return
	}
	for _, id := range s.order {
		s.advance(s.players[id], scaled)
	}
}

// InTransit counts the players currently travelling.
func (s *Simulation) InTransit() int {
	n := 0
	for _, p := range s.players {
		if p.Moving {
			n++
		}
	}
	return n
}

// SetTimeMultiplier sets simulation speed: 0 pauses, 1 is normal, 2 is fast.
func (s *Simulation) SetTimeMultiplier(m float64) error {
	if m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return ErrInvalidMultiplier
	}
	s.multiplier = m
	return nil
}

// TimeMultiplier returns the current simulation speed.
func (s *Simulation) TimeMultiplier() float64 {
	return s.multiplier
}

// Paused reports whether both cadences are frozen.
func (s *Simulation) Paused() bool {
	return s.multiplier == 0
}

// TickPeriod returns the wall-clock period of the coarse tick at multiplier
// m: one second divided by m. It reports false when m pauses the game.
func TickPeriod(m float64) (time.Duration, bool) {
	if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return 0, false
	}
	return time.Duration(float64(time.Second) / m), true
}
