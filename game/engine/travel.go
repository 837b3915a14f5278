package engine

import (
	"math"

	"github.com/wricardo/caravan-wars/game/world"
)

const (
	// RouteTickScale converts a route's tick cost into simulation time units.
	RouteTickScale = 5
	// MinSpeed keeps an ETA finite whatever the caravan is made of.
	MinSpeed = 0.1

	minETA = 0.001
)

// TravelETA is the time needed to cover a route of the given tick cost at speed.
func TravelETA(ticks int, speed float64) float64 {
	return float64(ticks*RouteTickScale) / math.Max(MinSpeed, speed)
}

// StartTravel moves a stationary player onto the route towards dest. It
// fails without changing state when the player is already travelling, is
// already at dest, or no route leads there.
func (s *Simulation) StartTravel(playerID int, dest string) error {
	p, err := s.player(playerID)
	if err != nil {
		return err
	}
	dest = world.NormalizeCode(dest)

	if p.Moving {
		return s.fail(p.ID, ErrInTransit, "[%s] is already traveling to %s.", p.Name, s.locName(p.To))
	}
	if dest == p.Location {
		return s.fail(p.ID, ErrSameLocation, "[%s] is already at %s.", p.Name, s.locName(dest))
	}
	if !s.world.HasLocation(dest) {
		return s.fail(p.ID, ErrUnknownLocation, "Unknown code: %s", dest)
	}
	route, ok := s.world.GetRoute(p.Location, dest)
	if !ok {
		return s.fail(p.ID, ErrNoRoute, "[%s] no route from %s to %s.", p.Name, s.locName(p.Location), s.locName(dest))
	}

	eta := TravelETA(route.Ticks, p.Speed())
	p.Moving = true
	p.From = p.Location
	p.To = dest
	p.ETATotal = eta
	p.ETALeft = eta
	p.Progress = 0

	s.notify(NoteTravelStarted, p.ID, "[%s] traveling %s -> %s (ETA %.1f).",
		p.Name, s.locName(p.From), s.locName(p.To), eta)
	return nil
}

// Advance moves one player's travel clock forward by delta.
func (s *Simulation) Advance(playerID int, delta float64) error {
	p, err := s.player(playerID)
	if err != nil {
		return err
	}
	s.advance(p, delta)
	return nil
}

func (s *Simulation) advance(p *Player, delta float64) {
	if !p.Moving {
		return
	}
	if delta < 0 || math.IsNaN(delta) {
		delta = 0
	}

	p.ETALeft = math.Max(0, p.ETALeft-delta)
	p.Progress = clamp((p.ETATotal-p.ETALeft)/math.Max(p.ETATotal, minETA), 0, 1)
	if p.ETALeft > 0 {
		return
	}

	p.Moving = false
	p.Location = p.To
	p.From = ""
	p.To = ""
	p.Progress = 0
	p.ETALeft = 0
	p.ETATotal = 0

	s.notify(NoteArrived, p.ID, "[%s] arrived at %s.", p.Name, s.locName(p.Location))
}
