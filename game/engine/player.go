package engine

import (
	"math"

	"github.com/wricardo/caravan-wars/game/world"
)

// TravelState is the state of a player's travel state machine.
type TravelState int

const (
	Stationary TravelState = iota
	InTransit
)

func (s TravelState) String() string {
	if s == InTransit {
		return "in_transit"
	}
	return "stationary"
}

// defaultSpeed applies when a caravan owns no recognised unit.
const defaultSpeed = 1.0

// Player is one caravan owner. Location is only meaningful while
// stationary; From, To and the ETA fields only while in transit.
type Player struct {
	ID       int
	Name     string
	Kind     world.PlayerKind
	Location string
	Gold     int
	Cargo    map[world.Good]int
	Units    []world.UnitType

	Moving   bool
	From     string
	To       string
	ETALeft  float64
	ETATotal float64
	Progress float64
}

func newPlayer(r world.Recruit) *Player {
	units := make([]world.UnitType, len(r.Units))
	copy(units, r.Units)
	return &Player{
		ID:       r.ID,
		Name:     r.Name,
		Kind:     r.Kind,
		Location: r.Start,
		Gold:     r.Gold,
		Cargo:    make(map[world.Good]int),
		Units:    units,
	}
}

// State reports which travel state the player is in.
func (p *Player) State() TravelState {
	if p.Moving {
		return InTransit
	}
	return Stationary
}

// Speed is the speed of the slowest recognised unit, or 1.0 when the
// caravan has none.
func (p *Player) Speed() float64 {
	speed := math.Inf(1)
	for _, u := range p.Units {
		def, ok := world.LookupUnit(u)
		if !ok {
			continue
		}
		speed = math.Min(speed, def.Speed)
	}
	if math.IsInf(speed, 1) {
		return defaultSpeed
	}
	return speed
}

// Capacity is the summed cargo capacity of all recognised units.
func (p *Player) Capacity() int {
	total := 0
	for _, u := range p.Units {
		if def, ok := world.LookupUnit(u); ok {
			total += def.Capacity
		}
	}
	return total
}

// CargoUsed is the number of goods carried.
func (p *Player) CargoUsed() int {
	used := 0
	for _, qty := range p.Cargo {
		used += qty
	}
	return used
}

// CargoFree is the remaining capacity, never negative.
func (p *Player) CargoFree() int {
	free := p.Capacity() - p.CargoUsed()
	if free < 0 {
		return 0
	}
	return free
}

// CargoOf returns how much of g the player carries.
func (p *Player) CargoOf(g world.Good) int {
	return p.Cargo[g]
}

func (p *Player) clone() Player {
	c := *p
	c.Cargo = copyGoods(p.Cargo)
	c.Units = make([]world.UnitType, len(p.Units))
	copy(c.Units, p.Units)
	return c
}
