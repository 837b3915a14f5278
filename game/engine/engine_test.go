package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/caravan-wars/game/world"
)

// newClassic builds a simulation on the built-in scenario, optionally
// tweaking the scenario first.
func newClassic(t *testing.T, tweaks ...func(*world.Scenario)) *Simulation {
	t.Helper()
	sc := world.Classic()
	for _, tweak := range tweaks {
		tweak(sc)
	}
	sim, err := New(sc)
	require.NoError(t, err)
	return sim
}

// twoTowns is a minimal scenario with a one-way road from WEST to EAST.
func twoTowns() *world.Scenario {
	return &world.Scenario{
		Name: "two-towns",
		Locations: []world.LocationSpec{
			{Code: "WEST", X: 0, Y: 0},
			{Code: "EAST", X: 100, Y: 0},
		},
		Routes: []world.Route{
			{From: "WEST", To: "EAST", Ticks: 2},
		},
		Markets: map[string]world.MarketSpec{
			"WEST": {Stock: map[string]int{"FOOD": 10}},
		},
		Players: []world.PlayerSpec{
			{ID: 7, Name: "Solo", Start: "WEST", Gold: 10},
		},
	}
}

func kinds(notes []Notification) []NotificationKind {
	out := make([]NotificationKind, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Kind)
	}
	return out
}

func TestNew_FromClassic(t *testing.T) {
	sim := newClassic(t)

	assert.Equal(t, world.ClassicName, sim.Name())
	assert.Equal(t, 1, sim.LocalPlayer())
	assert.Equal(t, "en", sim.Language())
	assert.Equal(t, []int{1, 2, 101}, sim.Roster())
	assert.Equal(t, 1.0, sim.TimeMultiplier())
	assert.Equal(t, 0, sim.TickCount())

	p, ok := sim.Player(1)
	require.True(t, ok)
	assert.Equal(t, "CENTRAL_KEEP", p.Location)
	assert.Equal(t, 150, p.Gold)
	assert.Equal(t, Stationary, p.State())
	assert.Empty(t, p.Cargo)
}

func TestNew_InvalidScenario(t *testing.T) {
	sc := world.Classic()
	sc.Players = nil

	_, err := New(sc)
	assert.ErrorIs(t, err, world.ErrInvalidScenario)
}

func TestPlayer_ReturnsCopy(t *testing.T) {
	sim := newClassic(t)

	p, _ := sim.Player(1)
	p.Gold = 0
	p.Cargo[world.Food] = 99

	again, _ := sim.Player(1)
	assert.Equal(t, 150, again.Gold)
	assert.Zero(t, again.CargoOf(world.Food))
}

func TestUnknownPlayer(t *testing.T) {
	sim := newClassic(t)

	_, ok := sim.Player(999)
	assert.False(t, ok)
	assert.ErrorIs(t, sim.StartTravel(999, "HARBOR"), ErrUnknownPlayer)
	assert.ErrorIs(t, sim.Buy(999, world.Food, 1), ErrUnknownPlayer)
	assert.ErrorIs(t, sim.Sell(999, world.Food, 1), ErrUnknownPlayer)
	assert.ErrorIs(t, sim.Advance(999, 1), ErrUnknownPlayer)
	assert.ErrorIs(t, sim.Exec(999, "info"), ErrUnknownPlayer)
}

func TestSetLanguage(t *testing.T) {
	sim := newClassic(t)
	sim.SetLanguage("pl")

	require.NoError(t, sim.StartTravel(1, "HARBOR"))
	notes := sim.Drain()
	require.Len(t, notes, 1)
	assert.Equal(t, "[Player A] traveling Centralna Twierdza -> Port (ETA 15.0).", notes[0].Message)

	sim.SetLanguage("")
	assert.Equal(t, "en", sim.Language())
}

func TestPlayer_SpeedAndCapacity(t *testing.T) {
	tests := []struct {
		name     string
		units    []world.UnitType
		speed    float64
		capacity int
	}{
		{"no units", nil, 1.0, 0},
		{"hand cart", []world.UnitType{world.HandCart}, 1.0, 20},
		{"horse cart", []world.UnitType{world.HorseCart}, 1.5, 40},
		{"slowest wins", []world.UnitType{world.HorseCart, world.HandCart}, 1.0, 60},
		{"guard carries nothing", []world.UnitType{world.HorseCart, world.Guard}, 1.2, 40},
		{"unknown ignored", []world.UnitType{"dragon"}, 1.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Player{Units: tt.units, Cargo: map[world.Good]int{}}
			assert.Equal(t, tt.speed, p.Speed())
			assert.Equal(t, tt.capacity, p.Capacity())
		})
	}
}

func TestPlayer_CargoFreeNeverNegative(t *testing.T) {
	p := &Player{Units: []world.UnitType{world.HandCart}, Cargo: map[world.Good]int{world.Ore: 25}}

	assert.Equal(t, 25, p.CargoUsed())
	assert.Equal(t, 0, p.CargoFree())
}
