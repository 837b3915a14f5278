package engine

import (
	"fmt"

	"github.com/wricardo/caravan-wars/game/world"
)

// Engine is the contract the collaborator layers program against
type Engine interface {
	// Travel
	StartTravel(playerID int, dest string) error
	Advance(playerID int, delta float64) error

	// Trade
	Buy(playerID int, good world.Good, amount int) error
	Sell(playerID int, good world.Good, amount int) error

	// Scheduling
	Tick()
	AdvanceFrame(delta float64)
	RecomputePrices()
	SetTimeMultiplier(m float64) error
	TimeMultiplier() float64

	// Commands and output
	Exec(playerID int, line string) error
	Drain() []Notification
	Chronicle(limit int) []Notification

	// State
	Snapshot() *Snapshot
	World() *world.World
	Player(id int) (Player, bool)
	LocalPlayer() int
}

// Simulation owns every piece of mutable game state. It is not safe for
// concurrent use; callers serialise access.
type Simulation struct {
	name        string
	world       *world.World
	market      *Market
	players     map[int]*Player
	order       []int
	localPlayer int
	language    string

	ticks      int
	multiplier float64

	pending   []Notification
	chronicle []Notification
	listeners []Listener
}

var _ Engine = (*Simulation)(nil)

// New validates a scenario and builds a simulation from it.
func New(scenario *world.Scenario) (*Simulation, error) {
	setup, err := scenario.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile scenario: %w", err)
	}
	return NewFromSetup(setup), nil
}

// NewFromSetup builds a simulation from an already compiled scenario.
// Prices start at base price until the first economy tick.
func NewFromSetup(setup *world.Setup) *Simulation {
	s := &Simulation{
		name:        setup.Name,
		world:       setup.World,
		market:      newMarket(setup.World, setup.Stock, setup.Demand),
		players:     make(map[int]*Player, len(setup.Roster)),
		order:       make([]int, 0, len(setup.Roster)),
		localPlayer: setup.LocalPlayer,
		language:    setup.Language,
		multiplier:  1.0,
	}
	for _, r := range setup.Roster {
		s.players[r.ID] = newPlayer(r)
		s.order = append(s.order, r.ID)
	}
	return s
}

// Name returns the scenario name.
func (s *Simulation) Name() string {
	return s.name
}

// World returns the static location graph.
func (s *Simulation) World() *world.World {
	return s.world
}

// Market returns the market model.
func (s *Simulation) Market() *Market {
	return s.market
}

// Player returns a copy of a player's state.
func (s *Simulation) Player(id int) (Player, bool) {
	p, ok := s.players[id]
	if !ok {
		return Player{}, false
	}
	return p.clone(), true
}

// Players returns copies of every player in roster order.
func (s *Simulation) Players() []Player {
	out := make([]Player, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.players[id].clone())
	}
	return out
}

// Roster returns player IDs in the fixed iteration order.
func (s *Simulation) Roster() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// LocalPlayer is the player driven by the console and by default commands.
func (s *Simulation) LocalPlayer() int {
	return s.localPlayer
}

// Language is the display language for location names in notifications.
func (s *Simulation) Language() string {
	return s.language
}

// SetLanguage switches the display language.
func (s *Simulation) SetLanguage(lang string) {
	if lang == "" {
		lang = world.DefaultLanguage
	}
	s.language = lang
}

func (s *Simulation) locName(code string) string {
	return s.world.GetLocName(code, s.language)
}

func (s *Simulation) player(id int) (*Player, error) {
	p, ok := s.players[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, id)
	}
	return p, nil
}
