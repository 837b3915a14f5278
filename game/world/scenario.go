package world

import (
	"fmt"
	"strings"
)

// PlayerKind classifies who controls a caravan.
type PlayerKind string

const (
	KindHuman    PlayerKind = "HUMAN"
	KindAI       PlayerKind = "AI"
	KindNarrator PlayerKind = "NARRATOR"
)

// ParsePlayerKind resolves a kind name, case-insensitively. Empty means HUMAN.
func ParsePlayerKind(s string) (PlayerKind, error) {
	switch PlayerKind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindHuman, "":
		return KindHuman, nil
	case KindAI:
		return KindAI, nil
	case KindNarrator:
		return KindNarrator, nil
	}
	return "", fmt.Errorf("%w: unknown player kind %q", ErrInvalidScenario, s)
}

// Scenario is the authored description of a game: map, routes, starting
// markets and the player roster. It is the on-disk schema for YAML and JSON.
type Scenario struct {
	Name        string                `json:"name" yaml:"name"`
	Description string                `json:"description" yaml:"description"`
	Language    string                `json:"language,omitempty" yaml:"language,omitempty"`
	LocalPlayer int                   `json:"local_player,omitempty" yaml:"local_player,omitempty"`
	Locations   []LocationSpec        `json:"locations" yaml:"locations"`
	Routes      []Route               `json:"routes" yaml:"routes"`
	Markets     map[string]MarketSpec `json:"markets" yaml:"markets"`
	Players     []PlayerSpec          `json:"players" yaml:"players"`
}

// LocationSpec describes one location in a scenario file.
type LocationSpec struct {
	Code  string            `json:"code" yaml:"code"`
	X     float64           `json:"x" yaml:"x"`
	Y     float64           `json:"y" yaml:"y"`
	Names map[string]string `json:"names,omitempty" yaml:"names,omitempty"`
}

// MarketSpec seeds a location's market. Goods are keyed by code.
type MarketSpec struct {
	Stock  map[string]int     `json:"stock" yaml:"stock"`
	Demand map[string]float64 `json:"demand,omitempty" yaml:"demand,omitempty"`
}

// PlayerSpec describes one roster entry.
type PlayerSpec struct {
	ID    int      `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	Kind  string   `json:"kind" yaml:"kind"`
	Start string   `json:"start" yaml:"start"`
	Gold  int      `json:"gold" yaml:"gold"`
	Units []string `json:"units" yaml:"units"`
}

// Setup is a validated, typed scenario ready to seed a simulation.
type Setup struct {
	Name        string
	World       *World
	Stock       map[string]map[Good]int
	Demand      map[string]map[Good]float64
	Roster      []Recruit
	LocalPlayer int
	Language    string
}

// Recruit is a typed roster entry.
type Recruit struct {
	ID    int
	Name  string
	Kind  PlayerKind
	Start string
	Gold  int
	Units []UnitType
}

// Validate checks the scenario without keeping the compiled result.
func (s *Scenario) Validate() error {
	_, err := s.Compile()
	return err
}

// Compile validates the scenario and converts it to typed form.
func (s *Scenario) Compile() (*Setup, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: scenario is nil", ErrInvalidScenario)
	}
	if strings.TrimSpace(s.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidScenario)
	}
	if len(s.Locations) == 0 {
		return nil, fmt.Errorf("%w: at least one location is required", ErrInvalidScenario)
	}

	locations := make([]Location, 0, len(s.Locations))
	for _, spec := range s.Locations {
		locations = append(locations, Location{
			Code:  spec.Code,
			Pos:   Position{X: spec.X, Y: spec.Y},
			Names: spec.Names,
		})
	}
	w, err := New(locations, s.Routes)
	if err != nil {
		return nil, err
	}

	setup := &Setup{
		Name:     s.Name,
		World:    w,
		Stock:    make(map[string]map[Good]int, len(s.Markets)),
		Demand:   make(map[string]map[Good]float64, len(s.Markets)),
		Language: s.Language,
	}
	if setup.Language == "" {
		setup.Language = DefaultLanguage
	}

	for rawCode, market := range s.Markets {
		code := NormalizeCode(rawCode)
		if !w.HasLocation(code) {
			return nil, fmt.Errorf("%w: market for %w %s", ErrInvalidScenario, ErrUnknownLocation, code)
		}
		stock := make(map[Good]int, len(market.Stock))
		for name, qty := range market.Stock {
			g, err := ParseGood(name)
			if err != nil {
				return nil, fmt.Errorf("%w: market %s: %w", ErrInvalidScenario, code, err)
			}
			if qty < 0 {
				return nil, fmt.Errorf("%w: market %s has negative stock of %s", ErrInvalidScenario, code, g)
			}
			stock[g] = qty
		}
		demand := make(map[Good]float64, len(market.Demand))
		for name, coeff := range market.Demand {
			g, err := ParseGood(name)
			if err != nil {
				return nil, fmt.Errorf("%w: market %s: %w", ErrInvalidScenario, code, err)
			}
			if coeff < 0 {
				return nil, fmt.Errorf("%w: market %s has negative demand for %s", ErrInvalidScenario, code, g)
			}
			demand[g] = coeff
		}
		setup.Stock[code] = stock
		setup.Demand[code] = demand
	}

	if len(s.Players) == 0 {
		return nil, fmt.Errorf("%w: roster is empty", ErrInvalidScenario)
	}
	seen := make(map[int]bool, len(s.Players))
	for _, p := range s.Players {
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate player id %d", ErrInvalidScenario, p.ID)
		}
		seen[p.ID] = true

		kind, err := ParsePlayerKind(p.Kind)
		if err != nil {
			return nil, err
		}
		start := NormalizeCode(p.Start)
		if !w.HasLocation(start) {
			return nil, fmt.Errorf("%w: player %d starts at %w %q", ErrInvalidScenario, p.ID, ErrUnknownLocation, p.Start)
		}
		if p.Gold < 0 {
			return nil, fmt.Errorf("%w: player %d has negative gold", ErrInvalidScenario, p.ID)
		}
		units := make([]UnitType, 0, len(p.Units))
		for _, name := range p.Units {
			u, err := ParseUnitType(name)
			if err != nil {
				return nil, fmt.Errorf("%w: player %d: %w", ErrInvalidScenario, p.ID, err)
			}
			units = append(units, u)
		}
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("Player %d", p.ID)
		}
		setup.Roster = append(setup.Roster, Recruit{
			ID:    p.ID,
			Name:  name,
			Kind:  kind,
			Start: start,
			Gold:  p.Gold,
			Units: units,
		})
	}

	setup.LocalPlayer = s.LocalPlayer
	if setup.LocalPlayer == 0 {
		setup.LocalPlayer = setup.Roster[0].ID
	} else if !seen[setup.LocalPlayer] {
		return nil, fmt.Errorf("%w: local player %d is not in the roster", ErrInvalidScenario, setup.LocalPlayer)
	}

	return setup, nil
}
