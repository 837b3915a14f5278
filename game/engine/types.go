package engine

import (
	"github.com/wricardo/caravan-wars/game/world"
)

// Snapshot is the complete renderable state of a simulation
type Snapshot struct {
	Scenario       string                        `json:"scenario"`
	Tick           int                           `json:"tick"`
	TimeMultiplier float64                       `json:"time_multiplier"`
	Paused         bool                          `json:"paused"`
	Language       string                        `json:"language"`
	LocalPlayer    int                           `json:"local_player"`
	Players        []PlayerView                  `json:"players"`
	Prices         PriceTable                    `json:"prices"`
	Stock          map[string]map[world.Good]int `json:"stock"`
}

// PlayerView is the status-bar and map view of one player.
type PlayerView struct {
	ID        int                `json:"id"`
	Name      string             `json:"name"`
	Kind      world.PlayerKind   `json:"kind"`
	State     string             `json:"state"`
	Location  string             `json:"location,omitempty"`
	Gold      int                `json:"gold"`
	Cargo     map[world.Good]int `json:"cargo"`
	Units     []world.UnitType   `json:"units"`
	Capacity  int                `json:"capacity"`
	CargoUsed int                `json:"cargo_used"`
	Speed     float64            `json:"speed"`
	Moving    bool               `json:"moving"`
	From      string             `json:"from,omitempty"`
	To        string             `json:"to,omitempty"`
	Progress  float64            `json:"progress"`
	ETALeft   float64            `json:"eta_left"`
	ETATotal  float64            `json:"eta_total"`
	Pos       world.Position     `json:"pos"`
}

// Snapshot captures the current state for renderers and status displays.
func (s *Simulation) Snapshot() *Snapshot {
	snap := &Snapshot{
		Scenario:       s.name,
		Tick:           s.ticks,
		TimeMultiplier: s.multiplier,
		Paused:         s.Paused(),
		Language:       s.language,
		LocalPlayer:    s.localPlayer,
		Players:        make([]PlayerView, 0, len(s.order)),
		Prices:         s.market.Prices(),
		Stock:          s.market.Stock(),
	}
	for _, id := range s.order {
		snap.Players = append(snap.Players, s.viewOf(s.players[id]))
	}
	return snap
}

// Player returns the view of one player from the snapshot.
func (snap *Snapshot) Player(id int) (PlayerView, bool) {
	for _, p := range snap.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerView{}, false
}

func (s *Simulation) viewOf(p *Player) PlayerView {
	c := p.clone()
	v := PlayerView{
		ID:        c.ID,
		Name:      c.Name,
		Kind:      c.Kind,
		State:     c.State().String(),
		Gold:      c.Gold,
		Cargo:     c.Cargo,
		Units:     c.Units,
		Capacity:  c.Capacity(),
		CargoUsed: c.CargoUsed(),
		Speed:     c.Speed(),
		Moving:    c.Moving,
	}
	if c.Moving {
		v.From = c.From
		v.To = c.To
		v.Progress = c.Progress
		v.ETALeft = c.ETALeft
		v.ETATotal = c.ETATotal
		v.Pos = s.world.GetPos(c.From).Lerp(s.world.GetPos(c.To), c.Progress)
	} else {
		v.Location = c.Location
		v.Pos = s.world.GetPos(c.Location)
	}
	return v
}
