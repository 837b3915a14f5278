package service

import (
	"time"

	"github.com/wricardo/caravan-wars/game/engine"
	"github.com/wricardo/caravan-wars/game/world"
)

// Update kinds published to observers.
const (
	EventStateUpdate    = "state_update"
	EventSessionCreated = "session_created"
	EventSessionDeleted = "session_deleted"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string           `json:"id"`
	Scenario       string           `json:"scenario"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	Running        bool             `json:"running"`
	State          *engine.Snapshot `json:"state"`
}

// CommandResult contains the result of a game operation. Expected failures
// (no route, not enough gold, ...) are reported with Success=false rather
// than as an error.
type CommandResult struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Error   string                `json:"error,omitempty"`
	Events  []engine.Notification `json:"events"`
	State   *engine.Snapshot      `json:"state"`
}

// PriceInfo is the cached price table with the stock behind it.
type PriceInfo struct {
	Tick   int                           `json:"tick"`
	Prices engine.PriceTable             `json:"prices"`
	Stock  map[string]map[world.Good]int `json:"stock"`
}

// LocationInfo describes one map location in the session's language.
type LocationInfo struct {
	Code   string         `json:"code"`
	Name   string         `json:"name"`
	Pos    world.Position `json:"pos"`
	Routes []world.Route  `json:"routes"`
}

// WorldInfo is the static map of a session.
type WorldInfo struct {
	Language  string           `json:"language"`
	Locations []LocationInfo   `json:"locations"`
	Goods     []world.GoodInfo `json:"goods"`
	Units     []world.UnitDef  `json:"units"`
}

// ScenarioInfo provides information about an available scenario
type ScenarioInfo struct {
	Filename    string `json:"filename,omitempty"`
	ScenarioID  string `json:"scenario_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Locations   int    `json:"locations"`
	Routes      int    `json:"routes"`
	Players     int    `json:"players"`
}

// Update is pushed to observers whenever a session's state changes.
type Update struct {
	SessionID string                `json:"session_id"`
	Event     string                `json:"event"`
	Snapshot  *engine.Snapshot      `json:"snapshot,omitempty"`
	Events    []engine.Notification `json:"events,omitempty"`
}
