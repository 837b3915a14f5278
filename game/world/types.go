package world

import (
	"fmt"
	"strings"
)

// DefaultLanguage is used when a location has no name in the requested language.
const DefaultLanguage = "en"

// Position is a 2D map coordinate. Only renderers read it.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Lerp returns the point t of the way from p to q.
func (p Position) Lerp(q Position, t float64) Position {
	return Position{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
	}
}

// Location is a market town on the map
type Location struct {
	Code  string            `json:"code"`
	Pos   Position          `json:"pos"`
	Names map[string]string `json:"names,omitempty"`
}

// Route is a directed, costed edge between two locations.
// Risk is stored for forward compatibility and not consumed by the simulation.
type Route struct {
	From  string  `json:"from" yaml:"from"`
	To    string  `json:"to" yaml:"to"`
	Risk  float64 `json:"risk" yaml:"risk"`
	Ticks int     `json:"ticks" yaml:"ticks"`
}

// NormalizeCode canonicalises a location code typed by a user.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type routeKey struct {
	from, to string
}

func (k routeKey) String() string {
	return fmt.Sprintf("%s->%s", k.from, k.to)
}
