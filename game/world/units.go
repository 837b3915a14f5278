package world

import (
	"fmt"
	"strings"
)

// UnitType identifies a caravan component.
type UnitType string

const (
	HandCart  UnitType = "hand_cart"
	HorseCart UnitType = "horse_cart"
	Guard     UnitType = "guard"
)

// UnitDef is the static definition of a unit type.
// Upkeep and Power are part of the schema but no rule consumes them yet.
type UnitDef struct {
	Type       UnitType `json:"type"`
	Name       string   `json:"name"`
	Speed      float64  `json:"speed"`
	Capacity   int      `json:"capacity"`
	UpkeepGold int      `json:"upkeep_gold"`
	UpkeepFood int      `json:"upkeep_food"`
	Power      int      `json:"power,omitempty"`
}

var unitCatalog = map[UnitType]UnitDef{
	HandCart: {
		Type:       HandCart,
		Name:       "Hand cart",
		Speed:      1.0,
		Capacity:   20,
		UpkeepGold: 1,
		UpkeepFood: 1,
	},
	HorseCart: {
		Type:       HorseCart,
		Name:       "Horse cart",
		Speed:      1.5,
		Capacity:   40,
		UpkeepGold: 3,
		UpkeepFood: 2,
	},
	Guard: {
		Type:       Guard,
		Name:       "Guard",
		Speed:      1.2,
		Capacity:   0,
		UpkeepGold: 2,
		UpkeepFood: 1,
		Power:      5,
	},
}

// UnitTypes lists the catalog in a stable order.
func UnitTypes() []UnitType {
	return []UnitType{HandCart, HorseCart, Guard}
}

// LookupUnit returns the definition for u, if u is in the catalog.
func LookupUnit(u UnitType) (UnitDef, bool) {
	def, ok := unitCatalog[u]
	return def, ok
}

// ParseUnitType resolves a unit type name, case-insensitively.
func ParseUnitType(s string) (UnitType, error) {
	u := UnitType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := unitCatalog[u]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
	return u, nil
}
