package world

import (
	"fmt"
	"strings"
)

// Good identifies a tradeable commodity. The set is closed.
type Good int

const (
	Food Good = iota
	Meds
	Ore
	Tools
	Lux

	numGoods
)

// GoodInfo is the catalog entry for a good.
type GoodInfo struct {
	Good      Good   `json:"good"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	BasePrice int    `json:"base_price"`
}

var goodCatalog = [numGoods]GoodInfo{
	Food:  {Good: Food, Code: "FOOD", Name: "Food", BasePrice: 10},
	Meds:  {Good: Meds, Code: "MEDS", Name: "Medicine", BasePrice: 30},
	Ore:   {Good: Ore, Code: "ORE", Name: "Ore", BasePrice: 20},
	Tools: {Good: Tools, Code: "TOOLS", Name: "Tools", BasePrice: 25},
	Lux:   {Good: Lux, Code: "LUX", Name: "Luxuries", BasePrice: 50},
}

// Goods returns every good in catalog order.
func Goods() []Good {
	goods := make([]Good, numGoods)
	for i := range goods {
		goods[i] = Good(i)
	}
	return goods
}

// Valid reports whether g is part of the catalog.
func (g Good) Valid() bool {
	return g >= 0 && g < numGoods
}

// Info returns the catalog entry for g.
func (g Good) Info() GoodInfo {
	if !g.Valid() {
		return GoodInfo{Good: g, Code: fmt.Sprintf("GOOD(%d)", int(g)), Name: "Unknown"}
	}
	return goodCatalog[g]
}

// BasePrice returns the catalog price of g.
func (g Good) BasePrice() int {
	return g.Info().BasePrice
}

// Name returns the display name of g.
func (g Good) Name() string {
	return g.Info().Name
}

func (g Good) String() string {
	return g.Info().Code
}

// MarshalText encodes a good by its code so it can key JSON maps.
func (g Good) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid good %d", int(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText decodes a good code.
func (g *Good) UnmarshalText(text []byte) error {
	parsed, err := ParseGood(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ParseGood resolves a good by code or display name, case-insensitively.
func ParseGood(s string) (Good, error) {
	s = strings.TrimSpace(s)
	for _, info := range goodCatalog {
		if strings.EqualFold(info.Code, s) || strings.EqualFold(info.Name, s) {
			return info.Good, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGood, s)
}
