package engine

import (
	"math"

	"github.com/wricardo/caravan-wars/game/world"
)

// Pricing bounds. A good never trades below half or above twice its base price.
const (
	MinPriceFactor = 0.5
	MaxPriceFactor = 2.0

	stockCeiling  = 100.0
	neutralDemand = 1.0
)

// PriceTable maps location code to the cached price of each good.
type PriceTable map[string]map[world.Good]int

// Market holds per-location stock and demand, and the price cache derived
// from them. Absent entries resolve to zero stock, neutral demand and zero
// price; callers never see a missing-key fault.
type Market struct {
	codes  []string
	stock  map[string]map[world.Good]int
	demand map[string]map[world.Good]float64
	prices PriceTable
}

func newMarket(w *world.World, stock map[string]map[world.Good]int, demand map[string]map[world.Good]float64) *Market {
	m := &Market{
		codes:  w.Codes(),
		stock:  make(map[string]map[world.Good]int),
		demand: make(map[string]map[world.Good]float64),
		prices: make(PriceTable),
	}
	for _, code := range m.codes {
		m.stock[code] = make(map[world.Good]int)
		m.demand[code] = make(map[world.Good]float64)
		m.prices[code] = make(map[world.Good]int)
		for g, qty := range stock[code] {
			m.stock[code][g] = qty
		}
		for g, coeff := range demand[code] {
			m.demand[code][g] = coeff
		}
		for _, g := range world.Goods() {
			m.prices[code][g] = g.BasePrice()
		}
	}
	return m
}

// PriceFor is the pricing function: base price scaled by demand and by how
// scarce the good is, clamped to [0.5, 2.0] of base.
func PriceFor(basePrice, stock int, demand float64) int {
	s := math.Min(float64(stock), stockCeiling)
	factor := clamp(demand*(1.5-s/200.0), MinPriceFactor, MaxPriceFactor)
	return roundPrice(float64(basePrice) * factor)
}

// RecomputePrices rebuilds the whole price table from current stock and demand.
func (m *Market) RecomputePrices() {
	for _, code := range m.codes {
		row := m.prices[code]
		if row == nil {
			row = make(map[world.Good]int)
			m.prices[code] = row
		}
		for _, g := range world.Goods() {
			row[g] = PriceFor(g.BasePrice(), m.StockOf(code, g), m.DemandOf(code, g))
		}
	}
}

// StockOf returns the quantity of g on hand at loc, 0 when absent.
func (m *Market) StockOf(loc string, g world.Good) int {
	return m.stock[loc][g]
}

// DemandOf returns the demand coefficient of g at loc, 1.0 when absent.
func (m *Market) DemandOf(loc string, g world.Good) float64 {
	coeff, ok := m.demand[loc][g]
	if !ok {
		return neutralDemand
	}
	return coeff
}

// PriceOf returns the cached price of g at loc, 0 when absent.
func (m *Market) PriceOf(loc string, g world.Good) int {
	return m.prices[loc][g]
}

// Prices returns a copy of the cached price table.
func (m *Market) Prices() PriceTable {
	out := make(PriceTable, len(m.prices))
	for code, row := range m.prices {
		out[code] = copyGoods(row)
	}
	return out
}

// PricesAt returns a copy of the cached prices at one location.
func (m *Market) PricesAt(loc string) map[world.Good]int {
	return copyGoods(m.prices[loc])
}

// StockAt returns a copy of the stock at one location.
func (m *Market) StockAt(loc string) map[world.Good]int {
	return copyGoods(m.stock[loc])
}

// Stock returns a copy of every location's stock.
func (m *Market) Stock() map[string]map[world.Good]int {
	out := make(map[string]map[world.Good]int, len(m.stock))
	for code, row := range m.stock {
		out[code] = copyGoods(row)
	}
	return out
}

// SetDemand overrides the demand coefficient of g at loc.
func (m *Market) SetDemand(loc string, g world.Good, coeff float64) {
	if m.demand[loc] == nil {
		m.demand[loc] = make(map[world.Good]float64)
	}
	m.demand[loc][g] = coeff
}

// adjustStock adds delta to the stock of g at loc. Callers validate first;
// the result is never allowed below zero.
func (m *Market) adjustStock(loc string, g world.Good, delta int) {
	if m.stock[loc] == nil {
		m.stock[loc] = make(map[world.Good]int)
	}
	next := m.stock[loc][g] + delta
	if next < 0 {
		next = 0
	}
	m.stock[loc][g] = next
}

func copyGoods(row map[world.Good]int) map[world.Good]int {
	out := make(map[world.Good]int, len(row))
	for g, v := range row {
		out[g] = v
	}
	return out
}
