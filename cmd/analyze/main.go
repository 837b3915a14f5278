// Command analyze prints quick, human-readable heuristics about scenarios:
// route travel times for each unit type, each player's caravan, the prices
// after the first market recomputation, and the widest buy/sell spreads.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/caravan-wars/game/config"
	"github.com/wricardo/caravan-wars/game/engine"
	"github.com/wricardo/caravan-wars/game/world"
)

// RouteETA is one route with its travel time per unit type.
type RouteETA struct {
	From  string
	To    string
	Ticks int
	Risk  float64
	ETA   map[world.UnitType]float64
}

// PlayerSummary describes a roster entry's starting caravan.
type PlayerSummary struct {
	Name     string
	Start    string
	Gold     int
	Speed    float64
	Capacity int
}

// Spread is the best single-good trade in the opening market.
type Spread struct {
	Good      world.Good
	BuyAt     string
	BuyPrice  int
	SellAt    string
	SellPrice int
	Direct    bool
}

// Profit is the gain per unit.
func (s Spread) Profit() int {
	return s.SellPrice - s.BuyPrice
}

// Analysis is the report for one scenario.
type Analysis struct {
	Name    string
	Codes   []string
	Routes  []RouteETA
	Players []PlayerSummary
	Prices  engine.PriceTable
	Stock   map[string]map[world.Good]int
	Spreads []Spread
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "report routes, travel times and opening prices of scenarios",
		ArgsUsage: "[scenario ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "scenario-dir", Value: "scenarios", Usage: "directory containing scenario YAML files"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			manager, err := config.NewManager(cmd.String("scenario-dir"))
			if err != nil {
				return err
			}
			return analyzeAll(os.Stdout, manager, cmd.Args().Slice())
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// analyzeAll reports on the named scenarios, or on every available one.
func analyzeAll(w io.Writer, manager *config.Manager, names []string) error {
	if len(names) == 0 {
		infos, err := manager.ListScenarios()
		if err != nil {
			return err
		}
		for _, info := range infos {
			names = append(names, info.ScenarioID)
		}
	}

	for _, name := range names {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", name)
		sc, err := manager.LoadScenario(name)
		if err != nil {
			fmt.Fprintf(w, "Error loading scenario: %v\n", err)
			continue
		}
		a, err := analyzeScenario(sc)
		if err != nil {
			fmt.Fprintf(w, "Error analyzing scenario: %v\n", err)
			continue
		}
		writeReport(w, a)
	}
	return nil
}

func analyzeScenario(sc *world.Scenario) (*Analysis, error) {
	sim, err := engine.New(sc)
	if err != nil {
		return nil, err
	}
	sim.RecomputePrices()

	w := sim.World()
	market := sim.Market()
	a := &Analysis{
		Name:   sim.Name(),
		Codes:  w.Codes(),
		Prices: market.Prices(),
		Stock:  market.Stock(),
	}

	for _, r := range w.Routes() {
		eta := make(map[world.UnitType]float64, len(world.UnitTypes()))
		for _, u := range world.UnitTypes() {
			def, _ := world.LookupUnit(u)
			eta[u] = engine.TravelETA(r.Ticks, def.Speed)
		}
		a.Routes = append(a.Routes, RouteETA{From: r.From, To: r.To, Ticks: r.Ticks, Risk: r.Risk, ETA: eta})
	}

	players := sim.Players()
	for i := range players {
		p := &players[i]
		a.Players = append(a.Players, PlayerSummary{
			Name:     p.Name,
			Start:    p.Location,
			Gold:     p.Gold,
			Speed:    p.Speed(),
			Capacity: p.Capacity(),
		})
	}

	a.Spreads = bestSpreads(w, market)
	return a, nil
}

// bestSpreads finds, for each good, the cheapest location with stock and
// the dearest location to sell at. Goods with no profitable pair are left
// out. Results are ordered by profit per unit.
func bestSpreads(w *world.World, market *engine.Market) []Spread {
	var spreads []Spread
	for _, g := range world.Goods() {
		var best Spread
		found := false
		for _, from := range w.Codes() {
			if market.StockOf(from, g) == 0 {
				continue
			}
			buy := market.PriceOf(from, g)
			for _, to := range w.Codes() {
				sell := market.PriceOf(to, g)
				if to == from || sell <= buy {
					continue
				}
				if !found || sell-buy > best.Profit() {
					best = Spread{Good: g, BuyAt: from, BuyPrice: buy, SellAt: to, SellPrice: sell, Direct: w.HasRoute(from, to)}
					found = true
				}
			}
		}
		if found {
			spreads = append(spreads, best)
		}
	}

	sort.SliceStable(spreads, func(i, j int) bool {
		return spreads[i].Profit() > spreads[j].Profit()
	})
	return spreads
}

func writeReport(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Locations: %d\n", len(a.Codes))
	fmt.Fprintf(w, "Routes: %d\n", len(a.Routes))

	units := world.UnitTypes()
	unitNames := make([]string, len(units))
	for i, u := range units {
		unitNames[i] = string(u)
	}

	fmt.Fprintf(w, "\nRoutes (ETA by %s):\n", strings.Join(unitNames, " / "))
	for _, r := range a.Routes {
		etas := make([]string, len(units))
		for i, u := range units {
			etas[i] = fmt.Sprintf("%.1f", r.ETA[u])
		}
		fmt.Fprintf(w, "  %s -> %s: %d ticks, risk %.0f%%, ETA %s\n",
			r.From, r.To, r.Ticks, r.Risk*100, strings.Join(etas, " / "))
	}

	fmt.Fprintln(w, "\nPlayers:")
	for _, p := range a.Players {
		fmt.Fprintf(w, "  %s at %s: %d gold, speed %.1f, capacity %d\n", p.Name, p.Start, p.Gold, p.Speed, p.Capacity)
	}

	fmt.Fprintln(w, "\nOpening prices:")
	for _, code := range a.Codes {
		parts := make([]string, 0, len(world.Goods()))
		for _, g := range world.Goods() {
			parts = append(parts, fmt.Sprintf("%s %d(%d)", g, a.Prices[code][g], a.Stock[code][g]))
		}
		fmt.Fprintf(w, "  %s: %s\n", code, strings.Join(parts, ", "))
	}

	fmt.Fprintln(w, "\nBest spreads:")
	if len(a.Spreads) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, s := range a.Spreads {
		direct := ""
		if !s.Direct {
			direct = " (no direct route)"
		}
		fmt.Fprintf(w, "  %s: buy at %s for %d, sell at %s for %d, +%d per unit%s\n",
			s.Good, s.BuyAt, s.BuyPrice, s.SellAt, s.SellPrice, s.Profit(), direct)
	}
}
