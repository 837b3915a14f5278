package world

// ClassicName is the identifier of the built-in scenario.
const ClassicName = "classic"

// Classic returns the built-in seven-town scenario. Each call returns a
// fresh copy that callers may modify.
func Classic() *Scenario {
	return &Scenario{
		Name:        ClassicName,
		Description: "Seven towns between the harbor and the mine",
		Language:    DefaultLanguage,
		LocalPlayer: 1,
		Locations: []LocationSpec{
			{Code: "HARBOR", X: 1060, Y: 840, Names: map[string]string{"en": "Harbor", "pl": "Port"}},
			{Code: "CENTRAL_KEEP", X: 910, Y: 750, Names: map[string]string{"en": "Central Keep", "pl": "Centralna Twierdza"}},
			{Code: "SOUTHERN_SHRINE", X: 350, Y: 840, Names: map[string]string{"en": "Southern Shrine", "pl": "Południowa Świątynia"}},
			{Code: "FOREST_SPRING", X: 690, Y: 560, Names: map[string]string{"en": "Forest Spring", "pl": "Leśne Źródło"}},
			{Code: "MILLS", X: 1010, Y: 185, Names: map[string]string{"en": "Mills", "pl": "Młyny"}},
			{Code: "FOREST_HAVEN", X: 890, Y: 360, Names: map[string]string{"en": "Forest Haven", "pl": "Leśna Przystań"}},
			{Code: "MINE", X: 440, Y: 340, Names: map[string]string{"en": "Mine", "pl": "Kopalnia"}},
		},
		Routes: []Route{
			{From: "FOREST_SPRING", To: "MINE", Risk: 0.00, Ticks: 2},
			{From: "MINE", To: "FOREST_SPRING", Risk: 0.00, Ticks: 2},
			{From: "HARBOR", To: "CENTRAL_KEEP", Risk: 0.05, Ticks: 3},
			{From: "CENTRAL_KEEP", To: "HARBOR", Risk: 0.05, Ticks: 3},
			{From: "CENTRAL_KEEP", To: "FOREST_SPRING", Risk: 0.05, Ticks: 3},
			{From: "FOREST_SPRING", To: "CENTRAL_KEEP", Risk: 0.05, Ticks: 3},
			{From: "FOREST_SPRING", To: "FOREST_HAVEN", Risk: 0.05, Ticks: 2},
			{From: "FOREST_HAVEN", To: "FOREST_SPRING", Risk: 0.05, Ticks: 2},
			{From: "CENTRAL_KEEP", To: "SOUTHERN_SHRINE", Risk: 0.07, Ticks: 3},
			{From: "SOUTHERN_SHRINE", To: "CENTRAL_KEEP", Risk: 0.07, Ticks: 3},
			{From: "MILLS", To: "FOREST_HAVEN", Risk: 0.06, Ticks: 3},
			{From: "FOREST_HAVEN", To: "MILLS", Risk: 0.06, Ticks: 3},
		},
		Markets: map[string]MarketSpec{
			"HARBOR": {
				Stock:  map[string]int{"FOOD": 40, "MEDS": 25, "ORE": 5, "TOOLS": 10, "LUX": 30},
				Demand: map[string]float64{"ORE": 1.3, "TOOLS": 1.1},
			},
			"CENTRAL_KEEP": {
				Stock:  map[string]int{"FOOD": 30, "MEDS": 10, "ORE": 10, "TOOLS": 20, "LUX": 15},
				Demand: map[string]float64{"LUX": 1.2},
			},
			"SOUTHERN_SHRINE": {
				Stock:  map[string]int{"FOOD": 20, "MEDS": 35, "ORE": 0, "TOOLS": 5, "LUX": 10},
				Demand: map[string]float64{"FOOD": 1.2, "TOOLS": 1.3},
			},
			"FOREST_SPRING": {
				Stock:  map[string]int{"FOOD": 50, "MEDS": 15, "ORE": 15, "TOOLS": 10, "LUX": 5},
				Demand: map[string]float64{"MEDS": 1.1},
			},
			"MILLS": {
				Stock:  map[string]int{"FOOD": 80, "MEDS": 5, "ORE": 5, "TOOLS": 15, "LUX": 5},
				Demand: map[string]float64{"ORE": 1.2, "FOOD": 0.8},
			},
			"FOREST_HAVEN": {
				Stock:  map[string]int{"FOOD": 35, "MEDS": 20, "ORE": 10, "TOOLS": 5, "LUX": 10},
				Demand: map[string]float64{"TOOLS": 1.2},
			},
			"MINE": {
				Stock:  map[string]int{"FOOD": 10, "MEDS": 5, "ORE": 60, "TOOLS": 25, "LUX": 0},
				Demand: map[string]float64{"FOOD": 1.4, "MEDS": 1.3},
			},
		},
		Players: []PlayerSpec{
			{ID: 1, Name: "Player A", Kind: string(KindHuman), Start: "CENTRAL_KEEP", Gold: 150, Units: []string{string(HandCart)}},
			{ID: 2, Name: "Player B", Kind: string(KindHuman), Start: "HARBOR", Gold: 150, Units: []string{string(HandCart)}},
			{ID: 101, Name: "Guild AI", Kind: string(KindAI), Start: "MINE", Gold: 150, Units: []string{string(HandCart)}},
		},
	}
}
