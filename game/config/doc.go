// Package config loads scenarios and process settings for Caravan Wars.
//
// The config package implements:
//   - YAML scenario files (*.yaml, *.yml) read from a scenario directory
//   - The built-in classic scenario as the fallback default
//   - A read-through cache of parsed scenarios
//   - Process settings from CARAVAN_* environment variables and an
//     optional settings file
//
// Scenario Format:
//
//	name: two-towns
//	description: A single road east
//	locations:
//	  - {code: WEST, x: 0, y: 0, names: {en: West}}
//	  - {code: EAST, x: 100, y: 0}
//	routes:
//	  - {from: WEST, to: EAST, risk: 0.05, ticks: 2}
//	markets:
//	  WEST:
//	    stock: {FOOD: 40, ORE: 10}
//	    demand: {ORE: 1.2}
//	players:
//	  - {id: 1, name: Trader, kind: HUMAN, start: WEST, gold: 150, units: [hand_cart]}
//
// Routes are directed: a road usable both ways is listed twice.
//
// Usage:
//
//	scenarios, err := config.NewManager("scenarios")
//	if err != nil {
//		log.Fatal(err)
//	}
//	sc, err := scenarios.LoadScenario("two-towns")
//
//	settings, err := config.LoadSettings("")
//	fmt.Println(settings.Addr())
package config
