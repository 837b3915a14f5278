// Package engine provides the core simulation for Caravan Wars.
//
// The engine package implements the game mechanics including:
//   - Market stock, demand and the derived price table
//   - Player caravans: wallet, cargo hold, unit composition
//   - The travel state machine (stationary, in transit, arrived)
//   - Buy and sell transactions validated before any mutation
//   - The two scheduler cadences: coarse economy ticks and frame advance
//   - A notification queue feeding the chronicle display
//
// Core Types:
//
// Simulation owns all mutable state for one game and implements the Engine
// interface. It is built from a world.Scenario and is single-threaded:
// every entry point runs to completion and callers serialise access.
//
// Usage:
//
//	sim, err := engine.New(world.Classic())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := sim.StartTravel(1, "HARBOR"); err != nil {
//		// ErrInTransit, ErrSameLocation, ErrNoRoute, ...
//	}
//	sim.AdvanceFrame(15.0)
//	for _, n := range sim.Drain() {
//		fmt.Println(n.Message)
//	}
//
// Timing:
//
// A route of cost t takes t*5 time units at speed 1.0. A caravan moves at
// the speed of its slowest unit. Tick recomputes prices every third call;
// AdvanceFrame scales its delta by the time multiplier (0 pauses).
package engine
