// Package world holds the static data of a Caravan Wars game.
//
// It defines the closed catalogs (goods and unit types), the directed
// location graph with costed routes, and the Scenario schema that seeds a
// simulation. Everything here is immutable once built: the engine reads the
// World but never changes it.
//
// Routes are directed. A scenario normally authors both directions, but the
// graph never infers a reverse edge, so asymmetric data is respected.
//
// Usage:
//
//	setup, err := world.Classic().Compile()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	r, ok := setup.World.GetRoute("CENTRAL_KEEP", "HARBOR")
package world
