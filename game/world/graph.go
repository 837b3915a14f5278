package world

import (
	"fmt"
)

// World is the static location graph. It is read-only after New returns.
type World struct {
	locations []Location
	byCode    map[string]int
	routes    map[routeKey]Route
	outgoing  map[string][]Route
}

// New builds a World, rejecting duplicate codes, duplicate routes and
// routes that reference unknown locations.
func New(locations []Location, routes []Route) (*World, error) {
	w := &World{
		locations: make([]Location, 0, len(locations)),
		byCode:    make(map[string]int, len(locations)),
		routes:    make(map[routeKey]Route, len(routes)),
		outgoing:  make(map[string][]Route),
	}

	for _, loc := range locations {
		code := NormalizeCode(loc.Code)
		if code == "" {
			return nil, fmt.Errorf("%w: location with empty code", ErrInvalidScenario)
		}
		if _, dup := w.byCode[code]; dup {
			return nil, fmt.Errorf("%w: duplicate location %s", ErrInvalidScenario, code)
		}
		names := make(map[string]string, len(loc.Names))
		for lang, name := range loc.Names {
			names[lang] = name
		}
		w.byCode[code] = len(w.locations)
		w.locations = append(w.locations, Location{Code: code, Pos: loc.Pos, Names: names})
	}

	for _, r := range routes {
		r.From = NormalizeCode(r.From)
		r.To = NormalizeCode(r.To)
		if !w.HasLocation(r.From) {
			return nil, fmt.Errorf("%w: route from unknown location %s", ErrInvalidScenario, r.From)
		}
		if !w.HasLocation(r.To) {
			return nil, fmt.Errorf("%w: route to unknown location %s", ErrInvalidScenario, r.To)
		}
		if r.From == r.To {
			return nil, fmt.Errorf("%w: route %s loops onto itself", ErrInvalidScenario, r.From)
		}
		if r.Ticks <= 0 {
			return nil, fmt.Errorf("%w: route %s->%s must cost at least one tick", ErrInvalidScenario, r.From, r.To)
		}
		if r.Risk < 0 || r.Risk > 1 {
			return nil, fmt.Errorf("%w: route %s->%s risk %.2f outside [0,1]", ErrInvalidScenario, r.From, r.To, r.Risk)
		}
		key := routeKey{r.From, r.To}
		if _, dup := w.routes[key]; dup {
			return nil, fmt.Errorf("%w: duplicate route %s", ErrInvalidScenario, key)
		}
		w.routes[key] = r
		w.outgoing[r.From] = append(w.outgoing[r.From], r)
	}

	return w, nil
}

// HasLocation reports whether code names a location.
func (w *World) HasLocation(code string) bool {
	_, ok := w.byCode[code]
	return ok
}

// Location returns the location for code.
func (w *World) Location(code string) (Location, bool) {
	i, ok := w.byCode[code]
	if !ok {
		return Location{}, false
	}
	return w.locations[i], true
}

// Locations returns all locations in authored order.
func (w *World) Locations() []Location {
	out := make([]Location, len(w.locations))
	copy(out, w.locations)
	return out
}

// Codes returns all location codes in authored order.
func (w *World) Codes() []string {
	codes := make([]string, len(w.locations))
	for i, loc := range w.locations {
		codes[i] = loc.Code
	}
	return codes
}

// HasRoute reports whether a route exists from a to b. The reverse edge is
// never inferred.
func (w *World) HasRoute(a, b string) bool {
	_, ok := w.routes[routeKey{a, b}]
	return ok
}

// GetRoute returns the route from a to b, or the zero Route and false.
func (w *World) GetRoute(a, b string) (Route, bool) {
	r, ok := w.routes[routeKey{a, b}]
	return r, ok
}

// RoutesFrom returns the outgoing routes of code in authored order.
func (w *World) RoutesFrom(code string) []Route {
	out := make([]Route, len(w.outgoing[code]))
	copy(out, w.outgoing[code])
	return out
}

// Routes returns every route.
func (w *World) Routes() []Route {
	var out []Route
	for _, loc := range w.locations {
		out = append(out, w.outgoing[loc.Code]...)
	}
	return out
}

// GetPos returns the map position of code, or the origin when unknown.
func (w *World) GetPos(code string) Position {
	loc, _ := w.Location(code)
	return loc.Pos
}

// GetLocName returns the display name of code in lang, falling back to
// English and then to the code itself.
func (w *World) GetLocName(code, lang string) string {
	loc, ok := w.Location(code)
	if !ok {
		return code
	}
	if name := loc.Names[lang]; name != "" {
		return name
	}
	if name := loc.Names[DefaultLanguage]; name != "" {
		return name
	}
	return code
}
