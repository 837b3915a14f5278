// Command validate checks scenario YAML files in a directory (default
// ./scenarios). It checks:
//   - YAML structure, unknown fields and the scenario rules (codes, routes, goods, roster)
//   - Connectivity: every location is reachable from at least one starting location
//   - Dead ends: every location has at least one outgoing route
//   - Market coverage: which locations trade at all
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/caravan-wars/game/config"
	"github.com/wricardo/caravan-wars/game/world"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) note(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateScenario loads and validates a single scenario file.
func validateScenario(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	scenario, err := config.ParseScenario(data)
	if err != nil {
		result.fail("Invalid scenario: %v", err)
		return result
	}

	setup, err := scenario.Compile()
	if err != nil {
		result.fail("Invalid scenario: %v", err)
		return result
	}

	starts := make([]string, 0, len(setup.Roster))
	for _, r := range setup.Roster {
		starts = append(starts, r.Start)
	}

	connectivity := validateConnectivity(setup.World, starts)
	if !connectivity.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, connectivity.Errors...)

	for _, code := range setup.World.Codes() {
		if len(setup.World.RoutesFrom(code)) == 0 {
			result.fail("Dead end: %s has no outgoing routes", code)
		}
	}

	if !result.Valid {
		return result
	}

	// Add informational data
	result.note("Name: %s", scenario.Name)
	result.note("Locations: %d", len(setup.World.Codes()))
	result.note("Routes: %d", len(setup.World.Routes()))
	result.note("Players: %d", len(setup.Roster))
	result.note("Markets: %d/%d locations", len(setup.Stock), len(setup.World.Codes()))
	if missing := locationsWithoutMarket(setup); len(missing) > 0 {
		result.note("No market at: %s", strings.Join(missing, ", "))
	}

	return result
}

// validateConnectivity ensures every location is reachable along routes
// from at least one of the starting locations.
func validateConnectivity(w *world.World, starts []string) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	if len(starts) == 0 {
		result.fail("Cannot validate connectivity: no starting locations")
		return result
	}

	// Breadth-first search over directed routes from every start
	visited := make(map[string]bool)
	queue := append([]string(nil), starts...)
	for len(queue) > 0 {
		code := queue[0]
		queue = queue[1:]

		if visited[code] {
			continue
		}
		visited[code] = true

		for _, r := range w.RoutesFrom(code) {
			if !visited[r.To] {
				queue = append(queue, r.To)
			}
		}
	}

	var unreachable []string
	for _, code := range w.Codes() {
		if !visited[code] {
			unreachable = append(unreachable, code)
		}
	}

	if len(unreachable) > 0 {
		result.fail("Connectivity failure: %d/%d locations unreachable from any start", len(unreachable), len(w.Codes()))
		for _, code := range unreachable {
			result.fail("Unreachable: %s", code)
		}
	} else {
		result.note("Connectivity: All %d locations reachable", len(w.Codes()))
	}

	return result
}

func locationsWithoutMarket(setup *world.Setup) []string {
	var missing []string
	for _, code := range setup.World.Codes() {
		if _, ok := setup.Stock[code]; !ok {
			missing = append(missing, code)
		}
	}
	sort.Strings(missing)
	return missing
}

// scenarioFiles lists *.yaml and *.yml files in dir.
func scenarioFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates every scenario file in the directory given as the first
// argument, printing a concise report and exiting with non-zero status if
// any are invalid.
func main() {
	scenarioDir := "scenarios"
	if len(os.Args) > 1 {
		scenarioDir = os.Args[1]
	}

	files, err := scenarioFiles(scenarioDir)
	if err != nil {
		fmt.Printf("Error finding scenario files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No scenario files found in %s\n", scenarioDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateScenario(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All scenarios are valid!")
	} else {
		fmt.Println("❌ Some scenarios have errors")
		os.Exit(1)
	}
}
