package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/caravan-wars/game/service"
	"github.com/wricardo/caravan-wars/game/world"
)

var (
	ErrScenarioNotFound = service.ErrScenarioNotFound
	ErrInvalidScenario  = world.ErrInvalidScenario
	ErrNoScenarioDir    = errors.New("no scenario directory configured")
	ErrInvalidName      = errors.New("invalid scenario name")
)

var scenarioExts = []string{".yaml", ".yml"}

var _ service.ScenarioManager = (*Manager)(nil)

// Manager handles scenario loading and caching. The built-in classic
// scenario is always available; files in the scenario directory add to it
// and may override it by name.
type Manager struct {
	dir             string
	defaultScenario *world.Scenario
	scenarios       map[string]*world.Scenario
	mu              sync.RWMutex
}

// NewManager creates a scenario manager over dir. An empty dir serves the
// built-in scenario only.
func NewManager(dir string) (*Manager, error) {
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("scenario directory does not exist: %s", dir)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("scenario directory is not a directory: %s", dir)
		}
	}

	m := &Manager{
		dir:       dir,
		scenarios: make(map[string]*world.Scenario),
	}
	def, err := m.LoadScenario(world.ClassicName)
	if err != nil {
		return nil, fmt.Errorf("failed to load default scenario: %w", err)
	}
	m.defaultScenario = def
	return m, nil
}

// LoadScenario loads a scenario by name, from the cache, the scenario
// directory or the built-in set, in that order.
func (m *Manager) LoadScenario(name string) (*world.Scenario, error) {
	id, err := scenarioID(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	if sc, exists := m.scenarios[id]; exists {
		m.mu.RUnlock()
		return sc, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if sc, exists := m.scenarios[id]; exists {
		return sc, nil
	}

	sc, err := m.loadFile(id)
	if errors.Is(err, ErrScenarioNotFound) && id == world.ClassicName {
		sc, err = world.Classic(), nil
	}
	if err != nil {
		return nil, err
	}

	m.scenarios[id] = sc
	return sc, nil
}

// ListScenarios returns information about all available scenarios. Files
// that fail to parse or validate are skipped.
func (m *Manager) ListScenarios() ([]*service.ScenarioInfo, error) {
	ids := []string{world.ClassicName}
	files := map[string]string{}

	if m.dir != "" {
		entries, err := os.ReadDir(m.dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read scenario directory: %w", err)
		}
		for _, entry := range entries {
			ext := filepath.Ext(entry.Name())
			if entry.IsDir() || !isScenarioExt(ext) {
				continue
			}
			id := strings.ToLower(strings.TrimSuffix(entry.Name(), ext))
			if _, dup := files[id]; dup {
				continue
			}
			files[id] = entry.Name()
			if id != world.ClassicName {
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids[1:])

	var infos []*service.ScenarioInfo
	for _, id := range ids {
		sc, err := m.LoadScenario(id)
		if err != nil {
			slog.Warn("skipping scenario", "scenario", id, "error", err)
			continue
		}
		infos = append(infos, &service.ScenarioInfo{
			Filename:    files[id],
			ScenarioID:  id,
			Name:        sc.Name,
			Description: sc.Description,
			Locations:   len(sc.Locations),
			Routes:      len(sc.Routes),
			Players:     len(sc.Players),
		})
	}
	return infos, nil
}

// GetDefault returns the default scenario
func (m *Manager) GetDefault() *world.Scenario {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultScenario
}

// SetDefault sets the default scenario by name
func (m *Manager) SetDefault(name string) error {
	sc, err := m.LoadScenario(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultScenario = sc
	return nil
}

// RefreshCache drops every cached scenario so files are read again.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenarios = make(map[string]*world.Scenario)
}

// SaveScenario validates a scenario and writes it as YAML
func (m *Manager) SaveScenario(name string, scenario *world.Scenario) error {
	if m.dir == "" {
		return ErrNoScenarioDir
	}
	id, err := scenarioID(name)
	if err != nil {
		return err
	}
	if err := scenario.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(scenario); err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}

	path := filepath.Join(m.dir, id+".yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}

	m.mu.Lock()
	m.scenarios[id] = scenario
	m.mu.Unlock()
	return nil
}

// loadFile reads id.yaml or id.yml from the scenario directory.
func (m *Manager) loadFile(id string) (*world.Scenario, error) {
	if m.dir == "" {
		return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
	}
	for _, ext := range scenarioExts {
		path := filepath.Join(m.dir, id+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read scenario file: %w", err)
		}
		return ParseScenario(data)
	}
	return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, id)
}

// ParseScenario decodes and validates a YAML scenario document. Unknown
// fields are rejected.
func ParseScenario(data []byte) (*world.Scenario, error) {
	var sc world.Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse scenario: %v", ErrInvalidScenario, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func scenarioID(name string) (string, error) {
	id := strings.ToLower(strings.TrimSpace(name))
	for _, ext := range scenarioExts {
		id = strings.TrimSuffix(id, ext)
	}
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return id, nil
}

func isScenarioExt(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range scenarioExts {
		if ext == e {
			return true
		}
	}
	return false
}
