package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/caravan-wars/game/engine"
	"github.com/wricardo/caravan-wars/game/runner"
	"github.com/wricardo/caravan-wars/game/world"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrScenarioNotFound     = errors.New("scenario not found")
)

// GameService defines all game-related operations. A playerID of 0 means
// the session's local player.
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, scenarioName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Travel(ctx context.Context, sessionID string, playerID int, dest string) (*CommandResult, error)
	Buy(ctx context.Context, sessionID string, playerID int, good world.Good, amount int) (*CommandResult, error)
	Sell(ctx context.Context, sessionID string, playerID int, good world.Good, amount int) (*CommandResult, error)
	Exec(ctx context.Context, sessionID string, playerID int, line string) (*CommandResult, error)
	SetSpeed(ctx context.Context, sessionID string, multiplier float64) (*CommandResult, error)
	Tick(ctx context.Context, sessionID string, n int) (*CommandResult, error)
	Advance(ctx context.Context, sessionID string, delta float64) (*CommandResult, error)

	// Game State
	GetState(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetPrices(ctx context.Context, sessionID, location string) (*PriceInfo, error)
	GetChronicle(ctx context.Context, sessionID string, limit int) ([]engine.Notification, error)
	GetWorld(ctx context.Context, sessionID string) (*WorldInfo, error)

	// Scenarios
	ListScenarios(ctx context.Context) ([]*ScenarioInfo, error)
	LoadScenario(ctx context.Context, name string) (*world.Scenario, error)
	SaveScenario(ctx context.Context, name string, scenario *world.Scenario) error

	// Shutdown stops every running session loop.
	Shutdown()
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, scenario *world.Scenario) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ScenarioManager handles scenario loading
type ScenarioManager interface {
	LoadScenario(name string) (*world.Scenario, error)
	ListScenarios() ([]*ScenarioInfo, error)
	GetDefault() *world.Scenario
	SaveScenario(name string, scenario *world.Scenario) error
}

// Observer receives session updates, typically to fan them out to renderers.
// SessionUpdated must not block.
type Observer interface {
	SessionUpdated(update Update)
}

// Session represents an active game session. Sim and the access time are
// guarded by the session's lock; every read or write of them takes it.
type Session struct {
	ID        string
	Scenario  string
	Sim       *engine.Simulation
	CreatedAt time.Time

	mu           sync.Mutex
	lastAccessed time.Time
	loop         *runner.Loop
	stop         context.CancelFunc
}

// NewSession wraps sim in a session created and last accessed now.
func NewSession(id, scenario string, sim *engine.Simulation) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Scenario:     scenario,
		Sim:          sim,
		CreatedAt:    now,
		lastAccessed: now,
	}
}

// Touch records an access at t.
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	s.lastAccessed = t
	s.mu.Unlock()
}

// LastAccess reports when the session was last accessed.
func (s *Session) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessed
}

// Do runs fn with exclusive access to the simulation.
func (s *Session) Do(fn func(sim *engine.Simulation)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.Sim)
}

// Stop halts the session's real-time loop, if any.
func (s *Session) Stop() {
	s.mu.Lock()
	stop := s.stop
	s.stop, s.loop = nil, nil
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}
