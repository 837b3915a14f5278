package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wricardo/caravan-wars/game/engine"
	"github.com/wricardo/caravan-wars/game/runner"
	"github.com/wricardo/caravan-wars/game/world"
)

// maxManualTicks bounds a single Tick request.
const maxManualTicks = 1000

// Option configures the game service.
type Option func(*gameServiceImpl)

// WithObserver registers an observer for session updates.
func WithObserver(o Observer) Option {
	return func(s *gameServiceImpl) {
		s.observers = append(s.observers, o)
	}
}

// WithAutoRun starts a real-time loop for every new session.
func WithAutoRun(frame time.Duration) Option {
	return func(s *gameServiceImpl) {
		s.autoRun = true
		s.frame = frame
	}
}

// WithSpeed sets the time multiplier new sessions start with.
func WithSpeed(m float64) Option {
	return func(s *gameServiceImpl) {
		s.speed = m
	}
}

// WithLanguage sets the display language of new sessions.
func WithLanguage(lang string) Option {
	return func(s *gameServiceImpl) {
		s.language = lang
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *gameServiceImpl) {
		s.logger = l
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionManager
	scenarios ScenarioManager
	observers []Observer

	autoRun  bool
	frame    time.Duration
	speed    float64
	language string
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, scenarios ScenarioManager, opts ...Option) GameService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &gameServiceImpl{
		sessions:  sessions,
		scenarios: scenarios,
		speed:     engine.SpeedNormal,
		logger:    slog.Default(),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "service")
	return s
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, scenarioName string) (*SessionInfo, error) {
	var scenario *world.Scenario
	if scenarioName != "" {
		var err error
		scenario, err = s.scenarios.LoadScenario(scenarioName)
		if err != nil {
			if errors.Is(err, ErrScenarioNotFound) {
				return nil, s.scenarioNotFound(scenarioName, err)
			}
			return nil, fmt.Errorf("failed to load scenario %s: %w", scenarioName, err)
		}
	} else {
		scenario = s.scenarios.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.Do(func(sim *engine.Simulation) {
		if scenarioName != "" {
			sess.Scenario = scenarioName
		}
		if s.language != "" {
			sim.SetLanguage(s.language)
		}
		if err := sim.SetTimeMultiplier(s.speed); err != nil {
			s.logger.Warn("ignoring configured speed", "speed", s.speed, "error", err)
		}
	})
	if s.autoRun {
		s.start(sess)
	}

	s.logger.Info("session created", "session", sess.ID, "scenario", sess.Scenario, "running", s.autoRun)
	info := s.info(sess)
	s.publish(Update{SessionID: sess.ID, Event: EventSessionCreated, Snapshot: info.State})
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession stops and removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	sess.Stop()
	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.logger.Info("session deleted", "session", sess.ID)
	s.publish(Update{SessionID: sess.ID, Event: EventSessionDeleted})
	return nil
}

// Travel starts a journey towards dest
func (s *gameServiceImpl) Travel(ctx context.Context, sessionID string, playerID int, dest string) (*CommandResult, error) {
	return s.run(sessionID, func(sim *engine.Simulation) error {
		return sim.StartTravel(resolvePlayer(sim, playerID), dest)
	})
}

// Buy purchases goods at the player's location
func (s *gameServiceImpl) Buy(ctx context.Context, sessionID string, playerID int, good world.Good, amount int) (*CommandResult, error) {
	return s.run(sessionID, func(sim *engine.Simulation) error {
		return sim.Buy(resolvePlayer(sim, playerID), good, amount)
	})
}

// Sell sells goods at the player's location
func (s *gameServiceImpl) Sell(ctx context.Context, sessionID string, playerID int, good world.Good, amount int) (*CommandResult, error) {
	return s.run(sessionID, func(sim *engine.Simulation) error {
		return sim.Sell(resolvePlayer(sim, playerID), good, amount)
	})
}

// Exec runs one console command line
func (s *gameServiceImpl) Exec(ctx context.Context, sessionID string, playerID int, line string) (*CommandResult, error) {
	return s.run(sessionID, func(sim *engine.Simulation) error {
		return sim.Exec(resolvePlayer(sim, playerID), line)
	})
}

// SetSpeed changes the session's time multiplier
func (s *gameServiceImpl) SetSpeed(ctx context.Context, sessionID string, multiplier float64) (*CommandResult, error) {
	result, err := s.run(sessionID, func(sim *engine.Simulation) error {
		return sim.SetTimeMultiplier(multiplier)
	})
	if err == nil && result.Success {
		result.Message = fmt.Sprintf("Time speed set to %gx.", multiplier)
	}
	return result, err
}

// Tick runs n coarse scheduler steps by hand
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string, n int) (*CommandResult, error) {
	if n <= 0 {
		n = 1
	}
	if n > maxManualTicks {
		n = maxManualTicks
	}
	result, err := s.run(sessionID, func(sim *engine.Simulation) error {
		for i := 0; i < n; i++ {
			sim.Tick()
		}
		return nil
	})
	if err == nil && len(result.Events) == 0 {
		result.Message = fmt.Sprintf("Advanced %d tick(s) to tick %d.", n, result.State.Tick)
	}
	return result, err
}

// Advance runs one frame of delta simulation time, scaled by the multiplier
func (s *gameServiceImpl) Advance(ctx context.Context, sessionID string, delta float64) (*CommandResult, error) {
	var applied float64
	result, err := s.run(sessionID, func(sim *engine.Simulation) error {
		if !sim.Paused() && delta > 0 {
			applied = delta * sim.TimeMultiplier()
		}
		sim.AdvanceFrame(delta)
		return nil
	})
	if err == nil && len(result.Events) == 0 {
		if result.State.TimeMultiplier == 0 {
			result.Message = "Game is paused; nothing moved."
		} else {
			result.Message = fmt.Sprintf("Advanced %g time units.", applied)
		}
	}
	return result, err
}

// GetState returns the current snapshot
func (s *gameServiceImpl) GetState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	var snap *engine.Snapshot
	sess.Do(func(sim *engine.Simulation) { snap = sim.Snapshot() })
	return snap, nil
}

// GetPrices returns the cached prices, optionally for one location
func (s *gameServiceImpl) GetPrices(ctx context.Context, sessionID, location string) (*PriceInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	var info *PriceInfo
	sess.Do(func(sim *engine.Simulation) {
		info = &PriceInfo{Tick: sim.TickCount()}
		if location == "" {
			info.Prices = sim.Market().Prices()
			info.Stock = sim.Market().Stock()
			return
		}
		code := world.NormalizeCode(location)
		if !sim.World().HasLocation(code) {
			err = fmt.Errorf("%w: %s", engine.ErrUnknownLocation, code)
			return
		}
		info.Prices = engine.PriceTable{code: sim.Market().PricesAt(code)}
		info.Stock = map[string]map[world.Good]int{code: sim.Market().StockAt(code)}
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// GetChronicle returns up to limit recent notifications, oldest first
func (s *gameServiceImpl) GetChronicle(ctx context.Context, sessionID string, limit int) ([]engine.Notification, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	var notes []engine.Notification
	sess.Do(func(sim *engine.Simulation) { notes = sim.Chronicle(limit) })
	return notes, nil
}

// GetWorld returns the static map with names in the session's language
func (s *gameServiceImpl) GetWorld(ctx context.Context, sessionID string) (*WorldInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	var lang string
	sess.Do(func(sim *engine.Simulation) { lang = sim.Language() })
	w := sess.Sim.World()

	info := &WorldInfo{Language: lang}
	for _, loc := range w.Locations() {
		info.Locations = append(info.Locations, LocationInfo{
			Code:   loc.Code,
			Name:   w.GetLocName(loc.Code, lang),
			Pos:    loc.Pos,
			Routes: w.RoutesFrom(loc.Code),
		})
	}
	for _, g := range world.Goods() {
		info.Goods = append(info.Goods, g.Info())
	}
	for _, u := range world.UnitTypes() {
		def, _ := world.LookupUnit(u)
		info.Units = append(info.Units, def)
	}
	return info, nil
}

// ListScenarios returns available scenarios
func (s *gameServiceImpl) ListScenarios(ctx context.Context) ([]*ScenarioInfo, error) {
	return s.scenarios.ListScenarios()
}

// LoadScenario loads a specific scenario
func (s *gameServiceImpl) LoadScenario(ctx context.Context, name string) (*world.Scenario, error) {
	return s.scenarios.LoadScenario(name)
}

// SaveScenario validates and stores a scenario
func (s *gameServiceImpl) SaveScenario(ctx context.Context, name string, scenario *world.Scenario) error {
	if err := scenario.Validate(); err != nil {
		return err
	}
	return s.scenarios.SaveScenario(name, scenario)
}

// Shutdown stops every session loop started by this service
func (s *gameServiceImpl) Shutdown() {
	s.cancel()
	for _, sess := range s.sessions.List() {
		sess.Stop()
	}
}

// run executes op under the session lock and packages the outcome.
// Expected game failures come back as Success=false; only a missing
// session or player is an error.
func (s *gameServiceImpl) run(sessionID string, op func(sim *engine.Simulation) error) (*CommandResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	before := sess.Sim.TimeMultiplier()
	opErr := op(sess.Sim)
	events := sess.Sim.Drain()
	snap := sess.Sim.Snapshot()
	// Retimed under the lock so the loop sees speed changes in the order
	// the simulation applied them.
	if snap.TimeMultiplier != before && sess.loop != nil {
		sess.loop.SetSpeed(snap.TimeMultiplier)
	}
	sess.mu.Unlock()

	if errors.Is(opErr, engine.ErrUnknownPlayer) {
		return nil, opErr
	}

	result := &CommandResult{
		Success: opErr == nil,
		Events:  events,
		State:   snap,
		Message: "OK",
	}
	if len(events) > 0 {
		result.Message = events[len(events)-1].Message
	}
	if opErr != nil {
		result.Error = opErr.Error()
		if len(events) == 0 {
			result.Message = opErr.Error()
		}
	}

	s.publish(Update{SessionID: sess.ID, Event: EventStateUpdate, Snapshot: snap, Events: events})
	return result, nil
}

func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	info := &SessionInfo{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
	}
	sess.mu.Lock()
	info.Scenario = sess.Scenario
	info.LastAccessedAt = sess.lastAccessed
	info.State = sess.Sim.Snapshot()
	info.Running = sess.stop != nil
	sess.mu.Unlock()
	return info
}

func (s *gameServiceImpl) scenarioNotFound(name string, err error) error {
	available, listErr := s.scenarios.ListScenarios()
	if listErr == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, sc := range available {
			ids = append(ids, sc.ScenarioID)
		}
		return fmt.Errorf("%w: '%s'. Available scenarios: %v", ErrScenarioNotFound, name, ids)
	}
	return fmt.Errorf("scenario '%s': %w. Use /api/scenarios to list available scenarios", name, err)
}

func (s *gameServiceImpl) publish(u Update) {
	for _, o := range s.observers {
		o.SessionUpdated(u)
	}
}

// start launches the real-time loop for a session.
func (s *gameServiceImpl) start(sess *Session) {
	ctx, cancel := context.WithCancel(s.ctx)
	loop := runner.New(&stepper{svc: s, sess: sess}, s.frame, s.speed)

	sess.mu.Lock()
	sess.loop = loop
	sess.stop = cancel
	sess.mu.Unlock()

	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("session loop failed", "session", sess.ID, "error", err)
		}
	}()
}

func resolvePlayer(sim *engine.Simulation, playerID int) int {
	if playerID == 0 {
		return sim.LocalPlayer()
	}
	return playerID
}

// stepper adapts a session to runner.Stepper, taking the session lock for
// each step and publishing the changes.
type stepper struct {
	svc  *gameServiceImpl
	sess *Session
}

func (st *stepper) Tick() {
	st.sess.mu.Lock()
	// A tick already queued by the loop can arrive after a pause.
	if st.sess.Sim.Paused() {
		st.sess.mu.Unlock()
		return
	}
	st.sess.Sim.Tick()
	events := st.sess.Sim.Drain()
	snap := st.sess.Sim.Snapshot()
	st.sess.mu.Unlock()

	st.svc.publish(Update{SessionID: st.sess.ID, Event: EventStateUpdate, Snapshot: snap, Events: events})
}

func (st *stepper) Frame(delta float64) {
	st.sess.mu.Lock()
	moving := st.sess.Sim.InTransit() > 0 && !st.sess.Sim.Paused()
	st.sess.Sim.AdvanceFrame(delta)
	events := st.sess.Sim.Drain()
	if !moving && len(events) == 0 {
		st.sess.mu.Unlock()
		return
	}
	snap := st.sess.Sim.Snapshot()
	st.sess.mu.Unlock()

	st.svc.publish(Update{SessionID: st.sess.ID, Event: EventStateUpdate, Snapshot: snap, Events: events})
}
