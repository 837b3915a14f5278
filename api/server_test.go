package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/caravan-wars/game/config"
	"github.com/wricardo/caravan-wars/game/engine"
	"github.com/wricardo/caravan-wars/game/service"
	"github.com/wricardo/caravan-wars/game/world"
	"github.com/wricardo/caravan-wars/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, scenarioName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	TravelFunc   func(ctx context.Context, sessionID string, playerID int, dest string) (*service.CommandResult, error)
	BuyFunc      func(ctx context.Context, sessionID string, playerID int, good world.Good, amount int) (*service.CommandResult, error)
	SellFunc     func(ctx context.Context, sessionID string, playerID int, good world.Good, amount int) (*service.CommandResult, error)
	ExecFunc     func(ctx context.Context, sessionID string, playerID int, line string) (*service.CommandResult, error)
	SetSpeedFunc func(ctx context.Context, sessionID string, multiplier float64) (*service.CommandResult, error)
	TickFunc     func(ctx context.Context, sessionID string, n int) (*service.CommandResult, error)
	AdvanceFunc  func(ctx context.Context, sessionID string, delta float64) (*service.CommandResult, error)

	// Game State
	GetStateFunc     func(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetPricesFunc    func(ctx context.Context, sessionID, location string) (*service.PriceInfo, error)
	GetChronicleFunc func(ctx context.Context, sessionID string, limit int) ([]engine.Notification, error)
	GetWorldFunc     func(ctx context.Context, sessionID string) (*service.WorldInfo, error)

	// Scenarios
	ListScenariosFunc func(ctx context.Context) ([]*service.ScenarioInfo, error)
	LoadScenarioFunc  func(ctx context.Context, name string) (*world.Scenario, error)
	SaveScenarioFunc  func(ctx context.Context, name string, scenario *world.Scenario) error
}

func okResult(message string) *service.CommandResult {
	return &service.CommandResult{Success: true, Message: message, State: &engine.Snapshot{Tick: 1}}
}

// Session Management
func (m *MockGameService) CreateSession(ctx context.Context, scenarioName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, scenarioName)
	}
	return &service.SessionInfo{ID: "test", Scenario: scenarioName, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, Scenario: "classic", State: &engine.Snapshot{Tick: 3}}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

// Game Operations
func (m *MockGameService) Travel(ctx context.Context, sessionID string, playerID int, dest string) (*service.CommandResult, error) {
	if m.TravelFunc != nil {
		return m.TravelFunc(ctx, sessionID, playerID, dest)
	}
	return okResult("travel"), nil
}

func (m *MockGameService) Buy(ctx context.Context, sessionID string, playerID int, good world.Good, amount int) (*service.CommandResult, error) {
	if m.BuyFunc != nil {
		return m.BuyFunc(ctx, sessionID, playerID, good, amount)
	}
	return okResult("buy"), nil
}

func (m *MockGameService) Sell(ctx context.Context, sessionID string, playerID int, good world.Good, amount int) (*service.CommandResult, error) {
	if m.SellFunc != nil {
		return m.SellFunc(ctx, sessionID, playerID, good, amount)
	}
	return okResult("sell"), nil
}

func (m *MockGameService) Exec(ctx context.Context, sessionID string, playerID int, line string) (*service.CommandResult, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sessionID, playerID, line)
	}
	return okResult("exec"), nil
}

func (m *MockGameService) SetSpeed(ctx context.Context, sessionID string, multiplier float64) (*service.CommandResult, error) {
	if m.SetSpeedFunc != nil {
		return m.SetSpeedFunc(ctx, sessionID, multiplier)
	}
	return okResult("speed"), nil
}

func (m *MockGameService) Tick(ctx context.Context, sessionID string, n int) (*service.CommandResult, error) {
	if m.TickFunc != nil {
		return m.TickFunc(ctx, sessionID, n)
	}
	return okResult("tick"), nil
}

func (m *MockGameService) Advance(ctx context.Context, sessionID string, delta float64) (*service.CommandResult, error) {
	if m.AdvanceFunc != nil {
		return m.AdvanceFunc(ctx, sessionID, delta)
	}
	return okResult("advance"), nil
}

// Game State
func (m *MockGameService) GetState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.GetStateFunc != nil {
		return m.GetStateFunc(ctx, sessionID)
	}
	return &engine.Snapshot{Tick: 3}, nil
}

func (m *MockGameService) GetPrices(ctx context.Context, sessionID, location string) (*service.PriceInfo, error) {
	if m.GetPricesFunc != nil {
		return m.GetPricesFunc(ctx, sessionID, location)
	}
	return &service.PriceInfo{}, nil
}

func (m *MockGameService) GetChronicle(ctx context.Context, sessionID string, limit int) ([]engine.Notification, error) {
	if m.GetChronicleFunc != nil {
		return m.GetChronicleFunc(ctx, sessionID, limit)
	}
	return nil, nil
}

func (m *MockGameService) GetWorld(ctx context.Context, sessionID string) (*service.WorldInfo, error) {
	if m.GetWorldFunc != nil {
		return m.GetWorldFunc(ctx, sessionID)
	}
	return &service.WorldInfo{Language: "en"}, nil
}

// Scenarios
func (m *MockGameService) ListScenarios(ctx context.Context) ([]*service.ScenarioInfo, error) {
	if m.ListScenariosFunc != nil {
		return m.ListScenariosFunc(ctx)
	}
	return []*service.ScenarioInfo{}, nil
}

func (m *MockGameService) LoadScenario(ctx context.Context, name string) (*world.Scenario, error) {
	if m.LoadScenarioFunc != nil {
		return m.LoadScenarioFunc(ctx, name)
	}
	return world.Classic(), nil
}

func (m *MockGameService) SaveScenario(ctx context.Context, name string, scenario *world.Scenario) error {
	if m.SaveScenarioFunc != nil {
		return m.SaveScenarioFunc(ctx, name, scenario)
	}
	return nil
}

func (m *MockGameService) Shutdown() {}

var _ service.GameService = (*MockGameService)(nil)

// Test helpers
func setupTestServer(t *testing.T, mockService *MockGameService) *Server {
	t.Helper()
	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	switch b := body.(type) {
	case nil:
	case string:
		bodyBytes = []byte(b)
	default:
		bodyBytes, _ = json.Marshal(b)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(t *testing.T, m *MockGameService, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	setupTestServer(t, m).ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), w.Body.String())
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	parseResponse(t, w, &resp)
	return resp["error"]
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		wantScenario   string
		serviceErr     error
		expectedStatus int
	}{
		{name: "default scenario", body: nil, wantScenario: "", expectedStatus: http.StatusCreated},
		{name: "named scenario", body: map[string]string{"scenario": "two-towns"}, wantScenario: "two-towns", expectedStatus: http.StatusCreated},
		{
			name:           "unknown scenario",
			body:           map[string]string{"scenario": "atlantis"},
			wantScenario:   "atlantis",
			serviceErr:     fmt.Errorf("%w: 'atlantis'", service.ErrScenarioNotFound),
			expectedStatus: http.StatusNotFound,
		},
		{name: "service failure", body: nil, serviceErr: fmt.Errorf("boom"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MockGameService{
				CreateSessionFunc: func(ctx context.Context, scenarioName string) (*service.SessionInfo, error) {
					assert.Equal(t, tt.wantScenario, scenarioName)
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &service.SessionInfo{ID: "a1b2", Scenario: scenarioName}, nil
				},
			}

			w := serve(t, m, makeRequest("POST", "/api/sessions", tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.serviceErr == nil {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				assert.Equal(t, "a1b2", resp.ID)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	m := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Minute)},
				{ID: "new", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "mid", CreatedAt: now.Add(-90 * time.Minute), LastAccessedAt: now},
			}, nil
		},
	}

	type listResponse struct {
		Count    int                    `json:"count"`
		Total    int                    `json:"total"`
		Sort     string                 `json:"sort"`
		Order    string                 `json:"order"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	ids := func(resp listResponse) []string {
		var out []string
		for _, s := range resp.Sessions {
			out = append(out, s.ID)
		}
		return out
	}

	tests := []struct {
		name    string
		query   string
		want    []string
		wantTot int
	}{
		{name: "default accessed desc", query: "", want: []string{"mid", "old", "new"}, wantTot: 3},
		{name: "created asc", query: "?sort=created&order=asc", want: []string{"old", "mid", "new"}, wantTot: 3},
		{name: "limit", query: "?limit=1", want: []string{"mid"}, wantTot: 3},
		{name: "bad limit ignored", query: "?limit=zero", want: []string{"mid", "old", "new"}, wantTot: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, m, makeRequest("GET", "/api/sessions"+tt.query, nil))
			require.Equal(t, http.StatusOK, w.Code)

			var resp listResponse
			parseResponse(t, w, &resp)
			assert.Equal(t, tt.want, ids(resp))
			assert.Equal(t, len(tt.want), resp.Count)
			assert.Equal(t, tt.wantTot, resp.Total)
		})
	}
}

func TestGetSession(t *testing.T) {
	m := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "a1b2" {
				return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			return &service.SessionInfo{ID: "a1b2", Scenario: "classic", Running: true}, nil
		},
	}

	w := serve(t, m, makeRequest("GET", "/api/sessions/a1b2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp service.SessionInfo
	parseResponse(t, w, &resp)
	assert.Equal(t, "classic", resp.Scenario)
	assert.True(t, resp.Running)

	w = serve(t, m, makeRequest("GET", "/api/sessions/zzzz", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, errorMessage(t, w), "session not found")
}

func TestDeleteSession(t *testing.T) {
	var deleted string
	m := &MockGameService{
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "gone" {
				return fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			deleted = sessionID
			return nil
		},
	}

	w := serve(t, m, makeRequest("DELETE", "/api/sessions/a1b2", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a1b2", deleted)

	w = serve(t, m, makeRequest("DELETE", "/api/sessions/gone", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Game State Tests

func TestGetState(t *testing.T) {
	m := &MockGameService{
		GetStateFunc: func(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
			return &engine.Snapshot{Scenario: "classic", Tick: 12, TimeMultiplier: 2}, nil
		},
	}

	w := serve(t, m, makeRequest("GET", "/api/sessions/a1b2/state", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var snap engine.Snapshot
	parseResponse(t, w, &snap)
	assert.Equal(t, 12, snap.Tick)
	assert.Equal(t, 2.0, snap.TimeMultiplier)
}

func TestGetWorld(t *testing.T) {
	m := &MockGameService{
		GetWorldFunc: func(ctx context.Context, sessionID string) (*service.WorldInfo, error) {
			return &service.WorldInfo{
				Language:  "pl",
				Locations: []service.LocationInfo{{Code: "HARBOR", Name: "Port"}},
			}, nil
		},
	}

	w := serve(t, m, makeRequest("GET", "/api/sessions/a1b2/world", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var info service.WorldInfo
	parseResponse(t, w, &info)
	assert.Equal(t, "pl", info.Language)
	require.Len(t, info.Locations, 1)
	assert.Equal(t, "Port", info.Locations[0].Name)
}

func TestGetPrices(t *testing.T) {
	m := &MockGameService{
		GetPricesFunc: func(ctx context.Context, sessionID, location string) (*service.PriceInfo, error) {
			switch location {
			case "", "MINE":
				return &service.PriceInfo{
					Tick:   4,
					Prices: engine.PriceTable{"MINE": {world.Ore: 24}},
				}, nil
			}
			return nil, fmt.Errorf("%w: %s", engine.ErrUnknownLocation, location)
		},
	}

	w := serve(t, m, makeRequest("GET", "/api/sessions/a1b2/prices?location=MINE", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var info service.PriceInfo
	parseResponse(t, w, &info)
	assert.Equal(t, 24, info.Prices["MINE"][world.Ore])

	w = serve(t, m, makeRequest("GET", "/api/sessions/a1b2/prices?location=ATLANTIS", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetChronicle(t *testing.T) {
	var gotLimit int
	m := &MockGameService{
		GetChronicleFunc: func(ctx context.Context, sessionID string, limit int) ([]engine.Notification, error) {
			gotLimit = limit
			return []engine.Notification{{Kind: engine.NoteArrived, Message: "Arrived at Harbor."}}, nil
		},
	}

	w := serve(t, m, makeRequest("GET", "/api/sessions/a1b2/chronicle", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultChronicleLimit, gotLimit)

	var resp struct {
		Count   int                   `json:"count"`
		Entries []engine.Notification `json:"entries"`
	}
	parseResponse(t, w, &resp)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Arrived at Harbor.", resp.Entries[0].Message)

	serve(t, m, makeRequest("GET", "/api/sessions/a1b2/chronicle?limit=5", nil))
	assert.Equal(t, 5, gotLimit)
}

// Game Operation Tests

func TestTravel(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		wantSuccess    bool
	}{
		{
			name: "started",
			body: map[string]interface{}{"player_id": 2, "destination": "harbor"},
			setupMock: func(m *MockGameService) {
				m.TravelFunc = func(ctx context.Context, sessionID string, playerID int, dest string) (*service.CommandResult, error) {
					assert.Equal(t, 2, playerID)
					assert.Equal(t, "harbor", dest)
					return okResult("Departed for Harbor."), nil
				}
			},
			expectedStatus: http.StatusOK,
			wantSuccess:    true,
		},
		{
			name: "game rule failure is still 200",
			body: map[string]string{"destination": "MINE"},
			setupMock: func(m *MockGameService) {
				m.TravelFunc = func(ctx context.Context, sessionID string, playerID int, dest string) (*service.CommandResult, error) {
					return &service.CommandResult{Success: false, Message: "No route.", Error: engine.ErrNoRoute.Error()}, nil
				}
			},
			expectedStatus: http.StatusOK,
			wantSuccess:    false,
		},
		{
			name: "unknown player",
			body: map[string]interface{}{"player_id": 99, "destination": "MINE"},
			setupMock: func(m *MockGameService) {
				m.TravelFunc = func(ctx context.Context, sessionID string, playerID int, dest string) (*service.CommandResult, error) {
					return nil, fmt.Errorf("%w: 99", engine.ErrUnknownPlayer)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{name: "missing destination", body: map[string]string{}, expectedStatus: http.StatusBadRequest},
		{name: "invalid json", body: "{not json", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			w := serve(t, m, makeRequest("POST", "/api/sessions/a1b2/travel", tt.body))
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			if tt.expectedStatus == http.StatusOK {
				var result service.CommandResult
				parseResponse(t, w, &result)
				assert.Equal(t, tt.wantSuccess, result.Success)
			}
		})
	}
}

func TestTrade(t *testing.T) {
	var got struct {
		op     string
		good   world.Good
		amount int
	}
	m := &MockGameService{
		BuyFunc: func(ctx context.Context, sessionID string, playerID int, good world.Good, amount int) (*service.CommandResult, error) {
			got.op, got.good, got.amount = "buy", good, amount
			return okResult("Bought."), nil
		},
		SellFunc: func(ctx context.Context, sessionID string, playerID int, good world.Good, amount int) (*service.CommandResult, error) {
			got.op, got.good, got.amount = "sell", good, amount
			return okResult("Sold."), nil
		},
	}

	w := serve(t, m, makeRequest("POST", "/api/sessions/a1b2/buy", map[string]interface{}{"good": "food", "amount": 5}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "buy", got.op)
	assert.Equal(t, world.Food, got.good)
	assert.Equal(t, 5, got.amount)

	w = serve(t, m, makeRequest("POST", "/api/sessions/a1b2/sell", map[string]interface{}{"good": "LUX", "amount": 2}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sell", got.op)
	assert.Equal(t, world.Lux, got.good)

	w = serve(t, m, makeRequest("POST", "/api/sessions/a1b2/buy", map[string]interface{}{"good": "SPICE", "amount": 1}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "unknown good")
}

func TestCommand(t *testing.T) {
	m := &MockGameService{
		ExecFunc: func(ctx context.Context, sessionID string, playerID int, line string) (*service.CommandResult, error) {
			assert.Equal(t, "price MINE", line)
			assert.Equal(t, 0, playerID)
			return okResult("Prices at Mine: ORE 24 (stock 60)"), nil
		},
	}

	w := serve(t, m, makeRequest("POST", "/api/sessions/a1b2/command", map[string]string{"command": "price MINE"}))
	require.Equal(t, http.StatusOK, w.Code)

	var result service.CommandResult
	parseResponse(t, w, &result)
	assert.Contains(t, result.Message, "Prices at Mine")
}

func TestSpeed(t *testing.T) {
	var got float64 = -1
	m := &MockGameService{
		SetSpeedFunc: func(ctx context.Context, sessionID string, multiplier float64) (*service.CommandResult, error) {
			got = multiplier
			return okResult("Time speed set to 0x."), nil
		},
	}

	w := serve(t, m, makeRequest("POST", "/api/sessions/a1b2/speed", map[string]float64{"multiplier": 0}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, got, "zero pauses and must be passed through")

	w = serve(t, m, makeRequest("POST", "/api/sessions/a1b2/speed", map[string]string{}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTickAndAdvance(t *testing.T) {
	var ticks int
	var delta float64
	m := &MockGameService{
		TickFunc: func(ctx context.Context, sessionID string, n int) (*service.CommandResult, error) {
			ticks = n
			return okResult("ticked"), nil
		},
		AdvanceFunc: func(ctx context.Context, sessionID string, d float64) (*service.CommandResult, error) {
			delta = d
			return okResult("advanced"), nil
		},
	}

	w := serve(t, m, makeRequest("POST", "/api/sessions/a1b2/tick", map[string]int{"count": 3}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, ticks)

	w = serve(t, m, makeRequest("POST", "/api/sessions/a1b2/tick", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, ticks)

	ticks = -1
	w = serve(t, m, makeRequest("POST", "/api/sessions/a1b2/tick", `{"count": "three"`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, -1, ticks)

	w = serve(t, m, makeRequest("POST", "/api/sessions/a1b2/advance", map[string]float64{"delta": 2.5}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.5, delta)

	w = serve(t, m, makeRequest("POST", "/api/sessions/a1b2/advance", map[string]float64{"delta": -1}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOperationOnMissingSession(t *testing.T) {
	notFound := fmt.Errorf("%w: zzzz", service.ErrSessionNotFound)
	m := &MockGameService{
		ExecFunc: func(ctx context.Context, sessionID string, playerID int, line string) (*service.CommandResult, error) {
			return nil, notFound
		},
		GetStateFunc: func(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
			return nil, notFound
		},
	}

	w := serve(t, m, makeRequest("POST", "/api/sessions/zzzz/command", map[string]string{"command": "info"}))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(t, m, makeRequest("GET", "/api/sessions/zzzz/state", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Scenario Tests

func TestListScenarios(t *testing.T) {
	m := &MockGameService{
		ListScenariosFunc: func(ctx context.Context) ([]*service.ScenarioInfo, error) {
			return []*service.ScenarioInfo{{ScenarioID: "classic", Name: "classic", Locations: 7}}, nil
		},
	}

	w := serve(t, m, makeRequest("GET", "/api/scenarios", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var infos []service.ScenarioInfo
	parseResponse(t, w, &infos)
	require.Len(t, infos, 1)
	assert.Equal(t, 7, infos[0].Locations)
}

func TestGetScenario(t *testing.T) {
	m := &MockGameService{
		LoadScenarioFunc: func(ctx context.Context, name string) (*world.Scenario, error) {
			if name == "classic" {
				return world.Classic(), nil
			}
			return nil, fmt.Errorf("%w: %s", service.ErrScenarioNotFound, name)
		},
	}

	w := serve(t, m, makeRequest("GET", "/api/scenarios/classic.yaml", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var sc world.Scenario
	parseResponse(t, w, &sc)
	assert.Len(t, sc.Routes, 12)

	w = serve(t, m, makeRequest("GET", "/api/scenarios/atlantis", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateScenario(t *testing.T) {
	var saved string
	m := &MockGameService{
		SaveScenarioFunc: func(ctx context.Context, name string, scenario *world.Scenario) error {
			if err := scenario.Validate(); err != nil {
				return err
			}
			saved = name
			return nil
		},
	}

	sc := world.Classic()
	sc.Name = "my-map"
	w := serve(t, m, makeRequest("POST", "/api/scenarios", sc))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "my-map", saved)

	sc.Players = nil
	w = serve(t, m, makeRequest("POST", "/api/scenarios", sc))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "invalid scenario")

	w = serve(t, m, makeRequest("POST", "/api/scenarios", map[string]string{"description": "nameless"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScenarioErrorStatuses(t *testing.T) {
	m := &MockGameService{
		LoadScenarioFunc: func(ctx context.Context, name string) (*world.Scenario, error) {
			return nil, fmt.Errorf("%w: %q", config.ErrInvalidName, name)
		},
		SaveScenarioFunc: func(ctx context.Context, name string, scenario *world.Scenario) error {
			return config.ErrNoScenarioDir
		},
	}

	w := serve(t, m, makeRequest("GET", "/api/scenarios/..hidden", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	sc := world.Classic()
	sc.Name = "my-map"
	w = serve(t, m, makeRequest("POST", "/api/scenarios", sc))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, errorMessage(t, w), "no scenario directory")
}

func TestHealth(t *testing.T) {
	w := serve(t, &MockGameService{}, makeRequest("GET", "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

// WebSocket Tests

func TestWebSocket(t *testing.T) {
	m := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if !strings.EqualFold(sessionID, "a1b2") {
				return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			return &service.SessionInfo{ID: "a1b2", State: &engine.Snapshot{Tick: 9}}, nil
		},
	}
	server := httptest.NewServer(setupTestServer(t, m))
	defer server.Close()

	t.Run("missing session parameter", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/ws")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown session", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/ws?session=zzzz")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("initial snapshot", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?session=A1B2"
		conn, _, err := gws.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg websocket.Message
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "a1b2", msg.SessionID)
		assert.Equal(t, service.EventStateUpdate, msg.Event)
		require.NotNil(t, msg.Snapshot)
		assert.Equal(t, 9, msg.Snapshot.Tick)
	})
}
