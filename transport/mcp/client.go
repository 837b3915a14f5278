package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/caravan-wars/game/engine"
	"github.com/wricardo/caravan-wars/game/service"
	"github.com/wricardo/caravan-wars/game/world"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Caravan Wars",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Caravan Wars - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Grow your gold by buying goods where they are plentiful and selling them
where they are scarce. Caravans travel along one-way routes between
locations; prices follow stock and demand.

AVAILABLE TOOLS:
- create_session / list_sessions / list_scenarios: manage games
- game_state: players, gold, cargo and journeys
- world_map: locations and the routes leaving each one
- prices: the cached price table, optionally for one location
- travel: start a journey (requires intent explanation)
- buy / sell: trade at your current location
- command: run a console line (help, info, price, move, buy, sell, speed)
- set_speed: change the time multiplier (0 pauses)
- chronicle: recent events
- game_instructions: full rules

NOTE: The 'intent' parameter on travel serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func playerProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Player ID (optional, defaults to the session's local player)",
	}
}

func tradeSchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": sessionProp(),
			"player_id":  playerProp(),
			"good": map[string]interface{}{
				"type":        "string",
				"enum":        goodCodes(),
				"description": "Good to trade",
			},
			"amount": map[string]interface{}{
				"type":        "integer",
				"description": "Number of units",
			},
		},
		Required: []string{"session_id", "good", "amount"},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional scenario selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scenario": map[string]interface{}{
					"type":        "string",
					"description": "Scenario to use (optional, defaults to classic)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_scenarios",
		Description: "List available scenarios",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListScenarios)

	// Game state
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current state: tick, speed and every player's location, gold and cargo",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "world_map",
		Description: "List locations and the one-way routes leaving each, with travel ticks and risk",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleWorldMap)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "prices",
		Description: "Get cached prices and stock, for all locations or one",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"location": map[string]interface{}{
					"type":        "string",
					"description": "Location code (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handlePrices)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "chronicle",
		Description: "Get recent game events, oldest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of entries (default 20)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleChronicle)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "travel",
		Description: "Start a journey from the player's location to a directly connected destination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"player_id":  playerProp(),
				"destination": map[string]interface{}{
					"type":        "string",
					"description": "Destination location code",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this journey (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "destination"},
		},
	}, c.handleTravel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "buy",
		Description: "Buy goods at the player's current location",
		InputSchema: tradeSchema(),
	}, c.handleTrade("buy"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "sell",
		Description: "Sell goods at the player's current location",
		InputSchema: tradeSchema(),
	}, c.handleTrade("sell"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "command",
		Description: "Run one console command line, e.g. 'info', 'price MINE', 'move HARBOR', 'buy FOOD 5'",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"player_id":  playerProp(),
				"command": map[string]interface{}{
					"type":        "string",
					"description": "Command line",
				},
			},
			Required: []string{"session_id", "command"},
		},
	}, c.handleCommand)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_speed",
		Description: "Set the time multiplier: 0 pauses, 1 is normal, 2 is fast",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"multiplier": map[string]interface{}{
					"type":        "number",
					"description": "Time multiplier, zero or positive",
				},
			},
			Required: []string{"session_id", "multiplier"},
		},
	}, c.handleSetSpeed)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, rest string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + rest
}

// Argument helpers. JSON numbers arrive as float64.

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func floatArg(args map[string]interface{}, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]string{}
	if scenario := stringArg(args, "scenario"); scenario != "" {
		body["scenario"] = scenario
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nScenario: %s\n", session.ID, session.Scenario)
	if session.State != nil {
		result += "\n" + formatSnapshot(session.State)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		tick := 0
		if s.State != nil {
			tick = s.State.Tick
		}
		fmt.Fprintf(&b, "- %s (Scenario: %s, Tick: %d, Created: %s)\n",
			s.ID, s.Scenario, tick, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListScenarios(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var scenarios []service.ScenarioInfo
	if err := c.apiCall(ctx, "GET", "/api/scenarios", nil, &scenarios); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Scenarios:\n\n")
	for _, sc := range scenarios {
		fmt.Fprintf(&b, "• %s\n  %s\n  Locations: %d, Routes: %d, Players: %d\n\n",
			sc.ScenarioID, sc.Description, sc.Locations, sc.Routes, sc.Players)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var snap engine.Snapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

func (c *Client) handleWorldMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var info service.WorldInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/world"), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatWorld(&info)), nil
}

func (c *Client) handlePrices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path := sessionPath(stringArg(args, "session_id"), "/prices")
	if location := stringArg(args, "location"); location != "" {
		path += "?location=" + url.QueryEscape(location)
	}

	var info service.PriceInfo
	if err := c.apiCall(ctx, "GET", path, nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPrices(&info)), nil
}

func (c *Client) handleChronicle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path := sessionPath(stringArg(args, "session_id"), "/chronicle")
	if limit, ok := intArg(args, "limit"); ok && limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}

	var response struct {
		Entries []engine.Notification `json:"entries"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatChronicle(response.Entries)), nil
}

func (c *Client) handleTravel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	// intent is for the caller's benefit only.
	body := map[string]interface{}{
		"destination": stringArg(args, "destination"),
	}
	if pid, ok := intArg(args, "player_id"); ok {
		body["player_id"] = pid
	}

	return c.postCommand(ctx, stringArg(args, "session_id"), "/travel", body)
}

func (c *Client) handleTrade(op string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := arguments(request)

		amount, _ := intArg(args, "amount")
		body := map[string]interface{}{
			"good":   stringArg(args, "good"),
			"amount": amount,
		}
		if pid, ok := intArg(args, "player_id"); ok {
			body["player_id"] = pid
		}

		return c.postCommand(ctx, stringArg(args, "session_id"), "/"+op, body)
	}
}

func (c *Client) handleCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{
		"command": stringArg(args, "command"),
	}
	if pid, ok := intArg(args, "player_id"); ok {
		body["player_id"] = pid
	}

	return c.postCommand(ctx, stringArg(args, "session_id"), "/command", body)
}

func (c *Client) handleSetSpeed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	multiplier, ok := floatArg(args, "multiplier")
	if !ok {
		return mcp.NewToolResultError("multiplier is required"), nil
	}

	return c.postCommand(ctx, stringArg(args, "session_id"), "/speed", map[string]interface{}{
		"multiplier": multiplier,
	})
}

func (c *Client) postCommand(ctx context.Context, sessionID, op string, body interface{}) (*mcp.CallToolResult, error) {
	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, op), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions()), nil
}

func instructions() string {
	var b strings.Builder
	b.WriteString(`Caravan Wars - Complete Instructions

GAME OBJECTIVE:
Trade goods between locations to grow your gold.

GOODS (base price):
`)
	for _, g := range world.Goods() {
		info := g.Info()
		fmt.Fprintf(&b, "• %s - %s (%d)\n", info.Code, info.Name, info.BasePrice)
	}

	fmt.Fprintf(&b, `
PRICES:
• A location's price for a good is base × demand × (1.5 - stock/200), with
  stock counted up to 100, rounded, and kept between %.0f%% and %.0f%% of base.
• Prices are recomputed every %d ticks, not after every trade, so a large
  purchase does not move the price until the next recomputation.

TRAVEL:
• Routes are one-way. A road usable both ways is listed twice.
• Journey time is route ticks × %d divided by the caravan's speed.
`, engine.MinPriceFactor*100, engine.MaxPriceFactor*100, engine.EconomyTickInterval, engine.RouteTickScale)
	b.WriteString(`• Caravan speed is the slowest unit: hand_cart 1.0, horse_cart 1.5, guard 1.2.
• While travelling you cannot trade or start another journey.

CARGO:
• Capacity is the sum of your units' capacity (hand_cart 20, horse_cart 40).
• Buying is refused without enough gold, stock or free capacity.

CONSOLE COMMANDS (command tool):
`)
	b.WriteString(engine.HelpText)
	b.WriteString(`

STRATEGY TIPS:
• Check prices everywhere before committing: buy low where stock is high.
• Mind travel time: prices drift while you are on the road.
• Use set_speed 0 to pause while you plan.

Good luck on the road, trader!`)
	return b.String()
}

// Formatting helpers

func goodCodes() []string {
	codes := make([]string, 0, len(world.Goods()))
	for _, g := range world.Goods() {
		codes = append(codes, g.String())
	}
	return codes
}

func formatSnapshot(snap *engine.Snapshot) string {
	var b strings.Builder

	status := fmt.Sprintf("%gx", snap.TimeMultiplier)
	if snap.Paused {
		status = "paused"
	}
	fmt.Fprintf(&b, "Tick: %d | Speed: %s | Scenario: %s\n\n", snap.Tick, status, snap.Scenario)

	for _, p := range snap.Players {
		marker := " "
		if p.ID == snap.LocalPlayer {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s (#%d, %s)\n", marker, p.Name, p.ID, p.Kind)
		if p.Moving {
			fmt.Fprintf(&b, "    Travelling %s -> %s (%.0f%%, %.1f left)\n", p.From, p.To, p.Progress*100, p.ETALeft)
		} else {
			fmt.Fprintf(&b, "    At %s\n", p.Location)
		}
		fmt.Fprintf(&b, "    Gold: %d | Cargo: %d/%d %s | Caravans: %d\n",
			p.Gold, p.CargoUsed, p.Capacity, formatGoods(p.Cargo), len(p.Units))
	}

	return b.String()
}

func formatGoods(amounts map[world.Good]int) string {
	var parts []string
	for _, g := range world.Goods() {
		if n := amounts[g]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", g, n))
		}
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatWorld(info *service.WorldInfo) string {
	var b strings.Builder
	b.WriteString("Locations:\n\n")
	for _, loc := range info.Locations {
		fmt.Fprintf(&b, "• %s - %s\n", loc.Code, loc.Name)
		if len(loc.Routes) == 0 {
			b.WriteString("    (no outgoing routes)\n")
		}
		for _, r := range loc.Routes {
			fmt.Fprintf(&b, "    -> %s: %d ticks, risk %.0f%%\n", r.To, r.Ticks, r.Risk*100)
		}
	}
	return b.String()
}

func formatPrices(info *service.PriceInfo) string {
	codes := make([]string, 0, len(info.Prices))
	for code := range info.Prices {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var b strings.Builder
	fmt.Fprintf(&b, "Prices at tick %d:\n\n", info.Tick)
	for _, code := range codes {
		fmt.Fprintf(&b, "%s:", code)
		for _, g := range world.Goods() {
			fmt.Fprintf(&b, " %s %d (stock %d)", g, info.Prices[code][g], info.Stock[code][g])
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatChronicle(notes []engine.Notification) string {
	if len(notes) == 0 {
		return "No events yet."
	}
	var b strings.Builder
	b.WriteString("Recent events:\n\n")
	for _, n := range notes {
		fmt.Fprintf(&b, "[tick %d] %s\n", n.Tick, n.Message)
	}
	return b.String()
}

func formatCommandResult(result *service.CommandResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ %s\n", result.Message)
	} else {
		fmt.Fprintf(&b, "✗ %s\n", result.Message)
	}
	for _, e := range result.Events {
		if e.Message != result.Message {
			fmt.Fprintf(&b, "  - %s\n", e.Message)
		}
	}
	if result.State != nil {
		b.WriteString("\n" + formatSnapshot(result.State))
	}
	return b.String()
}
