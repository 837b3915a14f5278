// Package mcp exposes Caravan Wars to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a request to the
// REST API and the JSON answer is rendered as readable text.
//
// MCP Tools:
//   - create_session, list_sessions, list_scenarios
//   - game_state: tick, speed and every player's position, gold and cargo
//   - world_map: locations and their outgoing routes
//   - prices: cached price table, optionally for one location
//   - chronicle: recent notifications
//   - travel, buy, sell: game operations for a player
//   - command: one console line, as typed by a human player
//   - set_speed: time multiplier (0 pauses)
//   - game_instructions: the rules
//
// A rule violation (no route, not enough gold) is a normal tool result
// marked with ✗. Transport failures and unknown sessions are tool errors.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
