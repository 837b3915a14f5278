// Package api provides the HTTP REST API for Caravan Wars.
//
// Endpoints:
//
// Scenarios:
//   - GET /api/scenarios - List available scenarios
//   - GET /api/scenarios/{name} - Get a scenario document
//   - POST /api/scenarios - Validate and save a scenario (JSON body)
//
// Session Management:
//   - POST /api/sessions - Create a session {"scenario": "classic"}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session with its snapshot
//   - DELETE /api/sessions/{id} - Stop and remove a session
//
// Game State:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - GET /api/sessions/{id}/world - Map, goods and unit catalog
//   - GET /api/sessions/{id}/prices?location=CODE - Cached price table
//   - GET /api/sessions/{id}/chronicle?limit=N - Recent notifications
//
// Game Operations (POST, JSON body):
//   - /travel {"player_id": 1, "destination": "HARBOR"}
//   - /buy and /sell {"player_id": 1, "good": "FOOD", "amount": 5}
//   - /command {"command": "price MINE"}
//   - /speed {"multiplier": 2}
//   - /tick {"count": 3}
//   - /advance {"delta": 1.5}
//
// player_id may be omitted to act as the session's local player.
//
// Operations answer with a CommandResult. A move the rules forbid (no
// route, not enough gold, already travelling) is still HTTP 200 with
// "success": false and the reason in "message" and "error".
//
// WebSocket:
//   - GET /ws?session={id} - Live state feed, see package websocket
//
// Error Handling:
//
// Other errors are returned as JSON with an HTTP status:
//
//	{"error": "session not found: a1b2"}
//
// 404 for unknown sessions, scenarios and players; 400 for malformed
// bodies, unknown goods or locations and invalid scenarios.
package api
