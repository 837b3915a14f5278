// Package service provides the business logic layer for Caravan Wars.
//
// The service package implements:
//   - Multi-session game management
//   - Scenario loading and listing
//   - Travel, trade and console commands against a session
//   - Real-time loops that drive each session's scheduler
//   - Fan-out of state changes to observers such as the websocket hub
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ScenarioManager loads scenario definitions.
// Observer receives an Update whenever a session changes.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the simulation. Each session owns one engine.Simulation guarded by one lock;
// every operation, and every step of the session's real-time loop, runs
// under that lock. Expected game failures (no route, not enough gold) come
// back as a CommandResult with Success=false and an error notification, so
// transports can show the reason instead of failing the request.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	scenarioMgr := config.NewManager("scenarios")
//	gameService := service.NewGameService(sessionMgr, scenarioMgr,
//		service.WithAutoRun(100*time.Millisecond),
//		service.WithObserver(hub),
//	)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Travel(ctx, info.ID, 0, "HARBOR")
package service
