// Package session provides session management for Caravan Wars.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session it creates owns an independent engine.Simulation
// built from a scenario, plus creation and last access times.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive. Generated IDs come from crypto/rand and are retried
// until unused.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", world.Classic())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sessionID)
//
// Cleanup:
//
// Sessions live in memory only and are never saved. CleanupExpiredSessions
// stops the real-time loop of each idle session before dropping it.
package session
