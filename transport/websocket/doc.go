// Package websocket pushes live Caravan Wars session state to renderers.
//
// A Hub is registered with the game service as a service.Observer. Every
// state change of a session (a command, a coarse tick, a frame in which a
// caravan moved) becomes one JSON frame for each client subscribed to
// that session:
//
//	{"session_id": "a1b2", "event": "state_update",
//	 "snapshot": {...}, "events": [{"kind": "arrived", ...}]}
//
// Lifecycle frames use the events "session_created" and "session_deleted".
// Clients of a deleted session receive the final frame and are then
// disconnected.
//
// Clients subscribe with the session query parameter (/ws?session=a1b2)
// and receive the current snapshot as their first frame. The socket is
// one-way: commands go through the REST API.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	svc := service.NewGameService(sessions, scenarios, service.WithObserver(hub))
//
// Concurrency:
//
// Client bookkeeping happens only on the Run goroutine. SessionUpdated
// never blocks the caller; when the queue is full the update is dropped.
package websocket
