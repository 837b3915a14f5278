package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// NotificationKind classifies chronicle entries.
type NotificationKind string

const (
	NoteTravelStarted NotificationKind = "travel_started"
	NoteArrived       NotificationKind = "arrived"
	NoteBought        NotificationKind = "bought"
	NoteSold          NotificationKind = "sold"
	NoteError         NotificationKind = "error"
	NoteInfo          NotificationKind = "info"
)

// chronicleLimit bounds how many past notifications are retained.
const chronicleLimit = 200

// Notification is a human-readable event for the chronicle display.
type Notification struct {
	ID       string           `json:"id"`
	Kind     NotificationKind `json:"kind"`
	PlayerID int              `json:"player_id,omitempty"`
	Message  string           `json:"message"`
	Tick     int              `json:"tick"`
}

// Listener receives each notification as it is emitted.
type Listener func(Notification)

// OnNotify registers a listener. Listeners run synchronously on the
// simulation's thread and must not call back into it.
func (s *Simulation) OnNotify(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Drain returns the notifications emitted since the last call and clears the queue.
func (s *Simulation) Drain() []Notification {
	out := s.pending
	s.pending = nil
	return out
}

// Chronicle returns up to limit of the most recent notifications, oldest
// first. A limit of zero or less returns everything retained.
func (s *Simulation) Chronicle(limit int) []Notification {
	start := 0
	if limit > 0 && len(s.chronicle) > limit {
		start = len(s.chronicle) - limit
	}
	out := make([]Notification, len(s.chronicle)-start)
	copy(out, s.chronicle[start:])
	return out
}

func (s *Simulation) notify(kind NotificationKind, playerID int, format string, args ...any) {
	n := Notification{
		ID:       uuid.NewString(),
		Kind:     kind,
		PlayerID: playerID,
		Message:  fmt.Sprintf(format, args...),
		Tick:     s.ticks,
	}
	s.pending = trimNotes(append(s.pending, n))
	s.chronicle = trimNotes(append(s.chronicle, n))
	for _, l := range s.listeners {
		l(n)
	}
}

func trimNotes(notes []Notification) []Notification {
	over := len(notes) - chronicleLimit
	if over <= 0 {
		return notes
	}
	return append(notes[:0:0], notes[over:]...)
}

// fail emits an error notification and returns err unchanged.
func (s *Simulation) fail(playerID int, err error, format string, args ...any) error {
	s.notify(NoteError, playerID, format, args...)
	return err
}
