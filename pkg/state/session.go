package state

import (
	"time"

	"github.com/google/uuid"
)

// Phase is the position of a session in the game lifecycle.
type Phase string

const (
	PhaseIdle    Phase = "idle"    // No graph loaded or game reset
	PhasePlaying Phase = "playing" // Traversing the graph
	PhaseEnded   Phase = "ended"   // Terminal node or dangling target reached
)

// Outcome is how an ended session finished.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

// Session is the traversal state of a single game. It is owned by one
// engine and is not safe for concurrent use on its own.
type Session struct {
	ID            uuid.UUID `json:"id"`                        // Assigned each time a game starts
	Phase         Phase     `json:"phase"`                     // idle, playing or ended
	CurrentNodeID string    `json:"current_node_id,omitempty"` // Empty while idle
	Pending       bool      `json:"pending"`                   // A selection is being resolved
	Outcome       Outcome   `json:"outcome,omitempty"`         // Set only once ended
	History       []string  `json:"history,omitempty"`         // Node ids visited, start first
	LastError     string    `json:"last_error,omitempty"`      // Last recoverable failure
	StartedAt     time.Time `json:"started_at,omitzero"`
	EndedAt       time.Time `json:"ended_at,omitzero"`
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{
		Phase:   PhaseIdle,
		History: make([]string, 0),
	}
}

// Begin starts a new game at startNodeID.
func (s *Session) Begin(startNodeID string) {
	s.ID = uuid.New()
	s.Phase = PhasePlaying
	s.CurrentNodeID = startNodeID
	s.Pending = false
	s.Outcome = OutcomeNone
	s.History = []string{startNodeID}
	s.LastError = ""
	s.StartedAt = time.Now()
	s.EndedAt = time.Time{}
}

// MoveTo makes nodeID the current node and records it in the history.
func (s *Session) MoveTo(nodeID string) {
	s.CurrentNodeID = nodeID
	s.History = append(s.History, nodeID)
}

// End finishes the game with outcome.
func (s *Session) End(outcome Outcome) {
	s.Phase = PhaseEnded
	s.Outcome = outcome
	s.EndedAt = time.Now()
}

// Reset returns the session to idle and forgets the current game.
func (s *Session) Reset() {
	*s = Session{
		Phase:   PhaseIdle,
		History: make([]string, 0),
	}
}

// Fail resets the session and records msg as the last error.
func (s *Session) Fail(msg string) {
	s.Reset()
	s.LastError = msg
}

// IsPlaying reports whether options can be selected.
func (s Session) IsPlaying() bool {
	return s.Phase == PhasePlaying
}

// Turns returns the number of moves made since the start node.
func (s Session) Turns() int {
	if len(s.History) == 0 {
		return 0
	}
	return len(s.History) - 1
}

// Snapshot returns a copy that shares no memory with s.
func (s *Session) Snapshot() Session {
	cp := *s
	cp.History = append([]string(nil), s.History...)
	return cp
}
