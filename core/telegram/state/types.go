package state

import tele "gopkg.in/telebot.v4"

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Draft accumulates product fields across intake steps until the final step
// commits them into a catalog entry. It is never persisted.
type Draft struct {
	Name        string
	Description string
	Price       int
	Sizes       []string
	Colors      []string
}

// Session stores the conversation state and the in-progress draft for a user.
type Session struct {
	State State
	Draft Draft
}

// Manager orchestrates user sessions and FSM state transitions,
// keyed by the platform sender identity.
type Manager interface {
	// Begin creates a fresh session in the given state, discarding any
	// previous draft for the user.
	Begin(userID int64, st State)
	// SetState moves an existing session to the given state.
	SetState(userID int64, st State)
	// GetState returns the current state, or StateIdle without a session.
	GetState(userID int64) State
	// UpdateDraft mutates the draft of an active session in place.
	UpdateDraft(userID int64, fn func(*Draft))
	// Draft returns a copy of the user's current draft.
	Draft(userID int64) Draft
	// InProgress reports whether the user has an active conversation.
	InProgress(userID int64) bool
	// Clear removes the session and its draft entirely.
	Clear(userID int64)

	// HandleCurrent executes the handler registered for the user's current state.
	HandleCurrent(c tele.Context) error
}
