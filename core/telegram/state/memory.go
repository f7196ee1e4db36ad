package state

import (
	"sync"

	"github.com/xomakone3/storebot/core/logger"
	tghelpers "github.com/xomakone3/storebot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	handlers map[State]tele.HandlerFunc
}

// NewMemoryManager constructs an in-memory Manager implementation.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]*Session),
		handlers: make(map[State]tele.HandlerFunc),
	}
}

// RegisterHandler associates a state with its handler. Registration happens
// during wiring, before the bot starts receiving updates.
func RegisterHandler(m Manager, st State, h tele.HandlerFunc) {
	mm, ok := m.(*memoryManager)
	if !ok || h == nil {
		return
	}
	mm.handlers[st] = h
}

// Begin creates a fresh session in the given state, discarding any previous draft.
func (m *memoryManager) Begin(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = &Session{State: st}
}

// SetState moves an existing session to the given state, creating one if necessary.
func (m *memoryManager) SetState(userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok {
		sess = &Session{}
		m.sessions[userID] = sess
	}
	sess.State = st
}

// GetState returns the current FSM state of a user, or StateIdle if none exists.
func (m *memoryManager) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok {
		return sess.State
	}
	return StateIdle
}

// UpdateDraft mutates the draft of an active session in place.
func (m *memoryManager) UpdateDraft(userID int64, fn func(*Draft)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok {
		return
	}
	fn(&sess.Draft)
}

// Draft returns a copy of the user's current draft.
func (m *memoryManager) Draft(userID int64) Draft {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok {
		return sess.Draft
	}
	return Draft{}
}

// InProgress reports whether the user currently has an active FSM state.
func (m *memoryManager) InProgress(userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[userID]
	return ok && sess.State != StateIdle
}

// Clear removes the entire session for a user.
func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// HandleCurrent executes the handler function registered for the user's current state, if any.
func (m *memoryManager) HandleCurrent(c tele.Context) error {
	userID := c.Sender().ID
	current := m.GetState(userID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.dispatch",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
	)

	if handler, ok := m.handlers[current]; ok {
		return handler(c)
	}
	return nil
}
