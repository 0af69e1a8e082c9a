package domain

import (
	"fmt"
	"sync"
	"time"
)

// ConnState is the lifecycle state of one connection.
type ConnState int

const (
	StateConnecting ConnState = iota
	StateAuthenticating
	StateRegistered
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateRegistered:
		return "registered"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var transitions = map[ConnState][]ConnState{
	StateConnecting:     {StateAuthenticating, StateClosed},
	StateAuthenticating: {StateRegistered, StateClosed},
	StateRegistered:     {StateClosed},
}

// InvalidTransitionError is returned for a transition the state machine
// does not allow.
type InvalidTransitionError struct {
	From, To ConnState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid connection transition %s -> %s", e.From, e.To)
}

// Session represents a client's WebSocket session.
type Session struct {
	ID           string
	CreatedAt    time.Time
	LastActiveAt time.Time

	userID string
	state  ConnState
	mu     sync.RWMutex
}

// NewSession creates a session in the Connecting state.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
		state:        StateConnecting,
	}
}

// Transition moves the session to the given state.
func (s *Session) Transition(to ConnState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(to)
}

func (s *Session) transitionLocked(to ConnState) error {
	for _, allowed := range transitions[s.state] {
		if allowed == to {
			s.state = to
			s.LastActiveAt = time.Now()
			return nil
		}
	}
	return &InvalidTransitionError{From: s.state, To: to}
}

// Register binds the verified user id and moves Authenticating -> Registered.
func (s *Session) Register(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transitionLocked(StateRegistered); err != nil {
		return err
	}
	s.userID = userID
	return nil
}

// Close moves the session to Closed and reports whether this call did it.
func (s *Session) Close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(StateClosed) == nil
}

// State returns the current lifecycle state.
func (s *Session) State() ConnState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsRegistered returns whether the session has a verified identity and is open.
func (s *Session) IsRegistered() bool {
	return s.State() == StateRegistered
}

// GetUserID returns the verified user id, empty before registration.
func (s *Session) GetUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// UpdateActivity updates the last active timestamp.
func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActiveAt = time.Now()
}
