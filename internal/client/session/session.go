// Package session keeps the authentication state of the running client and
// notifies listeners when it changes.
package session

import (
	"sync"

	"github.com/dmitrijs2005/giftkeeper/internal/client/events"
)

// State is published on every sign-in and sign-out.
type State struct {
	Authenticated bool
	UserID        string
	Username      string
	// Offline is set when the session was opened from cached credentials
	// without reaching the backend.
	Offline bool
}

type Session struct {
	mu    sync.RWMutex
	state State
	bus   *events.Bus[State]
}

func New() *Session {
	return &Session{bus: events.NewBus[State]()}
}

// UserID returns the current user and whether anybody is signed in.
func (s *Session) UserID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.UserID, s.state.Authenticated
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Authenticated
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) SignIn(userID, username string, offline bool) {
	s.set(State{Authenticated: true, UserID: userID, Username: username, Offline: offline})
}

func (s *Session) SignOut() {
	s.set(State{})
}

func (s *Session) set(next State) {
	s.mu.Lock()
	changed := s.state != next
	s.state = next
	s.mu.Unlock()

	if changed {
		s.bus.Publish(next)
	}
}

// Subscribe delivers state transitions. Repeated sign-ins with identical
// state are not re-published.
func (s *Session) Subscribe() (<-chan State, func()) {
	return s.bus.Subscribe(4)
}
