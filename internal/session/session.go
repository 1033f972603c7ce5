// internal/session/session.go
package session

import (
	"sync"
	"time"

	"github.com/javajoker/sales-ledger/internal/models"
)

// State is the serializable part of a session.
type State struct {
	User      *models.UserInfo `json:"user,omitempty"`
	Token     string           `json:"token,omitempty"`
	ExpiresAt time.Time        `json:"expires_at,omitempty"`
}

// Session holds the authenticated user for one ledger client. It is safe
// for concurrent use and satisfies gateway.TokenSource.
type Session struct {
	mu    sync.RWMutex
	state State
	now   func() time.Time
}

func New() *Session {
	return &Session{now: time.Now}
}

// Token returns the bearer token, or "" when anonymous or expired.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.expiredLocked() {
		return ""
	}
	return s.state.Token
}

func (s *Session) User() (models.UserInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil || s.expiredLocked() {
		return models.UserInfo{}, false
	}
	return *s.state.User, true
}

func (s *Session) Authenticated() bool {
	_, ok := s.User()
	return ok
}

func (s *Session) Set(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state.User != nil {
		user := *state.User
		state.User = &user
	}
	s.state = state
}

func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state
	if state.User != nil {
		user := *state.User
		state.User = &user
	}
	return state
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
}

func (s *Session) expiredLocked() bool {
	return !s.state.ExpiresAt.IsZero() && !s.now().Before(s.state.ExpiresAt)
}
