// internal/session/manager.go
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/models"
)

// Authenticator is the remote auth collaborator.
type Authenticator interface {
	CheckSession(ctx context.Context) (*models.AuthStatus, error)
	Login(ctx context.Context, username, password string) (*models.LoginResult, error)
	Logout(ctx context.Context) error
}

type Manager struct {
	auth    Authenticator
	session *Session
	store   Persister
	log     *logrus.Entry
}

func NewManager(auth Authenticator, s *Session, store Persister, log *logrus.Logger) *Manager {
	if store == nil {
		store = &MemoryStore{}
	}
	return &Manager{
		auth:    auth,
		session: s,
		store:   store,
		log:     log.WithField("component", "session"),
	}
}

func (m *Manager) Session() *Session {
	return m.session
}

// Restore loads a persisted session into memory without contacting the server.
func (m *Manager) Restore() error {
	state, err := m.store.Load()
	if err != nil {
		return err
	}
	m.session.Set(state)
	return nil
}

// CheckSession validates the local token with the server and clears it when
// the server no longer accepts it.
func (m *Manager) CheckSession(ctx context.Context) (*models.AuthStatus, error) {
	if m.session.Token() == "" {
		return &models.AuthStatus{}, nil
	}

	status, err := m.auth.CheckSession(ctx)
	if err != nil {
		return nil, err
	}
	if !status.Authenticated {
		m.session.Clear()
		if err := m.store.Clear(); err != nil {
			m.log.WithError(err).Warn("Failed to clear stale session")
		}
		return status, nil
	}

	state := m.session.Snapshot()
	state.User = status.User
	m.session.Set(state)
	return status, nil
}

func (m *Manager) Login(ctx context.Context, username, password string) (*models.UserInfo, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}

	result, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	user := result.User
	m.session.Set(State{User: &user, Token: result.Token, ExpiresAt: result.ExpiresAt})
	if err := m.store.Save(m.session.Snapshot()); err != nil {
		m.log.WithError(err).Warn("Failed to persist session")
	}
	m.log.WithField("username", user.Username).Info("Logged in")
	return &user, nil
}

// Logout clears the local session even when the server call fails; the
// remote error is still returned.
func (m *Manager) Logout(ctx context.Context) error {
	var remoteErr error
	if m.session.Token() != "" {
		remoteErr = m.auth.Logout(ctx)
	}

	m.session.Clear()
	if err := m.store.Clear(); err != nil {
		m.log.WithError(err).Warn("Failed to remove session file")
	}
	return remoteErr
}
