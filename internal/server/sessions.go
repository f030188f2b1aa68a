// Package server exposes filter-state sessions over HTTP so remote
// renderers can push user input and read back the derived view.
package server

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conduit-lang/apidocs/internal/catalog"
	"github.com/conduit-lang/apidocs/internal/fragment"
	"github.com/conduit-lang/apidocs/internal/state"
)

// ErrSessionNotFound is returned for unknown session ids
var ErrSessionNotFound = errors.New("session not found")

// Session is one browsing session with its own engine and location
type Session struct {
	ID       string
	Engine   *state.Engine
	Location *fragment.MemoryLocation

	hub         *hub
	unsubscribe func()
}

// Sessions is the registry of live sessions
type Sessions struct {
	loader catalog.Loader
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessions creates an empty registry whose engines load through loader
func NewSessions(loader catalog.Loader, logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{
		loader:   loader,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create starts a session from a fragment and replays it. The session is
// registered even when the catalog load fails; the load error is returned
// alongside it.
func (s *Sessions) Create(ctx context.Context, initial string) (*Session, error) {
	id := uuid.NewString()
	logger := s.logger.With(zap.String("session", id))

	loc := fragment.NewMemoryLocation(initial)
	engine := state.New(s.loader, loc, state.WithLogger(logger))

	sess := &Session{
		ID:       id,
		Engine:   engine,
		Location: loc,
		hub:      newHub(logger),
	}
	// Read the snapshot under the hub lock so clients end on the newest state
	sess.unsubscribe = engine.Subscribe(func(state.State) {
		sess.hub.broadcast(sess.message)
	})

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	logger.Info("session created", zap.String("fragment", initial))
	return sess, engine.Init(ctx)
}

// Get returns a session by id
func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Delete closes and removes a session
func (s *Sessions) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	sess.close()
	s.logger.Info("session deleted", zap.String("session", id))
	return nil
}

// Len returns the number of live sessions
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CloseAll closes every session
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.close()
	}
}

// View returns the JSON projection of the session's current state
func (sess *Session) View() ViewResponse {
	return newViewResponse(sess.ID, sess.Engine.State())
}

func (sess *Session) message() *StateMessage {
	return newStateMessage(sess, sess.Engine.State())
}

func (sess *Session) close() {
	sess.unsubscribe()
	sess.hub.closeAll()
}
