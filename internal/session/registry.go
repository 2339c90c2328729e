package session

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry is a concurrency-safe map of live sessions keyed by ID.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	logger   *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger for registry events.
func (r *Registry) SetLogger(logger *zap.Logger) {
	r.logger = logger
}

// Add registers a session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	total := len(r.sessions)
	r.mu.Unlock()

	r.logger.Info("session created",
		zap.String("session_id", s.ID.String()),
		zap.String("filename", s.Filename),
		zap.Int("records", s.RecordCount()),
		zap.Int("total_sessions", total))
}

// Get looks up a session by ID.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Delete removes a session and releases its store. It reports whether the
// session existed.
func (r *Registry) Delete(id uuid.UUID) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.sessions, id)
	total := len(r.sessions)
	r.mu.Unlock()

	if err := s.Close(); err != nil {
		r.logger.Warn("closing session store",
			zap.String("session_id", id.String()),
			zap.Error(err))
	}
	r.logger.Info("session deleted",
		zap.String("session_id", id.String()),
		zap.Int("total_sessions", total))
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll releases every session. Used during server shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if err := s.Close(); err != nil {
			r.logger.Warn("closing session store",
				zap.String("session_id", id.String()),
				zap.Error(err))
		}
	}
	r.sessions = make(map[uuid.UUID]*Session)
}
