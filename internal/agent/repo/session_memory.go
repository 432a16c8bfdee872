package repo

import (
	"context"
	"sync"
	"time"

	"github.com/Chative-shop-assistant/server/internal/agent/model"
)

// MemorySessionRepository keeps sessions in process memory. Load and Save
// copy, so callers never share a Session value with the store. Sessions idle
// for longer than the ttl load fresh and are swept on Save; ttl <= 0 keeps
// them forever.
type MemorySessionRepository struct {
	mu        sync.RWMutex
	sessions  map[string]*model.Session
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*model.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *MemorySessionRepository) expired(s *model.Session, now time.Time) bool {
	return r.ttl > 0 && now.Sub(s.UpdatedAt) > r.ttl
}

func (r *MemorySessionRepository) Load(_ context.Context, sessionID string) (*model.Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[sessionID]
	r.mu.RUnlock()

	if !ok {
		return model.NewSession(sessionID), nil
	}
	if r.expired(s, r.now()) {
		r.mu.Lock()
		// re-check: a concurrent Save may have refreshed it
		if cur, ok := r.sessions[sessionID]; ok && r.expired(cur, r.now()) {
			delete(r.sessions, sessionID)
		}
		r.mu.Unlock()
		return model.NewSession(sessionID), nil
	}
	return s.Clone(), nil
}

func (r *MemorySessionRepository) Save(_ context.Context, session *model.Session) error {
	now := r.now()
	session.UpdatedAt = now.UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session.Clone()
	r.sweep(now)
	return nil
}

// sweep drops expired sessions at most once per ttl. Callers hold mu.
func (r *MemorySessionRepository) sweep(now time.Time) {
	if r.ttl <= 0 || now.Sub(r.lastSweep) < r.ttl {
		return
	}
	r.lastSweep = now
	for id, s := range r.sessions {
		if r.expired(s, now) {
			delete(r.sessions, id)
		}
	}
}

func (r *MemorySessionRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
	return nil
}

// Len reports how many sessions are held, expired or not.
func (r *MemorySessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

var _ model.SessionRepository = (*MemorySessionRepository)(nil)
