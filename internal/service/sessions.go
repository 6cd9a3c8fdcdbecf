package service

import (
	"context"
	"sync"
	"time"

	"pmd-directory/internal/pipeline"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// SessionRegistry 管理每个查看者的搜索会话，空闲超时后回收
type SessionRegistry struct {
	clock  clockwork.Clock
	idle   time.Duration
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*pipeline.Session
}

func NewSessionRegistry(clock clockwork.Clock, idle time.Duration, logger *zap.Logger) *SessionRegistry {
	return &SessionRegistry{
		clock:    clock,
		idle:     idle,
		logger:   logger,
		sessions: make(map[string]*pipeline.Session),
	}
}

// Create starts a session under a fresh id.
func (r *SessionRegistry) Create(opts pipeline.SessionOptions) *pipeline.Session {
	if opts.Clock == nil {
		opts.Clock = r.clock
	}
	if opts.Logger == nil {
		opts.Logger = r.logger
	}
	s := pipeline.NewSession(uuid.NewString(), opts)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s
}

// Get returns a live session and marks it active.
func (r *SessionRegistry) Get(id string) (*pipeline.Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.Touch()
	return s, nil
}

// Delete closes and forgets a session.
func (r *SessionRegistry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Reap closes every session idle for longer than the timeout.
func (r *SessionRegistry) Reap() int {
	cutoff := r.clock.Now().Add(-r.idle)

	r.mu.Lock()
	var stale []*pipeline.Session
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		r.logger.Info("Reaped idle sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// StartReaper reaps every interval until ctx is done.
func (r *SessionRegistry) StartReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.Reap()
		}
	}
}

// CloseAll closes every session.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*pipeline.Session)
	r.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
