package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store owns all sessions for the process. Sessions are created on first
// use and, when a TTL is configured, evicted after being idle that long.
// A TTL of zero keeps sessions for the process lifetime.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	logger   *zap.Logger
	done     chan struct{}
	wg       sync.WaitGroup
}

type entry struct {
	// mu serializes turns: at most one in-flight turn per session.
	mu         sync.Mutex
	session    *Session
	lastActive time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

func NewStore(ttl time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		logger:   zap.NewNop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if ttl > 0 {
		s.wg.Add(1)
		go s.evictLoop()
	}
	return s
}

// Acquire returns the session for id, creating it (and minting an id when
// the caller passed none) on first use. The session is locked for the
// caller's exclusive use until release is called; concurrent turns for the
// same session wait here.
func (s *Store) Acquire(id string) (*Session, func()) {
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	e, ok := s.sessions[id]
	if !ok {
		e = &entry{session: &Session{ID: id}}
		s.sessions[id] = e
		s.logger.Debug("session created", zap.String("session_id", id))
	}
	e.lastActive = time.Now()
	s.mu.Unlock()

	e.mu.Lock()
	return e.session, e.mu.Unlock
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) evictLoop() {
	defer s.wg.Done()
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

func (s *Store) evictIdle() {
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.sessions {
		if e.lastActive.After(cutoff) {
			continue
		}
		// Skip sessions with an in-flight turn.
		if !e.mu.TryLock() {
			continue
		}
		e.mu.Unlock()
		delete(s.sessions, id)
		s.logger.Debug("session evicted", zap.String("session_id", id))
	}
}

// Close stops the eviction loop.
func (s *Store) Close() {
	close(s.done)
	s.wg.Wait()
}
