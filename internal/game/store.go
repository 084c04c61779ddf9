package game

import (
	"context"
	"github.com/google/uuid"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"io"
	"log/slog"
	"sync"
	"time"
)

var ErrSessionNotFound = errors.NewSentinel("session not found")

// Store keeps the live sessions of the process in memory. Sessions nobody has touched for a while are evicted by
// RunEviction.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*storedSession
	newCase  func() *models.Case
	opts     []Option
	now      func() time.Time
	logger   *slog.Logger
}

type storedSession struct {
	s        *Session
	lastUsed time.Time
}

type StoreOption func(*Store)

// WithSessionOptions configures every session the store creates.
func WithSessionOptions(opts ...Option) StoreOption {
	return func(st *Store) {
		st.opts = append(st.opts, opts...)
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(st *Store) {
		st.now = now
	}
}

func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(st *Store) {
		st.logger = logger
	}
}

// NewStore returns a store whose sessions start with a case from newCase.
func NewStore(newCase func() *models.Case, opts ...StoreOption) *Store {
	st := &Store{
		sessions: map[string]*storedSession{},
		newCase:  newCase,
		now:      time.Now,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(st)
	}
	st.logger = st.logger.With("source", "game.Store")
	return st
}

// Create starts a session with a fresh id.
func (st *Store) Create() *Session {
	s := NewSession(uuid.NewString(), st.newCase(), st.opts...)
	st.mu.Lock()
	st.sessions[s.ID()] = &storedSession{s: s, lastUsed: st.now()}
	st.mu.Unlock()
	return s
}

// Get returns the session with id and marks it as used.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	stored, ok := st.sessions[id]
	if !ok {
		return nil, errors.Wrap(ErrSessionNotFound, "get session", slog.String("session_id", id))
	}
	stored.lastUsed = st.now()
	return stored.s, nil
}

// GetOrCreate returns the session with id, or a new one when the id is unknown, e.g. after a restart or eviction.
func (st *Store) GetOrCreate(id string) *Session {
	if s, err := st.Get(id); err == nil {
		return s
	}
	return st.Create()
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Evict drops the sessions last used before cutoff and returns how many were dropped.
func (st *Store) Evict(cutoff time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	var n int
	for id, stored := range st.sessions {
		if stored.lastUsed.Before(cutoff) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// RunEviction evicts sessions idle for longer than maxIdle every interval until ctx is done.
func (st *Store) RunEviction(ctx context.Context, interval time.Duration, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if n := st.Evict(st.now().Add(-maxIdle)); n > 0 {
			st.logger.LogAttrs(ctx, slog.LevelInfo, "evicted idle sessions",
				slog.Int("evicted", n), slog.Int("remaining", st.Len()))
		}
	}
}
