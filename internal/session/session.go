// Package session holds the signed-in user for one front-end client.
//
// A Store is the only writer of its Session; pages read snapshots.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"notes-frontend/internal/model"

	"github.com/rs/zerolog"
)

type Session struct {
	User    *model.User
	Loading bool
}

func (s Session) Authenticated() bool { return !s.Loading && s.User != nil }

// Profiler answers "who am I" against the backend.
type Profiler interface {
	Profile(ctx context.Context) (*model.User, error)
}

type Store struct {
	profiler Profiler
	log      zerolog.Logger

	mu     sync.RWMutex
	sess   Session
	loaded   chan struct{}
	once     sync.Once
	fetching atomic.Bool
}

func New(p Profiler, log zerolog.Logger) *Store {
	return &Store{
		profiler: p,
		log:      log,
		sess:     Session{Loading: true},
		loaded:   make(chan struct{}),
	}
}

// Fetch issues one profile request. Failure leaves the session unauthenticated;
// it is never reported to the caller.
func (s *Store) Fetch(ctx context.Context) Session {
	u, err := s.profiler.Profile(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("fetch user failed")
		u = nil
	}

	s.mu.Lock()
	s.sess = Session{User: u, Loading: false}
	out := s.sess
	s.mu.Unlock()

	s.once.Do(func() { close(s.loaded) })
	return out
}

// Refetch re-runs Fetch; used right after a successful login.
func (s *Store) Refetch(ctx context.Context) Session { return s.Fetch(ctx) }

// EnsureLoaded runs the initial fetch if none has completed yet. Concurrent
// callers share that one request and wait for it.
func (s *Store) EnsureLoaded(ctx context.Context) Session {
	select {
	case <-s.loaded:
		return s.Snapshot()
	default:
	}
	if s.fetching.CompareAndSwap(false, true) {
		return s.Fetch(ctx)
	}
	sess, err := s.Wait(ctx)
	if err != nil {
		return s.Snapshot()
	}
	return sess
}

// Wait blocks until the first fetch has finished or ctx is done.
func (s *Store) Wait(ctx context.Context) (Session, error) {
	select {
	case <-s.loaded:
		return s.Snapshot(), nil
	case <-ctx.Done():
		return Session{}, ctx.Err()
	}
}

func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.sess
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}

// Clear drops the user (logout). The session stays loaded.
func (s *Store) Clear() {
	s.mu.Lock()
	s.sess = Session{}
	s.mu.Unlock()
	s.once.Do(func() { close(s.loaded) })
}
