package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

type entry struct {
	mu    sync.Mutex
	state State
}

// Store keeps one State per session ID in a bounded LRU whose entries expire
// after a period without use. Each session's state is only touched while its
// own lock is held, so requests from one session run one at a time.
type Store struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, *entry]
}

// NewStore creates a store holding at most size sessions for ttl each.
func NewStore(size int, ttl time.Duration) *Store {
	if size <= 0 {
		size = 1000
	}
	return &Store{lru: expirable.NewLRU[string, *entry](size, nil, ttl)}
}

// NewID returns a fresh random session ID.
func NewID() string { return uuid.NewString() }

// ValidID reports whether id looks like an ID produced by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Store) entry(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lru.Get(id)
	if !ok {
		e = &entry{}
		s.lru.Add(id, e)
	}
	return e
}

// Update runs fn on the session's state and stores what it returns.
func (s *Store) Update(id string, fn func(State) State) State {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = fn(e.state)
	return e.state
}

// View runs fn with the session's current state without replacing it.
func (s *Store) View(id string, fn func(State)) {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.state)
}

// Len returns the number of live sessions.
func (s *Store) Len() int { return s.lru.Len() }
