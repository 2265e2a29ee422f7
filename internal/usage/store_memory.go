package usage

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]Usage
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]Usage)}
}

func (s *memoryStore) Get(ctx context.Context, clientID string, limit int, now time.Time) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current(clientID, limit, now), nil
}

func (s *memoryStore) Consume(ctx context.Context, clientID string, limit int, now time.Time) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.current(clientID, limit, now)
	if u.Used+1 > u.Limit {
		return u, ErrLimitReached
	}
	u.Used++
	s.data[clientID] = u
	return u, nil
}

// current must be called with mu held.
func (s *memoryStore) current(clientID string, limit int, now time.Time) Usage {
	u, ok := s.data[clientID]
	if !ok || expired(u, now) {
		u = freshUsage(clientID, limit, now)
		s.data[clientID] = u
	}
	u.Limit = limit
	return u
}
