package session

import (
	"context"
	"sync"
	"time"

	"holidaze/internal/domain"
)

type entry struct {
	auth    domain.AuthPayload
	expires time.Time
}

// MemoryStore keeps sessions in process. Used in dev and tests; expired
// entries are dropped on read.
type MemoryStore struct {
	mu  sync.Mutex
	m   map[string]entry
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: map[string]entry{}, now: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (domain.AuthPayload, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[id]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(e.expires) {
		delete(s.m, id)
		return nil, false, nil
	}
	return e.auth, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, id string, auth domain.AuthPayload, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = entry{auth: append(domain.AuthPayload(nil), auth...), expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Del(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}
