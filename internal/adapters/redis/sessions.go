package redisad

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"holidaze/internal/adapters/observability"
	"holidaze/internal/domain"
)

const keyPrefix = "session:"

// SessionStore keeps auth payloads as raw bytes under session:<id> with a TTL.
type SessionStore struct{ c *redis.Client }

func New(addr, pass string, db int) *SessionStore {
	return &SessionStore{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func NewWithClient(c *redis.Client) *SessionStore { return &SessionStore{c: c} }

func (s *SessionStore) Ping(ctx context.Context) error { return s.c.Ping(ctx).Err() }

func (s *SessionStore) Close() error { return s.c.Close() }

func (s *SessionStore) Get(ctx context.Context, id string) (domain.AuthPayload, bool, error) {
	v, err := s.c.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveSession("redis", "miss")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	observability.ObserveSession("redis", "hit")
	return domain.AuthPayload(v), true, nil
}

func (s *SessionStore) Set(ctx context.Context, id string, auth domain.AuthPayload, ttl time.Duration) error {
	observability.ObserveSession("redis", "set")
	return s.c.Set(ctx, keyPrefix+id, []byte(auth), ttl).Err()
}

func (s *SessionStore) Del(ctx context.Context, id string) error {
	observability.ObserveSession("redis", "del")
	return s.c.Del(ctx, keyPrefix+id).Err()
}
