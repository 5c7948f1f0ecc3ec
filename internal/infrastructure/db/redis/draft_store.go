package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/microempresa/portal-client/internal/core/ports"
)

const defaultDraftTTL = 30 * 24 * time.Hour

// DraftStore keeps client drafts in Redis so several terminals can share one
// signup or session. Keys are <prefix>:<key> and expire after the TTL; every
// write refreshes it.
type DraftStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewDraftStore wraps client. A zero ttl uses 30 days.
func NewDraftStore(client *redis.Client, prefix string, ttl time.Duration) *DraftStore {
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	if prefix == "" {
		prefix = "portal"
	}
	return &DraftStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *DraftStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("draft get %s: %w", key, err)
	}
	return b, nil
}

func (s *DraftStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("draft set %s: %w", key, err)
	}
	return nil
}

func (s *DraftStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("draft delete: %w", err)
	}
	return nil
}

func (s *DraftStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *DraftStore) key(k string) string {
	return s.prefix + ":" + k
}
