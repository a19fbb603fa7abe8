package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/cache"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/redis"
)

// DraftStore persists drafts between requests. Save refreshes the TTL.
type DraftStore interface {
	Get(ctx context.Context, id string) (*Draft, error)
	Save(ctx context.Context, d *Draft) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps drafts in process memory. Drafts are stored as JSON so
// callers never share a *Draft.
type MemoryStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: cache.New(), ttl: ttl}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Draft, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrDraftNotFound
	}
	var d Draft
	if err := json.Unmarshal(v.([]byte), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MemoryStore) Save(_ context.Context, d *Draft) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	s.cache.Set(d.ID, b, s.ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

// Sweep drops expired drafts.
func (s *MemoryStore) Sweep() int {
	return s.cache.Sweep()
}

const draftKeyPrefix = "wizard:draft:"

type RedisStore struct {
	client *redis.RedisClient
	ttl    time.Duration
}

func NewRedisStore(client *redis.RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Draft, error) {
	var d Draft
	if err := s.client.GetJSON(ctx, draftKeyPrefix+id, &d); err != nil {
		if errors.Is(err, redis.ErrMiss) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *RedisStore) Save(ctx context.Context, d *Draft) error {
	return s.client.SetJSON(ctx, draftKeyPrefix+d.ID, d, s.ttl)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, draftKeyPrefix+id)
}
