package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"retail-service/internal/cache"
)

type KV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisStore keeps sessions as JSON under session:<id>, letting the key TTL
// enforce the idle timeout.
type RedisStore struct {
	kv KV
}

func NewRedisStore(kv KV) *RedisStore { return &RedisStore{kv: kv} }

func key(id string) string { return "session:" + id }

func (s *RedisStore) Save(ctx context.Context, rec Record, ttl time.Duration) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key(rec.ID), b, ttl)
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Record, error) {
	b, err := s.kv.Get(ctx, key(id))
	if errors.Is(err, cache.ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisStore) Touch(ctx context.Context, id string, at time.Time, ttl time.Duration) error {
	rec, err := s.Load(ctx, id)
	if err != nil || rec == nil {
		return err
	}
	rec.LastSeenAt = at
	return s.Save(ctx, *rec, ttl)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.kv.Del(ctx, key(id))
}
