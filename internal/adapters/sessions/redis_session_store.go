package sessions

import (
	"context"
	"errors"
	"fmt"
	"kr-eta-service/internal/domain"
	"kr-eta-service/internal/platform/obs"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultKeyPrefix = "kr-eta:flow:"

// RedisSessionStore keeps serialized wizard sessions in Redis so any server
// instance can continue a flow. Entries expire after their TTL.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

func NewRedisSessionStore(client *redis.Client, prefix string, logger *zap.Logger) *RedisSessionStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisSessionStore{client: client, prefix: prefix, logger: logger}
}

func (s *RedisSessionStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisSessionStore) Put(ctx context.Context, id string, data []byte, ttl time.Duration) (err error) {
	defer obs.Time(ctx, s.logger, "redis.PutSession")(&err)

	if err := s.client.Set(ctx, s.key(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("put session %q: %w", id, err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (_ []byte, err error) {
	defer obs.Time(ctx, s.logger, "redis.GetSession")(&err)

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get session %q: %w", id, domain.ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %q: %w", id, err)
	}
	return data, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) (err error) {
	defer obs.Time(ctx, s.logger, "redis.DeleteSession")(&err)

	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session %q: %w", id, err)
	}
	return nil
}
