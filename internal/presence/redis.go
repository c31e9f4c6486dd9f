package presence

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps heartbeat records as TTL'd redis keys, one key per
// (channel, viewer) pair.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Heartbeat(ctx context.Context, channel, viewerID string) error {
	return s.rdb.Set(ctx, recordKey(channel, viewerID), "1", s.ttl).Err()
}

func (s *RedisStore) Remove(ctx context.Context, channel, viewerID string) error {
	return s.rdb.Del(ctx, recordKey(channel, viewerID)).Err()
}

func (s *RedisStore) CountChannel(ctx context.Context, channel string) (int, error) {
	keys, err := s.rdb.Keys(ctx, channelPrefix(channel)+"*").Result()
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
