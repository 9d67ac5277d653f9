package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps fingerprints in Redis sets so multiple gateway
// instances share one dedup registry. SADD returns the number of members
// added, which gives the check-and-register atomicity for free.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisStore(redisURL, keyPrefix string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	if keyPrefix == "" {
		keyPrefix = "dedup"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}, nil
}

func (s *RedisStore) CheckAndRegister(ctx context.Context, namespace, fingerprint string) (bool, error) {
	key := fmt.Sprintf("%s:%s", s.keyPrefix, namespace)
	added, err := s.client.SAdd(ctx, key, fingerprint).Result()
	if err != nil {
		return false, fmt.Errorf("fingerprint register failed: %w", err)
	}
	return added == 0, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
