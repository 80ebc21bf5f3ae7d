package blobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore serves objects stored as plain string values under
// "<bucket>/<key>".
type RedisStore struct {
	redis  *redis.Client
	bucket string
}

// NewRedisStore creates a store reading from the given client.
func NewRedisStore(redisClient *redis.Client, bucket string) *RedisStore {
	return &RedisStore{redis: redisClient, bucket: bucket}
}

func (s *RedisStore) objectKey(key string) string {
	return fmt.Sprintf("%s/%s", s.bucket, key)
}

// Download returns the stored value for bucket/key.
func (s *RedisStore) Download(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	data, err := s.redis.Get(ctx, s.objectKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", s.objectKey(key), ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from Redis: %w", s.objectKey(key), err)
	}

	return data, nil
}
