package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	customError "github.com/segyhp/lending-registry/pkg/errors"
)

const snapshotKeyPrefix = "lending:snapshot:"

type redisSnapshotCache struct {
	client *redis.Client
}

func NewRedisSnapshotCache(client *redis.Client) SnapshotCache {
	return &redisSnapshotCache{client: client}
}

func (c *redisSnapshotCache) Get(ctx context.Context, name string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, snapshotKeyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, customError.WrapCacheError(err)
	}
	return payload, true, nil
}

func (c *redisSnapshotCache) Set(ctx context.Context, name string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, snapshotKeyPrefix+name, payload, ttl).Err(); err != nil {
		return customError.WrapCacheError(err)
	}
	return nil
}

func (c *redisSnapshotCache) Del(ctx context.Context, name string) error {
	if err := c.client.Del(ctx, snapshotKeyPrefix+name).Err(); err != nil {
		return customError.WrapCacheError(err)
	}
	return nil
}
