package cache

import (
	"context"
	"time"

	"post-radar/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

// RunLock prevents overlapping pipeline runs for the same member using a
// Redis SETNX lock with TTL. With a nil client every acquire succeeds, so a
// missing Redis never blocks the pipeline.
type RunLock struct {
	client *redis.Client
}

func NewRunLock(client *redis.Client) *RunLock { return &RunLock{client: client} }

func (l *RunLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l.client == nil {
		return true, nil
	}
	ok, err := l.client.SetNX(ctx, "runlock:"+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (l *RunLock) Release(ctx context.Context, key string) {
	if l.client == nil {
		return
	}
	if err := l.client.Del(ctx, "runlock:"+key).Err(); err != nil {
		logger.GetLogger().WithField("key", key).WithField("error", err).Warn("failed releasing run lock")
	}
}
