package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/feedback-backend/internal/platform/logger"
)

const DefaultRedisKey = "feedback:dashboard:snapshot"

// Redis shares the snapshot between replicas. Expiry is left to redis.
type Redis struct {
	rdb *goredis.Client
	log *logger.Logger
	key string
	ttl time.Duration
}

func NewRedis(log *logger.Logger, rdb *goredis.Client, key string, ttl time.Duration) (*Redis, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	if rdb == nil {
		return nil, errors.New("redis client required")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{rdb: rdb, log: log.With("cache", "redis", "key", key), key: key, ttl: ttl}, nil
}

func (r *Redis) Name() string { return "redis" }

// Get treats any redis or decode error as a miss.
func (r *Redis) Get(ctx context.Context) (Snapshot, bool) {
	if r.ttl <= 0 {
		return Snapshot{}, false
	}
	raw, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return Snapshot{}, false
	}
	if err != nil {
		r.log.Warn("Snapshot read failed", "error", err)
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		r.log.Warn("Snapshot decode failed", "error", err)
		return Snapshot{}, false
	}
	return snap, true
}

func (r *Redis) Set(ctx context.Context, snap Snapshot) error {
	if r.ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key, raw, r.ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context) error {
	return r.rdb.Del(ctx, r.key).Err()
}
