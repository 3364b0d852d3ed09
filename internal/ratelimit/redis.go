package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yourusername/magajico/internal/config"
)

// RedisStore keeps sliding windows in Redis sorted sets scored by millisecond timestamp
type RedisStore struct {
	client *redis.Client
	prefix string
	seq    atomic.Uint64
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return rdb, nil
}

// NewRedisStore creates a store writing keys under prefix
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Allow adds the request to the window and rolls it back when the window is over the limit
func (r *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (bool, error) {
	redisKey := r.prefix + key
	nowMs := now.UnixMilli()
	member := fmt.Sprintf("%d-%d", nowMs, r.seq.Add(1))

	var card *redis.IntCmd
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(nowMs-window.Milliseconds(), 10))
		pipe.ZAdd(ctx, redisKey, &redis.Z{Score: float64(nowMs), Member: member})
		card = pipe.ZCard(ctx, redisKey)
		pipe.Expire(ctx, redisKey, window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis rate limit: %w", err)
	}

	if card.Val() > int64(limit) {
		if err := r.client.ZRem(ctx, redisKey, member).Err(); err != nil {
			return false, fmt.Errorf("redis rate limit rollback: %w", err)
		}
		return false, nil
	}

	return true, nil
}
