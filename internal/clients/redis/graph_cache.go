package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dthai91/edx-platform/internal/platform/envutil"
	"github.com/dthai91/edx-platform/internal/platform/logger"
)

const graphKeyPrefix = "blocks:graph:"

// GraphCache keeps the raw (pre-transform) course tree per root id. Only
// the source graph is cached; transformed structures are always rebuilt
// per request.
type GraphCache interface {
	Get(ctx context.Context, rootID string, out any) (bool, error)
	Set(ctx context.Context, rootID string, tree any) error
	InvalidateAll(ctx context.Context) error
	Close() error
}

type graphCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewGraphCache connects using REDIS_ADDR. Returns (nil, nil) when unset
// so the caller can run without a cache tier.
func NewGraphCache(log *logger.Logger) (GraphCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := envutil.Str("REDIS_ADDR", "")
	if addr == "" {
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    envutil.Str("REDIS_PASSWORD", ""),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &graphCache{
		log: log.With("client", "GraphCache"),
		rdb: rdb,
		ttl: envutil.Duration("BLOCKS_CACHE_TTL", 5*time.Minute),
	}, nil
}

func (gc *graphCache) Get(ctx context.Context, rootID string, out any) (bool, error) {
	raw, err := gc.rdb.Get(ctx, graphKeyPrefix+rootID).Bytes()
	if err == goredis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode cached graph: %w", err)
	}
	return true, nil
}

func (gc *graphCache) Set(ctx context.Context, rootID string, tree any) error {
	raw, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	if err := gc.rdb.Set(ctx, graphKeyPrefix+rootID, raw, gc.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// InvalidateAll drops every cached tree. Used by the seed tool after it
// rewrites course content.
func (gc *graphCache) InvalidateAll(ctx context.Context) error {
	iter := gc.rdb.Scan(ctx, 0, graphKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := gc.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}

func (gc *graphCache) Close() error {
	return gc.rdb.Close()
}
