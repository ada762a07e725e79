// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// route.go provides a Valkey-backed cache for the data behind an admin
// route. Each route has a generation counter; Invalidate bumps it so any
// entry written for an older generation is never read again.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	// routeKeyPrefix is the Valkey key prefix for cached route data.
	routeKeyPrefix = "route:"

	// DefaultRouteTTL is how long cached route data lives.
	DefaultRouteTTL = 2 * time.Minute
)

// Recorder receives cache hit and miss events.
type Recorder interface {
	CacheHit(route string)
	CacheMiss(route string)
}

// RouteCache caches JSON-encoded route data in Valkey. A nil *RouteCache,
// or one without a client, passes every Load straight to the loader.
type RouteCache struct {
	client *redis.Client
	ttl    time.Duration
	rec    Recorder
	group  singleflight.Group
}

// NewRouteCache creates a route cache. ttl of 0 uses DefaultRouteTTL and
// rec may be nil.
func NewRouteCache(client *redis.Client, ttl time.Duration, rec Recorder) *RouteCache {
	if ttl == 0 {
		ttl = DefaultRouteTTL
	}
	return &RouteCache{client: client, ttl: ttl, rec: rec}
}

func genKey(route string) string { return routeKeyPrefix + route + ":gen" }

func dataKey(route string, gen int64) string {
	return fmt.Sprintf("%s%s@%d", routeKeyPrefix, route, gen)
}

// generation returns the current generation of route, 0 if never bumped.
func (rc *RouteCache) generation(ctx context.Context, route string) (int64, error) {
	gen, err := rc.client.Get(ctx, genKey(route)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Load returns the cached value for route or calls load on a miss and
// caches its result. Concurrent misses for the same route share one load.
// Load errors are returned and never cached. Valkey failures degrade to
// calling load directly.
func Load[T any](ctx context.Context, rc *RouteCache, route string, load func(context.Context) (T, error)) (T, error) {
	if rc == nil || rc.client == nil {
		return load(ctx)
	}

	gen, err := rc.generation(ctx, route)
	if err != nil {
		slog.Warn("route cache generation error", "route", route, "error", err)
		return load(ctx)
	}
	key := dataKey(route, gen)

	raw, err := rc.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		uerr := json.Unmarshal(raw, &v)
		if uerr == nil {
			rc.hit(route)
			slog.Debug("route cache hit", "route", route, "gen", gen)
			return v, nil
		}
		slog.Warn("route cache decode error", "route", route, "error", uerr)
	case !errors.Is(err, redis.Nil):
		slog.Warn("route cache get error", "route", route, "error", err)
		return load(ctx)
	}

	rc.miss(route)

	// The shared load must not fail because the first caller went away.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := rc.group.Do(key, func() (any, error) {
		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		if payload, merr := json.Marshal(v); merr != nil {
			slog.Warn("route cache encode error", "route", route, "error", merr)
		} else if serr := rc.client.Set(loadCtx, key, payload, rc.ttl).Err(); serr != nil {
			slog.Warn("route cache set error", "route", route, "error", serr)
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate marks every cached entry of route stale.
func (rc *RouteCache) Invalidate(ctx context.Context, route string) error {
	if rc == nil || rc.client == nil {
		return nil
	}
	gen, err := rc.client.Incr(ctx, genKey(route)).Result()
	if err != nil {
		return fmt.Errorf("route cache invalidate %s: %w", route, err)
	}
	slog.Debug("route cache invalidated", "route", route, "gen", gen)
	return nil
}

// InvalidateAll removes every cached route entry and generation counter
// by scanning for the prefix.
func (rc *RouteCache) InvalidateAll(ctx context.Context) error {
	if rc == nil || rc.client == nil {
		return nil
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := rc.client.Scan(ctx, cursor, routeKeyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("route cache scan: %w", err)
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("route cache bulk delete: %w", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("route cache fully cleared", "deleted", deleted)
	}
	return nil
}

func (rc *RouteCache) hit(route string) {
	if rc.rec != nil {
		rc.rec.CacheHit(route)
	}
}

func (rc *RouteCache) miss(route string) {
	if rc.rec != nil {
		rc.rec.CacheMiss(route)
	}
}
