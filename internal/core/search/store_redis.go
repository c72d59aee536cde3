// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/buivan/fedisearch/internal/platform/constants"
	"github.com/buivan/fedisearch/pkg/pointer"
)

// RedisCache implements [Cache] on Redis. Entries expire after
// [constants.SearchCacheTTL], mirroring the public max-age of the route.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis-backed response cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// cacheKey flattens every field that changes the result set. Two requests
// with the same key are answerable by the same response.
func cacheKey(q Query) string {
	var since, until string
	if q.Since != nil {
		since = q.Since.UTC().Format(time.RFC3339)
	}
	if q.Until != nil {
		until = q.Until.UTC().Format(time.RFC3339)
	}

	return fmt.Sprintf("%s%s|%s|%s|%s|%t|%s|%s|%s|%d",
		constants.RedisPrefixSearch,
		q.Text,
		pointer.Val(q.Instance),
		pointer.Val(q.Community),
		pointer.Val(q.Author),
		q.NSFW,
		since,
		until,
		q.HomeInstance,
		q.Page,
	)
}

/*
Get retrieves the cached response for a parsed query.

Description: Returns (nil, nil) on a cache miss so callers can fall
through to the repository without branching on error values.

Parameters:
  - context: context.Context
  - query: Query

Returns:
  - *Result: The cached response, or nil on a miss
  - error: Connectivity or decoding failures
*/
func (cache *RedisCache) Get(context context.Context, query Query) (*Result, error) {
	payload, err := cache.client.Get(context, cacheKey(query)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_search_get_failed: %w", err)
	}

	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("redis_search_decode_failed: %w", err)
	}

	return &result, nil
}

/*
Set stores a response under its query key.

Parameters:
  - context: context.Context
  - query: Query
  - result: *Result

Returns:
  - error: Encoding or connectivity failures
*/
func (cache *RedisCache) Set(context context.Context, query Query, result *Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("redis_search_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, cacheKey(query), payload, constants.SearchCacheTTL).Err(); err != nil {
		return fmt.Errorf("redis_search_set_failed: %w", err)
	}

	return nil
}
