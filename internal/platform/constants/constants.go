// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Crawling: page sizes and upstream request pacing.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "fedisearch"
	AppVersion = "0.1.0"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests and crawl
	// passes to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Crawling

const (
	// PostPageLimit is the number of posts requested per listing page and the
	// number of results returned per search page.
	PostPageLimit = 50

	// FetchTimeout is the per-request deadline for upstream instance calls.
	FetchTimeout = 30 * time.Second

	// FetchInterval paces successive requests to the same instance.
	FetchInterval = 500 * time.Millisecond

	// CrawlMaxRetries bounds backoff retries for a single listing page.
	CrawlMaxRetries = 3

	// IngestTimeout is the deadline for writing one page's batch. Ingestion
	// runs to completion even when a shutdown is already underway.
	IngestTimeout = 60 * time.Second
)

// # Cache-Control

const (
	// CachePublicDay marks responses that are safe to cache for a day.
	CachePublicDay = "public, max-age=86400"

	// CacheNoStore marks development/operational responses.
	CacheNoStore = "no-store"

	// SearchCacheTTL is the server-side lifetime of cached search responses.
	// It mirrors CachePublicDay.
	SearchCacheTTL = 24 * time.Hour
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderCacheControl  = "Cache-Control"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixSearch = "search:query:"
)
