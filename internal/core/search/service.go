// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/buivan/fedisearch/internal/platform/validate"
	"github.com/buivan/fedisearch/pkg/pagination"
	"github.com/buivan/fedisearch/pkg/pointer"
	"github.com/buivan/fedisearch/pkg/query"
)

// # Service Layer

// Service orchestrates one search request: validation, filter extraction,
// cache lookup, and the ranked database query.
type Service struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
}

// NewService constructs a new [Service]. The cache may be nil, in which case
// every request goes to the repository.
func NewService(repo Repository, cache Cache, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

/*
Search executes one /search request from its raw query parameters.

Description: The raw query string is parsed into filters and residual
terms, the preferred instance is expanded to its actor ID, and the ranked
statement runs against the index. Identical requests inside the cache TTL
are answered from Redis without touching the database.

Parameters:
  - context: context.Context
  - values: url.Values (query, preferred_instance, page, nsfw, since, until)
  - page: pagination.Params (parsed and clamped by the handler)

Returns:
  - *Result: Ranked hits plus paging metadata and elapsed time
  - error: VALIDATION_ERROR for bad input, otherwise repository errors
*/
func (service *Service) Search(context context.Context, values url.Values, page pagination.Params) (*Result, error) {
	start := time.Now()

	raw := values.Get("query")
	preferred := values.Get("preferred_instance")

	// 1. Validate the request
	validator := &validate.Validator{}
	validator.Required("query", raw)
	validator.Required("preferred_instance", preferred)

	since, err := query.TimeRFC3339(values, "since")
	validator.Custom("since", err != nil, "Must be an RFC 3339 timestamp")

	until, err := query.TimeRFC3339(values, "until")
	validator.Custom("until", err != nil, "Must be an RFC 3339 timestamp")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// 2. Extract filters and terms
	parsed := Parse(raw)

	// The preferred instance arrives as a bare hostname.
	request := Query{
		Text:         parsed.Text,
		Terms:        parsed.Terms,
		Instance:     parsed.Instance,
		Community:    parsed.Community,
		Author:       parsed.Author,
		NSFW:         query.Bool(values, "nsfw"),
		Since:        since,
		Until:        until,
		HomeInstance: "https://" + preferred + "/",
		Page:         page.Page,
	}

	service.logger.Info("search_query",
		slog.Any("terms", request.Terms),
		slog.String("instance", pointer.Val(request.Instance)),
		slog.String("community", pointer.Val(request.Community)),
		slog.String("author", pointer.Val(request.Author)),
		slog.String("home_instance", request.HomeInstance),
		slog.Int("page", request.Page),
	)

	// 3. Cache lookup
	if service.cache != nil {
		cached, err := service.cache.Get(context, request)
		if err != nil {
			service.logger.Warn("search_cache_read_failed", slog.Any("error", err))
		}
		if cached != nil {
			return cached, nil
		}
	}

	// 4. Ranked query
	posts, total, err := service.repo.Search(context, request)
	if err != nil {
		return nil, err
	}

	// The UI iterates both arrays unconditionally.
	if posts == nil {
		posts = []Post{}
	}
	terms := request.Terms
	if terms == nil {
		terms = []string{}
	}

	result := &Result{
		OriginalQueryTerms: terms,
		Posts:              posts,
		TotalResults:       total,
		TotalPages:         pagination.TotalPages(total, page.Limit),
		TimeTaken:          DurationOf(time.Since(start)),
	}

	// 5. Cache fill, best effort
	if service.cache != nil {
		if err := service.cache.Set(context, request, result); err != nil {
			service.logger.Warn("search_cache_write_failed", slog.Any("error", err))
		}
	}

	return result, nil
}
