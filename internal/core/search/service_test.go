// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search_test

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buivan/fedisearch/internal/core/search"
	"github.com/buivan/fedisearch/internal/platform/apperr"
	"github.com/buivan/fedisearch/pkg/pagination"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubRepository struct {
	received *search.Query
	posts    []search.Post
	total    int
	err      error
}

func (stub *stubRepository) Search(_ context.Context, q search.Query) ([]search.Post, int, error) {
	stub.received = &q
	return stub.posts, stub.total, stub.err
}

type fakeCache struct {
	hit    *search.Result
	stored *search.Result
	sets   int
}

func (cache *fakeCache) Get(context.Context, search.Query) (*search.Result, error) {
	return cache.hit, nil
}

func (cache *fakeCache) Set(_ context.Context, _ search.Query, result *search.Result) error {
	cache.sets++
	cache.stored = result
	return nil
}

func firstPage() pagination.Params {
	return pagination.Params{Page: pagination.DefaultPage, Limit: pagination.DefaultLimit}
}

/*
TestService_Search_ParsesAndDelegates verifies the full request assembly:
filters extracted, the preferred instance expanded to its actor ID, and
paging metadata derived from the repository's total.
*/
func TestService_Search_ParsesAndDelegates(t *testing.T) {
	repo := &stubRepository{
		posts: []search.Post{{Name: "Winter feeding"}, {Name: "Feeding schedule"}},
		total: 120,
	}
	service := search.NewService(repo, nil, discardLogger())

	values := url.Values{}
	values.Set("query", "Winter Feeding instance:Example.ORG")
	values.Set("preferred_instance", "lemmy.home")

	result, err := service.Search(context.Background(), values, firstPage())
	require.NoError(t, err)

	require.NotNil(t, repo.received)
	assert.Equal(t, "winter feeding", repo.received.Text)
	require.NotNil(t, repo.received.Instance)
	assert.Equal(t, "https://example.org/", *repo.received.Instance)
	assert.Equal(t, "https://lemmy.home/", repo.received.HomeInstance)
	assert.False(t, repo.received.NSFW)
	assert.Equal(t, 1, repo.received.Page)

	assert.Equal(t, []string{"winter", "feeding"}, result.OriginalQueryTerms)
	assert.Len(t, result.Posts, 2)
	assert.Equal(t, 120, result.TotalResults)
	assert.Equal(t, 3, result.TotalPages)
}

func TestService_Search_OptionalFilters(t *testing.T) {
	repo := &stubRepository{}
	service := search.NewService(repo, nil, discardLogger())

	values := url.Values{}
	values.Set("query", "bees")
	values.Set("preferred_instance", "lemmy.home")
	values.Set("nsfw", "true")
	values.Set("since", "2024-01-01T00:00:00Z")
	values.Set("until", "2024-06-01T00:00:00Z")

	_, err := service.Search(context.Background(), values, firstPage())
	require.NoError(t, err)

	require.NotNil(t, repo.received)
	assert.True(t, repo.received.NSFW)
	require.NotNil(t, repo.received.Since)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), repo.received.Since.UTC())
	require.NotNil(t, repo.received.Until)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), repo.received.Until.UTC())
}

/*
TestService_Search_Validation rejects requests missing required parameters
or carrying malformed timestamps, without touching the repository.
*/
func TestService_Search_Validation(t *testing.T) {
	tests := []struct {
		name  string
		setup func(values url.Values)
		field string
	}{
		{
			name:  "missing_query",
			setup: func(values url.Values) { values.Set("preferred_instance", "lemmy.home") },
			field: "query",
		},
		{
			name:  "missing_preferred_instance",
			setup: func(values url.Values) { values.Set("query", "bees") },
			field: "preferred_instance",
		},
		{
			name: "malformed_since",
			setup: func(values url.Values) {
				values.Set("query", "bees")
				values.Set("preferred_instance", "lemmy.home")
				values.Set("since", "yesterday")
			},
			field: "since",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			repo := &stubRepository{}
			service := search.NewService(repo, nil, discardLogger())

			values := url.Values{}
			test.setup(values)

			_, err := service.Search(context.Background(), values, firstPage())
			require.Error(t, err)
			assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
			assert.Nil(t, repo.received)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			require.Len(t, appError.Details, 1)
			assert.Equal(t, test.field, appError.Details[0].Field)
		})
	}
}

/*
TestService_Search_EmptyArrays pins the wire contract for a query with no
hits and no indexable terms: both arrays are present and empty, never null.
*/
func TestService_Search_EmptyArrays(t *testing.T) {
	service := search.NewService(&stubRepository{}, nil, discardLogger())

	values := url.Values{}
	values.Set("query", "ab")
	values.Set("preferred_instance", "lemmy.home")

	result, err := service.Search(context.Background(), values, firstPage())
	require.NoError(t, err)

	require.NotNil(t, result.Posts)
	assert.Empty(t, result.Posts)
	require.NotNil(t, result.OriginalQueryTerms)
	assert.Empty(t, result.OriginalQueryTerms)
	assert.Zero(t, result.TotalPages)
}

func TestService_Search_CacheHit(t *testing.T) {
	repo := &stubRepository{}
	cache := &fakeCache{hit: &search.Result{TotalResults: 7}}
	service := search.NewService(repo, cache, discardLogger())

	values := url.Values{}
	values.Set("query", "bees")
	values.Set("preferred_instance", "lemmy.home")

	result, err := service.Search(context.Background(), values, firstPage())
	require.NoError(t, err)

	assert.Equal(t, 7, result.TotalResults)
	assert.Nil(t, repo.received)
	assert.Zero(t, cache.sets)
}

func TestService_Search_CacheFill(t *testing.T) {
	repo := &stubRepository{total: 1, posts: []search.Post{{Name: "Winter feeding"}}}
	cache := &fakeCache{}
	service := search.NewService(repo, cache, discardLogger())

	values := url.Values{}
	values.Set("query", "bees")
	values.Set("preferred_instance", "lemmy.home")

	result, err := service.Search(context.Background(), values, firstPage())
	require.NoError(t, err)

	require.NotNil(t, repo.received)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, result, cache.stored)
}
