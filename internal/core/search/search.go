// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package search implements the query side of Fedisearch.

It parses raw user queries into filters and terms, runs the ranked
full-text statement against the index, and shapes the response the UI
consumes.

Architecture:

  - Parser: extracts instance/community/author filters and tokenizes the rest.
  - Repository: the single ranked SQL statement over the index tables.
  - Cache: optional Redis layer keyed by the parsed query.
  - Service: validation, orchestration, timing.

Results are always expressed from the caller's preferred instance so that
post links carry that instance's local numeric ID.
*/
package search

import (
	"time"
)

// Query is one fully parsed search request.
type Query struct {
	// Text is the residual query after filter extraction, handed verbatim
	// to websearch_to_tsquery.
	Text string

	// Terms are the analyzer tokens of Text, echoed back to the client.
	Terms []string

	// Canonical filter values, nil when the query carries no such filter.
	Instance  *string
	Community *string
	Author    *string

	// NSFW includes adult-tagged posts when true.
	NSFW bool

	// Since and Until bound the post update time, exclusive on both ends.
	Since *time.Time
	Until *time.Time

	// HomeInstance is the actor ID of the caller's preferred instance.
	HomeInstance string

	// Page is 1-indexed.
	Page int
}

// # Wire Types

// Author is the author block of one search hit.
type Author struct {
	ActorID     string  `json:"actor_id"`
	Avatar      *string `json:"avatar"`
	Name        string  `json:"name"`
	DisplayName *string `json:"display_name"`
}

// Community is the community block of one search hit.
type Community struct {
	ActorID string  `json:"actor_id"`
	Icon    *string `json:"icon"`
	Name    string  `json:"name"`
	Title   *string `json:"title"`
}

// Post is one ranked search hit. Body is truncated server-side; RemoteID is
// the post's numeric ID on the caller's preferred instance.
type Post struct {
	Name      string    `json:"name"`
	Body      *string   `json:"body"`
	Updated   time.Time `json:"updated"`
	RemoteID  int64     `json:"remote_id"`
	Author    Author    `json:"author"`
	Community Community `json:"community"`
}

// Result is the /search response envelope.
type Result struct {
	OriginalQueryTerms []string `json:"original_query_terms"`
	Posts              []Post   `json:"posts"`
	TotalResults       int      `json:"total_results"`
	TotalPages         int      `json:"total_pages"`
	TimeTaken          Duration `json:"time_taken"`
}

// Duration reports elapsed wall time split into whole seconds and the
// remaining nanoseconds, the shape the UI's timing footer parses.
type Duration struct {
	Secs  int64 `json:"secs"`
	Nanos int64 `json:"nanos"`
}

// DurationOf splits d for the wire.
func DurationOf(d time.Duration) Duration {
	return Duration{
		Secs:  int64(d / time.Second),
		Nanos: int64(d % time.Second),
	}
}
