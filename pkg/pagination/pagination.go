// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for API list endpoints.
//
// # Overview
//
// It standardizes how page-based navigation is requested via query parameters
// and how result windows are derived for SQL queries. Result pages have a
// fixed size; clients choose the page, never the limit.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the fixed number of items per result page.
	DefaultLimit = 50
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// Params holds the parsed page and the fixed limit for a request.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET value derived from [Page] and [Limit].
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// TotalPages returns the number of pages needed to present total items.
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// FromRequest parses the "page" query parameter from an HTTP request.
//
// # Clamping
//
// Invalid, negative, or missing values fall back to [DefaultPage]. The limit
// is always [DefaultLimit].
func FromRequest(r *http.Request) Params {
	page := parseIntParam(r, "page", DefaultPage)

	if page < 1 {
		page = DefaultPage
	}

	return Params{Page: page, Limit: DefaultLimit}
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(r *http.Request, key string, defaultVal int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return n
}
