// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search

import "context"

// Repository defines the data access contract.
type Repository interface {
	// Search returns one page of ranked hits plus the total match count.
	Search(context context.Context, query Query) ([]Post, int, error)
}

// Cache is an optional response cache consulted before the repository.
// A miss is reported as a nil result, not an error.
type Cache interface {
	Get(context context.Context, query Query) (*Result, error)
	Set(context context.Context, query Query, result *Result) error
}
