// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides deterministic, content-derived identifiers.

It wraps the standard UUID library to specifically generate Version 5 values,
where the same namespace and name always map to the same ID.

Advantages:

  - Stable: Parallel crawlers derive identical IDs for identical content.
  - Conflict-friendly: Upserts collapse naturally on the primary key.
  - Compact: 128-bit storage, compatible with standard 'uuid' types.

This is the mandatory ID type for every record whose identity is its content.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// NewV5 derives the deterministic UUID for name within namespace.
func NewV5(namespace uuid.UUID, name string) string {
	return uuid.NewSHA1(namespace, []byte(name)).String()
}
