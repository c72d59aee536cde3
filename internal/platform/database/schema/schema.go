// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package schema declares the storage layout of every indexed entity.

Each table is described twice, from one set of column-name constants:

  - A Ref catalog (RefPost, RefSite, ...) holding the table and column names
    referenced by hand-written queries.
  - A [TableDef] used by the store to generate DDL and bulk-upsert SQL
    uniformly, so no per-entity SQL exists for table creation or upserts.

A [Descriptor] pairs a TableDef with the row type's positional value
extractor. Descriptors are static values; nothing here reflects over runtime
types.
*/
package schema

// Column describes one table column.
type Column struct {
	// Name is the SQL column identifier.
	Name string

	// Type is the full DDL type clause, e.g. "VARCHAR NOT NULL".
	Type string

	// Generated marks columns the database computes itself. Generated
	// columns appear in DDL but never in insert column lists.
	Generated bool
}

// TableDef is the declarative shape of one table: its name, ordered columns,
// primary-key set, and any auxiliary index DDL. It carries no row type, so
// SQL generation and schema bootstrap can treat all tables alike.
type TableDef struct {
	Name    string
	Columns []Column

	// Keys lists the primary-key column names, in declaration order.
	Keys []string

	// Indexes holds complete auxiliary DDL statements executed after the
	// table exists (e.g. the GIN index over the search vector).
	Indexes []string
}

// InsertColumns returns the names of all non-generated columns, in order.
// Values extractors must produce one value per entry of this list.
func (t TableDef) InsertColumns() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c.Generated {
			continue
		}
		names = append(names, c.Name)
	}
	return names
}

// NonKeyColumns returns the insertable columns that are not part of the
// primary key. These are the columns a conflicting upsert overwrites.
func (t TableDef) NonKeyColumns() []string {
	keys := make(map[string]struct{}, len(t.Keys))
	for _, k := range t.Keys {
		keys[k] = struct{}{}
	}

	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c.Generated {
			continue
		}
		if _, ok := keys[c.Name]; ok {
			continue
		}
		names = append(names, c.Name)
	}
	return names
}

// Descriptor binds a [TableDef] to a row type. Values turns one row into a
// positional vector matching [TableDef.InsertColumns].
type Descriptor[T any] struct {
	TableDef

	Values func(T) []any
}
