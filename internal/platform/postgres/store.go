// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/buivan/fedisearch/internal/platform/database/schema"
	"github.com/buivan/fedisearch/internal/platform/dberr"
)

// Querier is the narrow surface stores need from a pool. *pgxpool.Pool
// satisfies it, as do the pgxmock pool mocks used in tests. Connections are
// checked out per call and returned before the call ends, so no caller ever
// holds one across a fetch.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// # DDL Generation

// CreateSQL returns the DDL statements for one table, in execution order:
// an optional DROP, the CREATE TABLE IF NOT EXISTS, then any auxiliary
// index statements.
func CreateSQL(def schema.TableDef, drop bool) []string {
	statements := make([]string, 0, 2+len(def.Indexes))

	if drop {
		statements = append(statements, "DROP TABLE IF EXISTS "+def.Name)
	}

	columns := make([]string, 0, len(def.Columns)+1)
	for _, c := range def.Columns {
		columns = append(columns, c.Name+" "+c.Type)
	}
	if len(def.Keys) > 0 {
		columns = append(columns, "PRIMARY KEY ("+strings.Join(def.Keys, ", ")+")")
	}

	statements = append(statements, fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s)", def.Name, strings.Join(columns, ", "),
	))

	return append(statements, def.Indexes...)
}

// CreateTable applies [CreateSQL] for one table. With drop set, the table is
// recreated from scratch.
func CreateTable(ctx context.Context, db Querier, def schema.TableDef, drop bool) error {
	for _, statement := range CreateSQL(def, drop) {
		if _, err := db.Exec(ctx, statement); err != nil {
			return dberr.Wrap(err, "create_"+def.Name)
		}
	}
	return nil
}

// EnsureSchema bootstraps every table in declaration order. It is idempotent
// and safe to run on every startup.
func EnsureSchema(ctx context.Context, db Querier, defs []schema.TableDef) error {
	for _, def := range defs {
		if err := CreateTable(ctx, db, def, false); err != nil {
			return err
		}
	}
	return nil
}

// # Bulk Upsert

// UpsertSQL builds the single parameterized statement that inserts rowCount
// rows and resolves primary-key conflicts:
//
//   - non-key columns present: ON CONFLICT (keys) DO UPDATE SET col = excluded.col
//   - every column is a key: ON CONFLICT (keys) DO NOTHING
//   - no keys declared: plain INSERT
//
// Placeholders are numbered row-major, matching the argument vector that
// [BulkUpsert] assembles.
func UpsertSQL(def schema.TableDef, rowCount int) string {
	columns := def.InsertColumns()

	values := make([]string, 0, rowCount)
	placeholder := 1
	for row := 0; row < rowCount; row++ {
		markers := make([]string, 0, len(columns))
		for range columns {
			markers = append(markers, fmt.Sprintf("$%d", placeholder))
			placeholder++
		}
		values = append(values, "("+strings.Join(markers, ", ")+")")
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "INSERT INTO %s (%s) VALUES %s",
		def.Name, strings.Join(columns, ", "), strings.Join(values, ", "))

	if len(def.Keys) == 0 {
		return builder.String()
	}

	nonKeys := def.NonKeyColumns()
	if len(nonKeys) == 0 {
		fmt.Fprintf(&builder, " ON CONFLICT (%s) DO NOTHING", strings.Join(def.Keys, ", "))
		return builder.String()
	}

	assignments := make([]string, 0, len(nonKeys))
	for _, column := range nonKeys {
		assignments = append(assignments, column+" = excluded."+column)
	}
	fmt.Fprintf(&builder, " ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(def.Keys, ", "), strings.Join(assignments, ", "))

	return builder.String()
}

// BulkUpsert writes a whole row set in one statement. Re-running the same
// set is a no-op on table contents, which is what makes crawling
// at-least-once safe. An empty set does nothing.
func BulkUpsert[T any](ctx context.Context, db Querier, d schema.Descriptor[T], rows []T) error {
	if len(rows) == 0 {
		return nil
	}

	columns := d.InsertColumns()
	args := make([]any, 0, len(rows)*len(columns))
	for _, row := range rows {
		args = append(args, d.Values(row)...)
	}

	if _, err := db.Exec(ctx, UpsertSQL(d.TableDef, len(rows)), args...); err != nil {
		return dberr.Wrap(err, "bulk_upsert_"+d.Name)
	}

	return nil
}
