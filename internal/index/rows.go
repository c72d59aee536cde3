// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package index

import (
	"fmt"
	"strings"
	"time"

	guuid "github.com/google/uuid"

	"github.com/buivan/fedisearch/internal/platform/database/schema"
	"github.com/buivan/fedisearch/pkg/uuid"
)

// wordNamespace scopes the deterministic IDs of index terms. It must never
// change: every word row ever written derives its key from it.
var wordNamespace = guuid.MustParse("d6a25b42-3dfb-5f33-99cc-0de52b45e1b3")

// WordID derives the stable identifier for an index term. The same word
// always maps to the same ID, so parallel crawlers write identical rows.
func WordID(word string) string {
	return uuid.NewV5(wordNamespace, strings.ToLower(word))
}

// # Row types
//
// Optional columns are pointers so that absence reaches the database as NULL
// and the search API as JSON null.

// Author is one row of the authors table.
type Author struct {
	ActorID     string
	Name        string
	DisplayName *string
	Avatar      *string
}

// Community is one row of the communities table.
type Community struct {
	ActorID string
	Name    string
	Title   *string
	Icon    *string
}

// Post is one row of the posts table. The com_search vector is computed by
// the database and never written by the application.
type Post struct {
	ApID          string
	AuthorActorID string
	CommunityApID string
	Name          string
	Body          *string
	Score         int64
	NSFW          bool
	Updated       time.Time
}

// LemmyID records that a post is visible on an instance under a numeric ID.
type LemmyID struct {
	PostRemoteID    int64
	PostActorID     string
	InstanceActorID string
}

// Word is one entry of the term dictionary.
type Word struct {
	ID   string
	Word string
}

// Xref is one word-to-post edge of the inverted index.
type Xref struct {
	WordID   string
	PostApID string
}

// # Descriptors

// Authors describes the authors table.
var Authors = schema.Descriptor[Author]{
	TableDef: schema.TableDef{
		Name: schema.RefAuthor.Table,
		Columns: []schema.Column{
			{Name: schema.RefAuthor.ActorID, Type: "VARCHAR NOT NULL"},
			{Name: schema.RefAuthor.Name, Type: "VARCHAR NOT NULL"},
			{Name: schema.RefAuthor.DisplayName, Type: "VARCHAR"},
			{Name: schema.RefAuthor.Avatar, Type: "VARCHAR"},
		},
		Keys: []string{schema.RefAuthor.ActorID},
	},
	Values: func(row Author) []any {
		return []any{row.ActorID, row.Name, row.DisplayName, row.Avatar}
	},
}

// Communities describes the communities table.
var Communities = schema.Descriptor[Community]{
	TableDef: schema.TableDef{
		Name: schema.RefCommunity.Table,
		Columns: []schema.Column{
			{Name: schema.RefCommunity.ActorID, Type: "VARCHAR NOT NULL"},
			{Name: schema.RefCommunity.Name, Type: "VARCHAR NOT NULL"},
			{Name: schema.RefCommunity.Title, Type: "VARCHAR"},
			{Name: schema.RefCommunity.Icon, Type: "VARCHAR"},
		},
		Keys: []string{schema.RefCommunity.ActorID},
	},
	Values: func(row Community) []any {
		return []any{row.ActorID, row.Name, row.Title, row.Icon}
	},
}

// Posts describes the posts table and its full-text search vector.
var Posts = schema.Descriptor[Post]{
	TableDef: schema.TableDef{
		Name: schema.RefPost.Table,
		Columns: []schema.Column{
			{Name: schema.RefPost.ApID, Type: "VARCHAR NOT NULL"},
			{Name: schema.RefPost.AuthorActorID, Type: "VARCHAR NOT NULL"},
			{Name: schema.RefPost.CommunityApID, Type: "VARCHAR NOT NULL"},
			{Name: schema.RefPost.Name, Type: "VARCHAR NOT NULL"},
			{Name: schema.RefPost.Body, Type: "VARCHAR"},
			{Name: schema.RefPost.Score, Type: "BIGINT NOT NULL"},
			{Name: schema.RefPost.NSFW, Type: "BOOL NOT NULL"},
			{Name: schema.RefPost.Updated, Type: "TIMESTAMP WITH TIME ZONE NOT NULL"},
			{
				Name:      schema.RefPost.ComSearch,
				Type:      "TSVECTOR GENERATED ALWAYS AS (to_tsvector('english', name || ' ' || coalesce(body, ''))) STORED",
				Generated: true,
			},
		},
		Keys: []string{schema.RefPost.ApID},
		Indexes: []string{
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_posts_com_search ON %s USING GIN (%s)",
				schema.RefPost.Table, schema.RefPost.ComSearch),
		},
	},
	Values: func(row Post) []any {
		return []any{row.ApID, row.AuthorActorID, row.CommunityApID, row.Name, row.Body, row.Score, row.NSFW, row.Updated}
	},
}

// LemmyIDs describes the lemmy_ids table.
var LemmyIDs = schema.Descriptor[LemmyID]{
	TableDef: schema.TableDef{
		Name: schema.RefLemmyID.Table,
		Columns: []schema.Column{
			{Name: schema.RefLemmyID.PostRemoteID, Type: "BIGINT NOT NULL"},
			{Name: schema.RefLemmyID.PostActorID, Type: "VARCHAR NOT NULL"},
			{Name: schema.RefLemmyID.InstanceActorID, Type: "VARCHAR NOT NULL"},
		},
		Keys: []string{schema.RefLemmyID.PostActorID, schema.RefLemmyID.InstanceActorID},
	},
	Values: func(row LemmyID) []any {
		return []any{row.PostRemoteID, row.PostActorID, row.InstanceActorID}
	},
}

// Words describes the term dictionary.
var Words = schema.Descriptor[Word]{
	TableDef: schema.TableDef{
		Name: schema.RefWord.Table,
		Columns: []schema.Column{
			{Name: schema.RefWord.ID, Type: "UUID NOT NULL"},
			{Name: schema.RefWord.Word, Type: "VARCHAR NOT NULL UNIQUE"},
		},
		Keys: []string{schema.RefWord.ID},
	},
	Values: func(row Word) []any {
		return []any{row.ID, row.Word}
	},
}

// Xrefs describes the inverted-index junction table.
var Xrefs = schema.Descriptor[Xref]{
	TableDef: schema.TableDef{
		Name: schema.RefXref.Table,
		Columns: []schema.Column{
			{Name: schema.RefXref.WordID, Type: "UUID NOT NULL"},
			{Name: schema.RefXref.PostApID, Type: "VARCHAR NOT NULL"},
		},
		Keys: []string{schema.RefXref.WordID, schema.RefXref.PostApID},
	},
	Values: func(row Xref) []any {
		return []any{row.WordID, row.PostApID}
	},
}

// Tables lists the index table definitions in creation order.
func Tables() []schema.TableDef {
	return []schema.TableDef{
		Authors.TableDef,
		Communities.TableDef,
		Posts.TableDef,
		LemmyIDs.TableDef,
		Words.TableDef,
		Xrefs.TableDef,
	}
}
