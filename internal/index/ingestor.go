// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package index turns fetched post batches into the persistent search index.

It owns the table descriptors for the indexed entities, the analyzer that
extracts index terms from post text, and the Ingestor that derives normalized
row sets from a listing page and drives the store's bulk upserts in
dependency order.
*/
package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/buivan/fedisearch/internal/lemmy"
	"github.com/buivan/fedisearch/internal/platform/postgres"
	"github.com/buivan/fedisearch/pkg/pointer"
)

// Ingestor persists fetched post batches.
type Ingestor struct {
	db     postgres.Querier
	logger *slog.Logger
}

// NewIngestor creates an Ingestor writing through the given store.
func NewIngestor(db postgres.Querier, logger *slog.Logger) *Ingestor {
	return &Ingestor{db: db, logger: logger}
}

/*
Ingest persists one fetched listing page for the given instance.

Row sets are upserted in dependency order (authors, communities, posts,
lemmy_ids, words, xrefs) so that referenced rows always exist before the
rows referencing them, even with several instances ingesting concurrently.
A step failure aborts the batch; re-running it is safe because every step
is an idempotent upsert.
*/
func (ingestor *Ingestor) Ingest(context context.Context, instanceActorID string, posts []lemmy.PostData) error {
	if len(posts) == 0 {
		return nil
	}

	batch := buildBatch(instanceActorID, posts)

	if err := postgres.BulkUpsert(context, ingestor.db, Authors, batch.authors); err != nil {
		return err
	}
	if err := postgres.BulkUpsert(context, ingestor.db, Communities, batch.communities); err != nil {
		return err
	}
	if err := postgres.BulkUpsert(context, ingestor.db, Posts, batch.posts); err != nil {
		return err
	}
	if err := postgres.BulkUpsert(context, ingestor.db, LemmyIDs, batch.lemmyIDs); err != nil {
		return err
	}
	if err := postgres.BulkUpsert(context, ingestor.db, Words, batch.words); err != nil {
		return err
	}
	if err := postgres.BulkUpsert(context, ingestor.db, Xrefs, batch.xrefs); err != nil {
		return err
	}

	ingestor.logger.Debug("page_ingested",
		slog.String("instance", instanceActorID),
		slog.Int("posts", len(batch.posts)),
		slog.Int("words", len(batch.words)),
		slog.Int("xrefs", len(batch.xrefs)),
	)

	return nil
}

// batch holds the disjoint row sets derived from one listing page.
type batch struct {
	authors     []Author
	communities []Community
	posts       []Post
	lemmyIDs    []LemmyID
	words       []Word
	xrefs       []Xref
}

// buildBatch normalizes a listing page into row sets, deduplicated by each
// table's key so a single statement never touches the same row twice.
func buildBatch(instanceActorID string, posts []lemmy.PostData) batch {
	var b batch

	seenAuthors := make(map[string]struct{})
	seenCommunities := make(map[string]struct{})
	seenPosts := make(map[string]struct{})
	seenWords := make(map[string]struct{})
	seenXrefs := make(map[Xref]struct{})

	for _, data := range posts {
		if _, ok := seenPosts[data.Post.ApID]; ok {
			continue
		}
		seenPosts[data.Post.ApID] = struct{}{}

		if _, ok := seenAuthors[data.Creator.ActorID]; !ok {
			seenAuthors[data.Creator.ActorID] = struct{}{}
			b.authors = append(b.authors, Author{
				ActorID:     data.Creator.ActorID,
				Name:        data.Creator.Name,
				DisplayName: data.Creator.DisplayName,
				Avatar:      data.Creator.Avatar,
			})
		}

		if _, ok := seenCommunities[data.Community.ActorID]; !ok {
			seenCommunities[data.Community.ActorID] = struct{}{}
			b.communities = append(b.communities, Community{
				ActorID: data.Community.ActorID,
				Name:    data.Community.Name,
				Title:   data.Community.Title,
				Icon:    data.Community.Icon,
			})
		}

		b.posts = append(b.posts, Post{
			ApID:          data.Post.ApID,
			AuthorActorID: data.Creator.ActorID,
			CommunityApID: data.Community.ActorID,
			Name:          data.Post.Name,
			Body:          data.Post.Body,
			Score:         data.Counts.Score,
			NSFW:          data.Post.NSFW,
			Updated:       updatedAt(data.Post),
		})

		b.lemmyIDs = append(b.lemmyIDs, LemmyID{
			PostRemoteID:    data.Post.ID,
			PostActorID:     data.Post.ApID,
			InstanceActorID: instanceActorID,
		})

		for _, term := range Analyze(data.Post.Name, pointer.Val(data.Post.Body)) {
			id := WordID(term)
			if _, ok := seenWords[id]; !ok {
				seenWords[id] = struct{}{}
				b.words = append(b.words, Word{ID: id, Word: term})
			}

			xref := Xref{WordID: id, PostApID: data.Post.ApID}
			if _, ok := seenXrefs[xref]; !ok {
				seenXrefs[xref] = struct{}{}
				b.xrefs = append(b.xrefs, xref)
			}
		}
	}

	return b
}

// updatedAt prefers the edit timestamp, falling back to publication.
func updatedAt(post lemmy.Post) time.Time {
	if post.Updated != nil {
		return post.Updated.Time
	}
	return post.Published.Time
}
