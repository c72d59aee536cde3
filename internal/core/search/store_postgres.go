// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/buivan/fedisearch/internal/platform/database/schema"
	"github.com/buivan/fedisearch/internal/platform/dberr"
	"github.com/buivan/fedisearch/internal/platform/postgres"
	"github.com/buivan/fedisearch/pkg/pagination"
)

type PostgresRepository struct {
	db postgres.Querier
}

func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
Search runs the single ranked statement over the index.

Description: Posts are joined to their author, community, and the caller's
instance-local ID row. Matching is websearch_to_tsquery over the stored
tsvector; ranking is ts_rank_cd with flag 12, which normalizes by document
length and by unique word count, with the post score as tiebreaker. The
total match count rides along on every row via a window function.

Optional filters are appended as numbered WHERE fragments, so parameter
positions always line up with the argument vector regardless of which
filters the query carries.

Parameters:
  - context: context.Context
  - q: Query (parsed filters, home instance, page)

Returns:
  - []Post: One page of ranked hits
  - int: Total matches across all pages
  - error: Database failures
*/
func (repository *PostgresRepository) Search(context context.Context, q Query) ([]Post, int, error) {

	// 1. Mandatory predicates: the text match and the caller's viewpoint
	conditions := []string{
		fmt.Sprintf("p.%s @@ websearch_to_tsquery($1)", schema.RefPost.ComSearch),
		fmt.Sprintf("l.%s = $2", schema.RefLemmyID.InstanceActorID),
	}
	args := []any{q.Text, q.HomeInstance}

	place := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	// 2. Optional filters
	if q.Instance != nil {
		conditions = append(conditions, fmt.Sprintf(
			"c.%s LIKE %s || '%%'", schema.RefCommunity.ActorID, place(*q.Instance)))
	}
	if q.Community != nil {
		conditions = append(conditions, fmt.Sprintf(
			"c.%s = %s", schema.RefCommunity.ActorID, place(*q.Community)))
	}
	if q.Author != nil {
		conditions = append(conditions, fmt.Sprintf(
			"p.%s = %s", schema.RefPost.AuthorActorID, place(*q.Author)))
	}
	if !q.NSFW {
		conditions = append(conditions, fmt.Sprintf("p.%s = FALSE", schema.RefPost.NSFW))
	}
	if q.Since != nil {
		conditions = append(conditions, fmt.Sprintf(
			"p.%s > %s", schema.RefPost.Updated, place(*q.Since)))
	}
	if q.Until != nil {
		conditions = append(conditions, fmt.Sprintf(
			"p.%s < %s", schema.RefPost.Updated, place(*q.Until)))
	}

	// 3. Result window
	window := pagination.Params{Page: q.Page, Limit: pagination.DefaultLimit}

	statement := fmt.Sprintf(`
		SELECT
			p.%s,
			left(p.%s, 300),
			p.%s,
			l.%s,
			a.%s, a.%s, a.%s, a.%s,
			c.%s, c.%s, c.%s, c.%s,
			COUNT(*) OVER() AS total_results,
			ts_rank_cd(p.%s, websearch_to_tsquery($1), 12) AS rank
		FROM %s AS p
			INNER JOIN %s AS a ON a.%s = p.%s
			INNER JOIN %s AS c ON c.%s = p.%s
			INNER JOIN %s AS l ON l.%s = p.%s
		WHERE %s
		ORDER BY rank DESC, p.%s DESC
		LIMIT %d OFFSET %s;
	`,
		schema.RefPost.Name,
		schema.RefPost.Body,
		schema.RefPost.Updated,
		schema.RefLemmyID.PostRemoteID,
		schema.RefAuthor.ActorID, schema.RefAuthor.Avatar, schema.RefAuthor.Name, schema.RefAuthor.DisplayName,
		schema.RefCommunity.ActorID, schema.RefCommunity.Icon, schema.RefCommunity.Name, schema.RefCommunity.Title,
		schema.RefPost.ComSearch,
		schema.RefPost.Table,
		schema.RefAuthor.Table, schema.RefAuthor.ActorID, schema.RefPost.AuthorActorID,
		schema.RefCommunity.Table, schema.RefCommunity.ActorID, schema.RefPost.CommunityApID,
		schema.RefLemmyID.Table, schema.RefLemmyID.PostActorID, schema.RefPost.ApID,
		strings.Join(conditions, "\n\t\t\tAND "),
		schema.RefPost.Score,
		window.Limit, place(window.Offset()),
	)

	rows, err := repository.db.Query(context, statement, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "search_posts")
	}
	defer rows.Close()

	var posts []Post
	var total int
	for rows.Next() {
		var post Post
		var rank float32
		err := rows.Scan(
			&post.Name, &post.Body, &post.Updated, &post.RemoteID,
			&post.Author.ActorID, &post.Author.Avatar, &post.Author.Name, &post.Author.DisplayName,
			&post.Community.ActorID, &post.Community.Icon, &post.Community.Name, &post.Community.Title,
			&total, &rank,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_search_post")
		}
		posts = append(posts, post)
	}

	return posts, total, nil
}
