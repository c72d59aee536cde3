// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package lemmy speaks the public HTTP API of Lemmy instances.

It contains the wire models for the listing endpoints the crawler consumes
and a Fetcher that binds an HTTP client to a single instance hostname.
Only the fields the indexing pipeline needs are declared; everything else in
the upstream responses is ignored.
*/
package lemmy

import (
	"fmt"
	"strings"
	"time"
)

// naiveLayout is the timezone-less timestamp format emitted by older
// instance versions. Newer versions emit RFC 3339.
const naiveLayout = "2006-01-02T15:04:05.999999"

// Time decodes both timestamp formats found in the federation.
type Time struct {
	time.Time
}

// UnmarshalJSON accepts RFC 3339 or the naive layout, normalized to UTC.
func (t *Time) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		parsed, err = time.Parse(naiveLayout, raw)
		if err != nil {
			return fmt.Errorf("lemmy: unsupported timestamp %q", raw)
		}
	}

	t.Time = parsed.UTC()
	return nil
}

// # Site metadata

// Site identifies one instance in the federation.
type Site struct {
	ActorID string `json:"actor_id"`
	Name    string `json:"name"`
}

// SiteView wraps Site the way the upstream API nests it.
type SiteView struct {
	Site Site `json:"site"`
}

// SiteResponse is the body of GET /api/v3/site.
type SiteResponse struct {
	SiteView SiteView `json:"site_view"`
}

// Instance is one federated peer of an instance.
type Instance struct {
	Domain string `json:"domain"`
}

// FederatedInstances groups peers by federation policy.
type FederatedInstances struct {
	Linked  []Instance `json:"linked"`
	Allowed []Instance `json:"allowed"`
	Blocked []Instance `json:"blocked"`
}

// FederatedInstancesResponse is the body of GET /api/v3/federated_instances.
type FederatedInstancesResponse struct {
	FederatedInstances FederatedInstances `json:"federated_instances"`
}

// # Post listings

// Post is the federation-wide identity and content of a post.
type Post struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Body      *string `json:"body"`
	ApID      string  `json:"ap_id"`
	NSFW      bool    `json:"nsfw"`
	Published Time    `json:"published"`
	Updated   *Time   `json:"updated"`
}

// Person is the author of a post.
type Person struct {
	ActorID     string  `json:"actor_id"`
	Name        string  `json:"name"`
	DisplayName *string `json:"display_name"`
	Avatar      *string `json:"avatar"`
}

// Community is the community a post was published in.
type Community struct {
	ActorID string  `json:"actor_id"`
	Name    string  `json:"name"`
	Title   *string `json:"title"`
	Icon    *string `json:"icon"`
}

// Counts carries the vote aggregates of a post.
type Counts struct {
	Score int64 `json:"score"`
}

// PostData is one entry of a post listing: the post plus its author,
// community, and aggregates.
type PostData struct {
	Post      Post      `json:"post"`
	Creator   Person    `json:"creator"`
	Community Community `json:"community"`
	Counts    Counts    `json:"counts"`
}

// PostListResponse is the body of GET /api/v3/post/list.
type PostListResponse struct {
	Posts []PostData `json:"posts"`
}
