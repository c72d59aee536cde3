package site

import (
	"time"

	"github.com/buivan/fedisearch/internal/platform/database/schema"
)

// Site is one known instance of the federation and its crawl cursors.
type Site struct {
	ActorID         string    `json:"actor_id"`
	Name            string    `json:"name"`
	LastPostPage    int       `json:"last_post_page"`
	LastCommentPage int       `json:"last_comment_page"`
	LastUpdate      time.Time `json:"last_update"`
}

// InstanceView is the wire shape of one /instances entry.
type InstanceView struct {
	Site InstanceSite `json:"site"`
}

// InstanceSite carries the fields the UI's instance picker consumes.
type InstanceSite struct {
	ActorID string `json:"actor_id"`
	Name    string `json:"name"`
}

// Table describes the sites table.
var Table = schema.TableDef{
	Name: schema.RefSite.Table,
	Columns: []schema.Column{
		{Name: schema.RefSite.ActorID, Type: "VARCHAR NOT NULL"},
		{Name: schema.RefSite.Name, Type: "VARCHAR NOT NULL"},
		{Name: schema.RefSite.LastPostPage, Type: "INTEGER NOT NULL DEFAULT 0"},
		{Name: schema.RefSite.LastCommentPage, Type: "INTEGER NOT NULL DEFAULT 0"},
		{Name: schema.RefSite.LastUpdate, Type: "TIMESTAMP WITH TIME ZONE NOT NULL"},
	},
	Keys: []string{schema.RefSite.ActorID},
}
