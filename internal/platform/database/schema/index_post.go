package schema

// RefPostTable represents the 'posts' table
type RefPostTable struct {
	Table         string
	ApID          string
	AuthorActorID string
	CommunityApID string
	Name          string
	Body          string
	Score         string
	NSFW          string
	Updated       string
	ComSearch     string
}

// RefPost is the schema definition for posts
var RefPost = RefPostTable{
	Table:         "posts",
	ApID:          "ap_id",
	AuthorActorID: "author_actor_id",
	CommunityApID: "community_ap_id",
	Name:          "name",
	Body:          "body",
	Score:         "score",
	NSFW:          "nsfw",
	Updated:       "updated",
	ComSearch:     "com_search",
}

func (t RefPostTable) Columns() []string {
	return []string{t.ApID, t.AuthorActorID, t.CommunityApID, t.Name, t.Body, t.Score, t.NSFW, t.Updated, t.ComSearch}
}
