package schema

// RefSiteTable represents the 'sites' table
type RefSiteTable struct {
	Table           string
	ActorID         string
	Name            string
	LastPostPage    string
	LastCommentPage string
	LastUpdate      string
}

// RefSite is the schema definition for sites
var RefSite = RefSiteTable{
	Table:           "sites",
	ActorID:         "actor_id",
	Name:            "name",
	LastPostPage:    "last_post_page",
	LastCommentPage: "last_comment_page",
	LastUpdate:      "last_update",
}

func (t RefSiteTable) Columns() []string {
	return []string{t.ActorID, t.Name, t.LastPostPage, t.LastCommentPage, t.LastUpdate}
}
