package schema

// RefCommunityTable represents the 'communities' table
type RefCommunityTable struct {
	Table   string
	ActorID string
	Name    string
	Title   string
	Icon    string
}

// RefCommunity is the schema definition for communities
var RefCommunity = RefCommunityTable{
	Table:   "communities",
	ActorID: "actor_id",
	Name:    "name",
	Title:   "title",
	Icon:    "icon",
}

func (t RefCommunityTable) Columns() []string {
	return []string{t.ActorID, t.Name, t.Title, t.Icon}
}
