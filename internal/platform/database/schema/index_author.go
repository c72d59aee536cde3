package schema

// RefAuthorTable represents the 'authors' table
type RefAuthorTable struct {
	Table       string
	ActorID     string
	Name        string
	DisplayName string
	Avatar      string
}

// RefAuthor is the schema definition for authors
var RefAuthor = RefAuthorTable{
	Table:       "authors",
	ActorID:     "actor_id",
	Name:        "name",
	DisplayName: "display_name",
	Avatar:      "avatar",
}

func (t RefAuthorTable) Columns() []string {
	return []string{t.ActorID, t.Name, t.DisplayName, t.Avatar}
}
