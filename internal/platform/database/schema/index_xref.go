package schema

// RefXrefTable represents the 'words_xref_posts' table
type RefXrefTable struct {
	Table    string
	WordID   string
	PostApID string
}

// RefXref is the schema definition for words_xref_posts
var RefXref = RefXrefTable{
	Table:    "words_xref_posts",
	WordID:   "word_id",
	PostApID: "post_ap_id",
}

func (t RefXrefTable) Columns() []string {
	return []string{t.WordID, t.PostApID}
}
