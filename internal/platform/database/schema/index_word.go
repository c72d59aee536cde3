package schema

// RefWordTable represents the 'words' table
type RefWordTable struct {
	Table string
	ID    string
	Word  string
}

// RefWord is the schema definition for words
var RefWord = RefWordTable{
	Table: "words",
	ID:    "id",
	Word:  "word",
}

func (t RefWordTable) Columns() []string {
	return []string{t.ID, t.Word}
}
