package schema

// CoreComicDocumentTable represents the 'core.comicdocument' table
type CoreComicDocumentTable struct {
	Table     string
	Title     string
	Document  string
	Version   string
	CreatedAt string
	UpdatedAt string
}

// CoreComicDocument is the schema definition for core.comicdocument
var CoreComicDocument = CoreComicDocumentTable{
	Table:     "core.comicdocument",
	Title:     "title",
	Document:  "doc",
	Version:   "version",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t CoreComicDocumentTable) Columns() []string {
	return []string{t.Title, t.Document, t.Version, t.CreatedAt, t.UpdatedAt}
}
