package types

// FileLocation identifies a match inside a scanned file.
type FileLocation struct {
	Path   string `json:"path"` // relative to the corpus root
	Line   int    `json:"line"` // 1-based
	Column int    `json:"column"`
}

// DBLocation identifies a match inside a scanned table cell. It carries
// enough identity for a downstream editor to re-fetch and update the exact
// cell by primary key.
type DBLocation struct {
	Table    string `json:"table"`
	Column   string `json:"column"`
	PKColumn string `json:"pk_column"`
	PKValue  string `json:"pk_value"`
}

// MatchRecord is one reported occurrence of the search term. Records are
// immutable once produced and owned by the result store, never by the
// session.
type MatchRecord struct {
	Kind SearchKind `json:"kind"`

	File *FileLocation `json:"file,omitempty"`
	DB   *DBLocation   `json:"db,omitempty"`

	// Preview is a bounded snippet with the match wrapped in <mark> tags.
	// Corpus content is escaped before rendering; the preview is safe to
	// display as markup.
	Preview string `json:"preview"`

	// FromStructured marks a match found inside a decoded composite value
	// rather than the raw cell text; StructPath names the leaf, e.g.
	// "[2]->field".
	FromStructured bool   `json:"from_structured,omitempty"`
	StructPath     string `json:"struct_path,omitempty"`
}
