package domain

// Document is one tenant corpus document. Immutable once loaded; owned by
// the document source, the pipeline only reads it.
type Document struct {
	ID       string
	Filename string
	Content  string
}
