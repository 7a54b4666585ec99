// Package knowledge stores per-institution reference snippets and
// retrieves the ones most relevant to a student's question. Retrieval
// is BM25 keyword search; snippets feed the language model as grounding
// context.
package knowledge

import "context"

// Snippet is one piece of institution-specific reference text.
type Snippet struct {
	ID            int64
	InstitutionID int64
	Title         string
	Content       string
	Language      string // ISO 639-1 code, informational only
}

// Searcher retrieves grounding material for one institution: snippets
// relevant to a query and a prose summary of the institution itself.
type Searcher interface {
	Search(ctx context.Context, query string, institutionID int64, limit int) ([]Snippet, error)

	// InstitutionContext returns a short summary of the institution
	// (name, location, contact points) for the system prompt. An
	// unknown institution yields "" without an error.
	InstitutionContext(ctx context.Context, institutionID int64) (string, error)
}
