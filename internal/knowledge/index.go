package knowledge

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/crawlab-team/bm25/bm25"
)

// Index provides BM25 keyword search over snippets.
// BM25 cannot be updated incrementally, so writes trigger a rebuild.
type Index struct {
	mu          sync.RWMutex
	bm25Okapi   *bm25.BM25Okapi
	snippets    []*Snippet // docID -> snippet
	initialized bool
}

// scored pairs a snippet with its BM25 score.
type scored struct {
	snippet *Snippet
	score   float64
}

// NewIndex creates an empty index. Call Rebuild before searching.
func NewIndex() *Index {
	return &Index{}
}

// Rebuild replaces the index contents with the given snippets.
func (idx *Index) Rebuild(snippets []*Snippet) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var docs []*Snippet
	var corpus []string
	for _, sn := range snippets {
		text := strings.TrimSpace(sn.Title + " " + sn.Content)
		if text == "" {
			continue
		}
		docs = append(docs, sn)
		corpus = append(corpus, text)
	}

	if len(corpus) == 0 {
		idx.bm25Okapi = nil
		idx.snippets = nil
		idx.initialized = true
		return nil
	}

	// k1=1.5, b=0.75 are standard BM25 parameters
	bm25Okapi, err := bm25.NewBM25Okapi(corpus, tokenize, 1.5, 0.75, nil)
	if err != nil {
		return fmt.Errorf("failed to build BM25 index: %w", err)
	}

	idx.bm25Okapi = bm25Okapi
	idx.snippets = docs
	idx.initialized = true
	return nil
}

// IsReady reports whether Rebuild has run.
func (idx *Index) IsReady() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.initialized
}

// Count returns the number of indexed snippets.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.snippets)
}

// Search returns up to topN snippets for institutionID scored against
// query, best first. Snippets of other institutions never appear.
func (idx *Index) Search(query string, institutionID int64, topN int) ([]Snippet, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.initialized || idx.bm25Okapi == nil {
		return nil, nil
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	scores, err := idx.bm25Okapi.GetScores(tokens)
	if err != nil {
		return nil, fmt.Errorf("BM25 scoring failed: %w", err)
	}

	var hits []scored
	for docID, score := range scores {
		if score <= 0 {
			continue
		}
		sn := idx.snippets[docID]
		if sn.InstitutionID != institutionID {
			continue
		}
		hits = append(hits, scored{snippet: sn, score: score})
	}

	// Stable sort keeps index order among equal scores, so repeated
	// searches return ties in a deterministic order.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	if topN > 0 && len(hits) > topN {
		hits = hits[:topN]
	}

	results := make([]Snippet, len(hits))
	for i, h := range hits {
		results[i] = *h.snippet
	}
	return results, nil
}

// tokenize lowercases text and splits it into letter/digit runs.
// Arabic and accented Latin letters are kept intact.
func tokenize(text string) []string {
	text = strings.ToLower(text)

	var tokens []string
	var current strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}
