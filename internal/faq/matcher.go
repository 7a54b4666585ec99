package faq

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Scoring weights and thresholds for combined keyword/similarity matching.
const (
	keywordWeight  = 0.6
	semanticWeight = 0.4
	variantBonus   = 0.3

	// BestMatchThreshold is the minimum combined score for a single
	// confident answer.
	BestMatchThreshold = 0.3

	// MultiMatchThreshold is the looser minimum used when listing
	// several candidate entries.
	MultiMatchThreshold = 0.25
)

// Match is a scored catalog entry.
type Match struct {
	Entry      *Entry
	Confidence float64
	Category   string
}

// Matcher scores user queries against the FAQ catalog.
// It is stateless after construction and safe for concurrent use.
type Matcher struct {
	entries []*Entry
}

// NewMatcher builds a matcher over the embedded catalog.
func NewMatcher() (*Matcher, error) {
	entries, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	return &Matcher{entries: entries}, nil
}

// NewMatcherWithEntries builds a matcher over a custom entry set.
// Used in tests.
func NewMatcherWithEntries(entries []*Entry) *Matcher {
	return &Matcher{entries: entries}
}

// normalize lowercases text, strips punctuation while keeping Arabic
// letters, and collapses whitespace. Text is NFC-normalized first so
// composed and decomposed accents compare equal.
func normalize(text string) string {
	text = norm.NFC.String(text)
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		case r >= 0x0600 && r <= 0x06FF:
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// keywordScore is the fraction of the entry's keywords found in the
// query, plus a fixed bonus when a known phrasing variant appears,
// clamped to 1.0. Keywords and variants go through the same
// normalization as the query, so "s'inscrire" matches "s inscrire".
func (m *Matcher) keywordScore(query string, e *Entry) float64 {
	hits := 0
	for _, kw := range e.Keywords {
		if k := normalize(kw); k != "" && strings.Contains(query, k) {
			hits++
		}
	}

	bonus := 0.0
	for _, v := range e.Variants {
		if nv := normalize(v); nv != "" && strings.Contains(query, nv) {
			bonus = variantBonus
			break
		}
	}

	keywords := len(e.Keywords)
	if keywords == 0 {
		keywords = 1
	}

	return math.Min(float64(hits)/float64(keywords)+bonus, 1.0)
}

// semanticScore is the best similarity between the query and the
// entry's canonical question or any of its variants.
func (m *Matcher) semanticScore(query string, e *Entry) float64 {
	best := similarityRatio(query, normalize(e.Question))
	for _, v := range e.Variants {
		if sim := similarityRatio(query, normalize(v)); sim > best {
			best = sim
		}
	}
	return best
}

func (m *Matcher) score(query string, e *Entry) float64 {
	return m.keywordScore(query, e)*keywordWeight + m.semanticScore(query, e)*semanticWeight
}

// FindBestMatch returns the highest-scoring entry at or above
// BestMatchThreshold, or nil when nothing scores high enough.
// Ties keep the earlier catalog entry.
func (m *Matcher) FindBestMatch(query string) *Match {
	normalized := normalize(query)

	var best *Entry
	bestScore := 0.0
	for _, e := range m.entries {
		if score := m.score(normalized, e); score > bestScore {
			bestScore, best = score, e
		}
	}

	if best == nil || bestScore < BestMatchThreshold {
		return nil
	}
	return &Match{
		Entry:      best,
		Confidence: round2(bestScore),
		Category:   best.Category,
	}
}

// FindMultipleMatches returns up to topK entries scoring at or above
// MultiMatchThreshold, highest first. Equal scores keep catalog order.
func (m *Matcher) FindMultipleMatches(query string, topK int) []*Match {
	normalized := normalize(query)

	var matches []*Match
	for _, e := range m.entries {
		score := m.score(normalized, e)
		if score >= MultiMatchThreshold {
			matches = append(matches, &Match{
				Entry:      e,
				Confidence: round2(score),
				Category:   e.Category,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// EntriesByCategory returns the catalog entries of one category in
// catalog order.
func (m *Matcher) EntriesByCategory(category string) []*Entry {
	var entries []*Entry
	for _, e := range m.entries {
		if e.Category == category {
			entries = append(entries, e)
		}
	}
	return entries
}

// Categories returns the distinct categories in catalog order.
func (m *Matcher) Categories() []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, e := range m.entries {
		if _, ok := seen[e.Category]; !ok {
			seen[e.Category] = struct{}{}
			categories = append(categories, e.Category)
		}
	}
	return categories
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
