package faq

import (
	"testing"

	"github.com/nbenali/campusbot-go/internal/lang"
)

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := NewMatcher()
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}
	return m
}

func TestLoadCatalog(t *testing.T) {
	entries, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if len(entries) != 22 {
		t.Errorf("expected 22 entries, got %d", len(entries))
	}

	for _, e := range entries {
		for _, code := range []string{"en", "ar", "fr"} {
			if e.Answers[code] == "" {
				t.Errorf("entry %d missing %s answer", e.ID, code)
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hello, World!", "hello world"},
		{"  comment   s'inscrire?  ", "comment s inscrire"},
		{"مرحبا!", "مرحبا"},
		{"Où est la bibliothèque?", "où est la bibliothèque"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := normalize(tc.in); got != tc.want {
			t.Errorf("normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSimilarityRatio(t *testing.T) {
	if got := similarityRatio("abc", "abc"); got != 1.0 {
		t.Errorf("identical strings should score 1.0, got %v", got)
	}
	if got := similarityRatio("abc", "xyz"); got != 0.0 {
		t.Errorf("disjoint strings should score 0.0, got %v", got)
	}
	if got := similarityRatio("", ""); got != 1.0 {
		t.Errorf("two empty strings should score 1.0, got %v", got)
	}

	got := similarityRatio("registration", "registrations")
	if got <= 0.9 || got >= 1.0 {
		t.Errorf("near-identical strings should score just under 1.0, got %v", got)
	}
}

func TestFindBestMatchFrenchRegistration(t *testing.T) {
	m := newTestMatcher(t)

	match := m.FindBestMatch("Bonjour, comment s'inscrire?")
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.Category != "registration" {
		t.Errorf("expected registration entry, got %q (entry %d)", match.Category, match.Entry.ID)
	}
	if match.Confidence < 0.3 {
		t.Errorf("expected confidence >= 0.3, got %v", match.Confidence)
	}
}

func TestFindBestMatchArabicGreeting(t *testing.T) {
	m := newTestMatcher(t)

	match := m.FindBestMatch("مرحبا")
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.Category != "greeting" {
		t.Errorf("expected greeting entry, got %q", match.Category)
	}
}

func TestFindBestMatchEnglishQueries(t *testing.T) {
	cases := []struct {
		query    string
		category string
	}{
		{"What are the library hours?", "campus"},
		{"How much are the tuition fees?", "tuition"},
		{"When are the exams?", "exams"},
		{"thanks a lot", "greeting"},
	}

	m := newTestMatcher(t)
	for _, tc := range cases {
		match := m.FindBestMatch(tc.query)
		if match == nil {
			t.Errorf("FindBestMatch(%q) returned nil", tc.query)
			continue
		}
		if match.Category != tc.category {
			t.Errorf("FindBestMatch(%q) = %q, want %q", tc.query, match.Category, tc.category)
		}
	}
}

func TestFindBestMatchNoMatch(t *testing.T) {
	m := newTestMatcher(t)

	if match := m.FindBestMatch("zzqxv blorp"); match != nil {
		t.Errorf("gibberish should not match, got entry %d with %v", match.Entry.ID, match.Confidence)
	}
}

func TestFindBestMatchIdempotent(t *testing.T) {
	m := newTestMatcher(t)

	first := m.FindBestMatch("how do I register for courses")
	second := m.FindBestMatch("how do I register for courses")

	if first == nil || second == nil {
		t.Fatal("expected matches")
	}
	if first.Entry.ID != second.Entry.ID || first.Confidence != second.Confidence {
		t.Error("repeated queries should produce identical results")
	}
}

func TestFindMultipleMatches(t *testing.T) {
	m := newTestMatcher(t)

	matches := m.FindMultipleMatches("exam schedule and registration deadline", 3)
	if len(matches) == 0 {
		t.Fatal("expected at least one match")
	}
	if len(matches) > 3 {
		t.Errorf("expected at most 3 matches, got %d", len(matches))
	}

	for i, match := range matches {
		if match.Confidence < MultiMatchThreshold {
			t.Errorf("match %d below threshold: %v", i, match.Confidence)
		}
		if i > 0 && matches[i-1].Confidence < match.Confidence {
			t.Error("matches should be sorted by descending confidence")
		}
	}
}

func TestEntriesByCategory(t *testing.T) {
	m := newTestMatcher(t)

	greetings := m.EntriesByCategory("greeting")
	if len(greetings) != 4 {
		t.Errorf("expected 4 greeting entries, got %d", len(greetings))
	}
	if entries := m.EntriesByCategory("nonexistent"); len(entries) != 0 {
		t.Errorf("unknown category should be empty, got %d", len(entries))
	}
}

func TestCategories(t *testing.T) {
	m := newTestMatcher(t)

	categories := m.Categories()
	if len(categories) != 11 {
		t.Errorf("expected 11 categories, got %d: %v", len(categories), categories)
	}
	if categories[0] != "greeting" {
		t.Errorf("categories should keep catalog order, got %v first", categories[0])
	}
}

func TestSearchLanguageMatchedAnswer(t *testing.T) {
	svc, err := NewService()
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	result := svc.Search("Bonjour, comment s'inscrire?", nil)
	if !result.Found {
		t.Fatal("expected a result")
	}
	if result.Language != lang.French {
		t.Errorf("expected fr, got %q", result.Language)
	}
	if result.Category != "registration" {
		t.Errorf("expected registration, got %q", result.Category)
	}
}

func TestSearchNotFoundCarriesLanguage(t *testing.T) {
	svc, err := NewService()
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	result := svc.Search("zzqxv blorp", nil)
	if result.Found {
		t.Error("gibberish should not be found")
	}
	if result.Language != lang.English {
		t.Errorf("expected en, got %q", result.Language)
	}
}
