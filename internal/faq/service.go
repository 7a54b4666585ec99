package faq

import (
	"github.com/nbenali/campusbot-go/internal/directory"
	"github.com/nbenali/campusbot-go/internal/lang"
)

// Result is the outcome of a catalog lookup. When Found is false,
// Language still carries the detected language so the caller can
// answer in the user's tongue.
type Result struct {
	Found      bool
	Answer     string
	Question   string
	Confidence float64
	Category   string
	Language   lang.Language
}

// Service ties language detection, matching and placeholder rendering
// into a single lookup.
type Service struct {
	matcher *Matcher
}

// NewService builds the FAQ service over the embedded catalog.
func NewService() (*Service, error) {
	matcher, err := NewMatcher()
	if err != nil {
		return nil, err
	}
	return &Service{matcher: matcher}, nil
}

// Matcher exposes the underlying matcher for category browsing.
func (s *Service) Matcher() *Matcher {
	return s.matcher
}

// Search finds the best catalog answer for query, rendered in the
// detected language with the institution's data filled in. Answers
// missing a translation fall back to English.
func (s *Service) Search(query string, inst *directory.Institution) Result {
	detected := lang.Detect(query)

	match := s.matcher.FindBestMatch(query)
	if match == nil {
		return Result{Found: false, Language: detected}
	}

	answer := match.Entry.Answers[string(detected)]
	if answer == "" {
		answer = match.Entry.Answers["en"]
	}

	return Result{
		Found:      true,
		Answer:     Fill(answer, BuildPlaceholders(inst)),
		Question:   match.Entry.Question,
		Confidence: match.Confidence,
		Category:   match.Category,
		Language:   detected,
	}
}
