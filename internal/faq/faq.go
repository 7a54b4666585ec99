// Package faq provides the multilingual FAQ catalog and its matcher.
// Answers are templates with {placeholder} tokens that are resolved
// against the selected institution at answer time, so the same catalog
// serves every university.
package faq

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed catalog.json
var catalogJSON []byte

// Entry is one FAQ item with trilingual answers.
type Entry struct {
	ID       int               `json:"id"`
	Category string            `json:"category"`
	Question string            `json:"question"`
	Answers  map[string]string `json:"answers"`
	Keywords []string          `json:"keywords"`
	Variants []string          `json:"variants"`
}

// LoadCatalog parses the embedded FAQ catalog.
func LoadCatalog() ([]*Entry, error) {
	var entries []*Entry
	if err := json.Unmarshal(catalogJSON, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse FAQ catalog: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("FAQ catalog is empty")
	}

	for _, e := range entries {
		if e.Answers["en"] == "" {
			return nil, fmt.Errorf("FAQ entry %d has no English answer", e.ID)
		}
		if len(e.Keywords) == 0 {
			return nil, fmt.Errorf("FAQ entry %d has no keywords", e.ID)
		}
	}

	return entries, nil
}
