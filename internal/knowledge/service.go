package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/nbenali/campusbot-go/internal/directory"
	domerrors "github.com/nbenali/campusbot-go/internal/errors"
	"github.com/nbenali/campusbot-go/internal/logger"
)

// Service combines the snippet store with the BM25 index. The index is
// built lazily on first search and rebuilt after writes; concurrent
// rebuild requests are collapsed into one. The directory supplies the
// institution summaries returned by InstitutionContext.
type Service struct {
	store *Store
	dir   directory.Directory
	index *Index
	log   *logger.Logger
	group singleflight.Group
}

// NewService creates a knowledge service over the given store. dir may
// be nil, in which case InstitutionContext always returns "".
func NewService(store *Store, dir directory.Directory, log *logger.Logger) *Service {
	return &Service{
		store: store,
		dir:   dir,
		index: NewIndex(),
		log:   log.WithModule("knowledge"),
	}
}

// Refresh rebuilds the search index from the store. Concurrent calls
// share one rebuild.
func (s *Service) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do("rebuild", func() (any, error) {
		snippets, err := s.store.AllSnippets(ctx)
		if err != nil {
			return nil, fmt.Errorf("load snippets: %w", err)
		}
		if err := s.index.Rebuild(snippets); err != nil {
			return nil, err
		}
		s.log.WithField("snippets", len(snippets)).Debug("knowledge index rebuilt")
		return nil, nil
	})
	return err
}

// AddSnippet stores a snippet and rebuilds the index.
func (s *Service) AddSnippet(ctx context.Context, sn *Snippet) error {
	id, err := s.store.SaveSnippet(ctx, sn)
	if err != nil {
		return err
	}
	sn.ID = id
	return s.Refresh(ctx)
}

// Close releases the underlying snippet store.
func (s *Service) Close() error {
	return s.store.Close()
}

// Count returns the number of stored snippets.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.CountSnippets(ctx)
}

// InstitutionContext renders a short factual summary of the institution
// from the directory. An unknown or inactive institution, or a service
// built without a directory, yields "" without an error.
func (s *Service) InstitutionContext(ctx context.Context, institutionID int64) (string, error) {
	if s.dir == nil {
		return "", nil
	}
	inst, err := s.dir.Institution(ctx, institutionID)
	if err != nil {
		if errors.Is(err, domerrors.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s is a higher-education institution", inst.Name)
	if inst.City != "" {
		fmt.Fprintf(&b, " located in %s", inst.City)
	}
	b.WriteString(".")
	if inst.Website != "" {
		fmt.Fprintf(&b, " Website: %s.", inst.Website)
	}
	if inst.Email != "" {
		fmt.Fprintf(&b, " Contact email: %s.", inst.Email)
	}
	if inst.Phone != "" {
		fmt.Fprintf(&b, " Phone: %s.", inst.Phone)
	}
	if inst.Address != "" {
		fmt.Fprintf(&b, " Address: %s.", inst.Address)
	}
	return b.String(), nil
}

// Search returns up to limit snippets relevant to query for the given
// institution.
func (s *Service) Search(ctx context.Context, query string, institutionID int64, limit int) ([]Snippet, error) {
	if !s.index.IsReady() {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return s.index.Search(query, institutionID, limit)
}
