// Package store holds the loaded project updates, the current filtered view
// and the selected update.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/filter"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/loader"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/normalize"
)

// ErrNotFound is returned when an update id is not in the loaded collection.
var ErrNotFound = errors.New("update not found")

// Store is the in-memory snapshot of one load. Concurrent loads are not
// coalesced: whichever finishes last replaces the snapshot.
type Store struct {
	fetcher    loader.Fetcher
	normalizer *normalize.Normalizer

	mu       sync.Mutex
	projects []models.ProjectInfo
	all      []*models.NormalizedProject
	filtered []*models.NormalizedProject
	selected *models.NormalizedProject
	loadedAt time.Time
}

// New creates an empty store that loads through f.
func New(f loader.Fetcher, n *normalize.Normalizer) *Store {
	return &Store{
		fetcher:    f,
		normalizer: n,
		projects:   []models.ProjectInfo{},
		all:        []*models.NormalizedProject{},
		filtered:   []*models.NormalizedProject{},
	}
}

// Load fetches and normalizes a fresh dataset and replaces the snapshot with
// it. Fetch failures are returned unchanged and leave the snapshot intact.
func (s *Store) Load(ctx context.Context) (*models.Dataset, error) {
	raw, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	ds := s.normalizer.Dataset(raw)
	s.Replace(ds)
	log.Printf("Loaded %d updates across %d projects", len(ds.ProjectSummaries), len(ds.Projects))
	return ds, nil
}

// Replace installs an already normalized dataset. The filtered view is reset
// to the full collection and any selection is cleared, since it refers to
// the previous snapshot.
func (s *Store) Replace(ds *models.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = ds.Projects
	s.all = ds.ProjectSummaries
	s.filtered = ds.ProjectSummaries
	s.selected = nil
	s.loadedAt = time.Now()
}

// FilterProjects recomputes and caches the filtered view.
func (s *Store) FilterProjects(query, project, typ string) []*models.NormalizedProject {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filtered = filter.Apply(s.all, filter.Criteria{Query: query, Project: project, Type: typ})
	return clone(s.filtered)
}

// FilteredProjects returns the cached filtered view.
func (s *Store) FilteredProjects() []*models.NormalizedProject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.filtered)
}

// Updates returns the full normalized collection.
func (s *Store) Updates() []*models.NormalizedProject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.all)
}

// AllProjects returns the project roster of the current snapshot.
func (s *Store) AllProjects() []models.ProjectInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ProjectInfo{}, s.projects...)
}

// LoadedAt reports when the current snapshot was installed.
func (s *Store) LoadedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadedAt
}

// Select records p as the selection and returns it. The update itself is
// not touched.
func (s *Store) Select(p *models.NormalizedProject) *models.NormalizedProject {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = p
	return p
}

// SelectByID selects the update with the given id from the full collection.
func (s *Store) SelectByID(id string) (*models.NormalizedProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.all {
		if p.ID == id {
			s.selected = p
			return p, nil
		}
	}
	return nil, fmt.Errorf("select %q: %w", id, ErrNotFound)
}

// Selected returns the current selection, if any.
func (s *Store) Selected() (*models.NormalizedProject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.selected != nil
}

// ClearSelection drops the current selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

func clone(ps []*models.NormalizedProject) []*models.NormalizedProject {
	return append([]*models.NormalizedProject{}, ps...)
}
