package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/atinyakov/devshowcase/internal/apperr"
	"github.com/atinyakov/devshowcase/internal/models"
	"github.com/google/uuid"
)

// MemoryProjectRepository keeps projects in process memory. It mirrors
// the PostgreSQL repository's ordering, cursor and uniqueness rules and
// backs the server when no database is configured.
type MemoryProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]models.Project
	now      func() time.Time
}

// NewMemoryProjectRepository returns an empty in-memory repository.
func NewMemoryProjectRepository() *MemoryProjectRepository {
	return &MemoryProjectRepository{
		projects: make(map[string]models.Project),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// FindMany lists projects newest first, starting at cursor when given.
func (m *MemoryProjectRepository) FindMany(
	_ context.Context,
	filter models.ProjectFilter,
	cursor string,
	limit int,
) ([]models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sorted := make([]models.Project, 0, len(m.projects))
	for _, p := range m.projects {
		if filter.Featured != nil && p.Featured != *filter.Featured {
			continue
		}
		sorted = append(sorted, p)
	}
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.PublishedAt.Equal(*b.PublishedAt) {
			return a.PublishedAt.After(*b.PublishedAt)
		}
		return a.ID > b.ID
	})

	start := 0
	if cursor != "" {
		c, ok := m.projects[cursor]
		if !ok {
			return []models.Project{}, nil
		}
		start = sort.Search(len(sorted), func(i int) bool {
			p := sorted[i]
			if !p.PublishedAt.Equal(*c.PublishedAt) {
				return p.PublishedAt.Before(*c.PublishedAt)
			}
			return p.ID <= c.ID
		})
	}

	out := make([]models.Project, 0, limit)
	for i := start; i < len(sorted) && len(out) < limit; i++ {
		out = append(out, clone(sorted[i]))
	}
	return out, nil
}

// FindUnique returns the project with id.
func (m *MemoryProjectRepository) FindUnique(_ context.Context, id string) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, apperr.NotFound("project not found")
	}
	c := clone(p)
	return &c, nil
}

// FindBySlug returns the project with slug.
func (m *MemoryProjectRepository) FindBySlug(_ context.Context, slug string) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.projects {
		if p.Slug == slug {
			c := clone(p)
			return &c, nil
		}
	}
	return nil, apperr.NotFound("project not found")
}

// Create stores a new project under a fresh UUID.
func (m *MemoryProjectRepository) Create(_ context.Context, in models.ProjectInput) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.slugTaken(in.Slug, "") {
		return nil, apperr.Conflict("slug already in use", nil)
	}

	now := m.now()
	p := apply(models.Project{ID: uuid.NewString(), CreatedAt: now}, in, now)
	if p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	m.projects[p.ID] = p

	c := clone(p)
	return &c, nil
}

// Update replaces the writable fields of project id.
func (m *MemoryProjectRepository) Update(_ context.Context, id string, in models.ProjectInput) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.projects[id]
	if !ok {
		return nil, apperr.NotFound("project not found")
	}
	if m.slugTaken(in.Slug, id) {
		return nil, apperr.Conflict("slug already in use", nil)
	}

	p := apply(existing, in, m.now())
	m.projects[id] = p

	c := clone(p)
	return &c, nil
}

// Delete removes project id and returns it.
func (m *MemoryProjectRepository) Delete(_ context.Context, id string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, apperr.NotFound("project not found")
	}
	delete(m.projects, id)

	c := clone(p)
	return &c, nil
}

func (m *MemoryProjectRepository) slugTaken(slug, exceptID string) bool {
	for id, p := range m.projects {
		if p.Slug == slug && id != exceptID {
			return true
		}
	}
	return false
}

// apply copies in onto p. A nil PublishedAt keeps the current value.
func apply(p models.Project, in models.ProjectInput, now time.Time) models.Project {
	p.Slug = in.Slug
	p.Title = in.Title
	p.Description = in.Description
	p.Content = copyString(in.Content)
	p.ImageURL = copyString(in.ImageURL)
	p.LiveURL = copyString(in.LiveURL)
	p.RepoURL = in.RepoURL
	p.Featured = in.Featured
	if in.PublishedAt != nil {
		t := in.PublishedAt.UTC()
		p.PublishedAt = &t
	}
	p.UpdatedAt = now
	return p
}

func clone(p models.Project) models.Project {
	p.Content = copyString(p.Content)
	p.ImageURL = copyString(p.ImageURL)
	p.LiveURL = copyString(p.LiveURL)
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		p.PublishedAt = &t
	}
	return p
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
