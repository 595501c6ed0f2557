package service

import (
	"context"
	"fmt"

	"github.com/atinyakov/devshowcase/internal/apperr"
	"github.com/atinyakov/devshowcase/internal/gate"
	"github.com/atinyakov/devshowcase/internal/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	// DefaultLimit is the page size used when the caller gives none.
	DefaultLimit = 10
	// MaxLimit is the largest page a caller may request.
	MaxLimit = 50
)

// ProjectRepository defines the persistence operations the project
// service needs. Lookups of unknown ids return apperr.KindNotFound.
type ProjectRepository interface {
	// FindMany returns up to limit projects ordered newest first,
	// starting at the project identified by cursor when it is non-empty.
	FindMany(ctx context.Context, filter models.ProjectFilter, cursor string, limit int) ([]models.Project, error)
	FindUnique(ctx context.Context, id string) (*models.Project, error)
	FindBySlug(ctx context.Context, slug string) (*models.Project, error)
	Create(ctx context.Context, in models.ProjectInput) (*models.Project, error)
	Update(ctx context.Context, id string, in models.ProjectInput) (*models.Project, error)
	Delete(ctx context.Context, id string) (*models.Project, error)
}

// ProjectService implements the public project queries and the
// gate-protected project mutations.
type ProjectService struct {
	repo     ProjectRepository
	gate     gate.Verifier
	validate *validator.Validate
	log      *zap.Logger
}

// NewProjectService constructs a ProjectService. verifier guards every
// mutation.
func NewProjectService(repo ProjectRepository, verifier gate.Verifier, log *zap.Logger) *ProjectService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectService{repo: repo, gate: verifier, validate: newValidator(), log: log}
}

// List returns one page of projects. It fetches one row more than asked;
// when that row exists it is dropped and its id becomes NextCursor.
func (s *ProjectService) List(ctx context.Context, params models.ListParams) (*models.Page, error) {
	limit := DefaultLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	if limit < 1 || limit > MaxLimit {
		return nil, apperr.Validation(fmt.Sprintf("limit must be between 1 and %d", MaxLimit), nil)
	}

	items, err := s.repo.FindMany(ctx, models.ProjectFilter{Featured: params.Featured}, params.Cursor, limit+1)
	if err != nil {
		return nil, collaboratorFailure(s.log, "list projects", err)
	}

	page := &models.Page{Items: items}
	if len(items) > limit {
		page.NextCursor = items[limit].ID
		page.Items = items[:limit]
	}
	if page.Items == nil {
		page.Items = []models.Project{}
	}
	return page, nil
}

// Get returns the project with id.
func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.repo.FindUnique(ctx, id)
	if err != nil {
		return nil, collaboratorFailure(s.log, "get project", err)
	}
	return p, nil
}

// GetBySlug returns the project with slug.
func (s *ProjectService) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, collaboratorFailure(s.log, "get project by slug", err)
	}
	return p, nil
}

// Create stores a new project once the claim is verified.
func (s *ProjectService) Create(ctx context.Context, claim models.Claim[models.ProjectInput]) (*models.Project, error) {
	in, err := authorize(s.validate, s.gate, claim)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, collaboratorFailure(s.log, "create project", err)
	}
	s.log.Info("project created", zap.String("id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

// Update replaces project id once the claim is verified. The gate runs
// before the lookup, so a rejected caller learns nothing about id.
func (s *ProjectService) Update(ctx context.Context, id string, claim models.Claim[models.ProjectInput]) (*models.Project, error) {
	if id == "" {
		return nil, apperr.Validation("id is required", nil)
	}
	in, err := authorize(s.validate, s.gate, claim)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, collaboratorFailure(s.log, "update project", err)
	}
	s.log.Info("project updated", zap.String("id", p.ID))
	return p, nil
}

// Delete removes a project once the claim is verified and returns it.
func (s *ProjectService) Delete(ctx context.Context, claim models.Claim[models.ProjectRef]) (*models.Project, error) {
	ref, err := authorize(s.validate, s.gate, claim)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Delete(ctx, ref.ID)
	if err != nil {
		return nil, collaboratorFailure(s.log, "delete project", err)
	}
	s.log.Info("project deleted", zap.String("id", p.ID))
	return p, nil
}
