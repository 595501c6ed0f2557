// Package repository provides PostgreSQL persistence for projects.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/devshowcase/internal/apperr"
	"github.com/atinyakov/devshowcase/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const projectColumns = `id, slug, title, description, content, image_url, live_url,
	repo_url, featured, published_at, created_at, updated_at`

// PostgresProjectRepository implements project persistence against a
// PostgreSQL database. Deleted rows are kept with deleted_at set until the
// cleaner purges them and are invisible to every method here.
type PostgresProjectRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresProjectRepository creates a repository using db, which must be
// connected to a PostgreSQL instance with the projects schema applied.
func NewPostgresProjectRepository(db *sql.DB) *PostgresProjectRepository {
	return &PostgresProjectRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var (
		p                          models.Project
		content, imageURL, liveURL sql.NullString
		publishedAt                time.Time
	)
	err := row.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Description,
		&content, &imageURL, &liveURL,
		&p.RepoURL, &p.Featured, &publishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Content = stringPtr(content)
	p.ImageURL = stringPtr(imageURL)
	p.LiveURL = stringPtr(liveURL)
	p.PublishedAt = &publishedAt
	return &p, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// FindMany returns up to limit live projects ordered by publication date,
// newest first, with id as the tie breaker. A non-empty cursor makes the
// result start at that project. An unknown cursor yields no rows.
func (r *PostgresProjectRepository) FindMany(
	ctx context.Context,
	filter models.ProjectFilter,
	cursor string,
	limit int,
) ([]models.Project, error) {
	var featured sql.NullBool
	if filter.Featured != nil {
		featured = sql.NullBool{Bool: *filter.Featured, Valid: true}
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+projectColumns+`
		  FROM projects
		 WHERE deleted_at IS NULL
		   AND ($1::boolean IS NULL OR featured = $1)
		   AND ($2::text = '' OR (published_at, id) <= (
		         SELECT c.published_at, c.id FROM projects c
		          WHERE c.id = $2 AND c.deleted_at IS NULL))
		 ORDER BY published_at DESC, id DESC
		 LIMIT $3
	`, featured, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("FindMany: %w", err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0, limit)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindMany rows: %w", err)
	}
	return projects, nil
}

// FindUnique fetches a live project by id.
func (r *PostgresProjectRepository) FindUnique(ctx context.Context, id string) (*models.Project, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+projectColumns+` FROM projects
		 WHERE id = $1 AND deleted_at IS NULL
	`, id)
	return r.one(row, "FindUnique")
}

// FindBySlug fetches a live project by slug.
func (r *PostgresProjectRepository) FindBySlug(ctx context.Context, slug string) (*models.Project, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+projectColumns+` FROM projects
		 WHERE slug = $1 AND deleted_at IS NULL
	`, slug)
	return r.one(row, "FindBySlug")
}

// Create inserts a project with a fresh UUID. PublishedAt defaults to the
// insertion time when in leaves it unset.
func (r *PostgresProjectRepository) Create(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO projects (id, slug, title, description, content, image_url, live_url,
		                      repo_url, featured, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()))
		RETURNING `+projectColumns,
		uuid.NewString(), in.Slug, in.Title, in.Description, in.Content, in.ImageURL, in.LiveURL,
		in.RepoURL, in.Featured, in.PublishedAt,
	)
	return r.one(row, "Create")
}

// Update replaces the writable fields of a live project. An unset
// PublishedAt keeps the stored value.
func (r *PostgresProjectRepository) Update(ctx context.Context, id string, in models.ProjectInput) (*models.Project, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE projects SET
			slug = $2,
			title = $3,
			description = $4,
			content = $5,
			image_url = $6,
			live_url = $7,
			repo_url = $8,
			featured = $9,
			published_at = COALESCE($10, published_at),
			updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+projectColumns,
		id, in.Slug, in.Title, in.Description, in.Content, in.ImageURL, in.LiveURL,
		in.RepoURL, in.Featured, in.PublishedAt,
	)
	return r.one(row, "Update")
}

// Delete soft-deletes a live project and returns it as it was.
func (r *PostgresProjectRepository) Delete(ctx context.Context, id string) (*models.Project, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE projects SET deleted_at = now()
		 WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+projectColumns,
		id,
	)
	return r.one(row, "Delete")
}

// one scans a single-row result and classifies the error.
func (r *PostgresProjectRepository) one(row *sql.Row, op string) (*models.Project, error) {
	p, err := scanProject(row)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, sql.ErrNoRows):
		return nil, apperr.NotFound("project not found")
	case isUniqueViolation(err):
		return nil, apperr.Conflict("slug already in use", err)
	default:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
