// Package http exposes the showcase API over HTTP: public project reads,
// admin-gated mutations, image uploads and operational endpoints.
package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/atinyakov/devshowcase/internal/apperr"
	"github.com/atinyakov/devshowcase/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProjectService defines the project operations required by ProjectHandler.
type ProjectService interface {
	List(ctx context.Context, params models.ListParams) (*models.Page, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	GetBySlug(ctx context.Context, slug string) (*models.Project, error)
	Create(ctx context.Context, claim models.Claim[models.ProjectInput]) (*models.Project, error)
	Update(ctx context.Context, id string, claim models.Claim[models.ProjectInput]) (*models.Project, error)
	Delete(ctx context.Context, claim models.Claim[models.ProjectRef]) (*models.Project, error)
}

// ProjectHandler handles the /api/projects routes.
type ProjectHandler struct {
	ProjectService ProjectService
	Log            *zap.Logger
}

// List handles GET /api/projects?limit=&cursor=&featured=.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	page, err := h.ProjectService.List(r.Context(), params)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /api/projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProjectService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetBySlug handles GET /api/projects/slug/{slug}.
func (h *ProjectHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProjectService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create handles POST /api/projects. The body is a ProjectInput with a
// claimedSecret field alongside.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var claim models.Claim[models.ProjectInput]
	if err := decodeJSON(r.Body, &claim); err != nil {
		writeError(w, h.Log, err)
		return
	}

	p, err := h.ProjectService.Create(r.Context(), claim)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Update handles PUT /api/projects/{id}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var claim models.Claim[models.ProjectInput]
	if err := decodeJSON(r.Body, &claim); err != nil {
		writeError(w, h.Log, err)
		return
	}

	p, err := h.ProjectService.Update(r.Context(), chi.URLParam(r, "id"), claim)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/projects/{id}. The body carries only the
// claimedSecret; the target id always comes from the path.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var claim models.Claim[models.ProjectRef]
	if err := decodeJSON(r.Body, &claim); err != nil {
		writeError(w, h.Log, err)
		return
	}
	claim.Payload.ID = chi.URLParam(r, "id")

	p, err := h.ProjectService.Delete(r.Context(), claim)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func parseListParams(r *http.Request) (models.ListParams, error) {
	q := r.URL.Query()
	params := models.ListParams{Cursor: q.Get("cursor")}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return params, apperr.Validation("limit must be an integer", err)
		}
		params.Limit = &limit
	}
	if raw := q.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return params, apperr.Validation("featured must be a boolean", err)
		}
		params.Featured = &featured
	}
	return params, nil
}
