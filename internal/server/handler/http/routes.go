package http

import (
	"net/http"

	"github.com/atinyakov/devshowcase/internal/metrics"
	"github.com/atinyakov/devshowcase/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler serving the showcase API.
//
// Routes:
//
//	POST   /api/admin/verify         → admin.Verify
//	GET    /api/projects             → projects.List
//	GET    /api/projects/{id}        → projects.Get
//	GET    /api/projects/slug/{slug} → projects.GetBySlug
//	POST   /api/projects             → projects.Create
//	PUT    /api/projects/{id}        → projects.Update
//	DELETE /api/projects/{id}        → projects.Delete
//	POST   /api/uploads              → uploads.Upload
//	GET    /healthz, /metrics
//	GET    /uploads/*                → files, when non-nil
//
// Every request is assigned an id, recovered from panics, counted and
// logged. Bodies sent to /api must be JSON.
func NewRouter(
	projects *ProjectHandler,
	admin *AdminHandler,
	uploads *UploadHandler,
	files http.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(middleware.WithRequestLogging(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	if files != nil {
		r.Method(http.MethodGet, "/uploads/*", files)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))

		r.Post("/admin/verify", admin.Verify)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projects.List)
			r.Post("/", projects.Create)
			r.Get("/slug/{slug}", projects.GetBySlug)
			r.Get("/{id}", projects.Get)
			r.Put("/{id}", projects.Update)
			r.Delete("/{id}", projects.Delete)
		})

		r.Post("/uploads", uploads.Upload)
	})

	return r
}
