package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/devshowcase/internal/models"
	"go.uber.org/zap"
)

// UploadService stores an image once the claim is verified.
type UploadService interface {
	Upload(ctx context.Context, claim models.Claim[models.UploadInput]) (*models.UploadResult, error)
}

// UploadHandler handles POST /api/uploads.
type UploadHandler struct {
	UploadService UploadService
	// MaxBody caps the request body in bytes. Zero means no cap.
	MaxBody int64
	Log     *zap.Logger
}

// Upload decodes a base64 image payload and hands it to the service.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.MaxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBody)
	}

	var claim models.Claim[models.UploadInput]
	if err := decodeJSON(r.Body, &claim); err != nil {
		writeError(w, h.Log, err)
		return
	}

	res, err := h.UploadService.Upload(r.Context(), claim)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
