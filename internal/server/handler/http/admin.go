package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/devshowcase/internal/models"
	"go.uber.org/zap"
)

// AdminService checks an admin key without mutating anything.
type AdminService interface {
	VerifyKey(ctx context.Context, in models.AdminKeyInput) error
}

// AdminHandler handles POST /api/admin/verify.
type AdminHandler struct {
	AdminService AdminService
	Log          *zap.Logger
}

// VerifyResponse is returned when the key is accepted.
type VerifyResponse struct {
	Success bool `json:"success"`
}

// Verify lets the admin client confirm a key before storing it locally.
func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var in models.AdminKeyInput
	if err := decodeJSON(r.Body, &in); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := h.AdminService.VerifyKey(r.Context(), in); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{Success: true})
}
