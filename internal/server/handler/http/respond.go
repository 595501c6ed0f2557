package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/atinyakov/devshowcase/internal/apperr"
	"go.uber.org/zap"
)

// ErrorBody is the JSON envelope of every failed response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the stable error code and a caller-safe message.
type ErrorDetail struct {
	Code    apperr.Kind `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to its status and envelope. Only the classified
// message is written; the wrapped cause goes to the log for internal errors.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	msg := "internal error"

	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		msg = appErr.Message
	}
	if kind == apperr.KindInternal && log != nil {
		log.Error("request failed", zap.Error(err))
	}

	writeJSON(w, apperr.HTTPStatus(kind), ErrorBody{Error: ErrorDetail{Code: kind, Message: msg}})
}

// decodeJSON reads a single JSON value from body into dst.
func decodeJSON(body io.Reader, dst any) error {
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("request body too large", err)
		}
		return apperr.Validation("invalid request body", err)
	}
	return nil
}
