package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/atinyakov/devshowcase/internal/apperr"
	"github.com/atinyakov/devshowcase/internal/gate"
	"github.com/atinyakov/devshowcase/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes caps decoded upload size when none is configured.
const DefaultMaxUploadBytes = 5 << 20

// uploadPrefix is the object-key namespace for uploaded images.
const uploadPrefix = "uploads/"

var dataURLHeader = regexp.MustCompile(`^data:[\w.+-]+/[\w.+-]+;base64,`)

// ObjectStore writes objects to a storage backend.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (models.StoredObject, error)
}

// UploadService stores admin-uploaded images.
type UploadService struct {
	store    ObjectStore
	gate     gate.Verifier
	validate *validator.Validate
	maxBytes int
	log      *zap.Logger
}

// NewUploadService constructs an UploadService. maxBytes <= 0 selects
// DefaultMaxUploadBytes.
func NewUploadService(store ObjectStore, verifier gate.Verifier, maxBytes int, log *zap.Logger) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &UploadService{
		store:    store,
		gate:     verifier,
		validate: newValidator(),
		maxBytes: maxBytes,
		log:      log,
	}
}

// Upload decodes the image, verifies the claim and puts the bytes under
// uploads/<ulid>-<name>.
func (s *UploadService) Upload(ctx context.Context, claim models.Claim[models.UploadInput]) (*models.UploadResult, error) {
	if err := validate(s.validate, claim.Payload); err != nil {
		return nil, err
	}
	body, err := s.decode(claim.Payload.FileData)
	if err != nil {
		return nil, err
	}

	in, err := authorize(s.validate, s.gate, claim)
	if err != nil {
		return nil, err
	}

	key := ObjectKey(in.FileName)
	obj, err := s.store.Put(ctx, key, body, in.FileType)
	if err != nil {
		s.log.Error("failed to upload image", zap.String("key", key), zap.Error(err))
		return nil, apperr.Internal("failed to upload file", err)
	}

	s.log.Info("image uploaded", zap.String("key", key), zap.Int("bytes", len(body)))
	return &models.UploadResult{Success: true, URL: obj.URL, ETag: obj.ETag, Key: key}, nil
}

func (s *UploadService) decode(data string) ([]byte, error) {
	raw := dataURLHeader.ReplaceAllString(strings.TrimSpace(data), "")
	if base64.StdEncoding.DecodedLen(len(raw)) > s.maxBytes+3 {
		return nil, apperr.Validation(fmt.Sprintf("file exceeds %d bytes", s.maxBytes), nil)
	}

	body, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, apperr.Validation("fileData is not valid base64", err)
	}
	if len(body) == 0 {
		return nil, apperr.Validation("fileData is empty", nil)
	}
	if len(body) > s.maxBytes {
		return nil, apperr.Validation(fmt.Sprintf("file exceeds %d bytes", s.maxBytes), nil)
	}
	return body, nil
}

// ObjectKey builds a unique, time-ordered key for fileName. Directory
// components of fileName are dropped.
func ObjectKey(fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, `\`, "/"))
	if name == "." || name == "/" {
		name = "file"
	}
	return uploadPrefix + ulid.Make().String() + "-" + name
}
