package objectstore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/devshowcase/internal/models"
)

// DiskStore writes objects below a local directory and serves them over
// HTTP. The ETag mirrors the quoted MD5 that COS returns for simple puts.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore stores objects under root. baseURL is the public address
// the server is reachable at; object URLs are baseURL + "/" + key.
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("disk store: %w", err)
	}
	return &DiskStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put writes body to root/key. contentType is implied by the file
// extension when the object is served back.
func (s *DiskStore) Put(ctx context.Context, key string, body []byte, _ string) (models.StoredObject, error) {
	if err := ctx.Err(); err != nil {
		return models.StoredObject{}, err
	}

	target, err := s.path(key)
	if err != nil {
		return models.StoredObject{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return models.StoredObject{}, fmt.Errorf("disk store: %w", err)
	}
	if err := os.WriteFile(target, body, 0o644); err != nil {
		return models.StoredObject{}, fmt.Errorf("disk store: write %s: %w", key, err)
	}

	sum := md5.Sum(body)
	return models.StoredObject{
		URL:  s.baseURL + "/" + key,
		ETag: `"` + hex.EncodeToString(sum[:]) + `"`,
	}, nil
}

// Handler serves stored objects. Mount it where request paths equal keys,
// e.g. at /uploads/*.
func (s *DiskStore) Handler() http.Handler {
	return http.FileServer(http.Dir(s.root))
}

func (s *DiskStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("disk store: invalid key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}
