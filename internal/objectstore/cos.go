// Package objectstore holds the backends uploaded images are written to:
// Tencent Cloud COS for deployments and a local directory for development.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/atinyakov/devshowcase/internal/models"
	cos "github.com/tencentyun/cos-go-sdk-v5"
)

// COSConfig locates and authenticates a COS bucket.
type COSConfig struct {
	SecretID  string
	SecretKey string
	// Bucket is the full bucket name, including the APPID suffix.
	Bucket string
	Region string
}

// Enabled reports whether every COS setting is present.
func (c COSConfig) Enabled() bool {
	return c.SecretID != "" && c.SecretKey != "" && c.Bucket != "" && c.Region != ""
}

// COSStore writes objects into one COS bucket.
type COSStore struct {
	client *cos.Client
	base   *url.URL
}

// NewCOSStore builds a store for cfg's bucket.
func NewCOSStore(cfg COSConfig) (*COSStore, error) {
	if !cfg.Enabled() {
		return nil, errors.New("cos: incomplete configuration")
	}
	u, err := cos.NewBucketURL(cfg.Bucket, cfg.Region, true)
	if err != nil {
		return nil, fmt.Errorf("cos: bucket url: %w", err)
	}
	return newCOSStore(u, cfg.SecretID, cfg.SecretKey), nil
}

func newCOSStore(bucketURL *url.URL, secretID, secretKey string) *COSStore {
	client := cos.NewClient(&cos.BaseURL{BucketURL: bucketURL}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  secretID,
			SecretKey: secretKey,
		},
	})
	return &COSStore{client: client, base: bucketURL}
}

// Put uploads body under key and returns its public URL and ETag.
func (s *COSStore) Put(ctx context.Context, key string, body []byte, contentType string) (models.StoredObject, error) {
	opt := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType: contentType,
		},
	}
	resp, err := s.client.Object.Put(ctx, key, bytes.NewReader(body), opt)
	if err != nil {
		return models.StoredObject{}, fmt.Errorf("cos: put %s: %w", key, err)
	}
	defer resp.Body.Close()

	return models.StoredObject{
		URL:  s.objectURL(key),
		ETag: resp.Header.Get("ETag"),
	}, nil
}

// objectURL is https://<bucket>.cos.<region>.myqcloud.com/<key>.
func (s *COSStore) objectURL(key string) string {
	return strings.TrimRight(s.base.String(), "/") + "/" + strings.TrimLeft(key, "/")
}
