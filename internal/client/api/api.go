// Package api is the admin client for the showcase HTTP API. Privileged
// calls take the admin key from a storage.SecretHolder and fail locally,
// without any request, when none is held.
package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/atinyakov/devshowcase/internal/apperr"
	"github.com/atinyakov/devshowcase/internal/client/storage"
	"github.com/atinyakov/devshowcase/internal/models"
)

const (
	pathVerify   = "/api/admin/verify"
	pathProjects = "/api/projects"
	pathUploads  = "/api/uploads"
)

// Client calls one showcase server.
type Client struct {
	baseURL string
	http    *http.Client
	holder  *storage.SecretHolder
}

// New returns a client for baseURL.
func New(baseURL string, httpClient *http.Client, holder *storage.SecretHolder) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient, holder: holder}
}

// VerifyKey asks the server whether key is the admin key and stores it
// only when the server accepts it.
func (c *Client) VerifyKey(ctx context.Context, key string) error {
	if err := c.do(ctx, http.MethodPost, pathVerify, models.AdminKeyInput{AdminKey: key}, nil); err != nil {
		return err
	}
	return c.holder.Save(key)
}

// Logout forgets the stored admin key.
func (c *Client) Logout() error {
	return c.holder.Clear()
}

// LoggedIn reports whether an admin key is held.
func (c *Client) LoggedIn() bool {
	return c.holder.Has()
}

// KeyStatus is LoggedIn plus the error met reading the key file, so an
// unreadable file can be told apart from an absent key.
func (c *Client) KeyStatus() (bool, error) {
	_, ok, err := c.holder.Lookup()
	return ok, err
}

// List fetches one page of projects.
func (c *Client) List(ctx context.Context, params models.ListParams) (*models.Page, error) {
	q := url.Values{}
	if params.Limit != nil {
		q.Set("limit", strconv.Itoa(*params.Limit))
	}
	if params.Cursor != "" {
		q.Set("cursor", params.Cursor)
	}
	if params.Featured != nil {
		q.Set("featured", strconv.FormatBool(*params.Featured))
	}
	path := pathProjects
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page models.Page
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get fetches one project by id.
func (c *Client) Get(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	if err := c.do(ctx, http.MethodGet, pathProjects+"/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetBySlug fetches one project by slug.
func (c *Client) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	var p models.Project
	if err := c.do(ctx, http.MethodGet, pathProjects+"/slug/"+url.PathEscape(slug), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create stores a new project.
func (c *Client) Create(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	claim, err := storage.Attach(c.holder, in)
	if err != nil {
		return nil, err
	}
	var p models.Project
	if err := c.do(ctx, http.MethodPost, pathProjects, claim, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update replaces project id.
func (c *Client) Update(ctx context.Context, id string, in models.ProjectInput) (*models.Project, error) {
	claim, err := storage.Attach(c.holder, in)
	if err != nil {
		return nil, err
	}
	var p models.Project
	if err := c.do(ctx, http.MethodPut, pathProjects+"/"+url.PathEscape(id), claim, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes project id and returns it as it was.
func (c *Client) Delete(ctx context.Context, id string) (*models.Project, error) {
	claim, err := storage.Attach(c.holder, models.ProjectRef{ID: id})
	if err != nil {
		return nil, err
	}
	var p models.Project
	if err := c.do(ctx, http.MethodDelete, pathProjects+"/"+url.PathEscape(id), claim, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UploadImage sends the file at path as a base64 image.
func (c *Client) UploadImage(ctx context.Context, path string) (*models.UploadResult, error) {
	if !c.holder.Has() {
		return nil, storage.MissingSecretError{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	in := models.UploadInput{
		FileName: filepath.Base(path),
		FileType: contentType(path, data),
		FileData: base64.StdEncoding.EncodeToString(data),
	}
	claim, err := storage.Attach(c.holder, in)
	if err != nil {
		return nil, err
	}

	var res models.UploadResult
	if err := c.do(ctx, http.MethodPost, pathUploads, claim, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func contentType(path string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		if mt, _, err := mime.ParseMediaType(t); err == nil {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}

// errorBody mirrors the server's error envelope.
type errorBody struct {
	Error struct {
		Code    apperr.Kind `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Code != "" {
		return &apperr.Error{Kind: body.Error.Code, Message: body.Error.Message}
	}
	return &apperr.Error{
		Kind:    apperr.KindFromStatus(resp.StatusCode),
		Message: fmt.Sprintf("server error: %s", bytes.TrimSpace(data)),
	}
}
