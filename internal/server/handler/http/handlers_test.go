package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atinyakov/devshowcase/internal/apperr"
	"github.com/atinyakov/devshowcase/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProjectService implements ProjectService for testing.
type fakeProjectService struct {
	listFn   func(models.ListParams) (*models.Page, error)
	getFn    func(string) (*models.Project, error)
	slugFn   func(string) (*models.Project, error)
	createFn func(models.Claim[models.ProjectInput]) (*models.Project, error)
	updateFn func(string, models.Claim[models.ProjectInput]) (*models.Project, error)
	deleteFn func(models.Claim[models.ProjectRef]) (*models.Project, error)
}

func (f *fakeProjectService) List(_ context.Context, p models.ListParams) (*models.Page, error) {
	return f.listFn(p)
}

func (f *fakeProjectService) Get(_ context.Context, id string) (*models.Project, error) {
	return f.getFn(id)
}

func (f *fakeProjectService) GetBySlug(_ context.Context, slug string) (*models.Project, error) {
	return f.slugFn(slug)
}

func (f *fakeProjectService) Create(_ context.Context, c models.Claim[models.ProjectInput]) (*models.Project, error) {
	return f.createFn(c)
}

func (f *fakeProjectService) Update(_ context.Context, id string, c models.Claim[models.ProjectInput]) (*models.Project, error) {
	return f.updateFn(id, c)
}

func (f *fakeProjectService) Delete(_ context.Context, c models.Claim[models.ProjectRef]) (*models.Project, error) {
	return f.deleteFn(c)
}

type fakeAdminService struct {
	err error
	got models.AdminKeyInput
}

func (f *fakeAdminService) VerifyKey(_ context.Context, in models.AdminKeyInput) error {
	f.got = in
	return f.err
}

type fakeUploadService struct {
	calls int
	res   *models.UploadResult
	err   error
}

func (f *fakeUploadService) Upload(_ context.Context, _ models.Claim[models.UploadInput]) (*models.UploadResult, error) {
	f.calls++
	return f.res, f.err
}

func newTestRouter(p ProjectService, a AdminService, u UploadService) http.Handler {
	return NewRouter(
		&ProjectHandler{ProjectService: p},
		&AdminHandler{AdminService: a},
		&UploadHandler{UploadService: u, MaxBody: 1024},
		nil,
		nil,
	)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func TestProjectHandler_List(t *testing.T) {
	var got models.ListParams
	svc := &fakeProjectService{listFn: func(p models.ListParams) (*models.Page, error) {
		got = p
		return &models.Page{Items: []models.Project{{ID: "a"}}, NextCursor: "b"}, nil
	}}
	h := newTestRouter(svc, &fakeAdminService{}, &fakeUploadService{})

	rec := do(t, h, http.MethodGet, "/api/projects?limit=1&cursor=x&featured=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.Limit)
	assert.Equal(t, 1, *got.Limit)
	assert.Equal(t, "x", got.Cursor)
	require.NotNil(t, got.Featured)
	assert.True(t, *got.Featured)

	var page models.Page
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, "b", page.NextCursor)
	assert.Len(t, page.Items, 1)
}

func TestProjectHandler_ListBadQuery(t *testing.T) {
	svc := &fakeProjectService{listFn: func(models.ListParams) (*models.Page, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}
	h := newTestRouter(svc, &fakeAdminService{}, &fakeUploadService{})

	for _, q := range []string{"limit=ten", "featured=maybe"} {
		rec := do(t, h, http.MethodGet, "/api/projects?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Equal(t, apperr.KindValidation, decodeError(t, rec).Code)
	}
}

func TestProjectHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    apperr.Kind
		wantMessage string
	}{
		{"not found", apperr.NotFound("project not found"), http.StatusNotFound, apperr.KindNotFound, "project not found"},
		{"unauthorized", apperr.Unauthorized("invalid admin key"), http.StatusUnauthorized, apperr.KindUnauthorized, "invalid admin key"},
		{"conflict", apperr.Conflict("slug already exists", nil), http.StatusConflict, apperr.KindConflict, "slug already exists"},
		{"unclassified", errors.New("pq: connection refused"), http.StatusInternalServerError, apperr.KindInternal, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeProjectService{getFn: func(string) (*models.Project, error) { return nil, tt.err }}
			rec := do(t, newTestRouter(svc, &fakeAdminService{}, &fakeUploadService{}), http.MethodGet, "/api/projects/p1", "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			detail := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, detail.Code)
			assert.Equal(t, tt.wantMessage, detail.Message)
		})
	}
}

func TestProjectHandler_RoutesPathParams(t *testing.T) {
	var gotID, gotSlug, updatedID string
	var deleted models.Claim[models.ProjectRef]
	svc := &fakeProjectService{
		getFn: func(id string) (*models.Project, error) { gotID = id; return &models.Project{ID: id}, nil },
		slugFn: func(slug string) (*models.Project, error) {
			gotSlug = slug
			return &models.Project{Slug: slug}, nil
		},
		updateFn: func(id string, c models.Claim[models.ProjectInput]) (*models.Project, error) {
			updatedID = id
			return &models.Project{ID: id}, nil
		},
		deleteFn: func(c models.Claim[models.ProjectRef]) (*models.Project, error) {
			deleted = c
			return &models.Project{ID: c.Payload.ID}, nil
		},
	}
	h := newTestRouter(svc, &fakeAdminService{}, &fakeUploadService{})

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/projects/p1", "").Code)
	assert.Equal(t, "p1", gotID)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/projects/slug/my-app", "").Code)
	assert.Equal(t, "my-app", gotSlug)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/api/projects/p2", `{"title":"t","claimedSecret":"k"}`).Code)
	assert.Equal(t, "p2", updatedID)

	rec := do(t, h, http.MethodDelete, "/api/projects/p3", `{"id":"other","claimedSecret":"k"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p3", deleted.Payload.ID)
	assert.Equal(t, "k", deleted.ClaimedSecret)
}

func TestProjectHandler_CreateSplitsClaim(t *testing.T) {
	var got models.Claim[models.ProjectInput]
	svc := &fakeProjectService{createFn: func(c models.Claim[models.ProjectInput]) (*models.Project, error) {
		got = c
		return &models.Project{ID: "new", Slug: c.Payload.Slug}, nil
	}}
	h := newTestRouter(svc, &fakeAdminService{}, &fakeUploadService{})

	rec := do(t, h, http.MethodPost, "/api/projects", `{"title":"T","slug":"t","claimedSecret":"abc"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "abc", got.ClaimedSecret)
	assert.Equal(t, "t", got.Payload.Slug)
	assert.NotContains(t, rec.Body.String(), "abc")
}

func TestProjectHandler_InvalidBody(t *testing.T) {
	svc := &fakeProjectService{createFn: func(models.Claim[models.ProjectInput]) (*models.Project, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}
	rec := do(t, newTestRouter(svc, &fakeAdminService{}, &fakeUploadService{}), http.MethodPost, "/api/projects", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperr.KindValidation, decodeError(t, rec).Code)
}

func TestRouter_RejectsNonJSONBodies(t *testing.T) {
	h := newTestRouter(&fakeProjectService{}, &fakeAdminService{}, &fakeUploadService{})

	req := httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewBufferString("title=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestAdminHandler_Verify(t *testing.T) {
	admin := &fakeAdminService{}
	h := newTestRouter(&fakeProjectService{}, admin, &fakeUploadService{})

	rec := do(t, h, http.MethodPost, "/api/admin/verify", `{"adminKey":"abc"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, "abc", admin.got.AdminKey)

	admin.err = apperr.Unauthorized("invalid admin key")
	rec = do(t, h, http.MethodPost, "/api/admin/verify", `{"adminKey":"abd"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperr.KindUnauthorized, decodeError(t, rec).Code)
}

func TestUploadHandler(t *testing.T) {
	up := &fakeUploadService{res: &models.UploadResult{Success: true, URL: "https://cdn/x.png", ETag: `"e"`, Key: "uploads/x.png"}}
	h := newTestRouter(&fakeProjectService{}, &fakeAdminService{}, up)

	rec := do(t, h, http.MethodPost, "/api/uploads", `{"fileName":"x.png","fileType":"image/png","fileData":"eA==","claimedSecret":"abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res models.UploadResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.True(t, res.Success)
	assert.Equal(t, "uploads/x.png", res.Key)

	big := `{"fileData":"` + strings.Repeat("A", 2048) + `"}`
	rec = do(t, h, http.MethodPost, "/api/uploads", big)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, up.calls)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h := newTestRouter(&fakeProjectService{}, &fakeAdminService{}, &fakeUploadService{})

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "devshowcase_http_requests_total")
}
