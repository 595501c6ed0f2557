package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atinyakov/devshowcase/internal/apperr"
	"github.com/atinyakov/devshowcase/internal/client/storage"
	"github.com/atinyakov/devshowcase/internal/gate"
	"github.com/atinyakov/devshowcase/internal/models"
	"github.com/atinyakov/devshowcase/internal/objectstore"
	"github.com/atinyakov/devshowcase/internal/repository"
	apihttp "github.com/atinyakov/devshowcase/internal/server/handler/http"
	"github.com/atinyakov/devshowcase/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndToEnd_SaveAttachCreate(t *testing.T) {
	verifier := gate.New("abc", nil)
	store, err := objectstore.NewDiskStore(t.TempDir(), "http://files.test")
	require.NoError(t, err)
	srv := httptest.NewServer(apihttp.NewRouter(
		&apihttp.ProjectHandler{ProjectService: service.NewProjectService(repository.NewMemoryProjectRepository(), verifier, nil)},
		&apihttp.AdminHandler{AdminService: service.NewAdminService(verifier)},
		&apihttp.UploadHandler{UploadService: service.NewUploadService(store, verifier, 0, nil)},
		store.Handler(),
		nil,
	))
	defer srv.Close()

	holder := storage.New(filepath.Join(t.TempDir(), "admin.json"))
	c := New(srv.URL, srv.Client(), holder)
	ctx := context.Background()
	in := models.ProjectInput{Title: "X", Slug: "x", Description: "d", RepoURL: "r"}

	require.NoError(t, holder.Save("abc"))
	claim, err := storage.Attach(holder, in)
	require.NoError(t, err)
	assert.Equal(t, "abc", claim.ClaimedSecret)

	created, err := c.Create(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	resp, err := srv.Client().Get(srv.URL + "/api/projects/" + created.ID)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(raw), "claimedSecret")

	require.NoError(t, holder.Save("wrong"))
	_, err = c.Create(ctx, models.ProjectInput{Title: "Y", Slug: "y", Description: "d", RepoURL: "r"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized), "got %v", err)
	assert.False(t, strings.Contains(err.Error(), "abc"))

	_, err = c.Delete(ctx, created.ID)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	page, err := c.List(ctx, models.ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].ID)
}
