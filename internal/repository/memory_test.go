package repository

import (
	"context"
	"testing"
	"time"

	"github.com/atinyakov/devshowcase/internal/apperr"
	"github.com/atinyakov/devshowcase/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, m *MemoryProjectRepository, slug string, published time.Time, featured bool) *models.Project {
	t.Helper()
	p, err := m.Create(context.Background(), models.ProjectInput{
		Title:       slug,
		Slug:        slug,
		Description: "d",
		RepoURL:     "r",
		Featured:    featured,
		PublishedAt: &published,
	})
	require.NoError(t, err)
	return p
}

func TestMemory_FindManyOrdersAndStartsAtCursor(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryProjectRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	oldest := seed(t, m, "a", base, false)
	middle := seed(t, m, "b", base.Add(time.Hour), true)
	newest := seed(t, m, "c", base.Add(2*time.Hour), false)

	all, err := m.FindMany(ctx, models.ProjectFilter{}, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{newest.ID, middle.ID, oldest.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	fromMiddle, err := m.FindMany(ctx, models.ProjectFilter{}, middle.ID, 10)
	require.NoError(t, err)
	require.Len(t, fromMiddle, 2)
	assert.Equal(t, middle.ID, fromMiddle[0].ID)
	assert.Equal(t, oldest.ID, fromMiddle[1].ID)

	featured := true
	onlyFeatured, err := m.FindMany(ctx, models.ProjectFilter{Featured: &featured}, "", 10)
	require.NoError(t, err)
	require.Len(t, onlyFeatured, 1)
	assert.Equal(t, middle.ID, onlyFeatured[0].ID)

	unknown, err := m.FindMany(ctx, models.ProjectFilter{}, "nope", 10)
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestMemory_SlugConflict(t *testing.T) {
	m := NewMemoryProjectRepository()
	first := seed(t, m, "same", time.Now(), false)
	second := seed(t, m, "other", time.Now(), false)

	_, err := m.Create(context.Background(), models.ProjectInput{Slug: "same"})
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)

	_, err = m.Update(context.Background(), second.ID, models.ProjectInput{Slug: "same"})
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)

	_, err = m.Update(context.Background(), first.ID, models.ProjectInput{Slug: "same", Title: "renamed"})
	assert.NoError(t, err)
}

func TestMemory_CreateStampsPublishedAt(t *testing.T) {
	m := NewMemoryProjectRepository()
	p, err := m.Create(context.Background(), models.ProjectInput{Slug: "x"})
	require.NoError(t, err)
	require.NotNil(t, p.PublishedAt)
	assert.NotEmpty(t, p.ID)
}

func TestMemory_UpdateKeepsPublishedAtWhenUnset(t *testing.T) {
	m := NewMemoryProjectRepository()
	published := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	p := seed(t, m, "x", published, false)

	got, err := m.Update(context.Background(), p.ID, models.ProjectInput{Slug: "x", Title: "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.True(t, got.PublishedAt.Equal(published))
}

func TestMemory_NotFound(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryProjectRepository()

	_, err := m.FindUnique(ctx, "x")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = m.FindBySlug(ctx, "x")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = m.Update(ctx, "x", models.ProjectInput{})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = m.Delete(ctx, "x")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestMemory_ReturnsCopies(t *testing.T) {
	m := NewMemoryProjectRepository()
	content := "body"
	p, err := m.Create(context.Background(), models.ProjectInput{Slug: "x", Content: &content})
	require.NoError(t, err)

	*p.Content = "mutated"
	again, err := m.FindUnique(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "body", *again.Content)
}
