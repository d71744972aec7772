package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/models"
)

func TestPostRepository_CreateAndGetByID(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	author := fakeUser()
	require.NoError(t, users.Create(ctx, author))

	post := fakePost(author.ID)
	require.NoError(t, posts.Create(ctx, post))
	require.NotZero(t, post.ID)

	got, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, got.Title)
	assert.Equal(t, author.ID, got.AuthorID)
}

func TestPostRepository_GetByID_NotFound(t *testing.T) {
	posts := NewPostRepository(newTestDB(t))

	_, err := posts.GetByID(context.Background(), 555)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, appErrCode(t, err))
}

func TestPostRepository_GetBySlug(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	author := fakeUser()
	require.NoError(t, users.Create(ctx, author))

	first := fakePost(author.ID)
	first.Slug = "shared-slug"
	require.NoError(t, posts.Create(ctx, first))

	second := fakePost(author.ID)
	second.Slug = "shared-slug"
	require.NoError(t, posts.Create(ctx, second))

	// The oldest post wins when two titles collapse to the same slug.
	got, err := posts.GetBySlug(ctx, "shared-slug")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = posts.GetBySlug(ctx, "missing-slug")
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, appErrCode(t, err))
}

func TestPostRepository_ListByAuthor(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	alice := fakeUser()
	bob := fakeUser()
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	for i := 0; i < 3; i++ {
		require.NoError(t, posts.Create(ctx, fakePost(alice.ID)))
	}
	require.NoError(t, posts.Create(ctx, fakePost(bob.ID)))

	mine, err := posts.ListByAuthor(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	for _, p := range mine {
		assert.Equal(t, alice.ID, p.AuthorID)
	}
}

func TestPostRepository_List_OrderedByPublishedAt(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	author := fakeUser()
	require.NoError(t, users.Create(ctx, author))

	old := fakePost(author.ID)
	old.PublishedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := fakePost(author.ID)
	recent.PublishedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, posts.Create(ctx, old))
	require.NoError(t, posts.Create(ctx, recent))

	list, err := posts.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, recent.ID, list[0].ID, "newest first")
}

func TestPostRepository_UpdateFields_DoesNotTouchSlug(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	author := fakeUser()
	require.NoError(t, users.Create(ctx, author))

	post := fakePost(author.ID)
	post.Slug = "original-slug"
	require.NoError(t, posts.Create(ctx, post))

	updated, err := posts.UpdateFields(ctx, post.ID, map[string]interface{}{
		"title": "A Completely New Title",
	})
	require.NoError(t, err)
	assert.Equal(t, "A Completely New Title", updated.Title)
	assert.Equal(t, "original-slug", updated.Slug)
}

func TestPostRepository_UpdateFields_NotFound(t *testing.T) {
	posts := NewPostRepository(newTestDB(t))

	_, err := posts.UpdateFields(context.Background(), 100, map[string]interface{}{"title": "x"})
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, appErrCode(t, err))
}

func TestPostRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	author := fakeUser()
	require.NoError(t, users.Create(ctx, author))

	post := fakePost(author.ID)
	require.NoError(t, posts.Create(ctx, post))

	require.NoError(t, posts.Delete(ctx, post.ID))

	_, err := posts.GetByID(ctx, post.ID)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, appErrCode(t, err))

	// The row is gone for good.
	err = posts.Delete(ctx, post.ID)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, appErrCode(t, err))
}
