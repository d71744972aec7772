package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/models"
)

func TestUserRepository_CreateAndGetByID(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := fakeUser()
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)
	assert.Equal(t, user.Email, got.Email)
	assert.True(t, got.IsActive)
	assert.False(t, got.IsAdmin)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.GetByID(context.Background(), 9999)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, appErrCode(t, err))
}

func TestUserRepository_Create_DuplicateUsername(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	first := fakeUser()
	require.NoError(t, repo.Create(ctx, first))

	dup := fakeUser()
	dup.Username = first.Username
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, models.CodeConflict, appErrCode(t, err))
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	first := fakeUser()
	require.NoError(t, repo.Create(ctx, first))

	dup := fakeUser()
	dup.Email = first.Email
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, models.CodeConflict, appErrCode(t, err))
}

func TestUserRepository_GetByUsername(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := fakeUser()
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByUsername(ctx, user.Username)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	// Absence is not an error.
	missing, err := repo.GetByUsername(ctx, "no-such-user")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := fakeUser()
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_List_Pagination(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, fakeUser()))
	}

	page, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)

	next, err := repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.NotEqual(t, page[0].ID, next[0].ID)

	last, err := repo.List(ctx, 10, 4)
	require.NoError(t, err)
	assert.Len(t, last, 1)
}

func TestUserRepository_UpdateFields(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := fakeUser()
	require.NoError(t, repo.Create(ctx, user))

	updated, err := repo.UpdateFields(ctx, user.ID, map[string]interface{}{
		"username": "renamed",
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Username)
	assert.Equal(t, user.Email, updated.Email, "untouched fields survive")
}

func TestUserRepository_UpdateFields_NotFound(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.UpdateFields(context.Background(), 1234, map[string]interface{}{"username": "x"})
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, appErrCode(t, err))
}

func TestUserRepository_UpdateFields_DuplicateUsername(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	first := fakeUser()
	second := fakeUser()
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	_, err := repo.UpdateFields(ctx, second.ID, map[string]interface{}{"username": first.Username})
	require.Error(t, err)
	assert.Equal(t, models.CodeConflict, appErrCode(t, err))
}

func TestUserRepository_Deactivate(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := fakeUser()
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.Deactivate(ctx, user.ID))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// Deactivating again is a no-op, not an error.
	require.NoError(t, repo.Deactivate(ctx, user.ID))
}

func TestUserRepository_Deactivate_NotFound(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	err := repo.Deactivate(context.Background(), 4242)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, appErrCode(t, err))
}

func TestUserRepository_SetAdmin(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := fakeUser()
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.SetAdmin(ctx, user.ID, true))
	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	// Granting twice conflicts.
	err = repo.SetAdmin(ctx, user.ID, true)
	require.Error(t, err)
	assert.Equal(t, models.CodeConflict, appErrCode(t, err))

	require.NoError(t, repo.SetAdmin(ctx, user.ID, false))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAdmin)

	// Revoking a non-admin conflicts.
	err = repo.SetAdmin(ctx, user.ID, false)
	require.Error(t, err)
	assert.Equal(t, models.CodeConflict, appErrCode(t, err))
}

func TestUserRepository_SetAdmin_NotFound(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	err := repo.SetAdmin(context.Background(), 777, true)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, appErrCode(t, err))
}
