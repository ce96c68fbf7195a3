package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamfeedhq/yamfeed/internal/domain/model"
	"github.com/yamfeedhq/yamfeed/internal/domain/port/driven"
)

func TestIdentityRepo_CreateMintsRef(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIdentityRepo(db)

	identity, err := repo.Create(context.Background(), model.Identity{Username: "svc-yammer"})
	require.NoError(t, err)
	assert.NotEmpty(t, identity.Ref)
	assert.False(t, identity.CreatedAt.IsZero())
}

func TestIdentityRepo_LoadByRef(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIdentityRepo(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, model.Identity{
		Username:    "ann",
		Email:       "ann@example.test",
		DisplayName: "Ann A.",
	})
	require.NoError(t, err)

	loaded, err := repo.LoadByRef(ctx, created.Ref)
	require.NoError(t, err)
	assert.Equal(t, "ann", loaded.Username)
	assert.Equal(t, "ann@example.test", loaded.Email)
	assert.Equal(t, "Ann A.", loaded.DisplayName)
}

func TestIdentityRepo_LoadByRefMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIdentityRepo(db)

	_, err := repo.LoadByRef(context.Background(), "no-such-ref")
	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrIdentityNotFound)
}

func TestIdentityRepo_FindByAttributes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIdentityRepo(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, model.Identity{Username: "ann", Email: "ann@example.test"})
	require.NoError(t, err)
	svc, err := repo.Create(ctx, model.Identity{Username: "svc-yammer", Email: "svc@example.test"})
	require.NoError(t, err)

	matches, err := repo.FindByAttributes(ctx, map[string]string{"username": "svc-yammer"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, svc.Ref, matches[0].Ref)
}

func TestIdentityRepo_FindByAttributesMultipleFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIdentityRepo(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, model.Identity{Username: "svc", Email: "a@example.test"})
	require.NoError(t, err)
	want, err := repo.Create(ctx, model.Identity{Username: "svc", Email: "b@example.test"})
	require.NoError(t, err)

	matches, err := repo.FindByAttributes(ctx, map[string]string{
		"username": "svc",
		"email":    "b@example.test",
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, want.Ref, matches[0].Ref)
}

func TestIdentityRepo_FindByAttributesNoMatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIdentityRepo(db)

	matches, err := repo.FindByAttributes(context.Background(), map[string]string{"username": "ghost"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestIdentityRepo_FindByAttributesValidation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIdentityRepo(db)
	ctx := context.Background()

	_, err := repo.FindByAttributes(ctx, nil)
	require.Error(t, err)

	_, err = repo.FindByAttributes(ctx, map[string]string{"shoe_size": "44"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shoe_size")
}
