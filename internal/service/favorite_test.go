package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/circlekitchen/backend/internal/logger"
	"github.com/pageza/circlekitchen/backend/internal/mocks"
	"github.com/pageza/circlekitchen/backend/internal/model"
	"github.com/pageza/circlekitchen/backend/internal/service"
	"github.com/pageza/circlekitchen/backend/internal/store"
	"github.com/pageza/circlekitchen/backend/internal/testdb"
)

func TestFavoriteService(t *testing.T) {
	ctx := context.Background()
	log := logger.NewForTests()

	setup := func(t *testing.T) (*service.FavoriteService, *service.RecipeService, *mocks.MockFetcher) {
		db := testdb.SQLite(t)
		st := store.NewGormStore(db)
		fetcher := new(mocks.MockFetcher)
		cache := service.NewRecipeCache(st, fetcher, service.WithCacheLogger(log))
		recipes := service.NewRecipeService(st, cache, nil, log)
		return service.NewFavoriteService(store.NewGormFavorites(db), recipes, log), recipes, fetcher
	}

	t.Run("should favorite provider and user recipes alike", func(t *testing.T) {
		favs, recipes, fetcher := setup(t)
		fetcher.On("Fetch", mock.Anything, "716429").Return(pastaPayload, nil).Once()
		own, err := recipes.Create(ctx, "user-1", validInput())
		require.NoError(t, err)

		_, err = favs.Add(ctx, "user-1", "716429")
		require.NoError(t, err)
		_, err = favs.Add(ctx, "user-1", own.RecipeID)
		require.NoError(t, err)
		_, err = favs.Add(ctx, "user-1", "716429")
		require.NoError(t, err, "adding twice is a no-op")

		list, err := favs.List(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "716429", list[0].RecipeID)
		assert.Equal(t, own.RecipeID, list[1].RecipeID)
		fetcher.AssertNumberOfCalls(t, "Fetch", 1)
	})

	t.Run("should not favorite what the user cannot see", func(t *testing.T) {
		favs, recipes, _ := setup(t)
		private, err := recipes.Create(ctx, "user-1", validInput())
		require.NoError(t, err)

		_, err = favs.Add(ctx, "user-2", private.RecipeID)
		assert.ErrorIs(t, err, service.ErrRecipeNotFound)
		list, err := favs.List(ctx, "user-2")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("should skip favorites that no longer resolve", func(t *testing.T) {
		favs, recipes, _ := setup(t)
		own, err := recipes.Create(ctx, "user-1", validInput())
		require.NoError(t, err)
		_, err = favs.Add(ctx, "user-1", own.RecipeID)
		require.NoError(t, err)
		require.NoError(t, recipes.Delete(ctx, "user-1", own.RecipeID))

		list, err := favs.List(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("should remove idempotently", func(t *testing.T) {
		favs, recipes, _ := setup(t)
		own, err := recipes.Create(ctx, "user-1", validInput())
		require.NoError(t, err)
		_, err = favs.Add(ctx, "user-1", own.RecipeID)
		require.NoError(t, err)

		require.NoError(t, favs.Remove(ctx, "user-1", own.RecipeID))
		require.NoError(t, favs.Remove(ctx, "user-1", own.RecipeID))
		list, err := favs.List(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("should wrap favorite store faults", func(t *testing.T) {
		favStore := new(mocks.MockFavoriteStore)
		reader := new(mocks.MockRecipeService)
		reader.On("Get", mock.Anything, "user-1", "1").Return(&model.Recipe{RecipeID: "1", IsPublic: true}, nil)
		favStore.On("Add", mock.Anything, "user-1", "1").Return(errors.New("locked"))
		favStore.On("ListRecipeIDs", mock.Anything, "user-1").Return(nil, errors.New("locked"))
		favs := service.NewFavoriteService(favStore, reader, log)

		_, err := favs.Add(ctx, "user-1", "1")
		var serr *service.StorageError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "favorite", serr.Op)

		_, err = favs.List(ctx, "user-1")
		assert.ErrorAs(t, err, &serr)
	})

	t.Run("should propagate storage faults while listing", func(t *testing.T) {
		favStore := new(mocks.MockFavoriteStore)
		reader := new(mocks.MockRecipeService)
		favStore.On("ListRecipeIDs", mock.Anything, "user-1").Return([]string{"1", "2"}, nil)
		reader.On("Get", mock.Anything, "user-1", "1").Return(nil, service.ErrUpstreamUnavailable)
		reader.On("Get", mock.Anything, "user-1", "2").Return(nil, &service.StorageError{Op: "find", Err: errors.New("eof")})
		favs := service.NewFavoriteService(favStore, reader, log)

		_, err := favs.List(ctx, "user-1")

		var serr *service.StorageError
		assert.ErrorAs(t, err, &serr)
	})
}
