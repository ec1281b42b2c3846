package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/circlekitchen/backend/internal/model"
	"github.com/pageza/circlekitchen/backend/internal/store"
	"github.com/pageza/circlekitchen/backend/internal/testdb"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func providerRecipe(id, title string) *model.Recipe {
	return &model.Recipe{
		RecipeID:           id,
		Title:              title,
		PreparationMinutes: model.UnknownMinutes,
		CookingMinutes:     10,
		Cuisines:           model.JSONBStringArray{"Italian"},
		Ingredients: model.Ingredients{
			{IngredientID: 1001, OriginalText: "1 tbsp butter", ParsedName: "butter"},
			{IngredientID: 1001, OriginalText: "1 more tbsp butter", ParsedName: "butter"},
		},
		Instructions: "Boil water\nAdd pasta",
		Owner:        model.ProviderOwner(),
		IsPublic:     true,
	}
}

func ownedRecipe(id, title, owner string, public bool) *model.Recipe {
	r := providerRecipe(id, title)
	r.Owner = model.OwnedBy(owner)
	r.IsPublic = public
	return r
}

func newStore(t *testing.T) (*store.GormStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return store.NewGormStore(testdb.SQLite(t), store.WithClock(clock.Now)), clock
}

func TestGormStore_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("should report absent ids without error", func(t *testing.T) {
		s, _ := newStore(t)

		r, found, err := s.FindByID(ctx, "missing")

		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, r)
	})

	t.Run("should round-trip every field", func(t *testing.T) {
		s, clock := newStore(t)
		in := providerRecipe("716429", "Pasta")
		img := "https://img.test/716429.jpg"
		in.Image = &img

		_, err := s.Upsert(ctx, in)
		require.NoError(t, err)

		got, found, err := s.FindByID(ctx, "716429")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "Pasta", got.Title)
		assert.Equal(t, in.Ingredients, got.Ingredients)
		assert.Equal(t, in.Cuisines, got.Cuisines)
		assert.Empty(t, got.DishTypes)
		assert.Equal(t, model.UnknownMinutes, got.PreparationMinutes)
		assert.Equal(t, 10, got.CookingMinutes)
		assert.True(t, got.Owner.IsProvider())
		require.NotNil(t, got.Image)
		assert.Equal(t, img, *got.Image)
		assert.Nil(t, got.SourceURL)
		assert.True(t, got.LastModified.Equal(clock.Now()))
		assert.Len(t, got.Embedding.Slice(), 3)
	})
}

func TestGormStore_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("should replace an existing record", func(t *testing.T) {
		s, _ := newStore(t)

		_, err := s.Upsert(ctx, providerRecipe("r", "A"))
		require.NoError(t, err)
		second := providerRecipe("r", "B")
		second.Ingredients = model.Ingredients{}
		_, err = s.Upsert(ctx, second)
		require.NoError(t, err)

		all, err := s.FindVisible(ctx, store.ListQuery{})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "B", all[0].Title)
		assert.Empty(t, all[0].Ingredients)
	})

	t.Run("should bump last modified on every write", func(t *testing.T) {
		s, clock := newStore(t)

		first, err := s.Upsert(ctx, providerRecipe("r", "A"))
		require.NoError(t, err)
		clock.Advance(time.Hour)
		second, err := s.Upsert(ctx, providerRecipe("r", "A"))
		require.NoError(t, err)

		assert.True(t, second.LastModified.After(first.LastModified))
		got, _, err := s.FindByID(ctx, "r")
		require.NoError(t, err)
		assert.True(t, got.LastModified.Equal(second.LastModified))
	})

	t.Run("should not mutate the caller's record", func(t *testing.T) {
		s, _ := newStore(t)
		in := providerRecipe("r", "A")

		_, err := s.Upsert(ctx, in)
		require.NoError(t, err)

		assert.True(t, in.LastModified.IsZero())
	})

	t.Run("should keep owner on user records", func(t *testing.T) {
		s, _ := newStore(t)

		_, err := s.Upsert(ctx, ownedRecipe("u-1", "Mine", "alice", false))
		require.NoError(t, err)

		got, _, err := s.FindByID(ctx, "u-1")
		require.NoError(t, err)
		id, owned := got.Owner.UserID()
		assert.True(t, owned)
		assert.Equal(t, "alice", id)
		assert.False(t, got.IsPublic)
	})

	t.Run("should be safe for concurrent writers", func(t *testing.T) {
		s, _ := newStore(t)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := s.Upsert(ctx, providerRecipe(fmt.Sprintf("r-%d", i%5), fmt.Sprintf("title %d", i)))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		all, err := s.FindVisible(ctx, store.ListQuery{})
		require.NoError(t, err)
		assert.Len(t, all, 5)
		for _, r := range all {
			assert.Len(t, r.Ingredients, 2, "no torn record for %s", r.RecipeID)
		}
	})
}

func TestGormStore_FindVisible(t *testing.T) {
	ctx := context.Background()
	s, clock := newStore(t)

	for _, r := range []*model.Recipe{
		providerRecipe("1", "Garlic Pasta"),
		ownedRecipe("u1-private", "Secret Soup", "u1", false),
		ownedRecipe("u1-public", "Shared Salad", "u1", true),
		ownedRecipe("u2-private", "Other Stew", "u2", false),
	} {
		_, err := s.Upsert(ctx, r)
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	ids := func(rs []*model.Recipe) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.RecipeID
		}
		return out
	}

	t.Run("should show private records to their owner only", func(t *testing.T) {
		forU1, err := s.FindVisible(ctx, store.ListQuery{Requester: "u1"})
		require.NoError(t, err)
		assert.Contains(t, ids(forU1), "u1-private")

		forU2, err := s.FindVisible(ctx, store.ListQuery{Requester: "u2"})
		require.NoError(t, err)
		assert.NotContains(t, ids(forU2), "u1-private")
		assert.Contains(t, ids(forU2), "u2-private")
	})

	t.Run("should show anonymous requesters public records newest first", func(t *testing.T) {
		got, err := s.FindVisible(ctx, store.ListQuery{})
		require.NoError(t, err)
		assert.Equal(t, []string{"u1-public", "1"}, ids(got))
	})

	t.Run("should restrict to owned records", func(t *testing.T) {
		got, err := s.FindVisible(ctx, store.ListQuery{Requester: "u1", OwnedOnly: true})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"u1-private", "u1-public"}, ids(got))

		none, err := s.FindVisible(ctx, store.ListQuery{OwnedOnly: true})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("should filter by search text", func(t *testing.T) {
		got, err := s.FindVisible(ctx, store.ListQuery{Requester: "u1", Search: "soup"})
		require.NoError(t, err)
		assert.Equal(t, []string{"u1-private"}, ids(got))
	})

	t.Run("should page results", func(t *testing.T) {
		got, err := s.FindVisible(ctx, store.ListQuery{Requester: "u1", Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"u1-private"}, ids(got))
	})
}

func TestGormStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	_, err := s.Upsert(ctx, providerRecipe("r", "A"))
	require.NoError(t, err)

	deleted, err := s.Delete(ctx, "r")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, found, err := s.FindByID(ctx, "r")
	require.NoError(t, err)
	assert.False(t, found)

	deleted, err = s.Delete(ctx, "r")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestGormStore_StorageFault(t *testing.T) {
	db := testdb.SQLite(t)
	s := store.NewGormStore(db)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, found, err := s.FindByID(context.Background(), "r")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestGenerateEmbedding(t *testing.T) {
	v := store.GenerateEmbedding("Pasta")
	assert.Equal(t, []float32{5, 2, 3}, v.Slice())
}
