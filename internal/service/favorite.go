package service

import (
	"context"
	"errors"

	"github.com/pageza/circlekitchen/backend/internal/logger"
	"github.com/pageza/circlekitchen/backend/internal/model"
	"github.com/pageza/circlekitchen/backend/internal/store"
)

// FavoriteService keeps per-user favorites. Recipes are referenced by id, so
// provider and user-authored recipes are handled the same way.
type FavoriteService struct {
	favorites store.FavoriteStore
	recipes   RecipeReader
	log       logger.Logger
}

func NewFavoriteService(favorites store.FavoriteStore, recipes RecipeReader, log logger.Logger) *FavoriteService {
	return &FavoriteService{favorites: favorites, recipes: recipes, log: log}
}

// Add resolves the recipe first, which warms the cache for provider ids.
// Adding twice is a no-op.
func (s *FavoriteService) Add(ctx context.Context, userID, recipeID string) (*model.Recipe, error) {
	recipe, err := s.recipes.Get(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.favorites.Add(ctx, userID, recipe.RecipeID); err != nil {
		return nil, &StorageError{Op: "favorite", Err: err}
	}
	return recipe, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, recipeID string) error {
	if _, err := s.favorites.Remove(ctx, userID, recipeID); err != nil {
		return &StorageError{Op: "unfavorite", Err: err}
	}
	return nil
}

// List returns the user's favorites oldest first. Entries that no longer
// resolve are skipped.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]*model.Recipe, error) {
	ids, err := s.favorites.ListRecipeIDs(ctx, userID)
	if err != nil {
		return nil, &StorageError{Op: "list favorites", Err: err}
	}

	recipes := make([]*model.Recipe, 0, len(ids))
	for _, id := range ids {
		recipe, err := s.recipes.Get(ctx, userID, id)
		switch {
		case err == nil:
			recipes = append(recipes, recipe)
		case errors.Is(err, ErrRecipeNotFound), errors.Is(err, ErrUpstreamUnavailable):
			logger.ForRequest(ctx, s.log).Warn("skipping unresolvable favorite", "user_id", userID, "recipe_id", id, "error", err)
		default:
			return nil, err
		}
	}
	return recipes, nil
}
