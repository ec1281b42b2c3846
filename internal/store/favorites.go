package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/circlekitchen/backend/internal/model"
)

// FavoriteStore records which recipes a user saved. It stores ids only; the
// recipes themselves are resolved through the cache.
type FavoriteStore interface {
	Add(ctx context.Context, userID, recipeID string) error
	Remove(ctx context.Context, userID, recipeID string) (bool, error)
	ListRecipeIDs(ctx context.Context, userID string) ([]string, error)
}

type GormFavorites struct {
	db *gorm.DB
}

func NewGormFavorites(db *gorm.DB) *GormFavorites {
	return &GormFavorites{db: db}
}

// Add is idempotent.
func (s *GormFavorites) Add(ctx context.Context, userID, recipeID string) error {
	fav := &model.RecipeFavorite{UserID: userID, RecipeID: recipeID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fav).Error
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

func (s *GormFavorites) Remove(ctx context.Context, userID, recipeID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&model.RecipeFavorite{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListRecipeIDs returns ids oldest favorite first.
func (s *GormFavorites) ListRecipeIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&model.RecipeFavorite{}).
		Where("user_id = ?", userID).
		Order("created_at").
		Order("id").
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return ids, nil
}
