package model

import (
	"time"
)

// RecipeFavorite links a user to a recipe they saved, by recipe id.
type RecipeFavorite struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_favorite_user_recipe;index" json:"user_id"`
	RecipeID  string    `gorm:"size:64;not null;uniqueIndex:idx_favorite_user_recipe" json:"recipe_id"`
}

func (RecipeFavorite) TableName() string {
	return "recipe_favorites"
}
