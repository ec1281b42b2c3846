package service

import (
	"context"

	"github.com/pageza/circlekitchen/backend/internal/model"
	"github.com/pageza/circlekitchen/backend/internal/store"
	"github.com/pageza/circlekitchen/backend/internal/types"
)

// RecipeResolver resolves an id regardless of where the recipe came from.
type RecipeResolver interface {
	Get(ctx context.Context, id string) (*model.Recipe, error)
}

// ICacheService is the administrative surface of the recipe cache.
type ICacheService interface {
	RecipeResolver
	Refetch(ctx context.Context, id string) (*model.Recipe, error)
	Purge(ctx context.Context, id string) error
}

// RecipeReader resolves an id on behalf of a requester.
type RecipeReader interface {
	Get(ctx context.Context, requester, id string) (*model.Recipe, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	RecipeReader
	List(ctx context.Context, q store.ListQuery) ([]*model.Recipe, error)
	Create(ctx context.Context, ownerID string, in RecipeInput) (*model.Recipe, error)
	Update(ctx context.Context, ownerID, id string, in RecipeInput) (*model.Recipe, error)
	Delete(ctx context.Context, ownerID, id string) error
	SetImage(ctx context.Context, ownerID, id string, data []byte) (*model.Recipe, error)
}

// IFavoriteService defines the interface for favorite operations
type IFavoriteService interface {
	Add(ctx context.Context, userID, recipeID string) (*model.Recipe, error)
	Remove(ctx context.Context, userID, recipeID string) error
	List(ctx context.Context, userID string) ([]*model.Recipe, error)
}

// IAuthService defines the interface for token operations
type IAuthService interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

var (
	_ ICacheService    = (*RecipeCache)(nil)
	_ IRecipeService   = (*RecipeService)(nil)
	_ IFavoriteService = (*FavoriteService)(nil)
	_ IAuthService     = (*AuthService)(nil)
)
