package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/circlekitchen/backend/internal/model"
	"github.com/pageza/circlekitchen/backend/internal/store"
)

// MockRecipeStore is a mock implementation of store.RecipeStore
type MockRecipeStore struct {
	mock.Mock
}

func (m *MockRecipeStore) FindByID(ctx context.Context, id string) (*model.Recipe, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Recipe).Clone(), args.Bool(1), args.Error(2)
}

func (m *MockRecipeStore) Upsert(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	args := m.Called(ctx, recipe)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe).Clone(), args.Error(1)
}

func (m *MockRecipeStore) FindVisible(ctx context.Context, q store.ListQuery) ([]*model.Recipe, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}

func (m *MockRecipeStore) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockFavoriteStore is a mock implementation of store.FavoriteStore
type MockFavoriteStore struct {
	mock.Mock
}

func (m *MockFavoriteStore) Add(ctx context.Context, userID, recipeID string) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

func (m *MockFavoriteStore) Remove(ctx context.Context, userID, recipeID string) (bool, error) {
	args := m.Called(ctx, userID, recipeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteStore) ListRecipeIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
