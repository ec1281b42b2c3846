package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/circlekitchen/backend/internal/model"
)

// GormStore is the RecipeStore backed by postgres or sqlite.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// Option customizes a GormStore.
type Option func(*GormStore)

// WithClock overrides the clock used for LastModified.
func WithClock(now func() time.Time) Option {
	return func(s *GormStore) { s.now = now }
}

// NewGormStore creates a new GormStore instance
func NewGormStore(db *gorm.DB, opts ...Option) *GormStore {
	s := &GormStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GormStore) FindByID(ctx context.Context, id string) (*model.Recipe, bool, error) {
	var recipe model.Recipe
	err := s.db.WithContext(ctx).First(&recipe, "recipe_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find recipe %s: %w", id, err)
	}
	return &recipe, true, nil
}

// Upsert writes the whole row in one INSERT ... ON CONFLICT statement, so
// readers see either the old record or the new one.
func (s *GormStore) Upsert(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	if recipe == nil {
		return nil, errors.New("recipe is nil")
	}
	row := recipe.Clone()
	row.LastModified = s.now().UTC().Truncate(time.Microsecond)
	row.Embedding = GenerateEmbedding(row.Title)
	if row.Cuisines == nil {
		row.Cuisines = model.JSONBStringArray{}
	}
	if row.DishTypes == nil {
		row.DishTypes = model.JSONBStringArray{}
	}
	if row.Ingredients == nil {
		row.Ingredients = model.Ingredients{}
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipe_id"}},
			UpdateAll: true,
		}).
		Create(row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert recipe %s: %w", row.RecipeID, err)
	}
	return row, nil
}

func (s *GormStore) FindVisible(ctx context.Context, q ListQuery) ([]*model.Recipe, error) {
	q = q.withDefaults()
	query := s.db.WithContext(ctx).Model(&model.Recipe{})

	switch {
	case q.OwnedOnly && q.Requester == "":
		return []*model.Recipe{}, nil
	case q.OwnedOnly:
		query = query.Where("owner_id = ?", q.Requester)
	case q.Requester == "":
		query = query.Where("is_public = ?", true)
	default:
		query = query.Where("is_public = ? OR owner_id = ?", true, q.Requester)
	}

	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(summary) LIKE ?", like, like)
	}
	if q.Search != "" && s.db.Dialector.Name() == "postgres" {
		// A single expression; merged Order clauses would drop it.
		vec := GenerateEmbedding(q.Search)
		query = query.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?, last_modified DESC, recipe_id", Vars: []interface{}{vec}},
		})
	} else {
		query = query.Order("last_modified DESC").Order("recipe_id")
	}

	var recipes []model.Recipe
	err := query.
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	result := make([]*model.Recipe, len(recipes))
	for i := range recipes {
		result[i] = &recipes[i]
	}
	return result, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&model.Recipe{}, "recipe_id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete recipe %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}
