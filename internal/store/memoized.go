package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/pageza/circlekitchen/backend/internal/model"
)

// Memoized keeps recently read provider recipes in process memory in front of
// another RecipeStore. Writes go to the inner store first. Callers always get
// copies.
//
// User-authored records are never held: they change through whichever replica
// the author hits, and a stale copy would leak a recipe made private. Provider
// records only change through refetch or purge, so a ttl bounds how long
// another replica can serve the old version.
type Memoized struct {
	inner RecipeStore

	mu    sync.Mutex
	cache *expirable.LRU[string, *model.Recipe]
}

// NewMemoized wraps inner with an LRU of the given size. A zero ttl keeps
// entries until they are evicted.
func NewMemoized(inner RecipeStore, size int, ttl time.Duration) (*Memoized, error) {
	if size <= 0 {
		return nil, fmt.Errorf("memo cache size must be greater than zero")
	}
	if ttl < 0 {
		return nil, fmt.Errorf("memo cache ttl must not be negative")
	}
	cache := expirable.NewLRU[string, *model.Recipe](size, nil, ttl)
	return &Memoized{inner: inner, cache: cache}, nil
}

func (m *Memoized) FindByID(ctx context.Context, id string) (*model.Recipe, bool, error) {
	if r, ok := m.cache.Get(id); ok {
		return r.Clone(), true, nil
	}
	r, found, err := m.inner.FindByID(ctx, id)
	if err != nil || !found {
		return r, found, err
	}
	m.remember(r)
	return r.Clone(), true, nil
}

func (m *Memoized) Upsert(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	stored, err := m.inner.Upsert(ctx, recipe)
	if err != nil {
		if recipe != nil {
			m.forget(recipe.RecipeID)
		}
		return nil, err
	}
	m.remember(stored)
	return stored.Clone(), nil
}

// FindVisible is not memoized.
func (m *Memoized) FindVisible(ctx context.Context, q ListQuery) ([]*model.Recipe, error) {
	return m.inner.FindVisible(ctx, q)
}

func (m *Memoized) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := m.inner.Delete(ctx, id)
	m.forget(id)
	return deleted, err
}

// remember never replaces an entry with an older version of the same record.
func (m *Memoized) remember(r *model.Recipe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !r.Owner.IsProvider() {
		m.cache.Remove(r.RecipeID)
		return
	}
	if cur, ok := m.cache.Peek(r.RecipeID); ok && cur.LastModified.After(r.LastModified) {
		return
	}
	m.cache.Add(r.RecipeID, r.Clone())
}

func (m *Memoized) forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Remove(id)
}

// Len reports how many records are held in memory.
func (m *Memoized) Len() int {
	return m.cache.Len()
}
