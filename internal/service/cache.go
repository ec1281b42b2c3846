package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pageza/circlekitchen/backend/internal/logger"
	"github.com/pageza/circlekitchen/backend/internal/metrics"
	"github.com/pageza/circlekitchen/backend/internal/model"
	"github.com/pageza/circlekitchen/backend/internal/normalizer"
	"github.com/pageza/circlekitchen/backend/internal/store"
	"github.com/pageza/circlekitchen/backend/internal/upstream"
)

const defaultFetchTimeout = 15 * time.Second

// NormalizeFunc converts a provider payload into a recipe.
type NormalizeFunc func(upstream.Payload) (*model.Recipe, error)

// RecipeCache resolves recipe ids to records. Stored records are returned as
// is and never expire; misses on provider ids are fetched, normalized and
// written through to the store.
type RecipeCache struct {
	store        store.RecipeStore
	fetcher      upstream.Fetcher
	normalize    NormalizeFunc
	coalesce     bool
	fetchTimeout time.Duration
	group        singleflight.Group
	log          logger.Logger
}

// CacheOption customizes a RecipeCache.
type CacheOption func(*RecipeCache)

// WithCoalescing makes concurrent misses for one id share a single fetch.
func WithCoalescing(enabled bool) CacheOption {
	return func(c *RecipeCache) { c.coalesce = enabled }
}

// WithFetchTimeout bounds a miss from fetch through persist. The bound holds
// even after the caller gives up.
func WithFetchTimeout(d time.Duration) CacheOption {
	return func(c *RecipeCache) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

func WithNormalizer(fn NormalizeFunc) CacheOption {
	return func(c *RecipeCache) { c.normalize = fn }
}

func WithCacheLogger(l logger.Logger) CacheOption {
	return func(c *RecipeCache) { c.log = l }
}

// NewRecipeCache creates a new RecipeCache instance
func NewRecipeCache(st store.RecipeStore, fetcher upstream.Fetcher, opts ...CacheOption) *RecipeCache {
	c := &RecipeCache{
		store:        st,
		fetcher:      fetcher,
		normalize:    normalizer.Normalize,
		coalesce:     true,
		fetchTimeout: defaultFetchTimeout,
		log:          logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewLocalID returns an id for a user-authored recipe.
func NewLocalID() string {
	return uuid.NewString()
}

// IsLocalID reports whether id was generated locally rather than issued by the provider.
func IsLocalID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// Get returns the recipe for id, fetching it from the provider on a miss.
func (c *RecipeCache) Get(ctx context.Context, id string) (*model.Recipe, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRecipeNotFound
	}

	recipe, found, err := c.store.FindByID(ctx, id)
	if err != nil {
		metrics.CacheLookups.WithLabelValues(metrics.ResultError).Inc()
		metrics.StorageErrors.WithLabelValues("find").Inc()
		logger.ForRequest(ctx, c.log).Error("recipe lookup failed", "recipe_id", id, "error", err)
		return nil, &StorageError{Op: "find", Err: err}
	}
	if found {
		metrics.CacheLookups.WithLabelValues(metrics.ResultHit).Inc()
		return recipe, nil
	}

	if IsLocalID(id) {
		metrics.CacheLookups.WithLabelValues(metrics.ResultNotFound).Inc()
		return nil, ErrRecipeNotFound
	}

	metrics.CacheLookups.WithLabelValues(metrics.ResultMiss).Inc()
	logger.ForRequest(ctx, c.log).Debug("recipe cache miss", "recipe_id", id)
	return c.resolveMiss(ctx, id)
}

// resolveMiss runs fetch+persist detached from ctx so a caller that goes away
// still leaves a warm cache behind.
func (c *RecipeCache) resolveMiss(ctx context.Context, id string) (*model.Recipe, error) {
	detached := context.WithoutCancel(ctx)
	var leader atomic.Bool
	work := func() (any, error) {
		leader.Store(true)
		fctx, cancel := context.WithTimeout(detached, c.fetchTimeout)
		defer cancel()
		return c.fetchAndCache(fctx, id)
	}

	var results <-chan singleflight.Result
	if c.coalesce {
		results = c.group.DoChan(id, work)
	} else {
		ch := make(chan singleflight.Result, 1)
		go func() {
			v, err := work()
			ch <- singleflight.Result{Val: v, Err: err}
		}()
		results = ch
	}

	select {
	case res := <-results:
		if !leader.Load() {
			metrics.CoalescedRequests.Inc()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.Recipe).Clone(), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, ctx.Err())
	}
}

// fetchAndCache is the miss path. A failed write does not fail the lookup:
// the caller still gets the fetched recipe and the fault is logged and counted.
func (c *RecipeCache) fetchAndCache(ctx context.Context, id string) (*model.Recipe, error) {
	recipe, err := c.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	stored, err := c.store.Upsert(ctx, recipe)
	if err != nil {
		metrics.StorageErrors.WithLabelValues("upsert").Inc()
		logger.ForRequest(ctx, c.log).Error("failed to cache fetched recipe", "recipe_id", id, "error", err)
		recipe.LastModified = time.Now().UTC()
		return recipe, nil
	}
	return stored, nil
}

func (c *RecipeCache) fetch(ctx context.Context, id string) (*model.Recipe, error) {
	start := time.Now()
	raw, err := c.fetcher.Fetch(ctx, id)
	metrics.UpstreamFetchDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, upstream.ErrNotFound):
		metrics.UpstreamFetches.WithLabelValues(metrics.OutcomeNotFound).Inc()
		return nil, ErrRecipeNotFound
	case errors.Is(err, upstream.ErrQuotaExceeded):
		metrics.UpstreamFetches.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		logger.ForRequest(ctx, c.log).Warn("upstream quota exhausted", "recipe_id", id)
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	case err != nil:
		metrics.UpstreamFetches.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		logger.ForRequest(ctx, c.log).Error("upstream fetch failed", "recipe_id", id, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	metrics.UpstreamFetches.WithLabelValues(metrics.OutcomeSuccess).Inc()

	recipe, err := c.normalize(raw)
	if err == nil && recipe.RecipeID != id {
		err = &normalizer.Error{Field: "id", Reason: fmt.Sprintf("provider returned %q for %q", recipe.RecipeID, id)}
	}
	if err != nil {
		metrics.NormalizationFailures.Inc()
		logger.ForRequest(ctx, c.log).Error("provider payload rejected", "recipe_id", id, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	return recipe, nil
}

// Refetch replaces a cached provider record with a fresh copy. If the provider
// no longer knows the recipe the stored copy is kept and returned.
func (c *RecipeCache) Refetch(ctx context.Context, id string) (*model.Recipe, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRecipeNotFound
	}
	if IsLocalID(id) {
		return nil, ErrNotProviderRecipe
	}

	existing, found, err := c.store.FindByID(ctx, id)
	if err != nil {
		metrics.StorageErrors.WithLabelValues("find").Inc()
		return nil, &StorageError{Op: "find", Err: err}
	}
	if found && !existing.Owner.IsProvider() {
		return nil, ErrNotProviderRecipe
	}

	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
	defer cancel()

	recipe, err := c.fetch(fctx, id)
	if errors.Is(err, ErrRecipeNotFound) && found {
		logger.ForRequest(ctx, c.log).Warn("provider no longer has recipe, keeping cached copy", "recipe_id", id)
		return existing, nil
	}
	if err != nil {
		return nil, err
	}

	stored, err := c.store.Upsert(fctx, recipe)
	if err != nil {
		metrics.StorageErrors.WithLabelValues("upsert").Inc()
		logger.ForRequest(ctx, c.log).Error("failed to store refetched recipe", "recipe_id", id, "error", err)
		return nil, &StorageError{Op: "upsert", Err: err}
	}
	logger.ForRequest(ctx, c.log).Info("recipe refetched", "recipe_id", id)
	return stored, nil
}

// Purge removes any record, provider or user-authored.
func (c *RecipeCache) Purge(ctx context.Context, id string) error {
	deleted, err := c.store.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		metrics.StorageErrors.WithLabelValues("delete").Inc()
		return &StorageError{Op: "delete", Err: err}
	}
	if !deleted {
		return ErrRecipeNotFound
	}
	logger.ForRequest(ctx, c.log).Info("recipe purged", "recipe_id", id)
	return nil
}
