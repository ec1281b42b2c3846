// Package app assembles the service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/circlekitchen/backend/config"
	"github.com/pageza/circlekitchen/backend/internal/api"
	"github.com/pageza/circlekitchen/backend/internal/database"
	"github.com/pageza/circlekitchen/backend/internal/logger"
	"github.com/pageza/circlekitchen/backend/internal/middleware"
	"github.com/pageza/circlekitchen/backend/internal/server"
	"github.com/pageza/circlekitchen/backend/internal/service"
	"github.com/pageza/circlekitchen/backend/internal/store"
	"github.com/pageza/circlekitchen/backend/internal/upstream"
)

// App holds every long-lived component.
type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     *redis.Client
	Store     store.RecipeStore
	Cache     *service.RecipeCache
	Recipes   *service.RecipeService
	Favorites *service.FavoriteService
	Auth      *service.AuthService
	Server    *server.Server

	log     logger.Logger
	closers []func() error
}

// Option overrides a dependency, mostly for tests.
type Option func(*options)

type options struct {
	db          *gorm.DB
	redis       *redis.Client
	fetcher     upstream.Fetcher
	objects     service.ObjectStorage
	skipRedis   bool
	skipMigrate bool
	skipObjects bool
}

// WithDB uses an already open database instead of dialing one.
func WithDB(db *gorm.DB) Option { return func(o *options) { o.db = db } }

// WithRedis uses an existing redis client.
func WithRedis(c *redis.Client) Option { return func(o *options) { o.redis = c } }

// WithoutRedis runs without rate limits or an upstream quota.
func WithoutRedis() Option { return func(o *options) { o.skipRedis = true } }

// WithFetcher replaces the Spoonacular client.
func WithFetcher(f upstream.Fetcher) Option { return func(o *options) { o.fetcher = f } }

// WithObjectStorage replaces S3 for recipe images.
func WithObjectStorage(s service.ObjectStorage) Option { return func(o *options) { o.objects = s } }

// WithoutMigrations skips schema migration on start.
func WithoutMigrations() Option { return func(o *options) { o.skipMigrate = true } }

// WithoutObjectStorage disables image uploads.
func WithoutObjectStorage() Option { return func(o *options) { o.skipObjects = true } }

// NewLogger builds the process logger from configuration.
func NewLogger(cfg *config.Config) logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		Output:     os.Stdout,
		JSON:       cfg.LogJSON,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
}

// New wires storage, the provider client, services and the HTTP server.
// Redis is optional: when it cannot be reached the service runs without
// rate limits.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	a := &App{Config: cfg, log: log}

	if err := a.initDB(ctx, o); err != nil {
		return nil, a.fail(err)
	}
	a.initRedis(o)

	fetcher, err := a.newFetcher(o)
	if err != nil {
		return nil, a.fail(err)
	}

	a.Store = store.NewGormStore(a.DB)
	if cfg.CacheMemorySize > 0 {
		memo, err := store.NewMemoized(a.Store, cfg.CacheMemorySize, cfg.CacheMemoryTTL)
		if err != nil {
			return nil, a.fail(err)
		}
		a.Store = memo
	}

	a.Cache = service.NewRecipeCache(a.Store, fetcher,
		service.WithCoalescing(cfg.CacheCoalesce),
		service.WithFetchTimeout(fetchBudget(cfg)),
		service.WithCacheLogger(log.With("component", "cache")),
	)
	a.Recipes = service.NewRecipeService(a.Store, a.Cache, a.newImages(ctx, o), log.With("component", "recipes"))
	a.Favorites = service.NewFavoriteService(store.NewGormFavorites(a.DB), a.Recipes, log.With("component", "favorites"))
	a.Auth = service.NewAuthService(cfg.JWTSecret)

	var creationLimiter *middleware.RateLimiter
	if a.Redis != nil && cfg.RecipeCreatePerHour > 0 {
		creationLimiter = middleware.NewRecipeCreationRateLimiter(a.Redis, cfg.RecipeCreatePerHour)
	}
	db := a.DB
	a.Server = server.New(cfg, api.Handlers{
		Recipes:   api.NewRecipeHandler(a.Recipes, a.Auth, creationLimiter),
		Favorites: api.NewFavoriteHandler(a.Favorites, a.Auth),
		Admin:     api.NewAdminHandler(a.Cache, cfg.AdminToken),
		Health:    func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
	}, log)

	return a, nil
}

func (a *App) initDB(ctx context.Context, o options) error {
	if o.db != nil {
		a.DB = o.db
	} else {
		db, err := database.Open(a.Config, a.log)
		if err != nil {
			return err
		}
		a.DB = db
		a.closers = append(a.closers, func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
	}
	if o.skipMigrate {
		return nil
	}
	if err := database.RunMigrations(ctx, a.DB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (a *App) initRedis(o options) {
	switch {
	case o.skipRedis:
		return
	case o.redis != nil:
		a.Redis = o.redis
		return
	}
	client, err := database.NewRedisClient(a.Config, a.log)
	if err != nil {
		a.log.Warn("Redis unavailable, running without rate limits", "error", err)
		return
	}
	a.Redis = client
	a.closers = append(a.closers, client.Close)
}

func (a *App) newFetcher(o options) (upstream.Fetcher, error) {
	if o.fetcher != nil {
		return o.fetcher, nil
	}
	opts := []upstream.Option{upstream.WithLogger(a.log.With("component", "spoonacular"))}
	if a.Redis != nil && a.Config.UpstreamQuotaPerMinute > 0 {
		opts = append(opts, upstream.WithQuotaGuard(middleware.NewUpstreamQuota(a.Redis, a.Config.UpstreamQuotaPerMinute)))
	}
	client, err := upstream.NewClient(upstream.ClientConfig{
		BaseURL:    a.Config.SpoonacularAPIURL,
		APIKey:     a.Config.SpoonacularAPIKey,
		Timeout:    a.Config.UpstreamTimeout,
		MaxRetries: uint64(a.Config.UpstreamMaxRetries),
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream client: %w", err)
	}
	return client, nil
}

func (a *App) newImages(ctx context.Context, o options) *service.ImageService {
	if o.skipObjects {
		return nil
	}
	objects := o.objects
	if objects == nil {
		s3, err := config.NewS3Config(ctx, a.Config)
		if err != nil {
			a.log.Warn("Image storage unavailable, uploads disabled", "error", err)
			return nil
		}
		objects = s3
	}
	return service.NewImageService(objects, a.log.With("component", "images"))
}

// fetchBudget covers every attempt the provider client may make, plus backoff.
func fetchBudget(cfg *config.Config) time.Duration {
	attempts := time.Duration(cfg.UpstreamMaxRetries + 1)
	return attempts*cfg.UpstreamTimeout + attempts*2*time.Second
}

func (a *App) fail(err error) error {
	return errors.Join(err, a.Close())
}

// Close releases connections the app opened itself.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
