package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/circlekitchen/backend/config"
	"github.com/pageza/circlekitchen/backend/internal/logger"
)

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: "file::memory:"}

	db, err := Open(cfg, logger.NewForTests())
	require.NoError(t, err)

	require.NoError(t, RunMigrations(context.Background(), db))
	assert.True(t, db.Migrator().HasTable("recipes"))
	assert.True(t, db.Migrator().HasTable("recipe_favorites"))
	assert.NoError(t, HealthCheck(context.Background(), db))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "mysql"}, logger.NewForTests())
	assert.Error(t, err)
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 2)
}

func TestNewRedisClient(t *testing.T) {
	t.Run("should connect by host and port", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{RedisHost: mr.Host(), RedisPort: mr.Port()}

		client, err := NewRedisClient(cfg, logger.NewForTests())
		require.NoError(t, err)
		defer client.Close()

		assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
		got, err := mr.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "v", got)
	})

	t.Run("should prefer the URL", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{RedisHost: "invalid", RedisPort: "1", RedisURL: "redis://" + mr.Addr()}

		client, err := NewRedisClient(cfg, logger.NewForTests())
		require.NoError(t, err)
		client.Close()
	})

	t.Run("should fail when unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := NewRedisClient(&config.Config{RedisURL: "redis://" + addr}, logger.NewForTests())
		assert.Error(t, err)
	})
}
