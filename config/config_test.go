package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("should read values from the environment", func(t *testing.T) {
		t.Setenv("CI", "")
		t.Setenv("ENV", "test")
		t.Setenv("DB_DRIVER", "postgres")
		t.Setenv("DB_HOST", "db")
		t.Setenv("DB_USER", "postgres")
		t.Setenv("DB_PASSWORD", "postgres")
		t.Setenv("DB_NAME", "recipes")
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("SPOONACULAR_API_KEY", "key")
		t.Setenv("UPSTREAM_TIMEOUT", "3s")
		t.Setenv("CACHE_COALESCE", "false")
		t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, Test, cfg.Environment)
		assert.Equal(t, "db", cfg.DBHost)
		assert.Equal(t, "5432", cfg.DBPort)
		assert.Equal(t, "test-secret", cfg.JWTSecret)
		assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
		assert.False(t, cfg.CacheCoalesce)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
		assert.Equal(t, "host=db port=5432 user=postgres password=postgres dbname=recipes sslmode=disable", cfg.DSN())
	})

	t.Run("should apply defaults", func(t *testing.T) {
		t.Setenv("CI", "")
		t.Setenv("ENV", "test")
		t.Setenv("DB_DRIVER", "sqlite")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.ServerPort)
		assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
		assert.Equal(t, 2, cfg.UpstreamMaxRetries)
		assert.Equal(t, 60, cfg.UpstreamQuotaPerMinute)
		assert.Equal(t, 1024, cfg.CacheMemorySize)
		assert.Equal(t, 5*time.Minute, cfg.CacheMemoryTTL)
		assert.True(t, cfg.CacheCoalesce)
		assert.Equal(t, "https://api.spoonacular.com", cfg.SpoonacularAPIURL)
		assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	})

	t.Run("should report malformed values", func(t *testing.T) {
		t.Setenv("CI", "")
		t.Setenv("ENV", "test")
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("UPSTREAM_MAX_RETRIES", "many")

		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "UPSTREAM_MAX_RETRIES")
	})

	t.Run("should read the API key from a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "key")
		require.NoError(t, os.WriteFile(path, []byte("file-key\n"), 0o600))
		t.Setenv("CI", "")
		t.Setenv("ENV", "test")
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("SPOONACULAR_API_KEY_FILE", path)

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "file-key", cfg.SpoonacularAPIKey)
	})

	t.Run("should prefer docker secrets in production", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret"), 0o600))
		t.Setenv("CI", "")
		t.Setenv("ENV", "production")
		t.Setenv("SECRETS_DIR", dir)
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("JWT_SECRET", "from-env")
		t.Setenv("SPOONACULAR_API_KEY", "key")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "from-secret", cfg.JWTSecret)
		assert.True(t, cfg.LogJSON)
	})
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment:     Development,
			ServerPort:      "8080",
			DBDriver:        "postgres",
			DBHost:          "localhost",
			DBUser:          "postgres",
			DBPassword:      "secret",
			DBName:          "recipes",
			JWTSecret:       "jwt",
			UpstreamTimeout: time.Second,
		}
	}

	t.Run("should require the upstream key outside test", func(t *testing.T) {
		cfg := valid()
		err := ValidateConfig(cfg)

		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		require.Len(t, verrs, 1)
		assert.Equal(t, "SPOONACULAR_API_KEY", verrs[0].Field)
	})

	t.Run("should collect every problem", func(t *testing.T) {
		cfg := valid()
		cfg.Environment = Production
		cfg.ServerPort = "http"
		cfg.DBPassword = ""
		cfg.JWTSecret = ""
		cfg.UpstreamTimeout = 0

		err := ValidateConfig(cfg)

		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		fields := make([]string, 0, len(verrs))
		for _, e := range verrs {
			fields = append(fields, e.Field)
		}
		assert.ElementsMatch(t, []string{"SERVER_PORT", "DB_PASSWORD", "JWT_SECRET", "SPOONACULAR_API_KEY", "UPSTREAM_TIMEOUT"}, fields)
	})

	t.Run("should reject unknown drivers", func(t *testing.T) {
		cfg := valid()
		cfg.Environment = Test
		cfg.DBDriver = "mysql"

		err := ValidateConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_DRIVER")
	})
}

func TestGetEnvironment(t *testing.T) {
	t.Run("should detect CI", func(t *testing.T) {
		t.Setenv("CI", "true")
		t.Setenv("ENV", "production")
		assert.Equal(t, CI, GetEnvironment())
	})

	t.Run("should default to development", func(t *testing.T) {
		t.Setenv("CI", "")
		t.Setenv("ENV", "")
		assert.Equal(t, Development, GetEnvironment())
	})
}
