package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		add("SERVER_PORT", "must be a valid port")
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			add("DB_HOST", "is required for postgres")
		}
		if cfg.DBUser == "" {
			add("DB_USER", "is required for postgres")
		}
		if cfg.DBPassword == "" {
			add("DB_PASSWORD", "is required for postgres")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required for postgres")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for sqlite")
		}
	default:
		add("DB_DRIVER", "must be postgres or sqlite")
	}

	if cfg.Environment != Test {
		if cfg.JWTSecret == "" {
			add("JWT_SECRET", "is required")
		}
		if cfg.SpoonacularAPIKey == "" {
			add("SPOONACULAR_API_KEY", "is required")
		}
	}

	if cfg.UpstreamTimeout <= 0 {
		add("UPSTREAM_TIMEOUT", "must be positive")
	}
	if cfg.UpstreamMaxRetries < 0 {
		add("UPSTREAM_MAX_RETRIES", "must not be negative")
	}
	if cfg.UpstreamQuotaPerMinute < 0 {
		add("UPSTREAM_QUOTA_PER_MINUTE", "must not be negative")
	}
	if cfg.CacheMemorySize < 0 {
		add("CACHE_MEMORY_SIZE", "must not be negative")
	}
	if cfg.CacheMemoryTTL < 0 {
		add("CACHE_MEMORY_TTL", "must not be negative")
	}
	if cfg.RecipeCreatePerHour < 0 {
		add("RECIPE_CREATE_PER_HOUR", "must not be negative")
	}
	if cfg.RedisDB < 0 {
		add("REDIS_DB", "must not be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
