package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort         string
	ServerHost         string
	CORSAllowedOrigins []string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Auth
	JWTSecret  string
	AdminToken string

	// Upstream recipe provider
	SpoonacularAPIKey      string
	SpoonacularAPIURL      string
	UpstreamTimeout        time.Duration
	UpstreamMaxRetries     int
	UpstreamQuotaPerMinute int

	// Recipe cache
	CacheMemorySize int
	CacheMemoryTTL  time.Duration
	CacheCoalesce   bool

	// Recipes a user may author per hour, 0 disables the limit
	RecipeCreatePerHour int

	// Image storage
	S3BucketName string
	AWSRegion    string

	// Logging
	LogLevel string
	LogJSON  bool
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env == Development {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	r := &envReader{env: env}
	cfg := r.load()
	if len(r.errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %w", r.errs)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

type envReader struct {
	env  Environment
	errs ValidationErrors
}

func (r *envReader) load() *Config {
	return &Config{
		Environment:        r.env,
		ServerPort:         r.str("SERVER_PORT", "8080"),
		ServerHost:         r.str("SERVER_HOST", "0.0.0.0"),
		CORSAllowedOrigins: r.list("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		DBDriver:   strings.ToLower(r.str("DB_DRIVER", "postgres")),
		DBHost:     r.str("DB_HOST", "localhost"),
		DBPort:     r.str("DB_PORT", "5432"),
		DBUser:     r.secret("db_user", "DB_USER"),
		DBPassword: r.secret("db_password", "DB_PASSWORD"),
		DBName:     r.str("DB_NAME", "circlekitchen"),
		DBSSLMode:  r.str("DB_SSL_MODE", "disable"),
		SQLitePath: r.str("SQLITE_PATH", "file::memory:?cache=shared"),

		RedisURL:      r.str("REDIS_URL", ""),
		RedisHost:     r.str("REDIS_HOST", "localhost"),
		RedisPort:     r.str("REDIS_PORT", "6379"),
		RedisPassword: r.secret("redis_password", "REDIS_PASSWORD"),
		RedisDB:       r.int("REDIS_DB", 0),

		JWTSecret:  r.secret("jwt_secret", "JWT_SECRET"),
		AdminToken: r.secret("admin_token", "ADMIN_TOKEN"),

		SpoonacularAPIKey:      r.apiKey(),
		SpoonacularAPIURL:      r.str("SPOONACULAR_API_URL", "https://api.spoonacular.com"),
		UpstreamTimeout:        r.duration("UPSTREAM_TIMEOUT", 10*time.Second),
		UpstreamMaxRetries:     r.int("UPSTREAM_MAX_RETRIES", 2),
		UpstreamQuotaPerMinute: r.int("UPSTREAM_QUOTA_PER_MINUTE", 60),

		CacheMemorySize: r.int("CACHE_MEMORY_SIZE", 1024),
		CacheMemoryTTL:  r.duration("CACHE_MEMORY_TTL", 5*time.Minute),
		CacheCoalesce:   r.bool("CACHE_COALESCE", true),

		RecipeCreatePerHour: r.int("RECIPE_CREATE_PER_HOUR", 20),

		S3BucketName: r.str("S3_BUCKET_NAME", "circlekitchen-recipe-images"),
		AWSRegion:    r.str("AWS_REGION", "us-east-1"),

		LogLevel: r.str("LOG_LEVEL", "info"),
		LogJSON:  r.bool("LOG_JSON", r.env == Production),
	}
}

func (r *envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *envReader) list(key, def string) []string {
	var out []string
	for _, part := range strings.Split(r.str(key, def), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (r *envReader) int(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, ValidationError{Field: key, Message: "must be an integer"})
		return def
	}
	return n
}

func (r *envReader) bool(key string, def bool) bool {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, ValidationError{Field: key, Message: "must be a boolean"})
		return def
	}
	return b
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, ValidationError{Field: key, Message: "must be a duration such as 10s"})
		return def
	}
	return d
}

// secret prefers a docker secret in production and falls back to the env var.
func (r *envReader) secret(name, key string) string {
	if r.env == Production {
		if v := readSecret(name); v != "" {
			return v
		}
	}
	return r.str(key, "")
}

func (r *envReader) apiKey() string {
	if path := r.str("SPOONACULAR_API_KEY_FILE", ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			r.errs = append(r.errs, ValidationError{Field: "SPOONACULAR_API_KEY_FILE", Message: "cannot be read"})
			return ""
		}
		return strings.TrimSpace(string(data))
	}
	return r.secret("spoonacular_api_key", "SPOONACULAR_API_KEY")
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
