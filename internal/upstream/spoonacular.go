package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"

	"github.com/pageza/circlekitchen/backend/internal/logger"
)

// DefaultBaseURL is the public Spoonacular API endpoint.
const DefaultBaseURL = "https://api.spoonacular.com"

// ClientConfig configures the Spoonacular client.
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxRetries  uint64
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// Client fetches recipe information from Spoonacular. Retry policy lives here,
// not in the cache coordinator.
type Client struct {
	http        *resty.Client
	maxRetries  uint64
	backoffBase time.Duration
	backoffMax  time.Duration
	quota       QuotaGuard
	log         logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithQuotaGuard makes every fetch ask g for permission before calling out.
func WithQuotaGuard(g QuotaGuard) Option {
	return func(c *Client) { c.quota = g }
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a new Spoonacular client.
func NewClient(cfg ClientConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("spoonacular API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 200 * time.Millisecond
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = 2 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("x-api-key", cfg.APIKey)

	c := &Client{
		http:        httpClient,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		backoffMax:  cfg.BackoffMax,
		log:         logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch returns the raw recipe information document for providerID.
func (c *Client) Fetch(ctx context.Context, providerID string) (Payload, error) {
	id := strings.TrimSpace(providerID)
	if id == "" {
		return nil, fmt.Errorf("%w: empty provider id", ErrNotFound)
	}

	if c.quota != nil {
		allowed, err := c.quota.Allow(ctx)
		switch {
		case err != nil:
			logger.ForRequest(ctx, c.log).Warn("upstream quota check failed, proceeding", "recipe_id", id, "error", err)
		case !allowed:
			logger.ForRequest(ctx, c.log).Warn("upstream quota exhausted", "recipe_id", id)
			return nil, ErrQuotaExceeded
		}
	}

	var body []byte
	attempt := 0
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		attempt++
		resp, err := c.http.R().
			SetContext(ctx).
			SetPathParam("id", id).
			SetQueryParam("includeNutrition", "false").
			Get("/recipes/{id}/information")
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.ForRequest(ctx, c.log).Debug("upstream request failed", "recipe_id", id, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}

		code := resp.StatusCode()
		switch {
		case code == http.StatusOK:
			body = resp.Body()
			return nil
		case code == http.StatusNotFound:
			return ErrNotFound
		case code == http.StatusPaymentRequired || code == http.StatusTooManyRequests:
			return ErrQuotaExceeded
		case code >= http.StatusInternalServerError:
			logger.ForRequest(ctx, c.log).Debug("upstream server error", "recipe_id", id, "attempt", attempt, "status", code)
			return retry.RetryableError(fmt.Errorf("status %d", code))
		default:
			return fmt.Errorf("%w: unexpected status %d", ErrUnavailable, code)
		}
	})
	if err == nil {
		return Payload(body), nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnavailable) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func (c *Client) backoff() retry.Backoff {
	b := retry.NewExponential(c.backoffBase)
	b = retry.WithCappedDuration(c.backoffMax, b)
	if j := c.backoffBase / 2; j > 0 {
		b = retry.WithJitter(j, b)
	}
	return retry.WithMaxRetries(c.maxRetries, b)
}
