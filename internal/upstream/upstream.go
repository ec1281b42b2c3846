// Package upstream talks to the third-party recipe provider.
package upstream

import (
	"context"
	"errors"
	"fmt"
)

// Payload is the raw, loosely-typed recipe document returned by the provider.
type Payload []byte

var (
	// ErrNotFound means the provider explicitly reported the recipe as missing.
	ErrNotFound = errors.New("upstream: recipe not found")
	// ErrUnavailable means the provider could not be reached or answered with a fault.
	ErrUnavailable = errors.New("upstream: unavailable")
	// ErrQuotaExceeded means the request quota is spent; it is a kind of ErrUnavailable.
	ErrQuotaExceeded = fmt.Errorf("%w: quota exceeded", ErrUnavailable)
)

// Fetcher fetches a single recipe by provider id.
type Fetcher interface {
	Fetch(ctx context.Context, providerID string) (Payload, error)
}

// QuotaGuard decides whether another upstream call may be spent right now.
type QuotaGuard interface {
	Allow(ctx context.Context) (bool, error)
}
