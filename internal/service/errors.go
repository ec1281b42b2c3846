package service

import (
	"errors"
	"fmt"
)

var (
	// ErrRecipeNotFound means the recipe is neither stored nor known to the provider,
	// or it exists but the requester may not see it.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrUpstreamUnavailable means the provider failed or returned a payload that
	// could not be normalized, and there was no stored copy to fall back on.
	ErrUpstreamUnavailable = errors.New("recipe provider unavailable")
	ErrInvalidRecipe       = errors.New("invalid recipe")
	ErrInvalidImage        = errors.New("invalid image")
	ErrForbidden           = errors.New("not allowed to modify this recipe")
	ErrNotProviderRecipe   = errors.New("recipe was not fetched from the provider")
	ErrInvalidToken        = errors.New("invalid token")
	ErrImagesNotConfigured = errors.New("image storage is not configured")
)

// StorageError wraps a fault in the recipe store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("recipe storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
