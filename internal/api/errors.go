package api

import (
	"errors"
	"net/http"

	"github.com/pageza/circlekitchen/backend/internal/service"
)

// ErrBadRequest marks malformed request input caught before the service layer.
var ErrBadRequest = errors.New("bad request")

// StatusFor maps a service error to its HTTP status and the message shown to
// the client. Storage and unknown faults never leak their cause.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		return http.StatusNotFound, "recipe not found"
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "recipe provider unavailable"
	case errors.Is(err, service.ErrInvalidRecipe),
		errors.Is(err, service.ErrInvalidImage),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "not allowed to modify this recipe"
	case errors.Is(err, service.ErrNotProviderRecipe):
		return http.StatusConflict, "recipe was not fetched from the provider"
	case errors.Is(err, service.ErrImagesNotConfigured):
		return http.StatusNotImplemented, "image uploads are not enabled"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid or expired token"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
