package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker func(ctx context.Context) error

// HealthCheck returns the health status of the API
func HealthCheck(check HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// Handlers groups everything mounted under /api/v1.
type Handlers struct {
	Recipes   *RecipeHandler
	Favorites *FavoriteHandler
	Admin     *AdminHandler
	Health    HealthChecker
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", HealthCheck(h.Health))

	v1 := router.Group("/api/v1")
	v1.GET("/health", HealthCheck(h.Health))
	h.Recipes.RegisterRoutes(v1)
	h.Favorites.RegisterRoutes(v1)
	if h.Admin != nil {
		h.Admin.RegisterRoutes(v1)
	}
}
