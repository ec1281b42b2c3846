package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/circlekitchen/backend/internal/middleware"
	"github.com/pageza/circlekitchen/backend/internal/service"
)

// AdminHandler exposes operator controls over the recipe cache.
type AdminHandler struct {
	cache service.ICacheService
	token string
}

func NewAdminHandler(cache service.ICacheService, token string) *AdminHandler {
	return &AdminHandler{cache: cache, token: token}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin", middleware.AdminToken(h.token))
	{
		admin.POST("/recipes/:id/refetch", h.Refetch)
		admin.DELETE("/recipes/:id", h.Purge)
	}
}

func (h *AdminHandler) Refetch(c *gin.Context) {
	recipe, err := h.cache.Refetch(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func (h *AdminHandler) Purge(c *gin.Context) {
	if err := h.cache.Purge(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
