package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/circlekitchen/backend/internal/middleware"
	"github.com/pageza/circlekitchen/backend/internal/service"
)

type FavoriteHandler struct {
	favorites service.IFavoriteService
	auth      middleware.TokenValidator
}

func NewFavoriteHandler(favorites service.IFavoriteService, auth middleware.TokenValidator) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, auth: auth}
}

func (h *FavoriteHandler) RegisterRoutes(router *gin.RouterGroup) {
	favorites := router.Group("/favorites", middleware.AuthMiddleware(h.auth))
	{
		favorites.GET("", h.ListFavorites)
		favorites.PUT("/:id", h.AddFavorite)
		favorites.DELETE("/:id", h.RemoveFavorite)
	}
}

func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	recipes, err := h.favorites.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	recipe, err := h.favorites.Add(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	if err := h.favorites.Remove(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
