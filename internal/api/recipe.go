package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/circlekitchen/backend/internal/middleware"
	"github.com/pageza/circlekitchen/backend/internal/service"
	"github.com/pageza/circlekitchen/backend/internal/store"
)

type RecipeHandler struct {
	recipes         service.IRecipeService
	auth            middleware.TokenValidator
	creationLimiter *middleware.RateLimiter
}

// NewRecipeHandler creates a new recipe handler. creationLimiter may be nil.
func NewRecipeHandler(recipes service.IRecipeService, auth middleware.TokenValidator, creationLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		recipes:         recipes,
		auth:            auth,
		creationLimiter: creationLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuth(h.auth), h.ListRecipes)
		recipes.GET("/:id", middleware.OptionalAuth(h.auth), h.GetRecipe)

		create := []gin.HandlerFunc{middleware.AuthMiddleware(h.auth)}
		if h.creationLimiter != nil {
			create = append(create, h.creationLimiter.RateLimitMiddleware())
		}
		recipes.POST("", append(create, h.CreateRecipe)...)

		recipes.PUT("/:id", middleware.AuthMiddleware(h.auth), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.auth), h.DeleteRecipe)
		recipes.PUT("/:id/image", middleware.AuthMiddleware(h.auth), h.UploadImage)
	}
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipes.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	q := store.ListQuery{
		Requester: middleware.UserID(c),
		Search:    c.Query("q"),
	}
	if c.Query("mine") == "true" {
		if q.Requester == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}
		q.OwnedOnly = true
	}

	var err error
	if q.Limit, err = queryInt(c, "limit"); err != nil {
		_ = c.Error(err)
		return
	}
	if q.Offset, err = queryInt(c, "offset"); err != nil {
		_ = c.Error(err)
		return
	}

	recipes, err := h.recipes.List(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var in service.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	var in service.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	if err := h.recipes.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage accepts a multipart "image" field.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: image file is required", ErrBadRequest))
		return
	}
	f, err := file.Open()
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: unreadable upload", ErrBadRequest))
		return
	}
	defer f.Close()

	// one byte over the cap so the service can reject oversized files
	data, err := io.ReadAll(io.LimitReader(f, service.MaxImageBytes+1))
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: unreadable upload", ErrBadRequest))
		return
	}

	recipe, err := h.recipes.SetImage(c.Request.Context(), middleware.UserID(c), c.Param("id"), data)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrBadRequest, name)
	}
	return v, nil
}
