package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pageza/circlekitchen/backend/internal/logger"
	"github.com/pageza/circlekitchen/backend/internal/model"
	"github.com/pageza/circlekitchen/backend/internal/store"
)

// IngredientInput is one ingredient line of a user-authored recipe.
type IngredientInput struct {
	IngredientID int64  `json:"ingredientId" validate:"gte=0"`
	OriginalText string `json:"originalText" validate:"required,max=500"`
	ParsedName   string `json:"parsedName" validate:"max=200"`
}

// RecipeInput is the body of a create or update request. Nil pointers mean
// "unknown" for minutes and "keep current" for image and visibility.
type RecipeInput struct {
	Title              string            `json:"title" validate:"required,max=300"`
	Image              *string           `json:"image" validate:"omitempty,url"`
	ImageType          *string           `json:"imageType" validate:"omitempty,max=32"`
	Servings           int               `json:"servings" validate:"gte=0,lte=1000"`
	PreparationMinutes *int              `json:"preparationMinutes" validate:"omitempty,gte=0"`
	CookingMinutes     *int              `json:"cookingMinutes" validate:"omitempty,gte=0"`
	Cuisines           []string          `json:"cuisines" validate:"max=20,dive,required,max=64"`
	DishTypes          []string          `json:"dishTypes" validate:"max=20,dive,required,max=64"`
	Ingredients        []IngredientInput `json:"ingredients" validate:"max=200,dive"`
	Instructions       string            `json:"instructions" validate:"max=20000"`
	Summary            string            `json:"summary" validate:"max=20000"`
	SourceURL          *string           `json:"sourceUrl" validate:"omitempty,url"`
	IsPublic           *bool             `json:"isPublic"`
}

// RecipeService runs the user-authoring flow. It writes straight to the store
// and never touches the provider.
type RecipeService struct {
	store    store.RecipeStore
	cache    RecipeResolver
	images   *ImageService
	validate *validator.Validate
	log      logger.Logger
}

// NewRecipeService creates a new RecipeService instance. images may be nil when
// image storage is not configured.
func NewRecipeService(st store.RecipeStore, cache RecipeResolver, images *ImageService, log logger.Logger) *RecipeService {
	return &RecipeService{
		store:    st,
		cache:    cache,
		images:   images,
		validate: validator.New(),
		log:      log,
	}
}

// Get resolves id through the cache and hides private recipes from everyone
// but their owner.
func (s *RecipeService) Get(ctx context.Context, requester, id string) (*model.Recipe, error) {
	recipe, err := s.cache.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !recipe.VisibleTo(requester) {
		return nil, ErrRecipeNotFound
	}
	return recipe, nil
}

func (s *RecipeService) List(ctx context.Context, q store.ListQuery) ([]*model.Recipe, error) {
	recipes, err := s.store.FindVisible(ctx, q)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	return recipes, nil
}

// Create stores a new recipe owned by ownerID. Recipes are private unless
// the input says otherwise.
func (s *RecipeService) Create(ctx context.Context, ownerID string, in RecipeInput) (*model.Recipe, error) {
	owner := model.OwnedBy(ownerID)
	if owner.IsProvider() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecipe, model.ErrOwnerRequired)
	}
	if err := s.check(&in); err != nil {
		return nil, err
	}

	recipe := &model.Recipe{RecipeID: NewLocalID(), Owner: owner}
	applyInput(recipe, in)

	stored, err := s.store.Upsert(ctx, recipe)
	if err != nil {
		return nil, &StorageError{Op: "upsert", Err: err}
	}
	logger.ForRequest(ctx, s.log).Info("Recipe created", "recipe_id", stored.RecipeID, "owner", ownerID)
	return stored, nil
}

// Update replaces the fields of an existing recipe owned by ownerID.
func (s *RecipeService) Update(ctx context.Context, ownerID, id string, in RecipeInput) (*model.Recipe, error) {
	id = strings.TrimSpace(id)
	existing, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.check(&in); err != nil {
		return nil, err
	}

	updated := existing.Clone()
	applyInput(updated, in)

	stored, err := s.store.Upsert(ctx, updated)
	if err != nil {
		return nil, &StorageError{Op: "upsert", Err: err}
	}
	return stored, nil
}

func (s *RecipeService) Delete(ctx context.Context, ownerID, id string) error {
	id = strings.TrimSpace(id)
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	if !deleted {
		return ErrRecipeNotFound
	}
	logger.ForRequest(ctx, s.log).Info("Recipe deleted", "recipe_id", id, "owner", ownerID)
	return nil
}

// SetImage uploads data and points the recipe at it.
func (s *RecipeService) SetImage(ctx context.Context, ownerID, id string, data []byte) (*model.Recipe, error) {
	if s.images == nil {
		return nil, ErrImagesNotConfigured
	}
	id = strings.TrimSpace(id)
	existing, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	url, imageType, err := s.images.UploadRecipeImage(ctx, id, data)
	if err != nil {
		return nil, err
	}

	updated := existing.Clone()
	updated.Image = &url
	updated.ImageType = &imageType
	stored, err := s.store.Upsert(ctx, updated)
	if err != nil {
		return nil, &StorageError{Op: "upsert", Err: err}
	}
	return stored, nil
}

// owned loads id for modification by ownerID. Provider records and other
// users' records are rejected; private records of others look absent.
// id must already be trimmed.
func (s *RecipeService) owned(ctx context.Context, ownerID, id string) (*model.Recipe, error) {
	recipe, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, &StorageError{Op: "find", Err: err}
	}
	if !found {
		return nil, ErrRecipeNotFound
	}
	if recipe.Owner.Is(ownerID) {
		return recipe, nil
	}
	if !recipe.VisibleTo(ownerID) {
		return nil, ErrRecipeNotFound
	}
	return nil, ErrForbidden
}

func (s *RecipeService) check(in *RecipeInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidRecipe, strings.Join(fields, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
	}
	return nil
}

func applyInput(r *model.Recipe, in RecipeInput) {
	r.Title = in.Title
	if in.Image != nil {
		r.Image = in.Image
	}
	if in.ImageType != nil {
		r.ImageType = in.ImageType
	}
	if in.IsPublic != nil {
		r.IsPublic = *in.IsPublic
	}
	r.Servings = in.Servings
	r.PreparationMinutes = minutesOrUnknown(in.PreparationMinutes)
	r.CookingMinutes = minutesOrUnknown(in.CookingMinutes)
	r.Cuisines = append(model.JSONBStringArray{}, in.Cuisines...)
	r.DishTypes = append(model.JSONBStringArray{}, in.DishTypes...)
	r.Ingredients = make(model.Ingredients, 0, len(in.Ingredients))
	for _, ing := range in.Ingredients {
		r.Ingredients = append(r.Ingredients, model.Ingredient{
			IngredientID: ing.IngredientID,
			OriginalText: ing.OriginalText,
			ParsedName:   ing.ParsedName,
		})
	}
	r.Instructions = in.Instructions
	r.Summary = in.Summary
	r.SourceURL = in.SourceURL
}

func minutesOrUnknown(m *int) int {
	if m == nil {
		return model.UnknownMinutes
	}
	return *m
}
