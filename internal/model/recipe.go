package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// UnknownMinutes marks a preparation or cooking time the provider did not report.
const UnknownMinutes = -1

// ErrOwnerRequired is returned when an owned recipe carries an empty user id.
var ErrOwnerRequired = errors.New("owned recipe requires a user id")

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	*a = JSONBStringArray{}
	bytes, ok := scanBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// Ingredient is one ingredient line in recipe order.
type Ingredient struct {
	IngredientID int64  `json:"ingredientId"`
	OriginalText string `json:"originalText"`
	ParsedName   string `json:"parsedName"`
}

// Ingredients is stored as a JSONB array, preserving order.
type Ingredients []Ingredient

// Value implements the driver.Valuer interface
func (in Ingredients) Value() (driver.Value, error) {
	if len(in) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (in *Ingredients) Scan(value interface{}) error {
	*in = Ingredients{}
	bytes, ok := scanBytes(value)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, in)
}

func scanBytes(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}

// Owner says where a recipe came from: the provider, or a user who authored it.
// The zero value is the provider.
type Owner struct {
	userID string
}

// ProviderOwner marks a recipe cached from the upstream provider.
func ProviderOwner() Owner { return Owner{} }

// OwnedBy marks a recipe authored by userID.
func OwnedBy(userID string) Owner { return Owner{userID: strings.TrimSpace(userID)} }

// IsProvider reports whether the recipe originated upstream.
func (o Owner) IsProvider() bool { return o.userID == "" }

// UserID returns the authoring user, if any.
func (o Owner) UserID() (string, bool) {
	return o.userID, o.userID != ""
}

// Is reports whether requester authored the recipe.
func (o Owner) Is(requester string) bool {
	return o.userID != "" && o.userID == requester
}

func (o Owner) String() string {
	if o.IsProvider() {
		return "provider"
	}
	return o.userID
}

// Value persists provider ownership as NULL.
func (o Owner) Value() (driver.Value, error) {
	if o.IsProvider() {
		return nil, nil
	}
	return o.userID, nil
}

// Scan implements the sql.Scanner interface
func (o *Owner) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*o = ProviderOwner()
	case string:
		*o = OwnedBy(v)
	case []byte:
		*o = OwnedBy(string(v))
	default:
		return fmt.Errorf("unsupported owner type %T", value)
	}
	return nil
}

// MarshalJSON renders provider ownership as null.
func (o Owner) MarshalJSON() ([]byte, error) {
	if o.IsProvider() {
		return []byte("null"), nil
	}
	return json.Marshal(o.userID)
}

// UnmarshalJSON implements json.Unmarshaler
func (o *Owner) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = ProviderOwner()
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*o = OwnedBy(id)
	return nil
}

// Recipe is the normalized recipe record shared by cached and user-authored recipes.
type Recipe struct {
	RecipeID           string           `gorm:"primaryKey;size:64" json:"recipeId"`
	Title              string           `gorm:"type:text;not null" json:"title"`
	Image              *string          `gorm:"type:text" json:"image"`
	ImageType          *string          `gorm:"size:32" json:"imageType"`
	Servings           int              `gorm:"not null" json:"servings"`
	PreparationMinutes int              `gorm:"not null" json:"preparationMinutes"`
	CookingMinutes     int              `gorm:"not null" json:"cookingMinutes"`
	Cuisines           JSONBStringArray `gorm:"type:jsonb;not null" json:"cuisines"`
	DishTypes          JSONBStringArray `gorm:"type:jsonb;not null" json:"dishTypes"`
	Ingredients        Ingredients      `gorm:"type:jsonb;not null" json:"ingredients"`
	Instructions       string           `gorm:"type:text;not null" json:"instructions"`
	Summary            string           `gorm:"type:text;not null" json:"summary"`
	SourceURL          *string          `gorm:"column:source_url;type:text" json:"sourceUrl"`
	Owner              Owner            `gorm:"column:owner_id;type:varchar(64);index" json:"ownerId"`
	IsPublic           bool             `gorm:"not null" json:"isPublic"`
	LastModified       time.Time        `gorm:"not null" json:"lastModified"`
	Embedding          pgvector.Vector  `gorm:"type:vector(3)" json:"-"`
}

// TableName returns the table name for the Recipe model
func (Recipe) TableName() string {
	return "recipes"
}

// VisibleTo reports whether requester may see the recipe. An empty requester
// is anonymous and only sees public recipes.
func (r *Recipe) VisibleTo(requester string) bool {
	return r.IsPublic || r.Owner.Is(requester)
}

// Validate checks the invariants every stored recipe must satisfy.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.RecipeID) == "" {
		return errors.New("recipeId is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if r.Servings < 0 {
		return errors.New("servings must not be negative")
	}
	if r.PreparationMinutes < UnknownMinutes || r.CookingMinutes < UnknownMinutes {
		return errors.New("minutes must be non-negative or unknown")
	}
	return nil
}

// Clone returns a deep copy so callers can't mutate shared records.
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	c := *r
	c.Image = cloneString(r.Image)
	c.ImageType = cloneString(r.ImageType)
	c.SourceURL = cloneString(r.SourceURL)
	c.Cuisines = append(JSONBStringArray{}, r.Cuisines...)
	c.DishTypes = append(JSONBStringArray{}, r.DishTypes...)
	c.Ingredients = append(Ingredients{}, r.Ingredients...)
	if s := r.Embedding.Slice(); s != nil {
		c.Embedding = pgvector.NewVector(append([]float32(nil), s...))
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
