// Package normalizer turns the provider's loosely-typed recipe document into
// the stable internal recipe record. It performs no I/O.
package normalizer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pageza/circlekitchen/backend/internal/model"
	"github.com/pageza/circlekitchen/backend/internal/upstream"
)

// Error reports a payload that lacks something every recipe needs.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("normalize %s: %s", e.Field, e.Reason)
}

// Normalize maps a provider payload to a recipe. Only id and title are
// required; everything else falls back to an empty value. The result is owned
// by the provider and public. LastModified is left for the store to set.
func Normalize(raw upstream.Payload) (*model.Recipe, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &Error{Field: "payload", Reason: "not a JSON document"}
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, &Error{Field: "payload", Reason: "not a JSON object"}
	}

	id, err := recipeID(doc.Get("id"))
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(doc.Get("title").String())
	if title == "" {
		return nil, &Error{Field: "title", Reason: "missing or blank"}
	}

	r := &model.Recipe{
		RecipeID:           id,
		Title:              title,
		Image:              optionalString(doc.Get("image")),
		ImageType:          optionalString(doc.Get("imageType")),
		Servings:           nonNegative(doc.Get("servings")),
		PreparationMinutes: minutes(doc.Get("preparationMinutes")),
		CookingMinutes:     minutes(doc.Get("cookingMinutes")),
		Cuisines:           stringList(doc.Get("cuisines")),
		DishTypes:          stringList(doc.Get("dishTypes")),
		Ingredients:        ingredients(doc.Get("extendedIngredients")),
		Instructions:       instructions(doc.Get("analyzedInstructions")),
		Summary:            doc.Get("summary").String(),
		SourceURL:          optionalString(doc.Get("sourceUrl")),
		Owner:              model.ProviderOwner(),
		IsPublic:           true,
	}
	return r, nil
}

func recipeID(v gjson.Result) (string, error) {
	switch v.Type {
	case gjson.Number:
		if v.Num == math.Trunc(v.Num) && math.Abs(v.Num) < 1<<53 {
			return strconv.FormatInt(int64(v.Num), 10), nil
		}
		return v.Raw, nil
	case gjson.String:
		if id := strings.TrimSpace(v.Str); id != "" {
			return id, nil
		}
		return "", &Error{Field: "id", Reason: "blank"}
	case gjson.Null:
		if !v.Exists() {
			return "", &Error{Field: "id", Reason: "missing"}
		}
		return "", &Error{Field: "id", Reason: "null"}
	default:
		return "", &Error{Field: "id", Reason: "must be a number or string"}
	}
}

func optionalString(v gjson.Result) *string {
	if v.Type != gjson.String || strings.TrimSpace(v.Str) == "" {
		return nil
	}
	s := v.Str
	return &s
}

func nonNegative(v gjson.Result) int {
	if v.Type != gjson.Number || v.Num < 0 {
		return 0
	}
	return int(v.Int())
}

// minutes keeps "not reported" distinct from zero.
func minutes(v gjson.Result) int {
	if v.Type != gjson.Number || v.Num < 0 {
		return model.UnknownMinutes
	}
	return int(v.Int())
}

func stringList(v gjson.Result) model.JSONBStringArray {
	out := model.JSONBStringArray{}
	if !v.IsArray() {
		return out
	}
	v.ForEach(func(_, item gjson.Result) bool {
		out = append(out, item.String())
		return true
	})
	return out
}

// ingredients keeps every upstream line in order, duplicates included.
func ingredients(v gjson.Result) model.Ingredients {
	out := model.Ingredients{}
	if !v.IsArray() {
		return out
	}
	v.ForEach(func(_, item gjson.Result) bool {
		name := item.Get("originalName").String()
		if strings.TrimSpace(name) == "" {
			name = item.Get("name").String()
		}
		out = append(out, model.Ingredient{
			IngredientID: item.Get("id").Int(),
			OriginalText: item.Get("original").String(),
			ParsedName:   name,
		})
		return true
	})
	return out
}

// instructions reads the first instruction group only; later groups are
// alternatives and are dropped.
func instructions(v gjson.Result) string {
	if !v.IsArray() {
		return ""
	}
	steps := v.Get("0.steps")
	if !steps.IsArray() {
		return ""
	}
	lines := make([]string, 0, len(steps.Array()))
	steps.ForEach(func(_, step gjson.Result) bool {
		lines = append(lines, step.Get("step").String())
		return true
	})
	return strings.Join(lines, "\n")
}
