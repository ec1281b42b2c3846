// Package store persists normalized recipes and user favorites.
package store

import (
	"context"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pageza/circlekitchen/backend/internal/model"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// RecipeStore is keyed solely by recipe id. A missing id is reported through
// the found flag, never as an error.
type RecipeStore interface {
	FindByID(ctx context.Context, id string) (*model.Recipe, bool, error)
	// Upsert inserts or atomically replaces the record and stamps LastModified.
	Upsert(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error)
	FindVisible(ctx context.Context, q ListQuery) ([]*model.Recipe, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ListQuery selects recipes visible to Requester. An empty Requester is anonymous.
type ListQuery struct {
	Requester string
	OwnedOnly bool
	Search    string
	Limit     int
	Offset    int
}

func (q ListQuery) withDefaults() ListQuery {
	q.Search = strings.TrimSpace(q.Search)
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}
	if q.Limit > MaxListLimit {
		q.Limit = MaxListLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// GenerateEmbedding returns a simple deterministic embedding for the given text.
// It counts the total length, vowels and consonants.
func GenerateEmbedding(text string) pgvector.Vector {
	text = strings.ToLower(text)
	var vowels, consonants float32
	for _, r := range text {
		if strings.ContainsRune("aeiou", r) {
			vowels++
		} else if r >= 'a' && r <= 'z' {
			consonants++
		}
	}
	length := float32(len(text))
	return pgvector.NewVector([]float32{length, vowels, consonants})
}
