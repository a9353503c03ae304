// Package search adapts the FT.SEARCH store into the retrieval
// pipeline's scoped chunk lookup.
package search

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/askdex/internal/db"
	"github.com/kailas-cloud/askdex/internal/domain"
)

const (
	chunkKeyPrefix = domain.KeyPrefix + "chunk:"
	chunkIndex     = domain.KeyPrefix + "chunk:idx"

	fieldContent  = "__content"
	fieldDocument = "__document"
	fieldVector   = "__vector"
	fieldScore    = "__vector_score"
)

// store is the consumer interface for search operations.
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements the retriever's Searcher contract over the chunk index.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchKNN returns up to topK chunks of the scope ordered by descending
// similarity to the vector.
func (r *Repo) SearchKNN(
	ctx context.Context, scope string, vector []float32, topK int, includeVectors bool,
) ([]domain.Candidate, error) {
	returnFields := []string{fieldContent, fieldDocument, fieldScore}
	if includeVectors {
		returnFields = append(returnFields, fieldVector)
	}

	q := &db.KNNQuery{
		IndexName:    chunkIndex,
		Scope:        scope,
		Vector:       vector,
		K:            topK,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn scope %s: %w", scope, err)
	}

	return parseCandidates(sr, includeVectors), nil
}

func parseCandidates(sr *db.SearchResult, includeVectors bool) []domain.Candidate {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	candidates := make([]domain.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		c := domain.Candidate{
			ID:         strings.TrimPrefix(entry.Key, chunkKeyPrefix),
			DocumentID: entry.Fields[fieldDocument],
			Content:    entry.Fields[fieldContent],
			Similarity: entry.Score,
		}
		if includeVectors {
			c.Embedding = bytesToVector(entry.Fields[fieldVector])
		}
		candidates = append(candidates, c)
	}
	return candidates
}

// bytesToVector deserializes a binary string to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
