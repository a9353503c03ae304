package retrieve

import (
	"context"

	"github.com/kailas-cloud/askdex/internal/domain"
)

// Searcher is the similarity-store contract used by the retriever.
type Searcher interface {
	// SearchKNN returns up to topK chunks of the given scope ordered by
	// descending cosine similarity to vector. When includeVectors is set
	// the stored embedding is returned alongside each candidate.
	SearchKNN(ctx context.Context, scope string, vector []float32, topK int, includeVectors bool) ([]domain.Candidate, error)
}

// Expander produces paraphrased variants of a query. Implementations must
// not fail: on any trouble they return the original query alone.
type Expander interface {
	Expand(ctx context.Context, query string) domain.QueryVariants
}
