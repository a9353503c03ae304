package domain

// KeyPrefix namespaces all askdex keys in the store.
const KeyPrefix = "askdex:"

// Candidate is a retrieved content fragment with its relevance scores.
// Candidates live for the duration of a single query and are never persisted.
type Candidate struct {
	ID         string
	DocumentID string
	Content    string

	// Embedding is populated by the store when vectors are requested, or
	// backfilled lazily by the MMR selector.
	Embedding []float32

	// Similarity is the bi-encoder score from the similarity store.
	Similarity float64

	// RerankScore is set by the reranking stage; nil until then.
	RerankScore *float64
}

// WithRerankScore returns a copy of the candidate with the rerank score set.
func (c Candidate) WithRerankScore(score float64) Candidate {
	c.RerankScore = &score
	return c
}

// QueryVariants is an ordered set of query phrasings, the original first.
type QueryVariants []string

// MaxQueryVariants bounds expansion output: the original plus two paraphrases.
const MaxQueryVariants = 3

// NewQueryVariants builds a variant list from the original query and
// paraphrases, truncating to MaxQueryVariants.
func NewQueryVariants(original string, paraphrases ...string) QueryVariants {
	v := make(QueryVariants, 0, MaxQueryVariants)
	v = append(v, original)
	for _, p := range paraphrases {
		if len(v) == MaxQueryVariants {
			break
		}
		if p != "" {
			v = append(v, p)
		}
	}
	return v
}

// Original returns the first (original) query phrasing.
func (v QueryVariants) Original() string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}
