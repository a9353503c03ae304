package retrieve

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
)

// selectMMR picks topK candidates by maximal marginal relevance:
// each step takes the candidate maximizing
//
//	lambda*sim(query, c) - (1-lambda)*max(sim(c, selected))
//
// Ties keep the earliest candidate in pool order, so the selection is
// deterministic for a given pool. Pools of topK or fewer are returned
// as-is, and any embedding backfill failure degrades to the first topK.
func (s *Service) selectMMR(ctx context.Context, queryVec []float32, pool []domain.Candidate, lambda float64, topK int) []domain.Candidate {
	if len(pool) <= topK {
		return pool
	}

	if err := s.backfillEmbeddings(ctx, pool); err != nil {
		s.logger.Warn("mmr embedding backfill failed, keeping rerank order", zap.Error(err))
		return pool[:topK]
	}

	querySims := make([]float64, len(pool))
	for i, c := range pool {
		querySims[i] = domain.Cosine(queryVec, c.Embedding)
	}

	selected := make([]domain.Candidate, 0, topK)
	picked := make([]bool, len(pool))

	for len(selected) < topK {
		best := -1
		bestScore := 0.0
		for i := range pool {
			if picked[i] {
				continue
			}
			redundancy := 0.0
			for _, chosen := range selected {
				if sim := domain.Cosine(pool[i].Embedding, chosen.Embedding); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*querySims[i] - (1-lambda)*redundancy
			if best == -1 || score > bestScore {
				best = i
				bestScore = score
			}
		}
		picked[best] = true
		selected = append(selected, pool[best])
	}
	return selected
}

// backfillEmbeddings fills in missing candidate embeddings. Content that
// was already embedded at index time usually arrives with vectors from
// the store, so this mostly covers the basic-path merge case.
func (s *Service) backfillEmbeddings(ctx context.Context, pool []domain.Candidate) error {
	for i := range pool {
		if len(pool[i].Embedding) > 0 {
			continue
		}
		res, err := s.embedder.Embed(ctx, pool[i].Content)
		if err != nil {
			return err
		}
		pool[i].Embedding = res.Embedding
	}
	return nil
}
