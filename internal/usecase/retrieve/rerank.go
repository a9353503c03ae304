package retrieve

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
)

// rerank scores the pool against the query with the cross-encoder and
// returns the limit highest-scoring candidates. When no encoder is
// configured, or scoring fails, the first limit candidates pass through
// unchanged.
func (s *Service) rerank(ctx context.Context, query string, pool []domain.Candidate, limit int) []domain.Candidate {
	if limit > len(pool) {
		limit = len(pool)
	}
	if s.encoder == nil || len(pool) == 0 {
		return pool[:limit]
	}

	texts := make([]string, len(pool))
	for i, c := range pool {
		texts[i] = c.Content
	}

	scores, err := s.encoder.Score(ctx, query, texts)
	if err != nil || len(scores) != len(pool) {
		s.logger.Warn("cross-encoder scoring failed, keeping similarity order",
			zap.Int("pool", len(pool)),
			zap.Error(err))
		return pool[:limit]
	}

	scored := make([]domain.Candidate, len(pool))
	for i, c := range pool {
		scored[i] = c.WithRerankScore(scores[i])
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return *scored[a].RerankScore > *scored[b].RerankScore
	})
	return scored[:limit]
}
