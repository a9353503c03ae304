// Package retrieve implements the enhanced retrieval pipeline: query
// expansion, multi-variant similarity search with deduplication,
// cross-encoder reranking and MMR diversity selection. Every enhanced
// stage degrades to the basic single-lookup path rather than failing
// the request.
package retrieve

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/metrics"
)

const (
	// candidateMultiplier widens the per-variant fetch so that rerank
	// and MMR have a meaningful pool to choose from.
	candidateMultiplier = 3
	minCandidatePool    = 15

	// rerankMultiplier bounds how many reranked candidates survive
	// into MMR selection.
	rerankMultiplier = 2

	// mmrLambda balances query relevance against pool diversity.
	mmrLambda = 0.7
)

// Service runs retrieval against a scoped chunk store.
type Service struct {
	repo     Searcher
	embedder domain.Embedder
	expander Expander
	encoder  domain.CrossEncoder
	logger   *zap.Logger
}

// New builds a retrieval service. expander and encoder may be nil, in
// which case the corresponding stage is skipped.
func New(repo Searcher, embedder domain.Embedder, expander Expander, encoder domain.CrossEncoder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		embedder: embedder,
		expander: expander,
		encoder:  encoder,
		logger:   logger,
	}
}

// Retrieve returns the topK most relevant chunks for the query within the
// given scope. The enhanced pipeline is attempted first; any stage error
// falls back to the basic single-lookup path.
func (s *Service) Retrieve(ctx context.Context, scope, query string, topK int) ([]domain.Candidate, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}

	embedded, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVec := embedded.Embedding

	results, err := s.retrieveEnhanced(ctx, scope, query, queryVec, topK)
	if err != nil {
		s.logger.Warn("enhanced retrieval failed, falling back to basic search",
			zap.String("scope", scope),
			zap.Error(err))
		metrics.RetrievalFallbacksTotal.Inc()
		return s.Basic(ctx, scope, queryVec, topK)
	}

	metrics.RetrievalRequestsTotal.WithLabelValues("enhanced").Inc()
	return results, nil
}

// Basic performs a single KNN lookup with no expansion, reranking or
// diversity selection.
func (s *Service) Basic(ctx context.Context, scope string, queryVec []float32, topK int) ([]domain.Candidate, error) {
	candidates, err := s.repo.SearchKNN(ctx, scope, queryVec, topK, false)
	if err != nil {
		return nil, fmt.Errorf("basic search: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("scope %q: %w", scope, domain.ErrScopeEmpty)
	}
	metrics.RetrievalRequestsTotal.WithLabelValues("basic").Inc()
	return candidates, nil
}

func (s *Service) retrieveEnhanced(ctx context.Context, scope, query string, queryVec []float32, topK int) ([]domain.Candidate, error) {
	variants := domain.NewQueryVariants(query)
	if s.expander != nil {
		variants = s.expander.Expand(ctx, query)
	}

	pool, err := s.fanOut(ctx, scope, variants, queryVec, topK)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, domain.ErrNotFound
	}
	metrics.RetrievalCandidates.Observe(float64(len(pool)))

	reranked := s.rerank(ctx, query, pool, rerankLimit(topK, len(pool)))

	return s.selectMMR(ctx, queryVec, reranked, mmrLambda, topK), nil
}

// fanOut searches every variant concurrently and merges the results into
// a deduplicated pool. A candidate seen under several variants keeps its
// highest similarity. The merged order is deterministic: variants in
// expansion order, then rank order within each variant.
func (s *Service) fanOut(ctx context.Context, scope string, variants domain.QueryVariants, originalVec []float32, topK int) ([]domain.Candidate, error) {
	perVariant := topK * candidateMultiplier
	if perVariant < minCandidatePool {
		perVariant = minCandidatePool
	}

	byVariant := make([][]domain.Candidate, len(variants))
	g, gctx := errgroup.WithContext(ctx)
	for i, variant := range variants {
		i, variant := i, variant
		g.Go(func() error {
			vec := originalVec
			if i > 0 {
				embedded, err := s.embedder.Embed(gctx, variant)
				if err != nil {
					return fmt.Errorf("embed variant %d: %w", i, err)
				}
				vec = embedded.Embedding
			}
			found, err := s.repo.SearchKNN(gctx, scope, vec, perVariant, true)
			if err != nil {
				return fmt.Errorf("search variant %d: %w", i, err)
			}
			byVariant[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]int, perVariant)
	var pool []domain.Candidate
	for _, found := range byVariant {
		for _, c := range found {
			at, ok := seen[c.ID]
			if !ok {
				seen[c.ID] = len(pool)
				pool = append(pool, c)
				continue
			}
			if c.Similarity > pool[at].Similarity {
				pool[at].Similarity = c.Similarity
				if len(c.Embedding) > 0 {
					pool[at].Embedding = c.Embedding
				}
			}
		}
	}
	return pool, nil
}

func rerankLimit(topK, poolSize int) int {
	limit := topK * rerankMultiplier
	if limit > poolSize {
		limit = poolSize
	}
	return limit
}
