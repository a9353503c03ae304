// Package classify scores queries against category exemplars to pick a
// handling strategy: document retrieval, the SQL agent, forecasting, or a
// hybrid of several.
package classify

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
)

// maxWeight and meanWeight blend the best and the average exemplar
// similarity per category.
const (
	maxWeight  = 0.7
	meanWeight = 0.3
)

// Service classifies queries by embedding similarity to fixed exemplars.
type Service struct {
	embed     domain.Embedder
	threshold float64
	cache     *gocache.Cache
	logger    *zap.Logger

	mu           sync.RWMutex
	exemplarVecs map[domain.QueryType][][]float32
}

// New creates a query classifier. cacheTTL <= 0 disables result caching.
func New(embed domain.Embedder, threshold float64, cacheTTL time.Duration, logger *zap.Logger) *Service {
	if threshold <= 0 {
		threshold = domain.DefaultClassifyThreshold
	}
	var c *gocache.Cache
	if cacheTTL > 0 {
		c = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return &Service{
		embed:     embed,
		threshold: threshold,
		cache:     c,
		logger:    logger.With(zap.String("component", "classify")),
	}
}

// Warm computes the exemplar embedding table. Must complete before the
// first Classify call; scoring itself never touches the provider for
// exemplars again.
func (s *Service) Warm(ctx context.Context) error {
	vecs := make(map[domain.QueryType][][]float32, len(exemplars))

	for category, phrases := range exemplars {
		res, err := s.batchEmbed(ctx, phrases)
		if err != nil {
			return err
		}
		vecs[category] = res.Embeddings
	}

	s.mu.Lock()
	s.exemplarVecs = vecs
	s.mu.Unlock()

	s.logger.Info("Exemplar table warmed", zap.Int("categories", len(vecs)))
	return nil
}

func (s *Service) batchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := s.embed.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, s.embed, texts)
}

// Classify scores the query against every category and picks a strategy.
// It never fails past this boundary: on embedding errors it returns the
// safe RAG default with zero confidence and logs the cause.
func (s *Service) Classify(ctx context.Context, query string) domain.Classification {
	cacheKey := strings.ToLower(strings.TrimSpace(query))
	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKey); ok {
			return cached.(domain.Classification)
		}
	}

	result := s.classify(ctx, query)

	if s.cache != nil {
		s.cache.SetDefault(cacheKey, result)
	}
	return result
}

func (s *Service) classify(ctx context.Context, query string) domain.Classification {
	queryRes, err := s.embed.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("Query embedding failed, defaulting to rag", zap.Error(err))
		return domain.Classification{
			Type:       domain.QueryTypeRAG,
			Confidence: 0,
			Scores:     map[domain.QueryType]float64{},
		}
	}

	s.mu.RLock()
	table := s.exemplarVecs
	s.mu.RUnlock()

	scores := make(map[domain.QueryType]float64, len(table))
	var best domain.QueryType
	bestScore := -1.0
	aboveThreshold := 0

	for category, vecs := range table {
		score := categoryScore(queryRes.Embedding, vecs)
		scores[category] = score
		if score >= s.threshold {
			aboveThreshold++
		}
		if score > bestScore {
			bestScore = score
			best = category
		}
	}

	result := domain.Classification{Type: best, Confidence: bestScore, Scores: scores}

	switch {
	case aboveThreshold > 1:
		// Multiple confident categories: the query spans strategies.
		result.Type = domain.QueryTypeHybrid
	case bestScore < s.threshold:
		// Low confidence demotes to rag: on ambiguity, favor document
		// search over guessing a structured strategy.
		result.Type = domain.QueryTypeRAG
	}

	s.logger.Debug("Query classified",
		zap.String("type", string(result.Type)),
		zap.Float64("confidence", result.Confidence),
	)
	return result
}

// categoryScore blends the max and mean cosine similarity of the query
// against a category's exemplar vectors.
func categoryScore(query []float32, exemplarVecs [][]float32) float64 {
	if len(exemplarVecs) == 0 {
		return 0
	}

	maxSim := -1.0
	sum := 0.0
	for _, v := range exemplarVecs {
		sim := domain.Cosine(query, v)
		sum += sim
		if sim > maxSim {
			maxSim = sim
		}
	}

	return maxWeight*maxSim + meanWeight*(sum/float64(len(exemplarVecs)))
}
