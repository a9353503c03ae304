// Package expand widens retrieval recall by paraphrasing the query.
package expand

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
)

const expansionPrompt = `Generate 2 alternative phrasings of this question that preserve the intent but use different words:

Original: %s

Alternatives (one per line):
`

// maxParaphrases is how many alternatives the generator is asked for and
// how many are kept.
const maxParaphrases = 2

// Service generates paraphrase variants of a query.
type Service struct {
	gen    domain.Generator
	logger *zap.Logger
}

// New creates a query expander.
func New(gen domain.Generator, logger *zap.Logger) *Service {
	return &Service{
		gen:    gen,
		logger: logger.With(zap.String("component", "expand")),
	}
}

// Expand returns the original query plus up to two paraphrases. Expansion
// is best-effort: on any generator failure or empty output it falls back
// to the original query alone and never blocks retrieval.
func (s *Service) Expand(ctx context.Context, query string) domain.QueryVariants {
	response, err := s.gen.Generate(ctx, fmt.Sprintf(expansionPrompt, query))
	if err != nil {
		s.logger.Warn("Query expansion failed, using original only", zap.Error(err))
		return domain.NewQueryVariants(query)
	}

	paraphrases := parseAlternatives(response)
	if len(paraphrases) == 0 {
		s.logger.Debug("Query expansion returned no usable alternatives")
		return domain.NewQueryVariants(query)
	}

	variants := domain.NewQueryVariants(query, paraphrases...)
	s.logger.Debug("Query expanded", zap.Int("variants", len(variants)))
	return variants
}

// parseAlternatives splits generator output into lines, strips enumeration
// markers and blanks, and keeps the first maxParaphrases entries.
func parseAlternatives(response string) []string {
	var out []string
	for _, line := range strings.Split(response, "\n") {
		line = trimEnumeration(line)
		if line == "" || strings.HasPrefix(line, "Alternative") {
			continue
		}
		out = append(out, line)
		if len(out) == maxParaphrases {
			break
		}
	}
	return out
}

// trimEnumeration removes list markers such as "1.", "2)", "-", "*".
func trimEnumeration(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "0123456789")
	line = strings.TrimLeft(line, ".)")
	line = strings.TrimLeft(line, "-*")
	return strings.TrimSpace(line)
}
