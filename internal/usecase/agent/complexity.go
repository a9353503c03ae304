package agent

import (
	"strings"

	"github.com/kailas-cloud/askdex/internal/domain"
)

var temporalMarkers = []string{"last", "previous", "year", "month"}

// ClassifyComplexity sizes a structured-data query with an additive
// heuristic over SQL-shaped markers. Join markers score per occurrence,
// and a second join adds the same weight as nesting since the planner
// has to reason across more than two tables.
func ClassifyComplexity(query string) domain.ComplexityTier {
	upper := strings.ToUpper(query)
	lower := strings.ToLower(query)

	score := 0

	joins := strings.Count(upper, "JOIN")
	score += 2 * joins
	if joins > 1 {
		score += 2
	}
	if strings.Contains(upper, "GROUP BY") {
		score++
	}
	if strings.Contains(upper, "HAVING") {
		score += 2
	}
	if strings.Count(upper, "SELECT") > 1 {
		score += 3
	}
	for _, marker := range temporalMarkers {
		if strings.Contains(lower, marker) {
			score++
			break
		}
	}

	switch {
	case score <= 2:
		return domain.TierSimple
	case score <= 5:
		return domain.TierModerate
	default:
		return domain.TierComplex
	}
}
