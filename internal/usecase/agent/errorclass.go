package agent

import (
	"strings"
	"time"

	"github.com/kailas-cloud/askdex/internal/domain"
)

// patternGroups are evaluated in order against the lowercased error text;
// the first group with a matching substring wins.
var patternGroups = []struct {
	patterns []string
	class    domain.ErrorClass
}{
	{
		patterns: []string{"iteration limit", "time limit", "timed out", "timeout"},
		class: domain.ErrorClass{
			Kind:        domain.ErrorKindTimeout,
			Retryable:   true,
			Wait:        0,
			UserMessage: "Query taking longer than expected, retrying with extended timeout...",
		},
	},
	{
		patterns: []string{"could not parse", "parsing error", "invalid format"},
		class: domain.ErrorClass{
			Kind:        domain.ErrorKindParsing,
			Retryable:   true,
			Wait:        2 * time.Second,
			UserMessage: "Reformatting query, please wait...",
		},
	},
	{
		patterns: []string{"rate limit", "429", "too many requests"},
		class: domain.ErrorClass{
			Kind:        domain.ErrorKindRateLimit,
			Retryable:   true,
			Wait:        10 * time.Second,
			UserMessage: "API rate limit reached, waiting before retry...",
		},
	},
	{
		patterns: []string{"syntax error", "does not exist", "permission denied"},
		class: domain.ErrorClass{
			Kind:        domain.ErrorKindDatabase,
			Retryable:   false,
			Wait:        0,
			UserMessage: "Database query error",
		},
	},
}

var otherClass = domain.ErrorClass{
	Kind:        domain.ErrorKindOther,
	Retryable:   true,
	Wait:        2 * time.Second,
	UserMessage: "Unexpected error, retrying...",
}

// ClassifyError maps a failure to its retry policy by case-insensitive
// substring matching on the error text.
func ClassifyError(err error) domain.ErrorClass {
	text := strings.ToLower(err.Error())
	for _, group := range patternGroups {
		for _, p := range group.patterns {
			if strings.Contains(text, p) {
				return group.class
			}
		}
	}
	return otherClass
}
