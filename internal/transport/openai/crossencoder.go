package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/askdex/internal/domain"
)

// CrossEncoder scores query/passage pairs jointly with one chat call per
// batch. It is a drop-in domain.CrossEncoder; callers treat any failure
// as "keep the similarity order".
type CrossEncoder struct {
	gen *Generator
}

// NewCrossEncoder builds a cross-encoder on top of an existing Generator.
func NewCrossEncoder(gen *Generator) *CrossEncoder {
	return &CrossEncoder{gen: gen}
}

// Score returns one relevance score per passage, higher is better.
func (ce *CrossEncoder) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := ce.gen.chat(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: scoringPrompt(query, texts)},
	}, nil)
	if err != nil {
		return nil, err
	}

	scores, err := parseScores(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(texts) {
		return nil, fmt.Errorf("scorer returned %d scores for %d passages: %w",
			len(scores), len(texts), domain.ErrGenerationProviderError)
	}
	return scores, nil
}

func scoringPrompt(query string, texts []string) string {
	var b strings.Builder
	b.WriteString("Rate how relevant each passage is to the question on a 0-10 scale.\n\n")
	fmt.Fprintf(&b, "Question: %s\n\n", query)
	for i, text := range texts {
		fmt.Fprintf(&b, "Passage %d:\n%s\n\n", i+1, text)
	}
	fmt.Fprintf(&b,
		"Respond with ONLY a JSON array of %d numbers, one score per passage in order. Example: [7.5, 2, 9]",
		len(texts))
	return b.String()
}

// parseScores extracts the JSON number array, tolerating markdown fences
// and surrounding prose.
func parseScores(content string) ([]float64, error) {
	start := strings.IndexByte(content, '[')
	end := strings.LastIndexByte(content, ']')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no score array in scorer response: %w", domain.ErrGenerationProviderError)
	}

	var scores []float64
	if err := json.Unmarshal([]byte(content[start:end+1]), &scores); err != nil {
		return nil, fmt.Errorf("parse scorer response: %w", domain.ErrGenerationProviderError)
	}
	return scores, nil
}
