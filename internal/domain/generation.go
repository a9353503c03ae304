package domain

import "context"

// Generator produces free text from a prompt. Used for query paraphrasing
// and answer synthesis; opaque beyond this signature.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CrossEncoder scores (query, text) pairs jointly. More accurate than
// bi-encoder cosine similarity because it attends to both texts at once.
type CrossEncoder interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}
