package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrScopeEmpty signals a knowledge scope with no indexed content.
	ErrScopeEmpty = errors.New("scope has no indexed content")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a text generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
	// ErrAgentExhausted signals that the agent retry budget ran out.
	ErrAgentExhausted = errors.New("agent retry budget exhausted")
)

// AgentFailureError wraps ErrAgentExhausted (or a non-retryable failure)
// with the last attempt's error and a user-facing explanation.
type AgentFailureError struct {
	LastErr     error
	UserMessage string
	History     []AttemptRecord
}

func (e *AgentFailureError) Error() string {
	return fmt.Sprintf("agent failed after %d attempt(s): %v", len(e.History), e.LastErr)
}

func (e *AgentFailureError) Unwrap() error { return ErrAgentExhausted }

// NewAgentFailure creates a terminal agent failure carrying the full
// attempt history for diagnostics.
func NewAgentFailure(lastErr error, userMessage string, history []AttemptRecord) error {
	return &AgentFailureError{LastErr: lastErr, UserMessage: userMessage, History: history}
}
