package ask

import (
	"context"

	"github.com/kailas-cloud/askdex/internal/domain"
)

// Classifier decides which retrieval strategy fits a query.
type Classifier interface {
	Classify(ctx context.Context, query string) domain.Classification
}

// Retriever returns ranked evidence chunks for a query within a scope.
type Retriever interface {
	Retrieve(ctx context.Context, scope, query string, topK int) ([]domain.Candidate, error)
}

// AgentController runs a tool-using SQL agent session over structured tables.
type AgentController interface {
	Run(ctx context.Context, query string, tables []domain.TableInfo) (domain.AgentAnswer, error)
}

// Request is one question against a knowledge scope.
type Request struct {
	Scope  string
	Query  string
	TopK   int
	Tables []domain.TableInfo
}

// Answer is the combined result of a routed query.
type Answer struct {
	Answer          string
	Classification  domain.Classification
	Sources         []domain.Candidate
	TablesUsed      []string
	ToolInvocations []string
	// Method records which path produced the answer:
	// "rag", "sql_agent" or "hybrid".
	Method string
}
